package racf

import (
	"context"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
	"github.com/Mainframe-Renewal-Project/sear/internal/extract"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

// NativeCall is what the native extract service is invoked with. Names are
// upper case UTF-8; Encoded converts them for the parameter list.
type NativeCall struct {
	RequestID   string
	Function    FunctionCode
	AdminType   keymap.AdminType
	ProfileName string
	ClassName   string
	Group       string
	Volume      string
	Generic     bool
	Filter      string
}

// EncodedNames holds the EBCDIC forms of a call's names.
type EncodedNames struct {
	ProfileName []byte
	ClassName   []byte
	Group       []byte
	Volume      []byte
	Filter      []byte
}

// Encoded returns the EBCDIC names; fixed-width names are blank padded.
func (c NativeCall) Encoded() (EncodedNames, error) {
	var out EncodedNames
	var err error
	if out.ProfileName, err = ebcdic.Encode(c.ProfileName); err != nil {
		return EncodedNames{}, err
	}
	if out.ClassName, err = ebcdic.EncodePadded(c.ClassName, 8); err != nil {
		return EncodedNames{}, err
	}
	if out.Group, err = ebcdic.EncodePadded(c.Group, 8); err != nil {
		return EncodedNames{}, err
	}
	if out.Volume, err = ebcdic.EncodePadded(c.Volume, 6); err != nil {
		return EncodedNames{}, err
	}
	if out.Filter, err = ebcdic.Encode(c.Filter); err != nil {
		return EncodedNames{}, err
	}
	return out, nil
}

// NativeResponse is the outcome of one native call. Extracts fill Buffer;
// searches fill Found, whose entries the receiver must release.
type NativeResponse struct {
	Codes  ReturnCodes
	Buffer []byte
	Found  []extract.OwnedBuffer
}

func (r NativeResponse) release() {
	for _, b := range r.Found {
		if b != nil {
			b.Release()
		}
	}
}

// Caller invokes the native extract service.
type Caller interface {
	Call(ctx context.Context, call NativeCall) (NativeResponse, error)
}

// CallerFunc adapts a function to Caller.
type CallerFunc func(ctx context.Context, call NativeCall) (NativeResponse, error)

func (f CallerFunc) Call(ctx context.Context, call NativeCall) (NativeResponse, error) {
	return f(ctx, call)
}

// Buffer is an OwnedBuffer over plain memory.
type Buffer struct {
	data     []byte
	released bool
}

func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Release() {
	b.data = nil
	b.released = true
}

func (b *Buffer) Released() bool { return b.released }

var _ extract.OwnedBuffer = (*Buffer)(nil)
