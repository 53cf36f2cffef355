package extract

import (
	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

// Generic result layout.
const (
	GenericHeaderSize     = 60
	SegmentDescriptorSize = 40
	FieldDescriptorSize   = 44

	NameSize = 8
)

// Field descriptor type bits.
const (
	TypeMember       uint16 = 0x8000
	TypeReserved     uint16 = 0x4000
	TypeBoolean      uint16 = 0x2000
	TypeRepeatHeader uint16 = 0x1000
)

// Field descriptor flag bits.
const (
	FlagBooleanValue uint32 = 0x80000000
	FlagOutputOnly   uint32 = 0x40000000
)

// Options (fixed-frame) layout.
const (
	OptionsHeaderSize            = 14
	OptionsSegmentDescriptorSize = 11
	OptionsFieldDescriptorSize   = 11
	OptionsRepeatRecordSize      = 9
	OptionsRepeatTokenSize       = 8
)

// RRSF layout.
const (
	RRSFHeaderSize     = 212
	RRSFNodeRecordSize = 165
)

// RRSF bit flags.
const (
	RRSFFullCommunication uint32 = 0x80000000
	RRSFAutodirect        uint32 = 0x40000000
	RRSFAutoApplication   uint32 = 0x20000000
	RRSFAutoPasswords     uint32 = 0x10000000
	RRSFTraceAPPC         uint32 = 0x08000000
	RRSFTraceImage        uint32 = 0x04000000
	RRSFTraceSSL          uint32 = 0x02000000
	RRSFNotEnoughSpace    uint32 = 0x01000000
)

// ResultHeader is the fixed header of a generic extract result.
type ResultHeader struct {
	Eyecatcher        string
	ResultLength      uint32
	Subpool           uint8
	Version           uint8
	ClassName         string
	ProfileNameLength uint32
	Volume            string
	Flags             uint32
	SegmentCount      uint32
}

func readResultHeader(r Reader) (ResultHeader, error) {
	if _, err := r.View(0, GenericHeaderSize); err != nil {
		return ResultHeader{}, err
	}
	var h ResultHeader
	h.Eyecatcher, _ = r.String(0, 4)
	h.ResultLength, _ = r.Uint32(4)
	h.Subpool, _ = r.Uint8(8)
	h.Version, _ = r.Uint8(9)
	h.ClassName, _ = r.String(12, 8)
	h.ProfileNameLength, _ = r.Uint32(20)
	h.Volume, _ = r.String(26, 6)
	h.Flags, _ = r.Uint32(36)
	h.SegmentCount, _ = r.Uint32(40)
	return h, nil
}

// SegmentDescriptor describes one segment of a generic result.
type SegmentDescriptor struct {
	Name        []byte
	Flags       uint32
	FieldCount  uint32
	FieldOffset uint32
}

func (s SegmentDescriptor) Key() string {
	return ebcdic.DecodeKey(s.Name)
}

func readSegmentDescriptor(r Reader, off int) (SegmentDescriptor, error) {
	b, err := r.View(off, SegmentDescriptorSize)
	if err != nil {
		return SegmentDescriptor{}, err
	}
	d := NewReader(b)
	var s SegmentDescriptor
	s.Name, _ = d.View(0, NameSize)
	s.Flags, _ = d.Uint32(8)
	s.FieldCount, _ = d.Uint32(12)
	s.FieldOffset, _ = d.Uint32(20)
	return s, nil
}

// FieldDescriptor describes one field of a generic result. The two trailing
// words mean length/offset for data fields and group count/elements per
// group for repeat headers; use the accessors matching IsRepeatHeader.
type FieldDescriptor struct {
	Name  []byte
	Type  uint16
	Flags uint32
	word1 uint32
	word2 uint32
}

func (f FieldDescriptor) Key() string {
	return ebcdic.DecodeKey(f.Name)
}

func (f FieldDescriptor) IsRepeatHeader() bool { return f.Type&TypeRepeatHeader != 0 }
func (f FieldDescriptor) IsMember() bool       { return f.Type&TypeMember != 0 }
func (f FieldDescriptor) IsBoolean() bool      { return f.Type&TypeBoolean != 0 }
func (f FieldDescriptor) BooleanValue() bool   { return f.Flags&FlagBooleanValue != 0 }
func (f FieldDescriptor) OutputOnly() bool     { return f.Flags&FlagOutputOnly != 0 }

// DataLength is meaningful only when IsRepeatHeader is false.
func (f FieldDescriptor) DataLength() uint32 { return f.word1 }

// DataOffset is meaningful only when IsRepeatHeader is false.
func (f FieldDescriptor) DataOffset() uint32 { return f.word2 }

// RepeatGroupCount is meaningful only when IsRepeatHeader is true.
func (f FieldDescriptor) RepeatGroupCount() uint32 { return f.word1 }

// ElementsPerGroup is meaningful only when IsRepeatHeader is true.
func (f FieldDescriptor) ElementsPerGroup() uint32 { return f.word2 }

func readFieldDescriptor(r Reader, off int) (FieldDescriptor, error) {
	b, err := r.View(off, FieldDescriptorSize)
	if err != nil {
		return FieldDescriptor{}, err
	}
	d := NewReader(b)
	var f FieldDescriptor
	f.Name, _ = d.View(0, NameSize)
	f.Type, _ = d.Uint16(8)
	f.Flags, _ = d.Uint32(12)
	f.word1, _ = d.Uint32(16)
	f.word2, _ = d.Uint32(24)
	return f, nil
}
