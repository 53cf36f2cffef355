package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
	"github.com/Mainframe-Renewal-Project/sear/internal/racf"
)

var ErrNoCapture = errors.New("capture: no capture for request")

// Replayer answers native calls from a manifest.
type Replayer struct {
	Manifest *Manifest
}

func NewReplayer(m *Manifest) *Replayer {
	return &Replayer{Manifest: m}
}

func (r *Replayer) Call(ctx context.Context, call racf.NativeCall) (racf.NativeResponse, error) {
	if err := ctx.Err(); err != nil {
		return racf.NativeResponse{}, err
	}
	e, ok := r.Manifest.Lookup(call)
	if !ok {
		return racf.NativeResponse{}, fmt.Errorf("%w: %s %s %q", ErrNoCapture, call.Function, call.AdminType, call.ProfileName)
	}
	resp := racf.NativeResponse{Codes: racf.ReturnCodes{
		SAFReturnCode:  e.SAFRC,
		RACFReturnCode: e.RACFRC,
		RACFReasonCode: e.RACFRsn,
	}}
	log.Debug().
		Str("request_id", call.RequestID).
		Str("function", call.Function.String()).
		Str("file", e.File).
		Msg("replay capture")

	for _, name := range e.Found {
		enc, err := ebcdic.Encode(name)
		if err != nil {
			return racf.NativeResponse{}, fmt.Errorf("capture: found name %q: %w", name, err)
		}
		resp.Found = append(resp.Found, racf.NewBuffer(append(enc, 0x00)))
	}
	if e.File == "" {
		return resp, nil
	}

	c, err := Open(r.Manifest.Path(e))
	if err != nil {
		return racf.NativeResponse{}, err
	}
	defer c.Close()
	// the caller keeps the buffer after the mapping is gone
	resp.Buffer = append([]byte(nil), c.Bytes()...)
	return resp, nil
}

var _ racf.Caller = (*Replayer)(nil)
