package racf

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/extract"
	"github.com/Mainframe-Renewal-Project/sear/internal/observability"
)

var ErrNativeFailure = errors.New("racf: native service failed")

// Result is the outcome of one request. Document is nil whenever Errors is
// not empty.
type Result struct {
	RequestID   string             `json:"request_id"`
	Document    *document.Document `json:"result,omitempty"`
	ReturnCodes ReturnCodes        `json:"return_codes"`
	Errors      []string           `json:"errors,omitempty"`
	// Digest is the blake3 hash of the raw extract buffer.
	Digest string `json:"raw_result_digest,omitempty"`
}

// Service validates requests, invokes the native service and decodes what
// it returns.
type Service struct {
	caller  Caller
	decoder *extract.Decoder
	newID   func() string
}

// NewService uses the embedded key tables when decoder is nil.
func NewService(caller Caller, decoder *extract.Decoder) *Service {
	if decoder == nil {
		decoder = extract.NewDecoder(nil)
	}
	return &Service{
		caller:  caller,
		decoder: decoder,
		newID:   uuid.NewString,
	}
}

func (s *Service) Do(ctx context.Context, req Request) Result {
	start := time.Now()
	req = req.Normalize()
	res := Result{RequestID: s.newID()}
	at := string(req.AdminType)
	logger := log.With().Str("request_id", res.RequestID).Str("admin_type", at).Str("operation", string(req.Operation)).Logger()

	if err := req.Validate(); err != nil {
		res.ReturnCodes.SEARReturnCode = SEARInvalidRequest
		res.Errors = []string{err.Error()}
		observability.RecordDecode(at, observability.ResultInvalid, 0, time.Since(start))
		logger.Warn().Err(err).Msg("request rejected")
		return res
	}

	call := NativeCall{
		RequestID:   res.RequestID,
		AdminType:   req.AdminType,
		ProfileName: req.ProfileName,
		ClassName:   req.ClassName,
		Group:       req.Group,
		Volume:      req.Volume,
		Generic:     req.Generic,
		Filter:      req.Filter,
	}
	if req.Operation == OpSearch {
		call.Function, _ = NextFunction(req.AdminType)
	} else {
		call.Function, _ = ExtractFunction(req.AdminType)
	}

	resp, err := s.caller.Call(ctx, call)
	res.ReturnCodes = resp.Codes
	if err == nil && !resp.Codes.NativeOK() {
		err = fmt.Errorf("%w: saf_rc=%d racf_rc=%d racf_rsn=%d",
			ErrNativeFailure, resp.Codes.SAFReturnCode, resp.Codes.RACFReturnCode, resp.Codes.RACFReasonCode)
	}
	if err != nil {
		resp.release()
		res.ReturnCodes.SEARReturnCode = SEARFailed
		res.Errors = []string{err.Error()}
		observability.RecordDecode(at, observability.ResultNative, 0, time.Since(start))
		logger.Error().Err(err).Str("function", call.Function.String()).Msg("native call failed")
		return res
	}

	if req.Operation == OpSearch {
		res.Document = s.decoder.Search(resp.Found)
		observability.RecordDecode(at, observability.ResultOK, 0, time.Since(start))
		logger.Info().Int("profiles", len(resp.Found)).Msg("search complete")
		return res
	}

	res.Digest = digest(resp.Buffer)
	decoded, err := s.decoder.Decode(req.AdminType, resp.Buffer)
	if err != nil {
		outcome := observability.ResultMalformed
		if errors.Is(err, extract.ErrInsufficientSpace) {
			outcome = observability.ResultInsufficient
		}
		res.ReturnCodes.SEARReturnCode = SEARFailed
		res.Errors = []string{err.Error()}
		observability.RecordDecode(at, outcome, len(resp.Buffer), time.Since(start))
		logger.Error().Err(err).Str("digest", res.Digest).Int("bytes", len(resp.Buffer)).Msg("decode failed")
		return res
	}

	res.Document = decoded.Document
	res.ReturnCodes.SEARReturnCode = SEAROK
	observability.RecordDecode(at, observability.ResultOK, len(resp.Buffer), time.Since(start))
	observability.RecordExperimental(at, decoded.Stats.Experimental)
	logger.Info().
		Str("digest", res.Digest).
		Int("segments", decoded.Stats.Segments).
		Int("fields", decoded.Stats.Fields).
		Int("experimental", decoded.Stats.Experimental).
		Dur("elapsed", time.Since(start)).
		Msg("extract complete")
	return res
}

func digest(buf []byte) string {
	sum := blake3.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// Object renders the result as an ordered tree for the document encoders.
func (r Result) Object() *document.Object {
	codes := document.NewObject()
	codes.Set("saf_return_code", int64(r.ReturnCodes.SAFReturnCode))
	codes.Set("racf_return_code", int64(r.ReturnCodes.RACFReturnCode))
	codes.Set("racf_reason_code", int64(r.ReturnCodes.RACFReasonCode))
	codes.Set("sear_return_code", int64(r.ReturnCodes.SEARReturnCode))

	out := document.NewObject()
	out.Set("request_id", r.RequestID)
	out.Set("return_codes", codes)
	if r.Digest != "" {
		out.Set("raw_result_digest", r.Digest)
	}
	if len(r.Errors) > 0 {
		out.Set("errors", r.Errors)
	}
	if r.Document != nil {
		out.Set("result", r.Document.Root())
	}
	return out
}
