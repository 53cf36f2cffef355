package racf

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
	"github.com/Mainframe-Renewal-Project/sear/internal/extract"
	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/rawbuf"
	"github.com/Mainframe-Renewal-Project/sear/internal/testutil/testlog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func userBuffer() []byte {
	return rawbuf.Generic{
		ProfileName: "IBMUSER",
		Segments: []rawbuf.Segment{{Name: "BASE", Fields: []rawbuf.Field{
			rawbuf.Str("NAME", "JOE"),
			rawbuf.Str("ZZNEW", "X"),
		}}},
	}.Bytes()
}

func fixedCaller(resp NativeResponse, err error, seen *NativeCall) Caller {
	return CallerFunc(func(ctx context.Context, call NativeCall) (NativeResponse, error) {
		if seen != nil {
			*seen = call
		}
		return resp, err
	})
}

func TestServiceExtract(t *testing.T) {
	testlog.Start(t)
	var seen NativeCall
	svc := NewService(fixedCaller(NativeResponse{Buffer: userBuffer()}, nil, &seen), nil)

	res := svc.Do(context.Background(), Request{AdminType: "user", ProfileName: "ibmuser"})
	require.Empty(t, res.Errors)
	require.Equal(t, SEAROK, res.ReturnCodes.SEARReturnCode)
	require.NotNil(t, res.Document)
	require.Len(t, res.Digest, 64)
	require.NotEmpty(t, res.RequestID)

	v, ok := res.Document.Lookup("base", "base:name")
	require.True(t, ok)
	require.Equal(t, "JOE", v)

	require.Equal(t, FuncUserExtract, seen.Function)
	require.Equal(t, "IBMUSER", seen.ProfileName)
	require.Equal(t, res.RequestID, seen.RequestID)
}

func TestServiceRejectsInvalidRequest(t *testing.T) {
	testlog.Start(t)
	var calls atomic.Int32
	svc := NewService(CallerFunc(func(context.Context, NativeCall) (NativeResponse, error) {
		calls.Add(1)
		return NativeResponse{}, nil
	}), nil)

	res := svc.Do(context.Background(), Request{AdminType: "resource", ProfileName: "X"})
	require.Equal(t, SEARInvalidRequest, res.ReturnCodes.SEARReturnCode)
	require.Nil(t, res.Document)
	require.Len(t, res.Errors, 1)
	require.Zero(t, calls.Load())
}

func TestServiceNativeFailure(t *testing.T) {
	testlog.Start(t)
	found := NewBuffer([]byte{0xC1})
	codes := ReturnCodes{SAFReturnCode: 8, RACFReturnCode: 8, RACFReasonCode: 16}
	svc := NewService(fixedCaller(NativeResponse{Codes: codes, Found: []extract.OwnedBuffer{found}}, nil, nil), nil)

	res := svc.Do(context.Background(), Request{Operation: OpSearch, AdminType: "user"})
	require.Equal(t, SEARFailed, res.ReturnCodes.SEARReturnCode)
	require.Equal(t, 8, res.ReturnCodes.SAFReturnCode)
	require.Equal(t, 16, res.ReturnCodes.RACFReasonCode)
	require.Nil(t, res.Document)
	require.True(t, found.Released())
	require.True(t, strings.Contains(res.Errors[0], "racf_rsn=16"), res.Errors[0])

	svc = NewService(fixedCaller(NativeResponse{}, context.DeadlineExceeded, nil), nil)
	res = svc.Do(context.Background(), Request{AdminType: "user", ProfileName: "IBMUSER"})
	require.Equal(t, SEARFailed, res.ReturnCodes.SEARReturnCode)
}

func TestServiceDecodeFailures(t *testing.T) {
	testlog.Start(t)
	truncated := rawbuf.RRSF{Flags: rawbuf.RRSFNotEnoughSpace}.Bytes()
	svc := NewService(fixedCaller(NativeResponse{Buffer: truncated}, nil, nil), nil)
	res := svc.Do(context.Background(), Request{AdminType: "racf-rrsf"})
	require.Equal(t, SEARFailed, res.ReturnCodes.SEARReturnCode)
	require.Nil(t, res.Document)
	require.Contains(t, res.Errors[0], "not enough memory")

	buf := userBuffer()
	svc = NewService(fixedCaller(NativeResponse{Buffer: buf[:len(buf)-2]}, nil, nil), nil)
	res = svc.Do(context.Background(), Request{AdminType: "user", ProfileName: "IBMUSER"})
	require.Equal(t, SEARFailed, res.ReturnCodes.SEARReturnCode)
	require.Nil(t, res.Document)
	require.Contains(t, res.Errors[0], extract.ErrMalformedBuffer.Error())
}

func TestServiceSearch(t *testing.T) {
	testlog.Start(t)
	var bufs []*Buffer
	var found []extract.OwnedBuffer
	for _, name := range []string{"IBMUSER", "JOE"} {
		b := NewBuffer(append(ebcdic.MustEncodePadded(name, len(name)), 0x00))
		bufs = append(bufs, b)
		found = append(found, b)
	}
	var seen NativeCall
	svc := NewService(fixedCaller(NativeResponse{Found: found}, nil, &seen), nil)

	res := svc.Do(context.Background(), Request{Operation: "search", AdminType: "user"})
	require.Equal(t, SEAROK, res.ReturnCodes.SEARReturnCode)
	require.Equal(t, FuncUserExtractNext, seen.Function)
	names, ok := res.Document.Profiles()
	require.True(t, ok)
	require.Equal(t, []string{"IBMUSER", "JOE"}, names)
	for _, b := range bufs {
		require.True(t, b.Released())
	}
}

func TestServiceSearchPassesFilter(t *testing.T) {
	testlog.Start(t)
	var seen NativeCall
	svc := NewService(fixedCaller(NativeResponse{}, nil, &seen), nil)

	res := svc.Do(context.Background(), Request{Operation: OpSearch, AdminType: "resource", ClassName: "seartest", Filter: " prof.* "})
	require.Equal(t, SEAROK, res.ReturnCodes.SEARReturnCode)
	require.Equal(t, FuncResourceExtractNxt, seen.Function)
	require.Equal(t, "PROF.*", seen.Filter)
	require.Equal(t, "SEARTEST", seen.ClassName)

	names, err := seen.Encoded()
	require.NoError(t, err)
	require.Equal(t, ebcdic.MustEncodePadded("PROF.*", 6), names.Filter)

	res = svc.Do(context.Background(), Request{AdminType: "user", ProfileName: "IBMUSER", Filter: "IBM*"})
	require.Equal(t, SEARInvalidRequest, res.ReturnCodes.SEARReturnCode)
	require.Contains(t, res.Errors[0], "resource_filter")
}

func TestServiceDoAllKeepsOrder(t *testing.T) {
	testlog.Start(t)
	var inflight, peak atomic.Int32
	caller := CallerFunc(func(ctx context.Context, call NativeCall) (NativeResponse, error) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if call.ProfileName == "FAIL" {
			return NativeResponse{}, errors.New("boom")
		}
		return NativeResponse{Buffer: userBuffer()}, nil
	})
	svc := NewService(caller, nil)

	reqs := []Request{
		{AdminType: "user", ProfileName: "A"},
		{AdminType: "user", ProfileName: "FAIL"},
		{AdminType: "user"},
		{AdminType: "user", ProfileName: "D"},
		{AdminType: "user", ProfileName: "E"},
	}
	results := svc.DoAll(context.Background(), reqs, 2)
	require.Len(t, results, len(reqs))
	require.Equal(t, SEAROK, results[0].ReturnCodes.SEARReturnCode)
	require.Equal(t, SEARFailed, results[1].ReturnCodes.SEARReturnCode)
	require.Equal(t, SEARInvalidRequest, results[2].ReturnCodes.SEARReturnCode)
	require.Equal(t, SEAROK, results[3].ReturnCodes.SEARReturnCode)
	require.LessOrEqual(t, peak.Load(), int32(2))

	ids := map[string]bool{}
	for _, r := range results {
		require.False(t, ids[r.RequestID], "duplicate request id")
		ids[r.RequestID] = true
	}
}

func TestResultObject(t *testing.T) {
	testlog.Start(t)
	svc := NewService(fixedCaller(NativeResponse{Buffer: userBuffer()}, nil, nil), nil)
	res := svc.Do(context.Background(), Request{AdminType: "user", ProfileName: "IBMUSER"})

	obj := res.Object()
	require.Equal(t, []string{"request_id", "return_codes", "raw_result_digest", "result"}, obj.Keys())
	plain := obj.Plain()
	require.Equal(t, int64(0), plain["return_codes"].(map[string]any)["sear_return_code"])
	profile := plain["result"].(map[string]any)["profile"].(map[string]any)
	require.Equal(t, "X", profile["base"].(map[string]any)["experimental:zznew"])
}
