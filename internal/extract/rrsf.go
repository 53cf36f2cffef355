package extract

import (
	"fmt"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

// rrsfSegment is the keymap segment of the RRSF record; the document
// carries it as rrsfDocumentSegment.
const (
	rrsfSegment         = "base"
	rrsfDocumentSegment = "rrsf:base"
)

var rrsfFlagFields = []struct {
	raw string
	bit uint32
}{
	{"fullcomm", RRSFFullCommunication},
	{"autodir", RRSFAutodirect},
	{"autoapp", RRSFAutoApplication},
	{"autopwd", RRSFAutoPasswords},
	{"trcappc", RRSFTraceAPPC},
	{"trcimage", RRSFTraceImage},
	{"trcssl", RRSFTraceSSL},
}

// fixed-width character fields of a node record
var rrsfNodeText = []struct {
	raw  string
	off  int
	size int
}{
	{"rcvdate", 22, 8},
	{"rcvtime", 30, 8},
	{"sntdate", 38, 8},
	{"snttime", 46, 8},
}

// DecodeRRSF extracts the fixed-offset RRSF subsystem record and its node
// table. A result flagged as truncated by the service yields
// ErrInsufficientSpace before any document is built.
func DecodeRRSF(keys *keymap.Registry, buf []byte) (*Result, error) {
	at := keymap.AdminRACFRRSF
	r := NewReader(buf)
	fail := func(field string, off int, err error) error {
		return &DecodeError{AdminType: at, Segment: rrsfDocumentSegment, Field: field, Offset: off, Err: err}
	}

	if _, err := r.View(0, RRSFHeaderSize); err != nil {
		return nil, fail("", 0, err)
	}
	flags, _ := r.Uint32(12)
	if flags&RRSFNotEnoughSpace != 0 {
		return nil, fmt.Errorf("%w: bit_flags=0x%08x", ErrInsufficientSpace, flags)
	}

	nodeCount, _ := r.Uint32(144)
	if _, err := r.View64(RRSFHeaderSize, uint64(nodeCount)*RRSFNodeRecordSize); err != nil {
		return nil, fail("nodes", RRSFHeaderSize, err)
	}

	var stats Stats
	resolve := func(raw string) keymap.Resolution {
		res := keys.ResolveKey(at, rrsfSegment, raw)
		if res.Experimental {
			stats.Experimental++
		}
		stats.Fields++
		return res
	}
	text := func(obj *document.Object, raw string, off, size int) error {
		res := resolve(raw)
		s, err := r.String(off, size)
		if err != nil {
			return fail(res.Key, off, err)
		}
		v, err := typedValue(s, res.Type)
		if err != nil {
			return fail(res.Key, off, err)
		}
		obj.Set(res.Key, v)
		return nil
	}

	doc := document.New()
	base := doc.Segment(rrsfDocumentSegment)
	stats.Segments++

	if err := text(base, "subsysnm", 148, 4); err != nil {
		return nil, err
	}
	if err := text(base, "subsysid", 152, 8); err != nil {
		return nil, err
	}
	if err := text(base, "prefix", 16, 8); err != nil {
		return nil, err
	}
	nodeIndex, _ := r.Uint32(24)
	base.Set(resolve("nodecnt").Key, int64(nodeCount))
	base.Set(resolve("nodeidx").Key, int64(nodeIndex))
	for _, f := range rrsfFlagFields {
		base.Set(resolve(f.raw).Key, flags&f.bit != 0)
	}

	if nodeCount == 0 {
		return &Result{AdminType: at, Document: doc, Stats: stats}, nil
	}

	nodes := make([]*document.Object, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		off := RRSFHeaderSize + int(i)*RRSFNodeRecordSize
		node := document.NewObject()
		if err := text(node, "nodename", off, 8); err != nil {
			return nil, err
		}
		if err := text(node, "sysname", off+8, 8); err != nil {
			return nil, err
		}
		protocol, _ := r.Uint8(off + 16)
		state, _ := r.Uint8(off + 17)
		node.Set(resolve("protocol").Key, rrsfProtocol(protocol))
		node.Set(resolve("state").Key, int64(state))
		for _, f := range rrsfNodeText {
			if err := text(node, f.raw, off+f.off, f.size); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, node)
	}
	base.Set(resolve("nodes").Key, nodes)
	stats.RepeatGroups++

	return &Result{AdminType: at, Document: doc, Stats: stats}, nil
}

func rrsfProtocol(code uint8) string {
	switch code {
	case 1:
		return "appc"
	case 2:
		return "tcp"
	default:
		return "none"
	}
}
