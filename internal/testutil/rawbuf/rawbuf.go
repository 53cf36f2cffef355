// Package rawbuf builds synthetic R_admin result buffers for tests. The
// builders write the wire layouts independently of the decoder so tests
// cross-check both sides.
package rawbuf

import (
	"encoding/binary"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

const (
	genericHeaderLen = 60
	segmentDescLen   = 40
	fieldDescLen     = 44

	typeMember       uint16 = 0x8000
	typeBoolean      uint16 = 0x2000
	typeRepeatHeader uint16 = 0x1000
	flagBooleanValue uint32 = 0x80000000
)

// Field is one generic field. Groups turns it into a repeat header.
type Field struct {
	Name    string
	Boolean bool
	Value   bool
	Text    string
	Raw     []byte
	Groups  [][]Field
	// Elements overrides the per-group element count of an empty repeat.
	Elements int
}

func Str(name, text string) Field {
	return Field{Name: name, Text: text}
}

func Flag(name string, v bool) Field {
	return Field{Name: name, Boolean: true, Value: v}
}

func Repeat(name string, groups ...[]Field) Field {
	if groups == nil {
		groups = [][]Field{}
	}
	return Field{Name: name, Groups: groups}
}

func (f Field) elements() int {
	if len(f.Groups) > 0 {
		return len(f.Groups[0])
	}
	return f.Elements
}

func (f Field) data() []byte {
	if f.Raw != nil {
		return f.Raw
	}
	return mustEncode(f.Text)
}

type Segment struct {
	Name   string
	Fields []Field
}

// Generic is a generic extract result for user, group, connection,
// resource and data set profiles.
type Generic struct {
	ClassName   string
	ProfileName string
	Volume      string
	Segments    []Segment
}

// SegmentDescriptorOffset is where descriptor i starts in Bytes().
func (g Generic) SegmentDescriptorOffset(i int) int {
	return genericHeaderLen + len(g.ProfileName) + i*segmentDescLen
}

// FieldDescriptorOffset is where the first field descriptor of segment i
// starts in Bytes().
func (g Generic) FieldDescriptorOffset(i int) int {
	off := g.SegmentDescriptorOffset(len(g.Segments))
	for _, seg := range g.Segments[:i] {
		off += countDescriptors(seg.Fields) * fieldDescLen
	}
	return off
}

func countDescriptors(fields []Field) int {
	n := 0
	for _, f := range fields {
		n++
		if f.Groups != nil {
			for _, g := range f.Groups {
				n += len(g)
			}
		}
	}
	return n
}

func (g Generic) Bytes() []byte {
	name := mustEncode(g.ProfileName)
	descStart := g.SegmentDescriptorOffset(len(g.Segments))
	total := 0
	for _, seg := range g.Segments {
		total += countDescriptors(seg.Fields)
	}
	dataStart := descStart + total*fieldDescLen

	var data []byte
	descs := make([]byte, 0, total*fieldDescLen)
	segs := make([]byte, 0, len(g.Segments)*segmentDescLen)
	put := func(f Field, typ uint16) {
		d := make([]byte, fieldDescLen)
		copy(d[0:8], ebcdic.MustEncodePadded(f.Name, 8))
		switch {
		case f.Groups != nil:
			binary.BigEndian.PutUint16(d[8:10], typ|typeRepeatHeader)
			binary.BigEndian.PutUint32(d[16:20], uint32(len(f.Groups)))
			binary.BigEndian.PutUint32(d[24:28], uint32(f.elements()))
		case f.Boolean:
			binary.BigEndian.PutUint16(d[8:10], typ|typeBoolean)
			if f.Value {
				binary.BigEndian.PutUint32(d[12:16], flagBooleanValue)
			}
		default:
			binary.BigEndian.PutUint16(d[8:10], typ)
			v := f.data()
			binary.BigEndian.PutUint32(d[16:20], uint32(len(v)))
			binary.BigEndian.PutUint32(d[24:28], uint32(dataStart+len(data)))
			data = append(data, v...)
		}
		descs = append(descs, d...)
	}

	for _, seg := range g.Segments {
		s := make([]byte, segmentDescLen)
		copy(s[0:8], ebcdic.MustEncodePadded(seg.Name, 8))
		binary.BigEndian.PutUint32(s[12:16], uint32(len(seg.Fields)))
		binary.BigEndian.PutUint32(s[20:24], uint32(descStart+len(descs)))
		segs = append(segs, s...)
		for _, f := range seg.Fields {
			put(f, 0)
			for _, group := range f.Groups {
				for _, m := range group {
					put(m, typeMember)
				}
			}
		}
	}

	out := make([]byte, genericHeaderLen, dataStart+len(data))
	copy(out[0:4], mustEncode("PXTR"))
	binary.BigEndian.PutUint32(out[4:8], uint32(dataStart+len(data)))
	out[9] = 1
	copy(out[12:20], ebcdic.MustEncodePadded(g.ClassName, 8))
	binary.BigEndian.PutUint32(out[20:24], uint32(len(name)))
	copy(out[26:32], ebcdic.MustEncodePadded(g.Volume, 6))
	binary.BigEndian.PutUint32(out[40:44], uint32(len(g.Segments)))
	out = append(out, name...)
	out = append(out, segs...)
	out = append(out, descs...)
	out = append(out, data...)
	return out
}

func mustEncode(s string) []byte {
	b, err := ebcdic.Encode(s)
	if err != nil {
		panic(err)
	}
	return b
}
