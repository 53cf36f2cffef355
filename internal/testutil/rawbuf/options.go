package rawbuf

import (
	"encoding/binary"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

const (
	optionsHeaderLen = 14
	optionsDescLen   = 11
	optionsRecordLen = 9
)

// OptionField is one fixed-frame field with inline data.
type OptionField struct {
	Name string
	Flag byte
	Data []byte
}

func OptStr(name, text string) OptionField {
	return OptionField{Name: name, Data: mustEncode(text)}
}

// OptList packs tokens into 9-byte repeat records.
func OptList(name string, tokens ...string) OptionField {
	data := make([]byte, 0, len(tokens)*optionsRecordLen)
	for _, tok := range tokens {
		data = append(data, ebcdic.MustEncodePadded(tok, 8)...)
		data = append(data, ebcdic.Blank)
	}
	return OptionField{Name: name, Data: data}
}

// OptFlag is a zero-length field carrying its value in the flag byte.
func OptFlag(name string, on bool) OptionField {
	flag := byte(0xD5) // EBCDIC 'N'
	if on {
		flag = ebcdic.Yes
	}
	return OptionField{Name: name, Flag: flag}
}

type OptionSegment struct {
	Name   string
	Fields []OptionField
}

// Options is a racf-options extract result.
type Options struct {
	Segments []OptionSegment
}

func (o Options) Bytes() []byte {
	out := make([]byte, optionsHeaderLen)
	copy(out[0:4], mustEncode("RCXP"))
	binary.BigEndian.PutUint16(out[12:14], uint16(len(o.Segments)))
	for _, seg := range o.Segments {
		s := make([]byte, optionsDescLen)
		copy(s[0:8], ebcdic.MustEncodePadded(seg.Name, 8))
		binary.BigEndian.PutUint16(s[9:11], uint16(len(seg.Fields)))
		out = append(out, s...)
		for _, f := range seg.Fields {
			d := make([]byte, optionsDescLen)
			copy(d[0:8], ebcdic.MustEncodePadded(f.Name, 8))
			d[8] = f.Flag
			binary.BigEndian.PutUint16(d[9:11], uint16(len(f.Data)))
			out = append(out, d...)
			out = append(out, f.Data...)
		}
	}
	binary.BigEndian.PutUint32(out[4:8], uint32(len(out)))
	return out
}
