package extract

import (
	"github.com/rs/zerolog/log"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

// DecodeOptions walks a fixed-frame racf-options result. Field data sits
// inline after each field descriptor.
func DecodeOptions(keys *keymap.Registry, buf []byte) (*Result, error) {
	at := keymap.AdminRACFOptions
	r := NewReader(buf)
	fail := func(segment, field string, off int, err error) error {
		return &DecodeError{AdminType: at, Segment: segment, Field: field, Offset: off, Err: err}
	}

	if _, err := r.View(0, OptionsHeaderSize); err != nil {
		return nil, fail("", "", 0, err)
	}
	segments, _ := r.Uint16(12)

	doc := document.New()
	var stats Stats
	cursor := OptionsHeaderSize
	for s := uint16(0); s < segments; s++ {
		sb, err := r.View(cursor, OptionsSegmentDescriptorSize)
		if err != nil {
			return nil, fail("", "", cursor, err)
		}
		sd := NewReader(sb)
		nameb, _ := sd.View(0, NameSize)
		count, _ := sd.Uint16(9)
		seg := ebcdic.DecodeKey(nameb)
		obj := doc.Segment(seg)
		stats.Segments++
		cursor += OptionsSegmentDescriptorSize
		log.Debug().Str("admin_type", string(at)).Str("segment", seg).Uint16("fields", count).Msg("decode segment")

		for i := uint16(0); i < count; i++ {
			fb, err := r.View(cursor, OptionsFieldDescriptorSize)
			if err != nil {
				return nil, fail(seg, "", cursor, err)
			}
			fd := NewReader(fb)
			fname, _ := fd.View(0, NameSize)
			flag, _ := fd.Uint8(8)
			length, _ := fd.Uint16(9)

			res := keys.ResolveField(at, seg, fname)
			if res.Experimental {
				stats.Experimental++
			}
			payload, err := r.View(cursor+OptionsFieldDescriptorSize, int(length))
			if err != nil {
				return nil, fail(seg, res.Key, cursor, err)
			}
			v, err := optionsValue(res.Type, flag, payload)
			if err != nil {
				return nil, fail(seg, res.Key, cursor, err)
			}
			obj.Set(res.Key, v)
			stats.Fields++
			cursor += OptionsFieldDescriptorSize + int(length)
		}
	}

	return &Result{AdminType: at, Document: doc, Stats: stats}, nil
}

func optionsValue(t keymap.TraitType, flag uint8, payload []byte) (any, error) {
	if len(payload) == 0 {
		if t == keymap.TraitBoolean {
			return flag == ebcdic.Yes, nil
		}
		return nil, nil
	}
	if t == keymap.TraitRepeat {
		n := len(payload) / OptionsRepeatRecordSize
		list := make([]string, 0, n)
		for k := 0; k < n; k++ {
			off := k * OptionsRepeatRecordSize
			list = append(list, ebcdic.Decode(payload[off:off+OptionsRepeatTokenSize]))
		}
		return list, nil
	}
	s := ebcdic.Decode(payload)
	if t == keymap.TraitUint {
		if s == "" {
			return nil, nil
		}
		return parseUint(s)
	}
	return s, nil
}
