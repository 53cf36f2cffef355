package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

// DecodeGeneric walks a generic segment/field descriptor result.
func DecodeGeneric(keys *keymap.Registry, at keymap.AdminType, buf []byte) (*Result, error) {
	w := genericWalker{
		keys: keys,
		at:   at,
		r:    NewReader(buf),
		doc:  document.New(),
	}
	return w.walk()
}

type genericWalker struct {
	keys  *keymap.Registry
	at    keymap.AdminType
	r     Reader
	doc   *document.Document
	stats Stats
}

func (w *genericWalker) fail(segment, field string, off uint64, err error) error {
	return &DecodeError{AdminType: w.at, Segment: segment, Field: field, Offset: clampInt(off), Err: err}
}

func (w *genericWalker) walk() (*Result, error) {
	h, err := readResultHeader(w.r)
	if err != nil {
		return nil, w.fail("", "", 0, err)
	}
	name, err := w.r.View64(GenericHeaderSize, uint64(h.ProfileNameLength))
	if err != nil {
		return nil, w.fail("", "", GenericHeaderSize, err)
	}

	off := uint64(GenericHeaderSize) + uint64(h.ProfileNameLength)
	if _, err := w.r.View64(off, uint64(h.SegmentCount)*SegmentDescriptorSize); err != nil {
		return nil, w.fail("", "", off, err)
	}
	for i := uint32(0); i < h.SegmentCount; i++ {
		sd, err := readSegmentDescriptor(w.r, int(off))
		if err != nil {
			return nil, w.fail("", "", off, err)
		}
		if err := w.segment(sd); err != nil {
			return nil, err
		}
		off += SegmentDescriptorSize
	}

	return &Result{
		AdminType:   w.at,
		Document:    w.doc,
		Header:      &h,
		ProfileName: ebcdic.Decode(name),
		Stats:       w.stats,
	}, nil
}

func (w *genericWalker) segment(sd SegmentDescriptor) error {
	seg := sd.Key()
	obj := w.doc.Segment(seg)
	w.stats.Segments++
	log.Debug().
		Str("admin_type", string(w.at)).
		Str("segment", seg).
		Uint32("fields", sd.FieldCount).
		Uint32("offset", sd.FieldOffset).
		Msg("decode segment")

	cursor := uint64(sd.FieldOffset)
	for j := uint32(0); j < sd.FieldCount; j++ {
		fd, err := w.descriptor(cursor)
		if err != nil {
			return w.fail(seg, "", cursor, err)
		}
		cursor += FieldDescriptorSize

		if fd.IsRepeatHeader() {
			span, err := w.repeat(seg, obj, fd, cursor)
			if err != nil {
				return err
			}
			cursor += span
			continue
		}

		res := w.resolve(seg, fd)
		v, err := w.scalar(fd, res)
		if err != nil {
			return w.fail(seg, res.Key, cursor-FieldDescriptorSize, err)
		}
		obj.Set(res.Key, v)
	}
	return nil
}

// repeat decodes the groups that follow a repeat header and returns the
// number of descriptor bytes they occupy.
func (w *genericWalker) repeat(seg string, obj *document.Object, hdr FieldDescriptor, cursor uint64) (uint64, error) {
	res := w.resolve(seg, hdr)
	groups := uint64(hdr.RepeatGroupCount())
	elems := uint64(hdr.ElementsPerGroup())

	// Every group, even an empty one, must fit in the buffer.
	limit := uint64(w.r.Len()) / FieldDescriptorSize
	if groups > limit || (elems != 0 && groups > limit/elems) {
		err := boundsError{Offset: clampInt(cursor), Size: clampInt(groups * elems), Len: w.r.Len()}
		return 0, w.fail(seg, res.Key, cursor, err)
	}
	span := groups * elems * FieldDescriptorSize
	if _, err := w.r.View64(cursor, span); err != nil {
		return 0, w.fail(seg, res.Key, cursor, err)
	}

	list := []*document.Object{}
	for g := uint64(0); g < groups; g++ {
		item := document.NewObject()
		for e := uint64(0); e < elems; e++ {
			fd, err := w.descriptor(cursor)
			if err != nil {
				return 0, w.fail(seg, res.Key, cursor, err)
			}
			if fd.IsRepeatHeader() {
				return 0, w.fail(seg, res.Key, cursor, ErrNestedRepeat)
			}
			mres := w.resolve(seg, fd)
			v, err := w.scalar(fd, mres)
			if err != nil {
				return 0, w.fail(seg, mres.Key, cursor, err)
			}
			item.Set(mres.Key, v)
			cursor += FieldDescriptorSize
		}
		list = append(list, item)
	}
	obj.Set(res.Key, list)
	w.stats.RepeatGroups++
	return span, nil
}

func (w *genericWalker) descriptor(off uint64) (FieldDescriptor, error) {
	if _, err := w.r.View64(off, FieldDescriptorSize); err != nil {
		return FieldDescriptor{}, err
	}
	return readFieldDescriptor(w.r, int(off))
}

func (w *genericWalker) resolve(seg string, fd FieldDescriptor) keymap.Resolution {
	res := w.keys.ResolveField(w.at, seg, fd.Name)
	if res.Experimental {
		w.stats.Experimental++
	}
	return res
}

func (w *genericWalker) scalar(fd FieldDescriptor, res keymap.Resolution) (any, error) {
	w.stats.Fields++
	if fd.IsBoolean() {
		return fd.BooleanValue(), nil
	}
	b, err := w.r.View64(uint64(fd.DataOffset()), uint64(fd.DataLength()))
	if err != nil {
		return nil, err
	}
	return typedValue(ebcdic.Decode(b), res.Type)
}

// typedValue converts a decoded string to the value type of its trait.
// Empty strings are null regardless of trait.
func typedValue(s string, t keymap.TraitType) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch t {
	case keymap.TraitUint:
		return parseUint(s)
	case keymap.TraitPseudoBoolean:
		return s == "YES", nil
	}
	return s, nil
}

func parseUint(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimLeft(s, " "), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return n, nil
}
