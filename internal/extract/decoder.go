package extract

import (
	"encoding/hex"

	"github.com/rs/zerolog/log"

	"github.com/Mainframe-Renewal-Project/sear/internal/document"
	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

// Stats counts what a single decode produced.
type Stats struct {
	Segments     int
	Fields       int
	Experimental int
	RepeatGroups int
}

// Result is a fully decoded extract.
type Result struct {
	AdminType keymap.AdminType
	Document  *document.Document
	// Header and ProfileName are set for generic results only.
	Header      *ResultHeader
	ProfileName string
	Stats       Stats
}

// Decoder routes a raw result to the walker for its admin type.
type Decoder struct {
	Keys *keymap.Registry
}

// NewDecoder uses the embedded key tables when keys is nil.
func NewDecoder(keys *keymap.Registry) *Decoder {
	if keys == nil {
		keys = keymap.Default()
	}
	return &Decoder{Keys: keys}
}

func (d *Decoder) Decode(at keymap.AdminType, buf []byte) (*Result, error) {
	if e := log.Debug(); e.Enabled() {
		e.Str("admin_type", string(at)).
			Int("bytes", len(buf)).
			Str("dump", hex.Dump(buf)).
			Msg("raw extract result")
	}
	keys := d.Keys
	if keys == nil {
		keys = keymap.Default()
	}
	switch at {
	case keymap.AdminRACFOptions:
		return DecodeOptions(keys, buf)
	case keymap.AdminRACFRRSF:
		return DecodeRRSF(keys, buf)
	default:
		return DecodeGeneric(keys, at, buf)
	}
}

// Search decodes found profile names; see DecodeSearch.
func (d *Decoder) Search(found []OwnedBuffer) *document.Document {
	return DecodeSearch(found)
}
