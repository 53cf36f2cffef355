package keymap

import (
	"strings"

	"github.com/Mainframe-Renewal-Project/sear/internal/ebcdic"
)

// ExperimentalPrefix marks keys of fields that have no table entry.
const ExperimentalPrefix = "experimental:"

// Resolution is the semantic name and value type of one raw field.
type Resolution struct {
	Key  string
	Type TraitType
	// Experimental is set when no table entry exists.
	Experimental bool
	// Derived is set when the key was built from the segment and raw name.
	Derived bool
}

// ResolveField names a field from its raw 8-byte EBCDIC identifier.
func (r *Registry) ResolveField(at AdminType, segment string, raw []byte) Resolution {
	return r.ResolveKey(at, segment, ebcdic.DecodeKey(raw))
}

// ResolveKey names a field from its decoded, lower-cased raw name.
// It never fails: unmapped fields resolve to an experimental string key.
func (r *Registry) ResolveKey(at AdminType, segment, rawKey string) Resolution {
	seg, ok := r.Segment(at, segment)
	if !ok {
		return experimental(rawKey)
	}
	trait, ok := seg.lookup(rawKey)
	if !ok {
		return experimental(rawKey)
	}
	if trait.Key == "" || strings.HasSuffix(trait.Key, WildcardRaw) {
		return Resolution{Key: segment + ":" + rawKey, Type: trait.Type, Derived: true}
	}
	return Resolution{Key: trait.Key, Type: trait.Type}
}

func experimental(rawKey string) Resolution {
	return Resolution{Key: ExperimentalPrefix + rawKey, Type: TraitString, Experimental: true}
}
