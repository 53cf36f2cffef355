// Package keymap owns the static trait tables that name extracted fields.
//
// Ownership boundary:
// - admin type and trait type vocabulary
// - per admin type, per segment mapping of raw RACF field names to traits
// - key resolution, including the experimental fallback for unmapped fields
//
// Tables are parsed once from TOML and never mutated afterwards, so a
// Registry is safe to share between concurrent decodes.
package keymap

import (
	"fmt"
	"strings"
)

// AdminType names the kind of profile an extract targets.
type AdminType string

const (
	AdminUser            AdminType = "user"
	AdminGroup           AdminType = "group"
	AdminGroupConnection AdminType = "group-connection"
	AdminResource        AdminType = "resource"
	AdminDataset         AdminType = "dataset"
	AdminRACFOptions     AdminType = "racf-options"
	AdminRACFRRSF        AdminType = "racf-rrsf"
)

// AdminTypes lists every admin type in a stable order.
var AdminTypes = []AdminType{
	AdminUser,
	AdminGroup,
	AdminGroupConnection,
	AdminResource,
	AdminDataset,
	AdminRACFOptions,
	AdminRACFRRSF,
}

// ParseAdminType accepts the canonical spelling plus a few common aliases.
func ParseAdminType(raw string) (AdminType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", "-")
	switch s {
	case "data-set":
		s = string(AdminDataset)
	case "connection":
		s = string(AdminGroupConnection)
	case "setropts":
		s = string(AdminRACFOptions)
	case "rrsf":
		s = string(AdminRACFRRSF)
	}
	for _, at := range AdminTypes {
		if string(at) == s {
			return at, nil
		}
	}
	return "", fmt.Errorf("keymap: unknown admin type %q", raw)
}

// TraitType selects how a field's raw bytes become a document value.
type TraitType uint8

const (
	TraitString TraitType = iota
	TraitUint
	TraitBoolean
	TraitPseudoBoolean
	TraitRepeat
)

func (t TraitType) String() string {
	switch t {
	case TraitString:
		return "string"
	case TraitUint:
		return "uint"
	case TraitBoolean:
		return "boolean"
	case TraitPseudoBoolean:
		return "pseudo_boolean"
	case TraitRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("trait(%d)", uint8(t))
	}
}

func parseTraitType(raw string) (TraitType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "string", "":
		return TraitString, nil
	case "uint":
		return TraitUint, nil
	case "boolean":
		return TraitBoolean, nil
	case "pseudo_boolean":
		return TraitPseudoBoolean, nil
	case "repeat":
		return TraitRepeat, nil
	default:
		return 0, fmt.Errorf("keymap: unknown trait type %q", raw)
	}
}

// Operator is an alter-direction operation a trait accepts.
type Operator string

const (
	OpSet    Operator = "set"
	OpAdd    Operator = "add"
	OpRemove Operator = "remove"
	OpDelete Operator = "delete"
)

// Trait is one row of a segment table.
type Trait struct {
	Raw       string
	Key       string
	Type      TraitType
	Operators []Operator
}

// ExtractOnly reports whether the trait accepts no alter operators.
func (t Trait) ExtractOnly() bool {
	return len(t.Operators) == 0
}

// Segment is the ordered trait table of one profile segment.
type Segment struct {
	Name   string
	Traits []Trait

	byRaw    map[string]int
	wildcard int
}

func (s *Segment) lookup(raw string) (Trait, bool) {
	if i, ok := s.byRaw[raw]; ok {
		return s.Traits[i], true
	}
	if s.wildcard >= 0 {
		return s.Traits[s.wildcard], true
	}
	return Trait{}, false
}
