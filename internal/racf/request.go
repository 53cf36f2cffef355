package racf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

var ErrInvalidRequest = errors.New("racf: invalid request")

type Operation string

const (
	OpExtract Operation = "extract"
	OpSearch  Operation = "search"
)

// Request is one extract or search against the security database.
type Request struct {
	Operation   Operation        `json:"operation"`
	AdminType   keymap.AdminType `json:"admin_type"`
	ProfileName string           `json:"profile_name,omitempty"`
	ClassName   string           `json:"class_name,omitempty"`
	Group       string           `json:"group,omitempty"`
	Volume      string           `json:"volume,omitempty"`
	Generic     bool             `json:"generic,omitempty"`
	// Filter narrows a search to profiles matching the mask.
	Filter string `json:"resource_filter,omitempty"`
}

// Normalize trims and upper-cases names and defaults the operation to
// extract. Admin type aliases are folded to their canonical spelling.
func (r Request) Normalize() Request {
	out := r
	out.Operation = Operation(strings.ToLower(strings.TrimSpace(string(r.Operation))))
	if out.Operation == "" {
		out.Operation = OpExtract
	}
	if at, err := keymap.ParseAdminType(string(r.AdminType)); err == nil {
		out.AdminType = at
	}
	out.ProfileName = strings.ToUpper(strings.TrimSpace(r.ProfileName))
	out.ClassName = strings.ToUpper(strings.TrimSpace(r.ClassName))
	out.Group = strings.ToUpper(strings.TrimSpace(r.Group))
	out.Volume = strings.ToUpper(strings.TrimSpace(r.Volume))
	out.Filter = strings.ToUpper(strings.TrimSpace(r.Filter))
	return out
}

func (r Request) Validate() error {
	if r.AdminType == "" {
		return fmt.Errorf("%w: admin_type is required", ErrInvalidRequest)
	}
	if _, ok := ExtractFunction(r.AdminType); !ok {
		return fmt.Errorf("%w: unknown admin_type %q", ErrInvalidRequest, r.AdminType)
	}

	switch r.Operation {
	case OpExtract:
		if profileBased(r.AdminType) && r.ProfileName == "" {
			return fmt.Errorf("%w: profile_name is required to extract %s", ErrInvalidRequest, r.AdminType)
		}
		if r.Filter != "" {
			return fmt.Errorf("%w: resource_filter only applies to search", ErrInvalidRequest)
		}
	case OpSearch:
		if _, ok := NextFunction(r.AdminType); !ok {
			return fmt.Errorf("%w: %s does not support search", ErrInvalidRequest, r.AdminType)
		}
		if limit, ok := maxProfileName[r.AdminType]; ok && len(r.Filter) > limit {
			return fmt.Errorf("%w: resource_filter longer than %d characters", ErrInvalidRequest, limit)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidRequest, r.Operation)
	}

	if limit, ok := maxProfileName[r.AdminType]; ok && len(r.ProfileName) > limit {
		return fmt.Errorf("%w: profile_name longer than %d characters", ErrInvalidRequest, limit)
	}
	if r.AdminType == keymap.AdminResource && r.ClassName == "" {
		return fmt.Errorf("%w: class_name is required for resource", ErrInvalidRequest)
	}
	if len(r.ClassName) > 8 {
		return fmt.Errorf("%w: class_name longer than 8 characters", ErrInvalidRequest)
	}
	if r.AdminType == keymap.AdminGroupConnection && r.Group == "" {
		return fmt.Errorf("%w: group is required for group-connection", ErrInvalidRequest)
	}
	if len(r.Group) > 8 {
		return fmt.Errorf("%w: group longer than 8 characters", ErrInvalidRequest)
	}
	if len(r.Volume) > 6 {
		return fmt.Errorf("%w: volume longer than 6 characters", ErrInvalidRequest)
	}
	return nil
}
