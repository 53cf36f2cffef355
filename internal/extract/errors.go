package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
)

var (
	ErrMalformedBuffer   = errors.New("extract: malformed buffer")
	ErrOutOfBounds       = errors.New("extract: read outside buffer")
	ErrNotNumeric        = errors.New("extract: non-numeric value for uint trait")
	ErrInsufficientSpace = errors.New("extract: not enough memory to extract RRSF settings")
	ErrNestedRepeat      = errors.New("extract: repeat header inside repeat group")
)

// DecodeError carries the location of a malformed-buffer failure.
// errors.Is(err, ErrMalformedBuffer) holds for every DecodeError.
type DecodeError struct {
	AdminType keymap.AdminType
	Segment   string
	Field     string
	Offset    int
	Err       error
}

func (e *DecodeError) Error() string {
	parts := []string{fmt.Sprintf("admin_type=%s", e.AdminType)}
	if e.Segment != "" {
		parts = append(parts, "segment="+e.Segment)
	}
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	parts = append(parts, fmt.Sprintf("offset=%d", e.Offset))
	return fmt.Sprintf("%s: %s: %v", ErrMalformedBuffer, strings.Join(parts, " "), e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformedBuffer, e.Err}
}

// boundsError describes a rejected read.
type boundsError struct {
	Offset int
	Size   int
	Len    int
}

func (e boundsError) Error() string {
	return fmt.Sprintf("%s: offset=%d size=%d buffer=%d", ErrOutOfBounds, e.Offset, e.Size, e.Len)
}

func (e boundsError) Unwrap() error {
	return ErrOutOfBounds
}
