// Package ebcdic converts the fixed-length EBCDIC character runs found in
// extract buffers to trimmed UTF-8 strings and back.
//
// All character data uses code page IBM-1047. Runs are C strings: decoding
// stops at the first NUL byte.
package ebcdic

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

const (
	// Blank is the EBCDIC space used to pad character fields.
	Blank byte = 0x40
	// Yes is the EBCDIC 'Y' used by one-byte option flags.
	Yes byte = 0xE8
)

var (
	ErrLength       = errors.New("ebcdic: length outside run")
	ErrUnencodable  = errors.New("ebcdic: rune not in code page")
	ErrFieldTooLong = errors.New("ebcdic: value longer than field")
)

var page = charmap.CodePage1047

// Decode converts b to UTF-8 and strips the trailing blank pad.
// An all-blank run decodes to "".
func Decode(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c == 0 {
			break
		}
		sb.WriteRune(page.DecodeByte(c))
	}
	return strings.TrimRight(sb.String(), " ")
}

// DecodeN decodes the first n bytes of b.
func DecodeN(b []byte, n int) (string, error) {
	if n < 0 || n > len(b) {
		return "", fmt.Errorf("%w: n=%d len=%d", ErrLength, n, len(b))
	}
	return Decode(b[:n]), nil
}

// DecodeKey decodes b and lower-cases it for use as a lookup key.
func DecodeKey(b []byte) string {
	return strings.ToLower(Decode(b))
}

// Encode converts s to IBM-1047.
func Encode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := page.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnencodable, r)
		}
		out = append(out, c)
	}
	return out, nil
}

// EncodePadded encodes s into an n byte field padded with blanks.
func EncodePadded(s string, n int) ([]byte, error) {
	enc, err := Encode(s)
	if err != nil {
		return nil, err
	}
	if len(enc) > n {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrFieldTooLong, s, n)
	}
	out := make([]byte, n)
	copy(out, enc)
	for i := len(enc); i < n; i++ {
		out[i] = Blank
	}
	return out, nil
}

// MustEncodePadded is EncodePadded for literals known to fit.
func MustEncodePadded(s string, n int) []byte {
	out, err := EncodePadded(s, n)
	if err != nil {
		panic(err)
	}
	return out
}
