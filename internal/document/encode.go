package document

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format selects the serialisation of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("document: unknown format %q", raw)
	}
}

// cborMode uses core deterministic encoding: map keys are sorted, so the
// same document always encodes to the same bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("document: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode writes v (a *Document or *Object) to w.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		var plain any = v
		switch t := v.(type) {
		case *Document:
			plain = t.Plain()
		case *Object:
			plain = t.Plain()
		}
		data, err := cborMode.Marshal(plain)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("document: unknown format %q", format)
	}
}
