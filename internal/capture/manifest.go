package capture

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Mainframe-Renewal-Project/sear/internal/keymap"
	"github.com/Mainframe-Renewal-Project/sear/internal/racf"
)

var ErrInvalidManifest = errors.New("capture: invalid manifest")

// Entry maps one request to its captured response.
type Entry struct {
	Operation   string   `toml:"operation"`
	AdminType   string   `toml:"admin_type"`
	ProfileName string   `toml:"profile_name"`
	ClassName   string   `toml:"class_name"`
	Group       string   `toml:"group"`
	Filter      string   `toml:"resource_filter"`
	File        string   `toml:"file"`
	Found       []string `toml:"found"`
	SAFRC       int      `toml:"saf_rc"`
	RACFRC      int      `toml:"racf_rc"`
	RACFRsn     int      `toml:"racf_rsn"`
}

// Manifest lists captured responses. File paths are relative to Dir.
type Manifest struct {
	Dir     string  `toml:"-"`
	Entries []Entry `toml:"entry"`
}

func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("capture: load manifest: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidManifest, undecoded[0])
	}
	m.Dir = filepath.Dir(path)
	for i := range m.Entries {
		if err := m.Entries[i].normalize(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidManifest, i, err)
		}
	}
	return &m, nil
}

func (e *Entry) normalize() error {
	req := e.request().Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	e.Operation = string(req.Operation)
	e.AdminType = string(req.AdminType)
	e.ProfileName = req.ProfileName
	e.ClassName = req.ClassName
	e.Group = req.Group
	e.Filter = req.Filter
	if req.Operation == racf.OpExtract && e.File == "" && e.SAFRC == 0 && e.RACFRC == 0 {
		return errors.New("successful extract needs a capture file")
	}
	return nil
}

func (e Entry) request() racf.Request {
	return racf.Request{
		Operation:   racf.Operation(e.Operation),
		AdminType:   keymap.AdminType(e.AdminType),
		ProfileName: e.ProfileName,
		ClassName:   e.ClassName,
		Group:       e.Group,
		Filter:      e.Filter,
	}
}

func (e Entry) matches(op racf.Operation, call racf.NativeCall) bool {
	return e.Operation == string(op) &&
		e.AdminType == string(call.AdminType) &&
		e.ProfileName == call.ProfileName &&
		e.ClassName == call.ClassName &&
		e.Group == call.Group &&
		e.Filter == call.Filter
}

// Lookup returns the entry answering call.
func (m *Manifest) Lookup(call racf.NativeCall) (Entry, bool) {
	op := racf.OpExtract
	if next, ok := racf.NextFunction(call.AdminType); ok && next == call.Function {
		op = racf.OpSearch
	}
	for _, e := range m.Entries {
		if e.matches(op, call) {
			return e, true
		}
	}
	return Entry{}, false
}

// Path resolves an entry's capture file.
func (m *Manifest) Path(e Entry) string {
	if e.File == "" || filepath.IsAbs(e.File) {
		return e.File
	}
	return filepath.Join(m.Dir, strings.TrimSpace(e.File))
}
