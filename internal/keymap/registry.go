package keymap

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

//go:embed tables/*.toml
var embeddedTables embed.FS

// WildcardRaw matches every field of a segment without an exact entry.
const WildcardRaw = "*"

const maxRawLen = 8

var ErrInvalidTable = errors.New("keymap: invalid table")

// tableFile is the on-disk shape of one admin type's tables.
type tableFile struct {
	AdminType string        `toml:"admin_type"`
	Segments  []segmentFile `toml:"segment"`
}

type segmentFile struct {
	Name   string      `toml:"name"`
	Fields []traitFile `toml:"field"`
}

type traitFile struct {
	Raw       string   `toml:"raw"`
	Key       string   `toml:"key"`
	Trait     string   `toml:"trait"`
	Operators []string `toml:"operators"`
}

// Registry holds the frozen tables of every admin type.
type Registry struct {
	admins map[AdminType]*adminTable
}

type adminTable struct {
	segments []*Segment
	byName   map[string]*Segment
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded tables.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Load()
		if err != nil {
			panic("keymap: embedded tables failed to load: " + err.Error())
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Load parses the embedded tables.
func Load() (*Registry, error) {
	sub, err := fs.Sub(embeddedTables, "tables")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadFS parses every *.toml file at the root of fsys. Admin types without
// a file get an empty table.
func LoadFS(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	reg := &Registry{admins: make(map[AdminType]*adminTable, len(AdminTypes))}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("keymap load failed (%s): %w", name, err)
		}
		var file tableFile
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("keymap parse failed (%s): %w", name, err)
		}
		at, table, err := buildTable(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		if _, dup := reg.admins[at]; dup {
			return nil, fmt.Errorf("%w: admin type %q defined twice", ErrInvalidTable, at)
		}
		reg.admins[at] = table
		log.Debug().Str("admin_type", string(at)).Int("segments", len(table.segments)).Msg("keymap.Load table")
	}
	for _, at := range AdminTypes {
		if _, ok := reg.admins[at]; !ok {
			reg.admins[at] = &adminTable{byName: map[string]*Segment{}}
		}
	}
	return reg, nil
}

func buildTable(file tableFile) (AdminType, *adminTable, error) {
	at, err := ParseAdminType(file.AdminType)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	table := &adminTable{byName: make(map[string]*Segment, len(file.Segments))}
	for _, sf := range file.Segments {
		name := strings.ToLower(strings.TrimSpace(sf.Name))
		if name == "" {
			return "", nil, fmt.Errorf("%w: %s: segment without name", ErrInvalidTable, at)
		}
		if _, dup := table.byName[name]; dup {
			return "", nil, fmt.Errorf("%w: %s: segment %q defined twice", ErrInvalidTable, at, name)
		}
		seg, err := buildSegment(at, name, sf.Fields)
		if err != nil {
			return "", nil, err
		}
		table.segments = append(table.segments, seg)
		table.byName[name] = seg
	}
	return at, table, nil
}

func buildSegment(at AdminType, name string, fields []traitFile) (*Segment, error) {
	seg := &Segment{
		Name:     name,
		Traits:   make([]Trait, 0, len(fields)),
		byRaw:    make(map[string]int, len(fields)),
		wildcard: -1,
	}
	for _, tf := range fields {
		raw := strings.ToLower(strings.TrimSpace(tf.Raw))
		if raw == "" || len(raw) > maxRawLen {
			return nil, fmt.Errorf("%w: %s/%s: raw name %q must be 1-%d characters", ErrInvalidTable, at, name, tf.Raw, maxRawLen)
		}
		key := strings.TrimSpace(tf.Key)
		if key != "" && !strings.HasPrefix(key, name+":") {
			return nil, fmt.Errorf("%w: %s/%s: key %q lacks segment prefix", ErrInvalidTable, at, name, key)
		}
		tt, err := parseTraitType(tf.Trait)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s/%s: %v", ErrInvalidTable, at, name, raw, err)
		}
		ops := make([]Operator, 0, len(tf.Operators))
		for _, op := range tf.Operators {
			switch o := Operator(strings.ToLower(strings.TrimSpace(op))); o {
			case OpSet, OpAdd, OpRemove, OpDelete:
				ops = append(ops, o)
			default:
				return nil, fmt.Errorf("%w: %s/%s/%s: unknown operator %q", ErrInvalidTable, at, name, raw, op)
			}
		}
		if raw == WildcardRaw {
			if seg.wildcard >= 0 {
				return nil, fmt.Errorf("%w: %s/%s: more than one wildcard entry", ErrInvalidTable, at, name)
			}
			seg.wildcard = len(seg.Traits)
		} else {
			if _, dup := seg.byRaw[raw]; dup {
				return nil, fmt.Errorf("%w: %s/%s: raw name %q mapped twice", ErrInvalidTable, at, name, raw)
			}
			seg.byRaw[raw] = len(seg.Traits)
		}
		seg.Traits = append(seg.Traits, Trait{Raw: raw, Key: key, Type: tt, Operators: ops})
	}
	return seg, nil
}

// Segments returns the mapped segments of an admin type in table order.
// The returned segments must not be modified.
func (r *Registry) Segments(at AdminType) []*Segment {
	table, ok := r.admins[at]
	if !ok {
		return nil
	}
	return table.segments
}

// Segment returns one mapped segment.
func (r *Registry) Segment(at AdminType, name string) (*Segment, bool) {
	table, ok := r.admins[at]
	if !ok {
		return nil, false
	}
	seg, ok := table.byName[name]
	return seg, ok
}
