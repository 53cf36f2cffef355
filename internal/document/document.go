// Package document is the ordered key-value tree that extract results are
// assembled into.
//
// Values are one of: string, int64, bool, nil, []string, []*Object.
// Keys keep their first insertion position so output is reproducible.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	KeyProfile  = "profile"
	KeyProfiles = "profiles"
)

// Object is an insertion-ordered map.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores v under key. Re-setting a key keeps its original position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Child returns the object stored under key, creating it when absent.
func (o *Object) Child(key string) *Object {
	if v, ok := o.values[key]; ok {
		if child, ok := v.(*Object); ok {
			return child
		}
	}
	child := NewObject()
	o.Set(key, child)
	return child
}

// Plain converts the tree to builtin maps and slices. Ordering is lost.
func (o *Object) Plain() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = plainValue(o.values[k])
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Plain()
	case []*Object:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = child.Plain()
		}
		return out
	default:
		return v
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("document: key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits a mapping node so YAML output keeps insertion order.
func (o *Object) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range o.keys {
		var val yaml.Node
		if err := val.Encode(o.values[k]); err != nil {
			return nil, fmt.Errorf("document: key %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return node, nil
}

// Document is the root of one decode result.
type Document struct {
	root *Object
}

// New returns a document with an empty "profile" object.
func New() *Document {
	root := NewObject()
	root.Set(KeyProfile, NewObject())
	return &Document{root: root}
}

// NewProfiles returns a search result document.
func NewProfiles(names []string) *Document {
	if names == nil {
		names = []string{}
	}
	root := NewObject()
	root.Set(KeyProfiles, names)
	return &Document{root: root}
}

// Profile returns the "profile" object.
func (d *Document) Profile() *Object {
	return d.root.Child(KeyProfile)
}

// Segment returns profile.<key>, creating it when absent.
func (d *Document) Segment(key string) *Object {
	return d.Profile().Child(key)
}

// Set stores profile.<segment>.<field> = v.
func (d *Document) Set(segment, field string, v any) {
	d.Segment(segment).Set(field, v)
}

// Lookup walks profile.<segment>.<field>.
func (d *Document) Lookup(segment, field string) (any, bool) {
	p, ok := d.root.Get(KeyProfile)
	if !ok {
		return nil, false
	}
	seg, ok := p.(*Object).Get(segment)
	if !ok {
		return nil, false
	}
	obj, ok := seg.(*Object)
	if !ok {
		return nil, false
	}
	return obj.Get(field)
}

// Profiles returns the search result names, if this is a search document.
func (d *Document) Profiles() ([]string, bool) {
	v, ok := d.root.Get(KeyProfiles)
	if !ok {
		return nil, false
	}
	names, ok := v.([]string)
	return names, ok
}

// Root exposes the top-level object.
func (d *Document) Root() *Object {
	return d.root
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return d.root.MarshalJSON()
}

func (d *Document) MarshalYAML() (any, error) {
	return d.root.MarshalYAML()
}

// Plain converts the document to builtin maps and slices.
func (d *Document) Plain() map[string]any {
	return d.root.Plain()
}
