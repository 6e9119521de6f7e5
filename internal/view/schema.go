// Package view projects composite results onto a client-supplied field selection.
//
// A Schema is static data declared once per result shape. Resolve walks the
// schema, never the live value, to decide what a field is, so the projected
// shape depends only on the schema and the selection.
package view

import "strings"

// Kind tags a schema field.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindList
)

// Field describes one named member of a Schema.
type Field struct {
	Name string
	Kind Kind
	// Elem is the nested schema of object fields and of list elements.
	Elem Schema
	// CursorKey names the element field used to derive list cursors.
	CursorKey string
}

// Schema is an ordered set of fields for one result type.
type Schema struct {
	Name   string
	Fields []Field
}

// NewSchema declares a schema.
func NewSchema(name string, fields ...Field) Schema {
	return Schema{Name: name, Fields: fields}
}

// Scalar declares a leaf field.
func Scalar(name string) Field {
	return Field{Name: name, Kind: KindScalar}
}

// Scalars declares several leaf fields at once.
func Scalars(names ...string) []Field {
	out := make([]Field, 0, len(names))
	for _, name := range names {
		out = append(out, Scalar(name))
	}
	return out
}

// Object declares a nested single-valued field.
func Object(name string, elem Schema) Field {
	return Field{Name: name, Kind: KindObject, Elem: elem}
}

// List declares a collection field whose elements follow elem.
func List(name string, elem Schema, cursorKey string) Field {
	return Field{Name: name, Kind: KindList, Elem: elem, CursorKey: cursorKey}
}

// ListFields names the collection fields at the top level of s.
func (s Schema) ListFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == KindList {
			out = append(out, f.Name)
		}
	}
	return out
}

// GenerateSelectPaths enumerates every leaf path reachable from schema.
// Object and list fields are walked the same way.
func GenerateSelectPaths(schema Schema, prefix string) []string {
	var paths []string
	for _, f := range schema.Fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if f.Kind == KindScalar {
			paths = append(paths, path)
			continue
		}
		paths = append(paths, GenerateSelectPaths(f.Elem, path)...)
	}
	return paths
}

// selection is the parsed tree of dotted paths.
type selection struct {
	all      bool
	children map[string]*selection
}

func parseSelection(paths []string) *selection {
	root := &selection{}
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" {
			continue
		}
		node := root
		for _, part := range strings.Split(path, ".") {
			if part == "" {
				continue
			}
			node = node.child(part)
		}
		if node != root {
			node.all = true
		}
	}
	return root
}

func (s *selection) child(name string) *selection {
	if s.children == nil {
		s.children = make(map[string]*selection)
	}
	next, ok := s.children[name]
	if !ok {
		next = &selection{}
		s.children[name] = next
	}
	return next
}

// lookup returns the sub-selection for name. A node selected as a whole
// selects every descendant.
func (s *selection) lookup(name string) (*selection, bool) {
	if s.all {
		return &selection{all: true}, true
	}
	next, ok := s.children[name]
	return next, ok
}
