package rematch

import (
	"encoding/json"
	"fmt"
)

// Value is a parsed instance of a declared type: the chosen variant (for
// enums) plus its converted field values in shape order.
type Value struct {
	Type    string
	Variant string // Empty for structs
	Kind    ShapeKind
	Names   []string // Field names, named shapes only
	Fields  []any
}

func newValue(typeName, variant string, shape Shape, fields []any) *Value {
	v := &Value{
		Type:    typeName,
		Variant: variant,
		Kind:    shape.Kind,
		Fields:  fields,
	}
	if shape.Kind == ShapeNamed {
		v.Names = make([]string, len(shape.Fields))
		for i, f := range shape.Fields {
			v.Names[i] = f.Name
		}
	}
	return v
}

// Len returns the number of fields.
func (v *Value) Len() int {
	return len(v.Fields)
}

// At returns field i.
func (v *Value) At(i int) any {
	return v.Fields[i]
}

// Field returns the named field and whether it exists.
func (v *Value) Field(name string) (any, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Fields[i], true
		}
	}
	return nil, false
}

// Map returns the named fields as a map. It is nil for non-named shapes.
func (v *Value) Map() map[string]any {
	if v.Kind != ShapeNamed {
		return nil
	}
	m := make(map[string]any, len(v.Names))
	for i, n := range v.Names {
		m[n] = v.Fields[i]
	}
	return m
}

func (v *Value) String() string {
	head := v.Type
	if v.Variant != "" {
		head += "::" + v.Variant
	}

	switch v.Kind {
	case ShapeNamed:
		s := head + " {"
		for i, n := range v.Names {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf(" %s: %v", n, v.Fields[i])
		}
		return s + " }"
	case ShapePositional:
		s := head + "("
		for i, f := range v.Fields {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("%v", f)
		}
		return s + ")"
	default:
		return head
	}
}

type jsonValue struct {
	Type    string `json:"type"`
	Variant string `json:"variant,omitempty"`
	Fields  any    `json:"fields,omitempty"`
}

// MarshalJSON encodes named fields as an object, positional fields as an
// array, and omits fields for unit shapes.
func (v *Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Type: v.Type, Variant: v.Variant}
	switch v.Kind {
	case ShapeNamed:
		out.Fields = v.Map()
	case ShapePositional:
		out.Fields = v.Fields
	}
	return json.Marshal(out)
}
