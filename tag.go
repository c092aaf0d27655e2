package rematch

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Base Error types for tag decoding errors
var (
	ErrEmptyPatternTag   = errors.New("blank field has an empty pattern tag")
	ErrInvalidFieldTag   = errors.New("invalid field tag")
	ErrDuplicateTagField = errors.New("field name declared twice")
)

// This file decodes the `rematch` struct tag used by the reflection
// front-end. Two forms are recognised:
//
//	_ struct{} `rematch:"<pattern>"`  // blank field: a pattern of the type
//	X int      `rematch:"<name>"`     // field: renames the bound field
//	Y int      `rematch:"-"`          // field: not bound
//
// Blank fields are patterns in field order; any number may be given.
// Exported, non-skipped fields are bound to capture groups in field order.
// Unexported fields are never bound.

// FieldTag corresponds to the `rematch` tag on a bound field.
type FieldTag struct {
	Name string
	Skip bool
}

// structLayout is the decoded tag view of a struct type
type structLayout struct {
	Patterns []string // From blank fields, in order
	Fields   []Field  // Bound fields, in order
	Index    []int    // Struct field index per bound field
}

// DecodeFieldTag decodes the tag of a non-blank struct field.
func DecodeFieldTag(field reflect.StructField) (FieldTag, error) {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return FieldTag{Name: field.Name}, nil
	}

	tag = strings.TrimSpace(tag)
	switch {
	case tag == TagSkip:
		return FieldTag{Skip: true}, nil
	case tag == "":
		return FieldTag{Name: field.Name}, nil
	case strings.ContainsAny(tag, " \t,:'\""):
		return FieldTag{}, fmt.Errorf("%w on field %s: %q", ErrInvalidFieldTag, field.Name, tag)
	default:
		return FieldTag{Name: tag}, nil
	}
}

// decodeStructLayout walks typ's fields and splits them into patterns and
// bound fields.
func decodeStructLayout(typ reflect.Type) (structLayout, error) {
	var layout structLayout
	seen := make(map[string]bool)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		if field.Name == BlankField {
			pattern, ok := field.Tag.Lookup(TagName)
			if !ok {
				continue
			}
			if pattern == "" {
				return structLayout{}, fmt.Errorf("%w: %s field %d", ErrEmptyPatternTag, typ, i)
			}
			layout.Patterns = append(layout.Patterns, pattern)
			continue
		}

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		ftag, err := DecodeFieldTag(field)
		if err != nil {
			return structLayout{}, err
		}
		if ftag.Skip {
			continue
		}
		if seen[ftag.Name] {
			return structLayout{}, fmt.Errorf("%w: %s.%s", ErrDuplicateTagField, typ, ftag.Name)
		}
		seen[ftag.Name] = true

		layout.Fields = append(layout.Fields, Field{Name: ftag.Name, Type: field.Type})
		layout.Index = append(layout.Index, i)
	}

	return layout, nil
}
