package rematch

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrEmptyTypeName         = errors.New("type declaration has no name")
	ErrUnknownDeclKind       = errors.New("unknown type declaration kind")
	ErrUnknownShapeKind      = errors.New("unknown shape kind")
	ErrDuplicateVariant      = errors.New("duplicate variant name")
	ErrEmptyVariantName      = errors.New("variant has no name")
	ErrDuplicateField        = errors.New("duplicate field name")
	ErrEmptyFieldName        = errors.New("named field has no name")
	ErrNilFieldType          = errors.New("field has no type")
	ErrUnitShapeHasFields    = errors.New("unit shape cannot have fields")
	ErrPatternOwnerMismatch  = errors.New("pattern identity does not match its owner")
	ErrStructHasVariants     = errors.New("struct declaration cannot have variants")
	ErrEnumHasStructPatterns = errors.New("enum declaration cannot have top-level patterns")
)

// ShapeKind describes the field layout of a struct or an enum variant.
type ShapeKind int

const (
	ShapeUnit ShapeKind = iota
	ShapeNamed
	ShapePositional
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeUnit:
		return "unit"
	case ShapeNamed:
		return "named"
	case ShapePositional:
		return "positional"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Field is a single slot of a Shape. Name is empty for positional shapes.
type Field struct {
	Name string
	Type reflect.Type
}

// Shape is the ordered field layout of a struct or enum variant.
// Field i is bound to capture group i+1.
type Shape struct {
	Kind   ShapeKind
	Fields []Field
}

// UnitShape returns a shape with no fields.
func UnitShape() Shape {
	return Shape{Kind: ShapeUnit}
}

// NamedShape returns a named shape with the given fields in order.
func NamedShape(fields ...Field) Shape {
	return Shape{Kind: ShapeNamed, Fields: fields}
}

// PositionalShape returns a positional shape with one field per type.
func PositionalShape(types ...reflect.Type) Shape {
	fields := make([]Field, len(types))
	for i, typ := range types {
		fields[i] = Field{Type: typ}
	}
	return Shape{Kind: ShapePositional, Fields: fields}
}

// FieldLabel returns the identity used in error messages for field i:
// the field name for named shapes, the index otherwise.
func (s Shape) FieldLabel(i int) string {
	if s.Kind == ShapeNamed {
		return s.Fields[i].Name
	}
	return fmt.Sprintf("%d", i)
}

func (s Shape) validate() error {
	switch s.Kind {
	case ShapeUnit:
		if len(s.Fields) != 0 {
			return ErrUnitShapeHasFields
		}
	case ShapeNamed:
		seen := make(map[string]bool, len(s.Fields))
		for i, field := range s.Fields {
			if field.Name == "" {
				return fmt.Errorf("%w: field %d", ErrEmptyFieldName, i)
			}
			if seen[field.Name] {
				return fmt.Errorf("%w: %s", ErrDuplicateField, field.Name)
			}
			seen[field.Name] = true
			if field.Type == nil {
				return fmt.Errorf("%w: %s", ErrNilFieldType, field.Name)
			}
		}
	case ShapePositional:
		for i, field := range s.Fields {
			if field.Type == nil {
				return fmt.Errorf("%w: %d", ErrNilFieldType, i)
			}
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownShapeKind, int(s.Kind))
	}
	return nil
}

// PatternID is the stable identity of a pattern. It keys the
// PatternRegistry and is reported in errors.
type PatternID struct {
	Type    string // Declared type name
	Variant string // Variant name, empty for structs
	Index   int    // Ordinal within the owner's pattern list
}

func (id PatternID) String() string {
	if id.Variant == "" {
		return fmt.Sprintf("%s#%d", id.Type, id.Index)
	}
	return fmt.Sprintf("%s::%s#%d", id.Type, id.Variant, id.Index)
}

// Pattern is a regular expression source plus its identity.
type Pattern struct {
	ID     PatternID
	Source string
}

// Patterns builds identified patterns for an owner from raw sources,
// preserving order.
func Patterns(typeName, variant string, sources ...string) []Pattern {
	patterns := make([]Pattern, len(sources))
	for i, src := range sources {
		patterns[i] = Pattern{
			ID:     PatternID{Type: typeName, Variant: variant, Index: i},
			Source: src,
		}
	}
	return patterns
}

// Variant is one named alternative of an enum declaration. A variant
// without patterns is never selected.
type Variant struct {
	Name     string
	Shape    Shape
	Patterns []Pattern
}

// DeclKind distinguishes struct declarations from enum declarations.
type DeclKind int

const (
	KindStruct DeclKind = iota
	KindEnum
)

func (k DeclKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// TypeDecl describes one declared type. Structs use Shape and Patterns,
// enums use Variants. Declarations are immutable once a Parser is built
// from them.
type TypeDecl struct {
	Name     string
	Kind     DeclKind
	Shape    Shape
	Patterns []Pattern
	Variants []Variant
}

// StructDecl declares a struct type with the given shape and pattern sources.
func StructDecl(name string, shape Shape, sources ...string) TypeDecl {
	return TypeDecl{
		Name:     name,
		Kind:     KindStruct,
		Shape:    shape,
		Patterns: Patterns(name, "", sources...),
	}
}

// EnumDecl declares an enum type. Variant order is matching order.
func EnumDecl(name string, variants ...Variant) TypeDecl {
	return TypeDecl{
		Name:     name,
		Kind:     KindEnum,
		Variants: variants,
	}
}

// NewVariant builds a variant of the enum named typeName.
func NewVariant(typeName, name string, shape Shape, sources ...string) Variant {
	return Variant{
		Name:     name,
		Shape:    shape,
		Patterns: Patterns(typeName, name, sources...),
	}
}

// Validate checks the structural invariants of the declaration.
func (d TypeDecl) Validate() error {
	if d.Name == "" {
		return ErrEmptyTypeName
	}

	switch d.Kind {
	case KindStruct:
		if len(d.Variants) != 0 {
			return fmt.Errorf("%w: %s", ErrStructHasVariants, d.Name)
		}
		if err := d.Shape.validate(); err != nil {
			return fmt.Errorf("type %s: %w", d.Name, err)
		}
		return checkOwnership(d.Patterns, d.Name, "")

	case KindEnum:
		if len(d.Patterns) != 0 {
			return fmt.Errorf("%w: %s", ErrEnumHasStructPatterns, d.Name)
		}
		seen := make(map[string]bool, len(d.Variants))
		for _, v := range d.Variants {
			if v.Name == "" {
				return fmt.Errorf("%w in type %s", ErrEmptyVariantName, d.Name)
			}
			if seen[v.Name] {
				return fmt.Errorf("%w: %s::%s", ErrDuplicateVariant, d.Name, v.Name)
			}
			seen[v.Name] = true
			if err := v.Shape.validate(); err != nil {
				return fmt.Errorf("variant %s::%s: %w", d.Name, v.Name, err)
			}
			if err := checkOwnership(v.Patterns, d.Name, v.Name); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: %d", ErrUnknownDeclKind, int(d.Kind))
	}
}

func checkOwnership(patterns []Pattern, typeName, variant string) error {
	for i, p := range patterns {
		want := PatternID{Type: typeName, Variant: variant, Index: i}
		if p.ID != want {
			return fmt.Errorf("%w: got %s, want %s", ErrPatternOwnerMismatch, p.ID, want)
		}
	}
	return nil
}
