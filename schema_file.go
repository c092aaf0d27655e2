package rematch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownTypeName   = errors.New("unknown field type name")
	ErrDuplicateTypeDecl = errors.New("type declared twice in schema")
	ErrAmbiguousShape    = errors.New("shape cannot have both fields and positional types")
	ErrAmbiguousDecl     = errors.New("type cannot declare both enum variants and patterns or fields")
	ErrTypeNotInSchema   = errors.New("type not declared in schema")
)

// TypeTable resolves field type names used in schema files.
type TypeTable map[string]reflect.Type

// DefaultTypeTable returns the builtin field type names.
func DefaultTypeTable() TypeTable {
	return TypeTable{
		StringTypeName:     StringType,
		BoolTypeName:       reflect.TypeFor[bool](),
		IntTypeName:        reflect.TypeFor[int](),
		Int8TypeName:       reflect.TypeFor[int8](),
		Int16TypeName:      reflect.TypeFor[int16](),
		Int32TypeName:      reflect.TypeFor[int32](),
		Int64TypeName:      reflect.TypeFor[int64](),
		UintTypeName:       reflect.TypeFor[uint](),
		Uint8TypeName:      reflect.TypeFor[uint8](),
		Uint16TypeName:     reflect.TypeFor[uint16](),
		Uint32TypeName:     reflect.TypeFor[uint32](),
		Uint64TypeName:     reflect.TypeFor[uint64](),
		Float32TypeName:    reflect.TypeFor[float32](),
		Float64TypeName:    reflect.TypeFor[float64](),
		Complex64TypeName:  reflect.TypeFor[complex64](),
		Complex128TypeName: reflect.TypeFor[complex128](),
		BytesTypeName:      BytesType,
		UUIDTypeName:       UUIDType,
		TimeTypeName:       TimeType,
		DurationTypeName:   DurationType,
	}
}

func (tt TypeTable) resolve(name string) (reflect.Type, error) {
	typ, ok := tt[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeName, name)
	}
	return typ, nil
}

// schemaFile is the YAML document layout.
//
//	types:
//	  - name: Test
//	    enum:
//	      - name: A
//	        patterns: ['a']
//	      - name: B
//	        positional: [uint]
//	        patterns: ['b (\d+)']
//	      - name: C
//	        fields: [{name: x, type: uint}]
//	        patterns: ['c = (\d+)']
//	  - name: Pair
//	    fields: [{name: a, type: uint}, {name: s, type: string}]
//	    patterns: ['a number (\d+) with some string ([abc]+)']
type schemaFile struct {
	Types []schemaType `yaml:"types"`
}

type schemaShape struct {
	Fields     []schemaField `yaml:"fields,omitempty"`
	Positional []string      `yaml:"positional,omitempty"`
	Patterns   []string      `yaml:"patterns,omitempty"`
}

type schemaType struct {
	Name        string          `yaml:"name"`
	schemaShape `yaml:",inline"`
	Enum        []schemaVariant `yaml:"enum,omitempty"`
}

type schemaVariant struct {
	Name        string `yaml:"name"`
	schemaShape `yaml:",inline"`
}

type schemaField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func (s schemaShape) shape(tt TypeTable) (Shape, error) {
	switch {
	case len(s.Fields) > 0 && len(s.Positional) > 0:
		return Shape{}, ErrAmbiguousShape
	case len(s.Fields) > 0:
		fields := make([]Field, len(s.Fields))
		for i, f := range s.Fields {
			typ, err := tt.resolve(f.Type)
			if err != nil {
				return Shape{}, fmt.Errorf("field %s: %w", f.Name, err)
			}
			fields[i] = Field{Name: f.Name, Type: typ}
		}
		return NamedShape(fields...), nil
	case len(s.Positional) > 0:
		types := make([]reflect.Type, len(s.Positional))
		for i, name := range s.Positional {
			typ, err := tt.resolve(name)
			if err != nil {
				return Shape{}, fmt.Errorf("field %d: %w", i, err)
			}
			types[i] = typ
		}
		return PositionalShape(types...), nil
	default:
		return UnitShape(), nil
	}
}

func (st schemaType) decl(tt TypeTable) (TypeDecl, error) {
	if len(st.Enum) == 0 {
		shape, err := st.shape(tt)
		if err != nil {
			return TypeDecl{}, fmt.Errorf("type %s: %w", st.Name, err)
		}
		return StructDecl(st.Name, shape, st.Patterns...), nil
	}

	if len(st.Patterns) > 0 || len(st.Fields) > 0 || len(st.Positional) > 0 {
		return TypeDecl{}, fmt.Errorf("%w: %s", ErrAmbiguousDecl, st.Name)
	}

	variants := make([]Variant, len(st.Enum))
	for i, sv := range st.Enum {
		shape, err := sv.shape(tt)
		if err != nil {
			return TypeDecl{}, fmt.Errorf("variant %s::%s: %w", st.Name, sv.Name, err)
		}
		variants[i] = NewVariant(st.Name, sv.Name, shape, sv.Patterns...)
	}
	return EnumDecl(st.Name, variants...), nil
}

///////////////////////////////////////////////////////////////////////////////
// Schema
///////////////////////////////////////////////////////////////////////////////

// Schema is an ordered set of type declarations, typically loaded from a
// YAML file.
//
// Type names are only unique within a schema, so parsers built without an
// explicit registry share a registry owned by the schema rather than the
// process-wide default.
type Schema struct {
	Decls    []TypeDecl
	index    map[string]int
	registry *PatternRegistry
}

// NewSchema builds a schema from declarations. Each declaration is
// validated and names must be unique.
func NewSchema(decls ...TypeDecl) (*Schema, error) {
	s := &Schema{
		index:    make(map[string]int, len(decls)),
		registry: NewPatternRegistry(PatternRegistryOpts{}),
	}
	for _, d := range decls {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := s.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTypeDecl, d.Name)
		}
		s.index[d.Name] = len(s.Decls)
		s.Decls = append(s.Decls, d)
	}
	return s, nil
}

type LoadSchemaOpts struct {
	Types TypeTable // Defaults to DefaultTypeTable()
}

// LoadSchema decodes a YAML schema document.
func LoadSchema(r io.Reader, opts LoadSchemaOpts) (*Schema, error) {
	tt := opts.Types
	if tt == nil {
		tt = DefaultTypeTable()
	}

	var doc schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewSchema()
		}
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	decls := make([]TypeDecl, 0, len(doc.Types))
	for _, st := range doc.Types {
		decl, err := st.decl(tt)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return NewSchema(decls...)
}

// LoadSchemaFile reads and decodes the YAML schema at path.
func LoadSchemaFile(path string, opts LoadSchemaOpts) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()

	return LoadSchema(f, opts)
}

// Lookup returns the declaration named name.
func (s *Schema) Lookup(name string) (TypeDecl, bool) {
	i, ok := s.index[name]
	if !ok {
		return TypeDecl{}, false
	}
	return s.Decls[i], true
}

// Names returns the declared type names, sorted.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.Decls))
	for _, d := range s.Decls {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Registry returns the registry parsers use when ParserOpts has none.
func (s *Schema) Registry() *PatternRegistry {
	return s.registry
}

func (s *Schema) parserOpts(opts ParserOpts) ParserOpts {
	if opts.Registry == nil {
		opts.Registry = s.registry
	}
	return opts
}

// Compile builds a Parser for every declaration in the schema.
func (s *Schema) Compile(opts ParserOpts) (map[string]*Parser, error) {
	opts = s.parserOpts(opts)
	parsers := make(map[string]*Parser, len(s.Decls))
	for _, d := range s.Decls {
		p, err := NewParser(d, opts)
		if err != nil {
			return nil, err
		}
		parsers[d.Name] = p
	}
	return parsers, nil
}

// Parser builds the Parser for the declaration named name.
func (s *Schema) Parser(name string, opts ParserOpts) (*Parser, error) {
	decl, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotInSchema, name)
	}
	return NewParser(decl, s.parserOpts(opts))
}
