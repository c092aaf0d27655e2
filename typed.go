package rematch

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrNoPatterns         = errors.New("no patterns given and none declared in tags")
	ErrNotAnInterface     = errors.New("enum type must be an interface")
	ErrCaseNotImplemented = errors.New("case type does not implement the enum interface")
	ErrNilCaseType        = errors.New("case has no type")
)

// TypeParser is the type-erased view of a TypedParser, used by the
// ParserRegistry.
type TypeParser interface {
	// TargetType returns the Go type produced by ParseValue.
	TargetType() reflect.Type
	// ParseValue parses input into a value of TargetType.
	ParseValue(input string) (reflect.Value, error)
}

// TypedParser parses strings directly into Go values of type T. Build one
// with NewStructParser or NewEnumParser.
type TypedParser[T any] struct {
	parser *Parser
	cases  map[string]*caseLayout // variant name ("" for structs) -> layout
}

var _ TypeParser = (*TypedParser[struct{}])(nil)

// caseLayout knows how to materialize a Value into one Go type
type caseLayout struct {
	typ    reflect.Type
	index  []int // struct field index per shape field
	direct bool  // non-struct type bound as a single positional field
	asPtr  bool  // enum case implemented by *typ rather than typ
}

// layoutOf derives the shape of typ. Struct types become named shapes (or
// unit shapes when nothing is bound); any other type becomes a positional
// shape with typ as its only field.
func layoutOf(typ reflect.Type) (Shape, *caseLayout, []string, error) {
	if typ.Kind() != reflect.Struct || typ == TimeType {
		return PositionalShape(typ), &caseLayout{typ: typ, direct: true}, nil, nil
	}

	decoded, err := decodeStructLayout(typ)
	if err != nil {
		return Shape{}, nil, nil, err
	}

	shape := NamedShape(decoded.Fields...)
	if len(decoded.Fields) == 0 {
		shape = UnitShape()
	}
	return shape, &caseLayout{typ: typ, index: decoded.Index}, decoded.Patterns, nil
}

func (cl *caseLayout) materialize(v *Value) reflect.Value {
	out := reflect.New(cl.typ).Elem()

	if cl.direct {
		setIfValid(out, v.Fields[0])
	} else {
		for i, idx := range cl.index {
			setIfValid(out.Field(idx), v.Fields[i])
		}
	}

	if cl.asPtr {
		return out.Addr()
	}
	return out
}

// setIfValid leaves dst at its zero value when the converted value is an
// untyped nil (an empty capture bound to an interface field).
func setIfValid(dst reflect.Value, value any) {
	rv := reflect.ValueOf(value)
	if rv.IsValid() {
		dst.Set(rv)
	}
}

// typeName is the declared name of a Go type: its package path qualified
// name when it has one.
func typeName(typ reflect.Type) string {
	if typ.Name() != "" && typ.PkgPath() != "" {
		return typ.PkgPath() + "." + typ.Name()
	}
	return typ.String()
}

// sourceDigest fingerprints patterns passed explicitly to a constructor.
// Parsers for the same Go type built from different patterns get distinct
// declared names, and so distinct pattern identities in a shared registry.
type sourceDigest struct {
	h        *xxhash.Digest
	explicit bool
}

func newSourceDigest() *sourceDigest {
	return &sourceDigest{h: xxhash.New()}
}

// add records the patterns of one variant ("" for structs).
func (d *sourceDigest) add(variant string, patterns []string) {
	d.explicit = true
	_, _ = d.h.WriteString(variant)
	for _, p := range patterns {
		_, _ = d.h.WriteString("\x00")
		_, _ = d.h.WriteString(p)
	}
	_, _ = d.h.WriteString("\x01")
}

// name qualifies base with the digest when any explicit pattern was added.
func (d *sourceDigest) name(base string) string {
	if !d.explicit {
		return base
	}
	return fmt.Sprintf("%s@%016x", base, d.h.Sum64())
}

///////////////////////////////////////////////////////////////////////////////
// Struct front-end
///////////////////////////////////////////////////////////////////////////////

// NewStructParser builds a parser for the struct type T.
//
// Exported fields of T are bound to capture groups in field order; see
// the tag grammar in tag.go. If patterns is empty, the patterns declared on
// T's blank fields are used instead. Explicit patterns give the parser its
// own declared name, the type name suffixed with "@" and a digest of the
// patterns, so it never conflicts with other parsers of T. A non-struct T
// is parsed as a single positional field:
//
//	type Port uint16
//	p, _ := rematch.NewStructParser[Port](rematch.ParserOpts{}, `:(\d+)$`)
func NewStructParser[T any](opts ParserOpts, patterns ...string) (*TypedParser[T], error) {
	typ := reflect.TypeFor[T]()

	shape, layout, tagged, err := layoutOf(typ)
	if err != nil {
		return nil, err
	}
	digest := newSourceDigest()
	if len(patterns) == 0 {
		patterns = tagged
	} else {
		digest.add("", patterns)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPatterns, typ)
	}

	decl := StructDecl(digest.name(typeName(typ)), shape, patterns...)
	parser, err := NewParser(decl, opts)
	if err != nil {
		return nil, err
	}

	return &TypedParser[T]{
		parser: parser,
		cases:  map[string]*caseLayout{"": layout},
	}, nil
}

// MustNewStructParser is like NewStructParser but panics on error.
func MustNewStructParser[T any](opts ParserOpts, patterns ...string) *TypedParser[T] {
	tp, err := NewStructParser[T](opts, patterns...)
	if err != nil {
		panic(fmt.Sprintf("rematch: %v", err))
	}
	return tp
}

///////////////////////////////////////////////////////////////////////////////
// Enum front-end
///////////////////////////////////////////////////////////////////////////////

// Case is one variant of an enum built with NewEnumParser.
type Case struct {
	typ      reflect.Type
	patterns []string
}

// CaseOf declares V as an enum variant. The variant's name is V's type
// name. If patterns is empty, the patterns declared on V's blank fields
// are used; a variant without any pattern is allowed and never matches.
func CaseOf[V any](patterns ...string) Case {
	return Case{typ: reflect.TypeFor[V](), patterns: patterns}
}

// NewEnumParser builds a parser for the interface type I whose variants
// are the given cases, tried in order. Each case type V must implement I,
// either as V or as *V. As with NewStructParser, explicit case patterns
// qualify the declared name with their digest.
func NewEnumParser[I any](opts ParserOpts, cases ...Case) (*TypedParser[I], error) {
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: %s", ErrNotAnInterface, iface)
	}

	type variantPlan struct {
		name     string
		shape    Shape
		patterns []string
	}

	digest := newSourceDigest()
	layouts := make(map[string]*caseLayout, len(cases))
	plans := make([]variantPlan, 0, len(cases))

	for _, c := range cases {
		if c.typ == nil {
			return nil, ErrNilCaseType
		}

		shape, layout, tagged, err := layoutOf(c.typ)
		if err != nil {
			return nil, err
		}

		switch {
		case c.typ.Implements(iface):
		case reflect.PointerTo(c.typ).Implements(iface):
			layout.asPtr = true
		default:
			return nil, fmt.Errorf("%w: %s does not implement %s", ErrCaseNotImplemented, c.typ, iface)
		}

		variantName := c.typ.Name()
		if variantName == "" {
			variantName = c.typ.String()
		}

		patterns := c.patterns
		if len(patterns) == 0 {
			patterns = tagged
		} else {
			digest.add(variantName, patterns)
		}

		layouts[variantName] = layout
		plans = append(plans, variantPlan{name: variantName, shape: shape, patterns: patterns})
	}

	name := digest.name(typeName(iface))
	variants := make([]Variant, len(plans))
	for i, plan := range plans {
		variants[i] = NewVariant(name, plan.name, plan.shape, plan.patterns...)
	}

	parser, err := NewParser(EnumDecl(name, variants...), opts)
	if err != nil {
		return nil, err
	}

	return &TypedParser[I]{parser: parser, cases: layouts}, nil
}

// MustNewEnumParser is like NewEnumParser but panics on error.
func MustNewEnumParser[I any](opts ParserOpts, cases ...Case) *TypedParser[I] {
	tp, err := NewEnumParser[I](opts, cases...)
	if err != nil {
		panic(fmt.Sprintf("rematch: %v", err))
	}
	return tp
}

///////////////////////////////////////////////////////////////////////////////
// TypedParser methods
///////////////////////////////////////////////////////////////////////////////

// Parse converts input into a T. On error the zero T is returned together
// with a *NoMatchError or *BindError.
func (tp *TypedParser[T]) Parse(input string) (T, error) {
	var zero T

	rv, err := tp.ParseValue(input)
	if err != nil {
		return zero, err
	}
	return rv.Interface().(T), nil
}

// ParseValue implements TypeParser.
func (tp *TypedParser[T]) ParseValue(input string) (reflect.Value, error) {
	value, err := tp.parser.Parse(input)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(tp.TargetType()).Elem()
	out.Set(tp.cases[value.Variant].materialize(value))
	return out, nil
}

// TargetType implements TypeParser.
func (tp *TypedParser[T]) TargetType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Parser returns the underlying untyped parser.
func (tp *TypedParser[T]) Parser() *Parser {
	return tp.parser
}
