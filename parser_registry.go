package rematch

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrParserAlreadyRegistered = errors.New("a parser for this type is already registered")
	ErrParserNotFound          = errors.New("no parser registered for this type")
	ErrInvalidDestination      = errors.New("destination must be a non-nil pointer")
	ErrNilTypeParser           = errors.New("type parser cannot be nil")
)

// ParserRegistry maps Go types to the TypeParser that produces them, so
// callers can parse into a destination without holding the parser.
//
// One parser may be registered per target type. The registry is safe for
// concurrent use; the lock is only held for writes and map lookups.
type ParserRegistry struct {
	m  map[reflect.Type]TypeParser // target type -> parser
	mu sync.RWMutex
}

type ParserRegistryOpts struct {
	Parsers []TypeParser
}

func NewParserRegistry(opts ParserRegistryOpts) (*ParserRegistry, error) {
	reg := &ParserRegistry{
		m: make(map[reflect.Type]TypeParser),
	}

	for _, parser := range opts.Parsers {
		if err := reg.Register(parser); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Register adds parser for its target type.
func (r *ParserRegistry) Register(parser TypeParser) error {
	if parser == nil {
		return ErrNilTypeParser
	}
	typ := parser.TargetType()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[typ]; exists {
		return fmt.Errorf("%w: %s", ErrParserAlreadyRegistered, typ)
	}
	r.m[typ] = parser
	return nil
}

// Lookup returns the parser registered for typ.
func (r *ParserRegistry) Lookup(typ reflect.Type) (TypeParser, error) {
	r.mu.RLock()
	parser, ok := r.m[typ]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrParserNotFound, typ)
	}
	return parser, nil
}

// ParseInto parses input with the parser registered for dest's element
// type and stores the result in dest, which must be a non-nil pointer.
//
// If the parsed value implements Validatable, Validate is called and its
// failure is returned as a *ValidationError. If parsing or validation
// fails, dest is reset to its zero value.
func (r *ParserRegistry) ParseInto(input string, dest any) error {
	rv := reflect.ValueOf(dest)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w, got %T", ErrInvalidDestination, dest)
	}
	elem := rv.Elem()

	parser, err := r.Lookup(elem.Type())
	if err != nil {
		return err
	}

	value, err := parser.ParseValue(input)
	if err != nil {
		elem.SetZero()
		return err
	}

	elem.Set(value)
	if err := validateTarget(rv, input); err != nil {
		elem.SetZero()
		return err
	}
	return nil
}

// Parse parses input with the parser registered in r for T.
func Parse[T any](r *ParserRegistry, input string) (T, error) {
	var out T
	err := r.ParseInto(input, &out)
	return out, err
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _globalRegistry *ParserRegistry

func init() {
	var err error
	_globalRegistry, err = NewParserRegistry(ParserRegistryOpts{})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize global parser registry: %v", err))
	}
}

// Register registers a parser with the global registry.
func Register(parser TypeParser) error {
	return _globalRegistry.Register(parser)
}

// ParseInto parses into dest using the global registry.
func ParseInto(input string, dest any) error {
	return _globalRegistry.ParseInto(input, dest)
}

// ParseAs parses input into a T using the global registry.
func ParseAs[T any](input string) (T, error) {
	return Parse[T](_globalRegistry, input)
}
