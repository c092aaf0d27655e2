package rematch

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType     = errors.New("unsupported field type")
	ErrConverterResultType = errors.New("converter returned a value of the wrong type")
	ErrNilConverter        = errors.New("converter cannot be nil")
	ErrNilConverterType    = errors.New("converter type cannot be nil")
)

// Converter turns a captured substring into a value of one field type.
type Converter func(text string) (any, error)

// Converters is the per-type conversion capability used by the field
// binder. Types without a registered Converter fall back to the built in
// conversions (see convertBuiltin).
//
// Converters is safe for concurrent use.
type Converters struct {
	mu sync.RWMutex
	m  map[reflect.Type]Converter
}

// NewConverters returns an empty conversion table.
func NewConverters() *Converters {
	return &Converters{
		m: make(map[reflect.Type]Converter),
	}
}

// Register sets the Converter for typ, replacing any previous one.
func (c *Converters) Register(typ reflect.Type, fn Converter) error {
	if typ == nil {
		return ErrNilConverterType
	}
	if fn == nil {
		return ErrNilConverter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[typ] = fn
	return nil
}

// RegisterConverter registers a typed conversion function for T.
func RegisterConverter[T any](c *Converters, fn func(text string) (T, error)) error {
	return c.Register(reflect.TypeFor[T](), func(text string) (any, error) {
		return fn(text)
	})
}

// Convert converts text into a value of type typ. The returned value's
// dynamic type is exactly typ.
func (c *Converters) Convert(typ reflect.Type, text string) (any, error) {
	if c != nil {
		c.mu.RLock()
		fn, ok := c.m[typ]
		c.mu.RUnlock()

		if ok {
			value, err := fn(text)
			if err != nil {
				return nil, err
			}
			rv := reflect.ValueOf(value)
			if !rv.IsValid() || !rv.Type().AssignableTo(typ) {
				return nil, fmt.Errorf("%w: want %s, got %T", ErrConverterResultType, typ, value)
			}
			out := reflect.New(typ).Elem()
			out.Set(rv)
			return out.Interface(), nil
		}
	}

	return convertBuiltin(typ, text)
}

func convertBuiltin(typ reflect.Type, text string) (any, error) {
	value := reflect.New(typ).Elem()
	if err := setFieldValue(value, text); err != nil {
		return nil, err
	}
	return value.Interface(), nil
}

///////////////////////////////////////////////////////////////////////////////
// Helpers
///////////////////////////////////////////////////////////////////////////////

// Set field value with type conversion
//
// Currently supports:
//   - string to string
//   - string to int (with overflow checking)
//   - string to uint (with overflow checking)
//   - string to bool
//   - string to float (with overflow checking)
//   - string to complex
//   - string to uuid.UUID
//   - string to time.Time and time.Duration
//   - string to []byte (raw byte slice)
//   - string to pointer of any supported type
//   - TextUnmarshaler support for custom types
//   - Interface{} support for any type
func setFieldValue(field reflect.Value, value string) error {
	// Handle nil/empty values
	if value == "" {
		return handleEmptyValue(field)
	}

	// Special types first, they would otherwise be caught by
	// TextUnmarshaler or by their underlying kind.
	switch field.Type() {
	case UUIDType:
		return setUUIDValue(field, value)
	case TimeType:
		return setTimeValue(field, value)
	case DurationType:
		return setDurationValue(field, value)
	}

	// Check for TextUnmarshaler interface
	if field.CanInterface() {
		if unmarshaler, ok := field.Interface().(encoding.TextUnmarshaler); ok && field.Kind() != reflect.Ptr {
			return unmarshaler.UnmarshalText([]byte(value))
		}
		// Check for pointer to TextUnmarshaler
		if field.CanAddr() {
			if unmarshaler, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
				return unmarshaler.UnmarshalText([]byte(value))
			}
		}
	}

	switch field.Kind() {
	case reflect.String:
		return setStringValue(field, value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntValue(field, value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return setUintValue(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloatValue(field, value)
	case reflect.Complex64, reflect.Complex128:
		return setComplexValue(field, value)
	case reflect.Bool:
		return setBoolValue(field, value)
	case reflect.Slice:
		return setSliceValue(field, value)
	case reflect.Ptr:
		return setPointerValue(field, value)
	case reflect.Interface:
		return setInterfaceValue(field, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, field.Type())
	}
}

// handleEmptyValue handles empty string values for different field types
func handleEmptyValue(field reflect.Value) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString("")
		return nil
	case reflect.Slice, reflect.Map, reflect.Ptr, reflect.Interface:
		field.SetZero()
		return nil
	default:
		return fmt.Errorf("cannot set empty value for field type: %s", field.Type())
	}
}

// setStringValue sets string field values
func setStringValue(field reflect.Value, value string) error {
	field.SetString(value)
	return nil
}

// setIntValue sets integer field values with overflow checking
func setIntValue(field reflect.Value, value string) error {
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("error converting value to int: %w", err)
	}

	if field.OverflowInt(intValue) {
		return fmt.Errorf("value %d overflows %s: %w", intValue, field.Type(), strconv.ErrRange)
	}

	field.SetInt(intValue)
	return nil
}

// setUintValue sets unsigned integer field values with overflow checking
func setUintValue(field reflect.Value, value string) error {
	uintValue, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("error converting value to uint: %w", err)
	}

	if field.OverflowUint(uintValue) {
		return fmt.Errorf("value %d overflows %s: %w", uintValue, field.Type(), strconv.ErrRange)
	}

	field.SetUint(uintValue)
	return nil
}

// setFloatValue sets float field values with overflow checking
func setFloatValue(field reflect.Value, value string) error {
	floatValue, err := strconv.ParseFloat(value, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("error converting value to float: %w", err)
	}

	if field.OverflowFloat(floatValue) {
		return fmt.Errorf("value %f overflows %s: %w", floatValue, field.Type(), strconv.ErrRange)
	}

	field.SetFloat(floatValue)
	return nil
}

// setComplexValue sets complex field values
func setComplexValue(field reflect.Value, value string) error {
	complexValue, err := strconv.ParseComplex(value, field.Type().Bits())
	if err != nil {
		return fmt.Errorf("error converting value to complex: %w", err)
	}

	if field.OverflowComplex(complexValue) {
		return fmt.Errorf("value %v overflows %s", complexValue, field.Type())
	}

	field.SetComplex(complexValue)
	return nil
}

// setBoolValue sets boolean field values
//
// Many common boolean representations are supported:
//   - "true", "1", "yes", "on"
//   - "false", "0", "no", "off"
//   - Standard boolean parsing using strconv.ParseBool
func setBoolValue(field reflect.Value, value string) error {
	switch value {
	case "true", "1", "yes", "on", "True", "TRUE", "YES", "ON":
		field.SetBool(true)
		return nil
	case "false", "0", "no", "off", "False", "FALSE", "NO", "OFF":
		field.SetBool(false)
		return nil
	default:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("error converting value to bool: %w", err)
		}
		field.SetBool(boolValue)
		return nil
	}
}

// setSliceValue sets slice field values
func setSliceValue(field reflect.Value, value string) error {
	elemType := field.Type().Elem()

	switch elemType.Kind() {
	case reflect.Uint8:
		field.SetBytes([]byte(value))
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, field.Type())
	}
}

// setPointerValue allocates the pointee and converts into it
func setPointerValue(field reflect.Value, value string) error {
	elem := reflect.New(field.Type().Elem())
	if err := setFieldValue(elem.Elem(), value); err != nil {
		return err
	}
	field.Set(elem)
	return nil
}

func setUUIDValue(field reflect.Value, value string) error {
	uuidValue, err := uuid.Parse(value)
	if err != nil {
		return fmt.Errorf("error converting value to UUID: %w", err)
	}
	field.Set(reflect.ValueOf(uuidValue))
	return nil
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"15:04:05",
}

func setTimeValue(field reflect.Value, value string) error {
	var (
		timeValue time.Time
		err       error
	)
	for _, layout := range timeLayouts {
		if timeValue, err = time.Parse(layout, value); err == nil {
			field.Set(reflect.ValueOf(timeValue))
			return nil
		}
	}
	return fmt.Errorf("error converting value to time.Time: %w", err)
}

func setDurationValue(field reflect.Value, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("error converting value to time.Duration: %w", err)
	}
	field.SetInt(int64(d))
	return nil
}

// setInterfaceValue sets interface{} field values
func setInterfaceValue(field reflect.Value, value string) error {
	if field.NumMethod() != 0 {
		return fmt.Errorf("cannot set value for interface with methods: %s", field.Type())
	}

	// For empty interface, store as string
	field.Set(reflect.ValueOf(value))
	return nil
}

var _defaultConverters = NewConverters()

// DefaultConverters returns the process-wide conversion table used when no
// table is configured explicitly.
func DefaultConverters() *Converters {
	return _defaultConverters
}
