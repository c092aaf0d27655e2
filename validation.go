package rematch

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrValidation = errors.New("validation failed")

// Validatable is implemented by parse targets that check their own fields
// once they have been populated.
//
// ParserRegistry.ParseInto calls Validate after a successful parse, with
// the destination pointer as receiver when that is how Validate is
// declared.
type Validatable interface {
	Validate() error
}

// ValidationError wraps the error returned by a Validatable target.
type ValidationError struct {
	Type  reflect.Type
	Input string
	Err   error
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("Failed to validate %s: %v", ve.Type, ve.Err)
}

func (ve *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// validateTarget runs Validate on ptr (or the value it points to) if the
// target implements Validatable.
func validateTarget(ptr reflect.Value, input string) error {
	var v Validatable
	switch target := ptr.Interface().(type) {
	case Validatable:
		v = target
	default:
		elem := ptr.Elem()
		if elem.Kind() == reflect.Interface && elem.IsNil() {
			return nil
		}
		inner, ok := elem.Interface().(Validatable)
		if !ok {
			return nil
		}
		v = inner
	}

	if err := v.Validate(); err != nil {
		return &ValidationError{Type: ptr.Type().Elem(), Input: input, Err: err}
	}
	return nil
}
