package rematch

// binding locates the shape being bound, for error reporting.
type binding struct {
	TypeName string
	Variant  string
	Pattern  PatternID
	Input    string
}

// bindShape converts the captures of one match into the shape's field
// values. Field i is bound from group i+1; group 0 and any groups past the
// last field are ignored.
//
// Binding is all-or-nothing: on error no field values are returned, and
// the error names the first field that failed.
func bindShape(shape Shape, caps Captures, conv *Converters, at binding) ([]any, error) {
	if shape.Kind == ShapeUnit {
		return nil, nil
	}

	values := make([]any, len(shape.Fields))
	for i, field := range shape.Fields {
		text, ok := caps.Group(i + 1)
		if !ok {
			return nil, at.fail(shape, i, MissingGroup, nil)
		}

		value, err := conv.Convert(field.Type, text)
		if err != nil {
			return nil, at.fail(shape, i, FieldConversion, err)
		}
		values[i] = value
	}
	return values, nil
}

func (at binding) fail(shape Shape, index int, kind BindErrorKind, err error) *BindError {
	be := &BindError{
		Kind:       kind,
		Type:       at.TypeName,
		Variant:    at.Variant,
		Pattern:    at.Pattern,
		Input:      at.Input,
		FieldIndex: index,
		Err:        err,
	}
	if shape.Kind == ShapeNamed {
		be.FieldName = shape.Fields[index].Name
	}
	if err != nil {
		be.Message = err.Error()
	}
	return be
}
