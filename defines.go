package rematch

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// constants for the rematch struct tag
const (
	TagName    = "rematch"
	TagSkip    = "-"
	BlankField = "_"
)

// constants for builtin type names accepted by a TypeTable
const (
	StringTypeName     = "string"
	BoolTypeName       = "bool"
	IntTypeName        = "int"
	Int8TypeName       = "int8"
	Int16TypeName      = "int16"
	Int32TypeName      = "int32"
	Int64TypeName      = "int64"
	UintTypeName       = "uint"
	Uint8TypeName      = "uint8"
	Uint16TypeName     = "uint16"
	Uint32TypeName     = "uint32"
	Uint64TypeName     = "uint64"
	Float32TypeName    = "float32"
	Float64TypeName    = "float64"
	Complex64TypeName  = "complex64"
	Complex128TypeName = "complex128"
	BytesTypeName      = "bytes"
	UUIDTypeName       = "uuid"
	TimeTypeName       = "time"
	DurationTypeName   = "duration"
)

// Engine name constants for built in regex engines.
const (
	StdEngineName     = "std"
	Regexp2EngineName = "regexp2"
)

// reflect.TypeOf constants for type checks
var (
	StringType   = reflect.TypeOf("")
	BytesType    = reflect.TypeOf([]byte{})
	UUIDType     = reflect.TypeOf(uuid.UUID{})
	TimeType     = reflect.TypeOf(time.Time{})
	DurationType = reflect.TypeOf(time.Duration(0))
)
