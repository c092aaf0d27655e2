// Package rematch decodes strings into typed values using regular
// expressions attached to the target type.
//
// A declared type is either a struct, with one shape and one or more
// patterns, or an enum, whose variants each carry their own shape and
// patterns. A shape is the ordered list of fields to populate:
//   - Unit: no fields. A match alone selects the type or variant.
//   - Named: fields with names, bound in declaration order.
//   - Positional: unnamed fields, bound in declaration order.
//
// Field i is always bound from capture group i+1 of the matching pattern.
// Group 0 and any extra groups are ignored. Patterns are not anchored, so
// a pattern matches anywhere in the input unless it uses ^ and $.
//
// Patterns are tried in declaration order (for enums: variants in order,
// then each variant's patterns in order) and the first pattern that
// matches decides the result. If binding that match fails, the failure is
// returned; later patterns are not tried. A variant without patterns is
// never selected.
//
// Declarations can be built three ways:
//   - Directly, with StructDecl, EnumDecl and NewVariant, and parsed into a
//     *Value with NewParser.
//   - From Go types, with NewStructParser and NewEnumParser.
//   - From a YAML schema file, with LoadSchema.
//
// Go types declare their patterns either as constructor arguments or on
// blank fields. Tag values are quoted Go strings, so backslashes are
// doubled:
//
//	type Pair struct {
//		_ struct{} `rematch:"a number (\\d+) with some string ([abc]+)"`
//		A uint
//		S string
//	}
//
//	p := rematch.MustNewStructParser[Pair](rematch.ParserOpts{})
//	pair, err := p.Parse("a number 42 with some string abcab")
//
// Every pattern is compiled exactly once per identity (type, variant,
// index) by a PatternRegistry and shared by all parsers and goroutines
// using that registry. Compilation happens when a parser is built, so a
// malformed pattern is reported as a *CompileError by the constructor and
// Parse itself never compiles.
//
// Parse failures are either a *NoMatchError, when no pattern matched, or a
// *BindError, when the first matching pattern could not populate a field.
// Both can be tested with errors.Is against ErrNoMatch and ErrBind. An
// engine that fails a search, such as a regexp2 engine with a Timeout,
// yields a *MatchError (ErrMatch) instead.
package rematch
