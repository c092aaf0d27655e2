package rematch

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDecl_Validate(t *testing.T) {
	tests := []struct {
		name string
		decl TypeDecl
		want error
	}{
		{
			name: "valid enum",
			decl: testEnumDecl(),
		},
		{
			name: "valid struct",
			decl: testPairDecl(),
		},
		{
			name: "empty name",
			decl: StructDecl("", UnitShape(), "x"),
			want: ErrEmptyTypeName,
		},
		{
			name: "unknown kind",
			decl: TypeDecl{Name: "T", Kind: DeclKind(9)},
			want: ErrUnknownDeclKind,
		},
		{
			name: "struct with variants",
			decl: TypeDecl{Name: "T", Kind: KindStruct, Variants: []Variant{NewVariant("T", "A", UnitShape())}},
			want: ErrStructHasVariants,
		},
		{
			name: "enum with patterns",
			decl: TypeDecl{Name: "T", Kind: KindEnum, Patterns: Patterns("T", "", "x")},
			want: ErrEnumHasStructPatterns,
		},
		{
			name: "unit shape with fields",
			decl: StructDecl("T", Shape{Kind: ShapeUnit, Fields: []Field{{Name: "a", Type: StringType}}}, "x"),
			want: ErrUnitShapeHasFields,
		},
		{
			name: "unknown shape kind",
			decl: StructDecl("T", Shape{Kind: ShapeKind(7)}, "x"),
			want: ErrUnknownShapeKind,
		},
		{
			name: "duplicate field",
			decl: StructDecl("T", NamedShape(Field{Name: "a", Type: StringType}, Field{Name: "a", Type: StringType}), "x"),
			want: ErrDuplicateField,
		},
		{
			name: "named field without name",
			decl: StructDecl("T", NamedShape(Field{Type: StringType}), "x"),
			want: ErrEmptyFieldName,
		},
		{
			name: "field without type",
			decl: StructDecl("T", PositionalShape(nil), "x"),
			want: ErrNilFieldType,
		},
		{
			name: "variant without name",
			decl: EnumDecl("T", NewVariant("T", "", UnitShape())),
			want: ErrEmptyVariantName,
		},
		{
			name: "duplicate variant",
			decl: EnumDecl("T", NewVariant("T", "A", UnitShape()), NewVariant("T", "A", UnitShape())),
			want: ErrDuplicateVariant,
		},
		{
			name: "pattern owned by another type",
			decl: EnumDecl("T", NewVariant("U", "A", UnitShape(), "x")),
			want: ErrPatternOwnerMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decl.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPatternID_String(t *testing.T) {
	assert.Equal(t, "Pair#0", PatternID{Type: "Pair"}.String())
	assert.Equal(t, "Test::B#2", PatternID{Type: "Test", Variant: "B", Index: 2}.String())
}

func TestPatterns(t *testing.T) {
	patterns := Patterns("T", "V", "a", "b")

	assert.Equal(t, []Pattern{
		{ID: PatternID{Type: "T", Variant: "V", Index: 0}, Source: "a"},
		{ID: PatternID{Type: "T", Variant: "V", Index: 1}, Source: "b"},
	}, patterns)
	assert.Empty(t, Patterns("T", ""))
}

func TestShape_FieldLabel(t *testing.T) {
	named := NamedShape(Field{Name: "x", Type: uintType})
	positional := PositionalShape(uintType, reflect.TypeFor[string]())

	assert.Equal(t, "x", named.FieldLabel(0))
	assert.Equal(t, "1", positional.FieldLabel(1))
	assert.Equal(t, "", positional.Fields[0].Name)
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "unit", ShapeUnit.String())
	assert.Equal(t, "named", ShapeNamed.String())
	assert.Equal(t, "positional", ShapePositional.String())
	assert.Equal(t, "struct", KindStruct.String())
	assert.Equal(t, "enum", KindEnum.String())
	assert.Equal(t, "missing group", MissingGroup.String())
	assert.Equal(t, "field conversion", FieldConversion.String())
}
