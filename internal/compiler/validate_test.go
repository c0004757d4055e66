package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propdeps/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func invoiceSpec() ir.TypeSpec {
	return ir.TypeSpec{
		Name: "Invoice",
		Properties: []ir.PropertySpec{
			{Name: "Price"},
			{Name: "Quantity"},
			{Name: "Total", DependsOn: []string{"Price", "Quantity"}},
		},
	}
}

func TestValidateValid(t *testing.T) {
	errs := Validate([]ir.TypeSpec{invoiceSpec()})
	assert.Empty(t, errs, "valid spec should have no errors")
}

func TestValidateWildcardAndSelfAreLegal(t *testing.T) {
	spec := ir.TypeSpec{
		Name: "Sheet",
		Properties: []ir.PropertySpec{
			{Name: "X"},
			{Name: "Summary", DependsOn: []string{ir.Wildcard, "Summary"}},
		},
	}
	assert.Empty(t, Validate([]ir.TypeSpec{spec}))
}

func TestValidateInheritedDependency(t *testing.T) {
	derived := ir.TypeSpec{
		Name:    "Discounted",
		Extends: "Invoice",
		Properties: []ir.PropertySpec{
			{Name: "Discount"},
			{Name: "Total", DependsOn: []string{"Discount", "Price"}},
		},
	}
	// Derived listed before its base.
	assert.Empty(t, Validate([]ir.TypeSpec{derived, invoiceSpec()}))
}

func TestValidateEmptyTypeName(t *testing.T) {
	errs := Validate([]ir.TypeSpec{{Name: "  ", Properties: []ir.PropertySpec{{Name: "A"}}}})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrTypeNameEmpty, errs[0].Code)
	assert.Equal(t, "types[0].name", errs[0].Field)
}

func TestValidateDuplicateType(t *testing.T) {
	errs := Validate([]ir.TypeSpec{invoiceSpec(), invoiceSpec()})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateType, errs[0].Code)
	assert.Contains(t, errs[0].Message, "Invoice")
}

func TestValidatePropertyErrors(t *testing.T) {
	spec := ir.TypeSpec{
		Name: "Bad",
		Properties: []ir.PropertySpec{
			{Name: "A"},
			{Name: ""},
			{Name: ir.Wildcard},
			{Name: "A"},
			{Name: "B", DependsOn: []string{"", "Missing", "A"}},
		},
	}

	errs := Validate([]ir.TypeSpec{spec})
	assert.Equal(t, []string{
		ErrPropertyNameEmpty,
		ErrReservedName,
		ErrDuplicateProperty,
		ErrEmptyDependency,
		ErrUnknownDependency,
	}, codes(errs))
	assert.Equal(t, "type.Bad.properties[4].depends_on[1]", errs[4].Field)
	assert.Contains(t, errs[4].Message, `"Missing"`)
}

func TestValidateUnknownBase(t *testing.T) {
	spec := ir.TypeSpec{
		Name:       "Orphan",
		Extends:    "Nowhere",
		Properties: []ir.PropertySpec{{Name: "A"}},
	}
	errs := Validate([]ir.TypeSpec{spec})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownBaseType, errs[0].Code)
	assert.Equal(t, "type.Orphan.extends", errs[0].Field)
}

func TestValidateInheritanceCycle(t *testing.T) {
	specs := []ir.TypeSpec{
		{Name: "A", Extends: "B", Properties: []ir.PropertySpec{{Name: "X"}}},
		{Name: "B", Extends: "A", Properties: []ir.PropertySpec{{Name: "Y"}}},
	}
	errs := Validate(specs)
	assert.Equal(t, []string{ErrInheritanceCycle, ErrInheritanceCycle}, codes(errs))
	assert.Contains(t, errs[0].Message, "A → B → A")
}

func TestValidateNoProperties(t *testing.T) {
	errs := Validate([]ir.TypeSpec{{Name: "Empty"}})
	assert.Equal(t, []string{ErrNoProperties}, codes(errs))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	specs := []ir.TypeSpec{
		{Name: "", Properties: []ir.PropertySpec{{Name: "A"}}},
		{Name: "Orphan", Extends: "Nowhere", Properties: []ir.PropertySpec{{Name: "A", DependsOn: []string{"Ghost"}}}},
	}
	errs := Validate(specs)
	assert.Equal(t, []string{ErrTypeNameEmpty, ErrUnknownBaseType, ErrUnknownDependency}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "type.A.extends", Message: "unknown base type", Code: ErrUnknownBaseType}
	assert.Equal(t, "[E108] type.A.extends: unknown base type", err.Error())
}

func TestValidationErrorFormatWithLine(t *testing.T) {
	err := ValidationError{Field: "type.A", Message: "bad", Code: ErrTypeNameEmpty, Line: 7}
	assert.Equal(t, "[E101] line 7: type.A: bad", err.Error())
}
