package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propdeps/internal/ir"
)

func compileString(t *testing.T, src, path string) (*ir.TypeSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileType(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileTypeBasic(t *testing.T) {
	spec, err := compileString(t, `
		type: Invoice: {
			doc: "A priced line"
			properties: {
				Price: {}
				Quantity: {}
				Total: depends_on: ["Price", "Quantity"]
			}
		}
	`, "type.Invoice")
	require.NoError(t, err)

	assert.Equal(t, "Invoice", spec.Name)
	assert.Equal(t, "A priced line", spec.Doc)
	assert.Empty(t, spec.Extends)
	assert.Equal(t, []ir.PropertySpec{
		{Name: "Price"},
		{Name: "Quantity"},
		{Name: "Total", DependsOn: []string{"Price", "Quantity"}},
	}, spec.Properties)
}

func TestCompileTypeWildcardShorthand(t *testing.T) {
	spec, err := compileString(t, `
		type: Sheet: properties: {
			X: {}
			Summary: {
				doc: "Recomputed on any change"
				depends_on: "*"
			}
		}
	`, "type.Sheet")
	require.NoError(t, err)

	require.Len(t, spec.Properties, 2)
	assert.Equal(t, []string{ir.Wildcard}, spec.Properties[1].DependsOn)
	assert.Equal(t, "Recomputed on any change", spec.Properties[1].Doc)
}

func TestCompileTypeExtends(t *testing.T) {
	spec, err := compileString(t, `
		type: Discounted: {
			extends: "Invoice"
			properties: Total: depends_on: ["Discount"]
		}
	`, "type.Discounted")
	require.NoError(t, err)

	assert.Equal(t, "Invoice", spec.Extends)
	assert.Equal(t, []ir.PropertySpec{{Name: "Total", DependsOn: []string{"Discount"}}}, spec.Properties)
}

func TestCompileTypeExtendsWithoutProperties(t *testing.T) {
	spec, err := compileString(t, `type: Alias: extends: "Invoice"`, "type.Alias")
	require.NoError(t, err)
	assert.Equal(t, "Invoice", spec.Extends)
	assert.Empty(t, spec.Properties)
}

func TestCompileTypeMissingProperties(t *testing.T) {
	_, err := compileString(t, `type: Empty: doc: "nothing here"`, "type.Empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "properties")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileTypeBadDependsOn(t *testing.T) {
	_, err := compileString(t, `
		type: Bad: properties: {
			A: {}
			B: depends_on: 42
		}
	`, "type.Bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "properties.B.depends_on", compileErr.Field)
}

func TestCompileTypeNonStringDependency(t *testing.T) {
	_, err := compileString(t, `
		type: Bad: properties: {
			A: {}
			B: depends_on: ["A", 1]
		}
	`, "type.Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependency names must be strings")
}

func TestCompileTypeNonStringExtends(t *testing.T) {
	_, err := compileString(t, `type: Bad: { extends: 3, properties: A: {} }`, "type.Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extends")
}

func TestCompileTypesPreservesOrder(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		type: {
			Zeta: properties: A: {}
			Alpha: properties: B: {}
		}
	`)
	require.NoError(t, v.Err())

	specs, err := CompileTypes(v.LookupPath(cue.ParsePath("type")))
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "Zeta", specs[0].Name)
	assert.Equal(t, "Alpha", specs[1].Name)
}

func TestCompileTypesReportsTypeName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`type: Broken: doc: "no properties"`)
	require.NoError(t, v.Err())

	_, err := CompileTypes(v.LookupPath(cue.ParsePath("type")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type Broken")
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "properties", Message: "at least one property is required"}
	assert.Equal(t, "properties: at least one property is required", err.Error())
}
