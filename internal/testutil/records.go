package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/propdeps/internal/compiler"
	"github.com/roach88/propdeps/internal/dynamic"
	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// Prop builds a property spec: Prop("Total", "A", "B").
func Prop(name string, dependsOn ...string) ir.PropertySpec {
	return ir.PropertySpec{Name: name, DependsOn: dependsOn}
}

// MustLink validates and links specs into a registry of record types,
// failing the test on any error.
func MustLink(t testing.TB, specs ...ir.TypeSpec) *typeinfo.Registry {
	t.Helper()
	require.Empty(t, compiler.Validate(specs), "declarations must validate")
	reg, err := compiler.Link(specs, dynamic.Getter)
	require.NoError(t, err)
	return reg
}

// NewRecord creates a record of the named type.
func NewRecord(t testing.TB, reg *typeinfo.Registry, typeName string, initial map[string]any) *dynamic.Record {
	t.Helper()
	typ, ok := reg.Lookup(typeName)
	require.True(t, ok, "type %s not linked", typeName)
	r, err := dynamic.New(typ, initial)
	require.NoError(t, err)
	return r
}
