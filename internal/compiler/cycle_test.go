package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propdeps/internal/ir"
)

func props(decls ...[]string) []ir.PropertySpec {
	out := make([]ir.PropertySpec, len(decls))
	for i, d := range decls {
		out[i] = ir.PropertySpec{Name: d[0], DependsOn: d[1:]}
	}
	return out
}

func TestAnalyzeCycles_Empty(t *testing.T) {
	warnings := AnalyzeCycles(nil)
	assert.Empty(t, warnings)
	assert.NotNil(t, warnings)
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	warnings := AnalyzeCycles([]ir.TypeSpec{invoiceSpec()})
	assert.Empty(t, warnings, "DAG should produce no cycle warnings")
}

func TestAnalyzeCycles_TwoNodeCycle(t *testing.T) {
	spec := ir.TypeSpec{Name: "Pair", Properties: props([]string{"A", "B"}, []string{"B", "A"})}

	warnings := AnalyzeCycles([]ir.TypeSpec{spec})
	require.Len(t, warnings, 1)
	assert.Equal(t, "Pair", warnings[0].Type)
	assert.Equal(t, []string{"A", "B", "A"}, warnings[0].Path)
	assert.Equal(t, LevelWarning, warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "A → B → A")
}

func TestAnalyzeCycles_ThreeNodeCycle(t *testing.T) {
	spec := ir.TypeSpec{Name: "Ring", Properties: props(
		[]string{"C", "B"},
		[]string{"B", "A"},
		[]string{"A", "C"},
	)}

	warnings := AnalyzeCycles([]ir.TypeSpec{spec})
	require.Len(t, warnings, 1)
	// Writes flow A → B → C → A; the path starts at the first declared member.
	assert.Equal(t, []string{"C", "A", "B", "C"}, warnings[0].Path)
}

func TestAnalyzeCycles_SelfDependencyIsInfo(t *testing.T) {
	spec := ir.TypeSpec{Name: "Loop", Properties: props([]string{"A", "A"})}

	warnings := AnalyzeCycles([]ir.TypeSpec{spec})
	require.Len(t, warnings, 1)
	assert.Equal(t, LevelInfo, warnings[0].Level)
	assert.Equal(t, []string{"A", "A"}, warnings[0].Path)
	assert.Contains(t, warnings[0].Message, "ignored")
}

func TestAnalyzeCycles_WildcardWithBackEdge(t *testing.T) {
	spec := ir.TypeSpec{Name: "Sheet", Properties: props(
		[]string{"X"},
		[]string{"Summary", ir.Wildcard},
		[]string{"Echo", "Summary"},
	)}

	warnings := AnalyzeCycles([]ir.TypeSpec{spec})
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"Summary", "Echo", "Summary"}, warnings[0].Path)
}

func TestAnalyzeCycles_WildcardAlone(t *testing.T) {
	spec := ir.TypeSpec{Name: "Sheet", Properties: props(
		[]string{"X"},
		[]string{"Y"},
		[]string{"Summary", ir.Wildcard},
	)}
	assert.Empty(t, AnalyzeCycles([]ir.TypeSpec{spec}))
}

func TestAnalyzeCycles_InheritedEdgesCloseCycle(t *testing.T) {
	base := ir.TypeSpec{Name: "Base", Properties: props([]string{"A"}, []string{"B", "A"})}
	derived := ir.TypeSpec{Name: "Derived", Extends: "Base", Properties: props([]string{"A", "B"})}

	warnings := AnalyzeCycles([]ir.TypeSpec{base, derived})
	require.Len(t, warnings, 1)
	assert.Equal(t, "Derived", warnings[0].Type)
	assert.Equal(t, []string{"A", "B", "A"}, warnings[0].Path)
}

func TestAnalyzeCycles_SkipsBrokenInheritance(t *testing.T) {
	spec := ir.TypeSpec{Name: "Orphan", Extends: "Nowhere", Properties: props([]string{"A", "B"}, []string{"B", "A"})}
	assert.Empty(t, AnalyzeCycles([]ir.TypeSpec{spec}))
}

func TestTarjanSCC_DeclarationOrder(t *testing.T) {
	g := notificationGraph{
		nodes: []string{"P", "Q", "R", "S"},
		edges: map[string][]string{
			"P": {"Q"},
			"Q": {"P"},
			"R": {"S"},
			"S": {"R"},
		},
	}
	assert.Equal(t, [][]string{{"P", "Q"}, {"R", "S"}}, tarjanSCC(g))
}
