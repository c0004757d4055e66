package typeinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/ir"
)

type document struct {
	title string
	body  string
}

type invoice struct {
	document
	a, b int
}

var documentType = Define[document]("Document").
	Property("Title", func(d *document) any { return d.title }).
	Property("Body", func(d *document) any { return d.body }).
	Property("Label", func(d *document) any { return d.title + ":" + d.body }).DependsOn("Title").DependsOn("Body").
	MustBuild()

var invoiceType = Define[invoice]("Invoice").
	Extends(documentType, func(i *invoice) any { return &i.document }).
	Property("A", func(i *invoice) any { return i.a }).
	Property("B", func(i *invoice) any { return i.b }).
	Property("Total", func(i *invoice) any { return i.a + i.b }).DependsOn("A", "B", "Total").
	Property("Label", func(i *invoice) any { return i.title }).DependsOn("Total").
	MustBuild()

func TestScan_DeclarationOrderAndSelfEdges(t *testing.T) {
	assert.Equal(t, []ir.Edge{
		{Dependent: "Label", Dependency: "Title"},
		{Dependent: "Label", Dependency: "Body"},
	}, Scan(documentType))

	assert.Equal(t, []ir.Edge{
		{Dependent: "Label", Dependency: "Title"},
		{Dependent: "Label", Dependency: "Body"},
		{Dependent: "Total", Dependency: "A"},
		{Dependent: "Total", Dependency: "B"},
		{Dependent: "Label", Dependency: "Total"},
	}, Scan(invoiceType))
}

func TestScan_NoAnnotations(t *testing.T) {
	plain := Define[document]("Plain").
		Property("Title", func(d *document) any { return d.title }).
		MustBuild()
	assert.Empty(t, Scan(plain))
}

func TestType_InheritedPropertiesVisible(t *testing.T) {
	assert.Equal(t, []string{"Title", "Body", "Label", "A", "B", "Total"}, invoiceType.PropertyNames())
	assert.True(t, invoiceType.IsA(documentType))
	assert.False(t, documentType.IsA(invoiceType))
	assert.Same(t, documentType, invoiceType.Base())

	title, ok := invoiceType.Property("Title")
	require.True(t, ok)
	assert.Same(t, documentType, title.DeclaringType)
	assert.Equal(t, "Document.Title", title.String())

	label, ok := invoiceType.Property("Label")
	require.True(t, ok)
	assert.Same(t, invoiceType, label.DeclaringType)
	assert.Equal(t, []string{"Title", "Body", "Total"}, label.DependsOn, "shadowing keeps inherited declarations")
}

func TestProperty_ValueThroughUpcast(t *testing.T) {
	inv := &invoice{document: document{title: "Q3"}, a: 2, b: 3}

	title, _ := invoiceType.Property("Title")
	v, ok := title.Value(inv)
	require.True(t, ok)
	assert.Equal(t, "Q3", v)

	total, _ := invoiceType.Property("Total")
	v, ok = total.Value(inv)
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestDefine_Errors(t *testing.T) {
	_, err := Define[document]("Bad").Property("Title", nil).Build()
	require.Error(t, err)
	assert.True(t, depgraph.IsInvalidArgument(err))

	_, err = Define[document]("Bad").
		Property("Title", func(d *document) any { return d.title }).
		Property("Title", func(d *document) any { return d.title }).
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate property")

	_, err = Define[document]("Bad").Property(ir.Wildcard, func(d *document) any { return nil }).Build()
	require.Error(t, err)
	assert.True(t, depgraph.IsInvalidArgument(err))

	_, err = Define[document]("").Build()
	require.Error(t, err)

	_, err = Define[invoice]("Bad").Extends(nil, nil).Build()
	require.Error(t, err)
	assert.True(t, depgraph.IsInvalidArgument(err))

	assert.Panics(t, func() {
		Define[document]("").MustBuild()
	})
}

func TestFromSpec_DeclarationOnly(t *testing.T) {
	typ, err := FromSpec(ir.TypeSpec{
		Name: "Sheet",
		Properties: []ir.PropertySpec{
			{Name: "X"},
			{Name: "Summary", DependsOn: []string{ir.Wildcard}},
		},
	}, nil, nil)
	require.NoError(t, err)

	p, _ := typ.Property("X")
	_, ok := p.Value(nil)
	assert.False(t, ok, "declaration-only properties have no getter")
}

func TestFromSpec_FieldGetter(t *testing.T) {
	values := map[string]any{"X": 7}
	typ, err := FromSpec(ir.TypeSpec{
		Name:       "Sheet",
		Properties: []ir.PropertySpec{{Name: "X"}},
	}, nil, func(self any, property string) any {
		return self.(map[string]any)[property]
	})
	require.NoError(t, err)

	p, _ := typ.Property("X")
	v, ok := p.Value(values)
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(documentType))
	require.NoError(t, r.Register(invoiceType))
	assert.Error(t, r.Register(documentType))

	got, ok := r.Lookup("Invoice")
	require.True(t, ok)
	assert.Same(t, invoiceType, got)

	_, ok = r.Lookup("Missing")
	assert.False(t, ok)

	assert.Equal(t, []*Type{documentType, invoiceType}, r.Types())
}
