package observable_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/observable"
)

func observableSet(inv *invoice, name string, v int, cb ...func(old, new int)) (bool, error) {
	field := &inv.a
	if name == "B" {
		field = &inv.b
	}
	return observable.Set(&inv.Object, name, field, v, cb...)
}

func TestInit_ScansDeclarations(t *testing.T) {
	inv := newInvoice(0, 0)
	assert.Equal(t, []ir.Edge{
		{Dependent: "Total", Dependency: "A"},
		{Dependent: "Total", Dependency: "B"},
	}, inv.Declarations())
	assert.Same(t, invoiceType, inv.Type())
}

func TestBeginDependency_MergesWithDeclarations(t *testing.T) {
	inv := newInvoice(0, 0)
	inv.BeginDependency("Total").DependsOn("B").DependsOn("A").DependsOn("Total")
	inv.BeginDependency("B").DependsOn("A")

	assert.Equal(t, []ir.Edge{
		{Dependent: "Total", Dependency: "A"},
		{Dependent: "Total", Dependency: "B"},
		{Dependent: "B", Dependency: "A"},
	}, inv.Declarations())

	deps, err := inv.DependentsOf("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total", "B"}, deps)

	deps, err = inv.DependenciesOf("Total")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, deps)

	// Declarations are per instance.
	other := newInvoice(0, 0)
	assert.Len(t, other.Declarations(), 2)
}

func TestSubscribe_OrderAndCancel(t *testing.T) {
	inv := newInvoice(0, 0)
	var log []string
	cancelFirst := inv.Subscribe(func(name string) { log = append(log, "first:"+name) })
	inv.Subscribe(func(name string) { log = append(log, "second:"+name) })
	inv.Subscribe(nil)

	_, err := inv.SetA(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first:A", "second:A", "first:Total", "second:Total"}, log)

	cancelFirst()
	cancelFirst()
	log = nil
	_, err = inv.SetA(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"second:A", "second:Total"}, log)
}

func TestSubscribe_ReentrantWrite(t *testing.T) {
	inv := newInvoice(0, 0)
	r := record(&inv.Object)
	inv.Subscribe(func(name string) {
		if name == "A" {
			_, err := inv.SetB(inv.a * 10)
			assert.NoError(t, err)
		}
	})

	_, err := inv.SetA(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "Total", "Total"}, r.take())
}

func TestReactor_RunsBeforeDependentNotification(t *testing.T) {
	var log []string
	f := newForm(&log)
	assert.False(t, f.save.Enabled())

	_, err := f.SetName("draft")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "save:enabled", "Save"}, log)
	assert.True(t, f.save.Enabled())

	log = log[:0]
	_, err = f.SetName("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "save:disabled", "Save"}, log)
}

func TestReactor_NotCalledForPrimary(t *testing.T) {
	var log []string
	f := newForm(&log)

	require.NoError(t, f.NotifyChanged("Save"))
	assert.Equal(t, []string{"Save"}, log)
}

func TestSetInferred_RequiresSetMethod(t *testing.T) {
	inv := newInvoice(0, 0)

	_, err := inv.assign(3)
	require.Error(t, err)
	assert.True(t, depgraph.IsInvalidArgument(err))
	assert.Equal(t, 0, inv.a)
}

func TestSetEqual(t *testing.T) {
	g := newGraph(declare("Tags", prop("Tags"), prop("Count", "Tags")))
	r := record(&g.Object)
	tags := []string{"a"}
	eq := func(a, b []string) bool { return assert.ObjectsAreEqual(a, b) }

	changed, err := observable.SetEqual(&g.Object, "Tags", &tags, []string{"a"}, eq)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = observable.SetEqual(&g.Object, "Tags", &tags, []string{"a", "b"}, eq)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"Tags", "Count"}, r.take())

	_, err = observable.SetEqual(&g.Object, "Tags", &tags, nil, nil)
	assert.True(t, depgraph.IsInvalidArgument(err))

	_, err = observable.SetEqual[[]string](&g.Object, "Tags", nil, nil, eq)
	assert.True(t, depgraph.IsInvalidArgument(err))
}

func TestSetVia_Accessor(t *testing.T) {
	inv := newInvoice(0, 0)
	r := record(&inv.Object)

	model := struct{ b int }{b: 4}
	acc, err := observable.NewAccessor(func() int { return model.b }, func(v int) { model.b = v })
	require.NoError(t, err)

	changed, err := observable.SetVia(&inv.Object, "B", acc, 4)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = observable.SetVia(&inv.Object, "B", acc, 9)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 9, acc.Get())
	assert.Equal(t, []string{"B", "Total"}, r.take())

	_, err = observable.SetVia[int](&inv.Object, "B", nil, 1)
	assert.True(t, depgraph.IsInvalidArgument(err))
}

func TestNewAccessor_RequiresGetterAndSetter(t *testing.T) {
	_, err := observable.NewAccessor[int](nil, func(int) {})
	assert.True(t, depgraph.IsInvalidArgument(err))

	_, err = observable.NewAccessor(func() int { return 0 }, nil)
	assert.True(t, depgraph.IsInvalidArgument(err))
}

func TestSet_NilField(t *testing.T) {
	inv := newInvoice(0, 0)
	_, err := observable.Set[int](&inv.Object, "A", nil, 1)
	assert.True(t, depgraph.IsInvalidArgument(err))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	inv := &invoice{}
	inv.MustInit(inv, invoiceType, observable.WithLogger(logger))
	_, err := inv.SetA(1)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "property changed")
	assert.Contains(t, buf.String(), "property=A")
}

func TestConcurrentWrites(t *testing.T) {
	g := newGraph(declare("Wide", prop("Root"), prop("D1", "Root"), prop("D2", "D1")))
	var mu sync.Mutex
	counts := map[string]int{}
	g.Subscribe(func(name string) {
		mu.Lock()
		counts[name]++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.NotifyChanged("Root"))
		}()
	}
	wg.Wait()

	assert.Equal(t, map[string]int{"Root": 20, "D1": 20, "D2": 20}, counts)
}
