package observable_test

import (
	"sync"

	"github.com/roach88/propdeps/internal/command"
	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/observable"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// recorder collects notifications in the order they are raised.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func record(o *observable.Object) *recorder {
	r := &recorder{}
	o.Subscribe(r.add)
	return r
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.names
	r.names = nil
	if out == nil {
		out = []string{}
	}
	return out
}

// invoice: Total = A + B.
type invoice struct {
	observable.Object
	a, b int
}

var invoiceType = typeinfo.Define[invoice]("Invoice").
	Property("A", func(i *invoice) any { return i.a }).
	Property("B", func(i *invoice) any { return i.b }).
	Property("Total", func(i *invoice) any { return i.a + i.b }).DependsOn("A").DependsOn("B").
	MustBuild()

func newInvoice(a, b int) *invoice {
	inv := &invoice{a: a, b: b}
	inv.MustInit(inv, invoiceType)
	return inv
}

func (i *invoice) SetA(v int) (bool, error) { return observable.SetInferred(&i.Object, &i.a, v) }
func (i *invoice) SetB(v int) (bool, error) { return observable.SetInferred(&i.Object, &i.b, v) }

// assign uses an explicit name and is not inferable.
func (i *invoice) assign(v int) (bool, error) { return observable.SetInferred(&i.Object, &i.a, v) }

// graph is a map-backed object over a declared type, used for shape tests.
type graph struct {
	observable.Object
	values map[string]int
}

func newGraph(t *typeinfo.Type) *graph {
	g := &graph{values: make(map[string]int)}
	g.MustInit(g, t)
	return g
}

func (g *graph) set(name string, v int) error {
	cur := g.values[name]
	_, err := observable.Set(&g.Object, name, &cur, v)
	g.values[name] = cur
	return err
}

func declare(name string, props ...ir.PropertySpec) *typeinfo.Type {
	t, err := typeinfo.FromSpec(ir.TypeSpec{Name: name, Properties: props}, nil, func(self any, property string) any {
		return self.(*graph).values[property]
	})
	if err != nil {
		panic(err)
	}
	return t
}

func prop(name string, deps ...string) ir.PropertySpec {
	return ir.PropertySpec{Name: name, DependsOn: deps}
}

// form holds a save command whose enablement tracks Name.
type form struct {
	observable.Object
	name string
	save *command.Command
	log  *[]string
}

var formType = typeinfo.Define[form]("Form").
	Property("Name", func(f *form) any { return f.name }).
	Property("Save", func(f *form) any { return f.save }).DependsOn("Name").
	MustBuild()

func newForm(log *[]string) *form {
	f := &form{log: log}
	f.save = command.MustNew(func() error { return nil }, func() bool { return f.name != "" })
	f.MustInit(f, formType)
	f.save.OnCanExecuteChanged(func(enabled bool) {
		if enabled {
			*log = append(*log, "save:enabled")
		} else {
			*log = append(*log, "save:disabled")
		}
	})
	f.Subscribe(func(name string) { *log = append(*log, name) })
	return f
}

func (f *form) SetName(v string) (bool, error) {
	return observable.SetInferred(&f.Object, &f.name, v)
}
