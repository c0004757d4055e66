package depgraph

// Builder is the fluent registrar for one dependent property.
//
//	obj.BeginDependency("Total").DependsOn("A").DependsOn("B")
type Builder struct {
	dependent string
	record    func(dependent, dependency string)
}

// NewBuilder creates a registrar for dependent that records each edge
// through record. A nil record is an invalid-argument error.
func NewBuilder(dependent string, record func(dependent, dependency string)) (*Builder, error) {
	if record == nil {
		return nil, NewInvalidArgument("record", "edge recording callback is required")
	}
	return &Builder{dependent: dependent, record: record}, nil
}

// DependsOn records that the builder's property depends on name and
// returns the builder for chaining. Self-edges are dropped by the store.
func (b *Builder) DependsOn(name string) *Builder {
	b.record(b.dependent, name)
	return b
}

// Property returns the dependent property name.
func (b *Builder) Property() string {
	return b.dependent
}
