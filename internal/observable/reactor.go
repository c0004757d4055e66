package observable

// DependencyReactor is implemented by property values that need to run logic
// when the owning property is notified through a dependency change, such as
// commands that re-derive whether they can execute.
//
// The dispatcher discovers it with a type assertion on the dependent
// property's current value; no declaration is required.
type DependencyReactor interface {
	OnDependencyChanged()
}
