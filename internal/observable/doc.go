// Package observable implements change notification with dependency
// propagation for objects whose types are declared with package typeinfo.
//
// An object embeds Object and initializes it in its constructor:
//
//	type Invoice struct {
//		observable.Object
//		a, b int
//	}
//
//	func NewInvoice() *Invoice {
//		inv := &Invoice{}
//		inv.MustInit(inv, invoiceType)
//		inv.BeginDependency("Total").DependsOn("Discount")
//		return inv
//	}
//
//	func (i *Invoice) SetA(v int) error {
//		_, err := observable.Set(&i.Object, "A", &i.a, v)
//		return err
//	}
//
// Init copies the type's declared edges into the object's own declaration
// store; BeginDependency appends fluent edges to it. Both must happen before
// the object is shared.
//
// # Dispatch
//
// A write whose new value equals the old one does nothing. Otherwise
// NotifyChanged raises the written property's notification, then walks the
// transitive dependents in discovery order. For each dependent whose current
// value implements DependencyReactor, OnDependencyChanged runs first; then
// the dependent's notification is raised. Dependents are not compared for
// equality; they are assumed to be pure functions of their dependencies.
//
// Everything runs synchronously on the writer's goroutine. Observers run in
// registration order, outside the observer lock, so an observer may write
// other properties.
package observable
