// Package typeinfo declares object types and the dependency annotations on
// their properties, without reflection.
//
// Each Go type that participates in change propagation registers a *Type
// once, usually as a package-level variable:
//
//	var invoiceType = typeinfo.Define[Invoice]("Invoice").
//		Property("A", func(i *Invoice) any { return i.a }).
//		Property("B", func(i *Invoice) any { return i.b }).
//		Property("Total", func(i *Invoice) any { return i.Total() }).DependsOn("A", "B").
//		MustBuild()
//
// Build freezes the type and computes its base edge table. Scan returns that
// table; objects copy it into their own declaration store at construction.
//
// Types may extend a base type. Inherited properties and their declarations
// are visible on the derived type, and a derived declaration with the same
// name shadows the base property while keeping the base declarations.
//
// The type-level query functions (DirectDependents, AllDependents,
// DirectDependencies, AllDependencies) work purely from declarations and
// need no live object.
package typeinfo
