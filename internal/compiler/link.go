package compiler

import (
	"fmt"

	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// Link freezes compiled specs into runtime types, bases before derived
// types, and registers them. get reads property values of objects of the
// linked types; it may be nil for query-only use.
//
// Specs should pass Validate first. Link fails on the first spec whose base
// is unknown or whose base chain loops, and on any error from
// typeinfo.FromSpec.
func Link(specs []ir.TypeSpec, get typeinfo.FieldGetter) (*typeinfo.Registry, error) {
	byName := make(map[string]ir.TypeSpec, len(specs))
	for _, s := range specs {
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("link: duplicate type %q", s.Name)
		}
		byName[s.Name] = s
	}

	reg := typeinfo.NewRegistry()
	visiting := make(map[string]bool)

	var link func(name string) (*typeinfo.Type, error)
	link = func(name string) (*typeinfo.Type, error) {
		if t, ok := reg.Lookup(name); ok {
			return t, nil
		}
		spec, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("link: unknown type %q", name)
		}
		if visiting[name] {
			return nil, fmt.Errorf("link: inheritance cycle at %q", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		var base *typeinfo.Type
		if spec.Extends != "" {
			var err error
			if base, err = link(spec.Extends); err != nil {
				return nil, err
			}
		}

		t, err := typeinfo.FromSpec(spec, base, get)
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", name, err)
		}
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("link %s: %w", name, err)
		}
		return t, nil
	}

	for _, s := range specs {
		if _, err := link(s.Name); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
