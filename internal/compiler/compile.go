package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/propdeps/internal/ir"
)

// CompileType parses a CUE value into a TypeSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the type struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`type: Invoice: { properties: { ... } }`)
//	spec, err := CompileType(v.LookupPath(cue.ParsePath("type.Invoice")))
func CompileType(v cue.Value) (*ir.TypeSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TypeSpec{}

	// Type name comes from the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	var err error
	if spec.Extends, err = optionalString(v, "extends"); err != nil {
		return nil, err
	}
	if spec.Doc, err = optionalString(v, "doc"); err != nil {
		return nil, err
	}

	spec.Properties, err = parseProperties(v)
	if err != nil {
		return nil, err
	}
	if len(spec.Properties) == 0 && spec.Extends == "" {
		return nil, &CompileError{
			Field:   "properties",
			Message: "at least one property is required",
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// CompileTypes compiles every entry of a `type` struct, in source order.
func CompileTypes(v cue.Value) ([]ir.TypeSpec, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.TypeSpec
	for iter.Next() {
		spec, err := CompileType(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", iter.Label(), err)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// parseProperties extracts property declarations in declaration order.
func parseProperties(v cue.Value) ([]ir.PropertySpec, error) {
	var props []ir.PropertySpec

	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return props, nil
	}

	iter, err := propsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		propValue := iter.Value()

		prop := ir.PropertySpec{Name: name}

		if prop.Doc, err = optionalString(propValue, "doc"); err != nil {
			return nil, err
		}

		depsVal := propValue.LookupPath(cue.ParsePath("depends_on"))
		if depsVal.Exists() {
			prop.DependsOn, err = parseDependsOn(depsVal, name)
			if err != nil {
				return nil, err
			}
		}

		props = append(props, prop)
	}

	return props, nil
}

// parseDependsOn accepts a single name or a list of names:
//
//	depends_on: "*"
//	depends_on: ["Price", "Quantity"]
func parseDependsOn(v cue.Value, property string) ([]string, error) {
	if name, err := v.String(); err == nil {
		return []string{name}, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   fmt.Sprintf("properties.%s.depends_on", property),
			Message: "must be a string or a list of strings",
			Pos:     v.Pos(),
		}
	}

	var names []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("properties.%s.depends_on", property),
				Message: "dependency names must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		names = append(names, name)
	}
	return names, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: "must be a string",
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
