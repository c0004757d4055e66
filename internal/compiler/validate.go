package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/propdeps/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrTypeNameEmpty     = "E101" // type name is required
	ErrDuplicateType     = "E102" // two types share a name
	ErrPropertyNameEmpty = "E103" // property name is required
	ErrDuplicateProperty = "E104" // property declared twice on one type
	ErrReservedName      = "E105" // "*" used as a property name
	ErrUnknownDependency = "E106" // depends_on names no visible property
	ErrEmptyDependency   = "E107" // depends_on entry is empty
	ErrUnknownBaseType   = "E108" // extends names no declared type
	ErrInheritanceCycle  = "E109" // extends chain loops
	ErrNoProperties      = "E110" // type declares and inherits nothing
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a set of type declarations against schema rules.
// Returns all errors found (does not fail-fast).
//
// Self dependencies and dependency cycles are legal and are not reported
// here; see AnalyzeCycles.
func Validate(specs []ir.TypeSpec) []ValidationError {
	var errs []ValidationError

	byName := make(map[string]ir.TypeSpec, len(specs))
	first := make(map[string]int, len(specs))
	for i, spec := range specs {
		// E101: type name is required
		if strings.TrimSpace(spec.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("types[%d].name", i),
				Message: "type name is required and must be non-empty",
				Code:    ErrTypeNameEmpty,
			})
			continue
		}

		// E102: duplicate type name
		if _, dup := byName[spec.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("types[%d].name", i),
				Message: fmt.Sprintf("duplicate type name: %q", spec.Name),
				Code:    ErrDuplicateType,
			})
			continue
		}
		byName[spec.Name] = spec
		first[spec.Name] = i
	}

	resolved := resolveTypes(specs)

	for i, spec := range specs {
		if j, ok := first[spec.Name]; !ok || j != i {
			continue
		}
		errs = append(errs, validateType(spec, byName, resolved)...)
	}

	return errs
}

// validateType checks one type; byName holds the first declaration of
// every named type.
func validateType(spec ir.TypeSpec, byName map[string]ir.TypeSpec, resolved map[string]*resolvedType) []ValidationError {
	var errs []ValidationError
	prefix := "type." + spec.Name

	if spec.Extends != "" {
		// E108: unknown base type
		if _, ok := byName[spec.Extends]; !ok {
			errs = append(errs, ValidationError{
				Field:   prefix + ".extends",
				Message: fmt.Sprintf("unknown base type %q", spec.Extends),
				Code:    ErrUnknownBaseType,
			})
		} else if cycle := inheritanceCycle(spec.Name, byName); cycle != nil {
			// E109: inheritance cycle
			errs = append(errs, ValidationError{
				Field:   prefix + ".extends",
				Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(cycle, " → ")),
				Code:    ErrInheritanceCycle,
			})
		}
	}

	// Dependency names are checked against the visible set; without a
	// resolved base chain only the type's own properties are known.
	visible := make(map[string]bool)
	if rt, ok := resolved[spec.Name]; ok {
		for _, name := range rt.properties {
			visible[name] = true
		}
	} else {
		for _, p := range spec.Properties {
			visible[p.Name] = true
		}
	}

	// E110: nothing to observe
	if len(visible) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + ".properties",
			Message: "type has no properties",
			Code:    ErrNoProperties,
		})
	}

	declared := make(map[string]bool)
	for i, p := range spec.Properties {
		field := fmt.Sprintf("%s.properties[%d]", prefix, i)

		// E103: property name is required
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "property name is required and must be non-empty",
				Code:    ErrPropertyNameEmpty,
			})
			continue
		}

		// E105: wildcard marker is not a property
		if p.Name == ir.Wildcard {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("%q is reserved for wildcard dependencies", ir.Wildcard),
				Code:    ErrReservedName,
			})
			continue
		}

		// E104: duplicate property on this type
		if declared[p.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate property name: %q", p.Name),
				Code:    ErrDuplicateProperty,
			})
		}
		declared[p.Name] = true

		for j, dep := range p.DependsOn {
			depField := fmt.Sprintf("%s.depends_on[%d]", field, j)
			switch {
			case strings.TrimSpace(dep) == "":
				// E107: empty dependency
				errs = append(errs, ValidationError{
					Field:   depField,
					Message: fmt.Sprintf("empty dependency name on property %q", p.Name),
					Code:    ErrEmptyDependency,
				})
			case dep == ir.Wildcard:
			case !visible[dep]:
				// E106: unknown dependency
				errs = append(errs, ValidationError{
					Field:   depField,
					Message: fmt.Sprintf("property %q depends on unknown property %q", p.Name, dep),
					Code:    ErrUnknownDependency,
				})
			}
		}
	}

	return errs
}
