package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/propdeps/internal/typeinfo"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			switch event.Type {
			case EventWrite:
				fmt.Fprintf(&buf, "  [%d] step %d write %s = %v (changed: %t)\n",
					event.Seq, event.Step, event.Property, event.Value, event.Changed)
			case EventNotify:
				fmt.Fprintf(&buf, "  [%d] step %d notify %s (%s of %s)\n",
					event.Seq, event.Step, event.Property, event.Kind, event.Cause)
			}
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertNotifiedOnce:
		return assertNotifiedCount(result, a, 1)
	case AssertNotNotified:
		return assertNotifiedCount(result, a, 0)
	case AssertNotificationCount:
		return assertNotifiedCount(result, a, a.Count)
	case AssertNotifiedOrder:
		return assertNotifiedOrder(result, a)
	case AssertDependents, AssertDependencies:
		if actx == nil || actx.Type == nil {
			return fmt.Errorf("%s assertion requires a type", a.Type)
		}
		return assertClosure(actx.Type, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertNotifiedCount checks how often a property (or, without one, any
// property) was notified within the assertion's scope.
func assertNotifiedCount(result *Result, a Assertion, want int) error {
	count := 0
	for _, name := range result.Notified(a.scope()) {
		if a.Property == "" || name == a.Property {
			count++
		}
	}
	if count == want {
		return nil
	}

	subject := "notifications"
	if a.Property != "" {
		subject = "notifications of " + a.Property
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s%s", want, subject, scopeSuffix(a)),
		Actual:   fmt.Sprintf("%d", count),
		Trace:    result.Trace,
	}
}

// assertNotifiedOrder checks that properties were first notified in the
// given relative order. Other notifications may intervene.
func assertNotifiedOrder(result *Result, a Assertion) error {
	notified := result.Notified(a.scope())

	positions := make(map[string]int, len(a.Properties))
	for _, name := range a.Properties {
		pos := slices.Index(notified, name)
		if pos < 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("all properties notified: %v%s", a.Properties, scopeSuffix(a)),
				Actual:   fmt.Sprintf("missing notification: %s", name),
				Trace:    result.Trace,
			}
		}
		positions[name] = pos
	}

	for i := 1; i < len(a.Properties); i++ {
		prev := a.Properties[i-1]
		curr := a.Properties[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("notifications in order: %v%s", a.Properties, scopeSuffix(a)),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev]+1, curr, positions[curr]+1),
				Trace: result.Trace,
			}
		}
	}
	return nil
}

// assertClosure checks a declared closure against the expected names in
// discovery order.
func assertClosure(t *typeinfo.Type, a Assertion) error {
	query := typeinfo.AllDependents
	if a.Type == AssertDependencies {
		query = typeinfo.AllDependencies
	}

	props, err := query(t, a.Property)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s of %s.%s: %v", a.Type, t.Name(), a.Property, a.Expect),
			Actual:   fmt.Sprintf("error: %v", err),
		}
	}

	got := typeinfo.Names(props)
	want := a.Expect
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s of %s.%s: %v", a.Type, t.Name(), a.Property, want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func scopeSuffix(a Assertion) string {
	if a.Step == nil {
		return ""
	}
	return fmt.Sprintf(" in step %d", *a.Step)
}
