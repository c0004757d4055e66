package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a sequence of writes
// against one object of a declared type, with the notifications each write
// must raise.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE declaration files to compile and link.
	// Paths are relative to the scenario file location.
	Specs []string `yaml:"specs"`

	// Type is the declared type of the object under test.
	Type string `yaml:"type"`

	// Session is an optional fixed session ID. Defaults to
	// testutil.DefaultSessionID.
	Session string `yaml:"session,omitempty"`

	// Initial assigns property values before recording starts. Initial
	// values raise no notifications.
	Initial map[string]any `yaml:"initial,omitempty"`

	// Steps run in order against the object.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and the declared closures.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one write or one explicit notification.
type Step struct {
	// Set writes a single property: {Total: 5}.
	Set map[string]any `yaml:"set,omitempty"`

	// Notify raises a change notification without a write.
	Notify string `yaml:"notify,omitempty"`

	// Expect is the exact notification sequence of this step. Nil skips the
	// check; an empty list expects no notifications.
	Expect *[]string `yaml:"expect,omitempty"`

	// Error is the expected failure: "not_found" or "invalid_argument".
	Error string `yaml:"error,omitempty"`
}

// Property returns the property the step targets.
func (s Step) Property() string {
	if s.Notify != "" {
		return s.Notify
	}
	for name := range s.Set {
		return name
	}
	return ""
}

// Value returns the value a set step writes.
func (s Step) Value() any {
	return s.Set[s.Property()]
}

// Step error codes.
const (
	ErrorNotFound        = "not_found"
	ErrorInvalidArgument = "invalid_argument"
)

// Assertion validates the trace or the declared dependency closure.
type Assertion struct {
	// Type specifies the assertion type:
	// - "notified_once": property notified exactly once
	// - "notified_order": properties notified in this relative order
	// - "not_notified": property never notified
	// - "notification_count": property (or, without one, every
	//   notification) notified exactly Count times
	// - "dependents": transitive dependents of property equal Expect
	// - "dependencies": transitive dependencies of property equal Expect
	Type string `yaml:"type"`

	// Property is the property under test.
	Property string `yaml:"property,omitempty"`

	// Properties is the expected order (notified_order).
	Properties []string `yaml:"properties,omitempty"`

	// Count is the expected number of notifications (notification_count).
	Count int `yaml:"count,omitempty"`

	// Step restricts trace assertions to one step (0-based). Nil checks
	// the whole trace.
	Step *int `yaml:"step,omitempty"`

	// Expect is the expected closure in discovery order (dependents,
	// dependencies).
	Expect []string `yaml:"expect,omitempty"`
}

// scope returns the step index the assertion is restricted to, or -1.
func (a Assertion) scope() int {
	if a.Step == nil {
		return -1
	}
	return *a.Step
}

// Assertion type constants.
const (
	AssertNotifiedOnce      = "notified_once"
	AssertNotifiedOrder     = "notified_order"
	AssertNotNotified       = "not_notified"
	AssertNotificationCount = "notification_count"
	AssertDependents        = "dependents"
	AssertDependencies      = "dependencies"
)

// LoadScenario reads and parses a scenario YAML file, resolving spec paths
// relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if s.Type == "" {
		return fmt.Errorf("type is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(assertion, len(s.Steps)); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	switch {
	case step.Set != nil && step.Notify != "":
		return fmt.Errorf("set and notify are mutually exclusive")
	case step.Set == nil && step.Notify == "":
		return fmt.Errorf("one of set or notify is required")
	case step.Set != nil && len(step.Set) != 1:
		return fmt.Errorf("set must name exactly one property, got %d", len(step.Set))
	}

	switch step.Error {
	case "", ErrorNotFound, ErrorInvalidArgument:
	default:
		return fmt.Errorf("unknown error code %q (valid: %s, %s)",
			step.Error, ErrorNotFound, ErrorInvalidArgument)
	}
	return nil
}

// validateAssertion checks that an assertion has the fields its type needs.
func validateAssertion(a Assertion, steps int) error {
	if a.Step != nil && (*a.Step < 0 || *a.Step >= steps) {
		return fmt.Errorf("step %d out of range [0, %d)", *a.Step, steps)
	}

	switch a.Type {
	case AssertNotifiedOnce, AssertNotNotified:
		if a.Property == "" {
			return fmt.Errorf("%s assertion requires property", a.Type)
		}
	case AssertNotifiedOrder:
		if len(a.Properties) < 2 {
			return fmt.Errorf("%s assertion requires at least 2 properties", a.Type)
		}
	case AssertNotificationCount:
		if a.Count < 0 {
			return fmt.Errorf("%s assertion requires non-negative count", a.Type)
		}
	case AssertDependents, AssertDependencies:
		if a.Property == "" {
			return fmt.Errorf("%s assertion requires property", a.Type)
		}
		if a.Step != nil {
			return fmt.Errorf("%s assertion does not take a step", a.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q (valid: %s, %s, %s, %s, %s, %s)",
			a.Type, AssertNotifiedOnce, AssertNotifiedOrder, AssertNotNotified,
			AssertNotificationCount, AssertDependents, AssertDependencies)
	}
	return nil
}
