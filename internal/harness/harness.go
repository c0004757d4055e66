package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/propdeps/internal/compiler"
	"github.com/roach88/propdeps/internal/depgraph"
	"github.com/roach88/propdeps/internal/dynamic"
	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/observable"
	"github.com/roach88/propdeps/internal/recorder"
	"github.com/roach88/propdeps/internal/store"
	"github.com/roach88/propdeps/internal/testutil"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and session ID.
type Harness struct {
	store  *store.Store
	rec    *recorder.Recorder
	record *dynamic.Record
	clock  *testutil.DeterministicClock
	logger *slog.Logger

	// stepEnds[i] is the last seq issued by step i.
	stepEnds []int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Compile, validate and link the declaration files
// 2. Create the object with its initial values
// 3. Run each step through a recorder persisting to the database
// 4. Read the persisted timeline back as the trace
// 5. Evaluate step expectations and assertions
//
// Returns an error when the scenario cannot run at all (bad declarations,
// unknown type, store failure). Failed expectations are reported in the
// result instead.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for store access.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	specs, err := compiler.CompileFiles(scenario.Specs...)
	if err != nil {
		return nil, fmt.Errorf("failed to compile specs: %w", err)
	}
	if errs := compiler.Validate(specs); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid specs: %s", strings.Join(msgs, "; "))
	}
	registry, err := compiler.Link(specs, dynamic.Getter)
	if err != nil {
		return nil, err
	}
	typ, ok := registry.Lookup(scenario.Type)
	if !ok {
		return nil, fmt.Errorf("type %s is not declared in %v", scenario.Type, scenario.Specs)
	}
	specHash, err := ir.SpecHash(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to hash specs: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	record, err := dynamic.New(typ, scenario.Initial, observable.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", scenario.Type, err)
	}

	h := &Harness{
		store:  st,
		record: record,
		clock:  testutil.NewDeterministicClock(),
		logger: logger,
	}
	h.rec, err = recorder.New(ctx, record,
		recorder.WithClock(h.clock),
		recorder.WithIDGenerator(testutil.NewFixedSessionGenerator(scenario.Session)),
		recorder.WithSink(st),
		recorder.WithLabel(scenario.Name),
		recorder.WithSpecHash(specHash),
		recorder.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	result := NewResult()
	result.SessionID = h.rec.Session().ID

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.rec.Close(); err != nil {
		return nil, err
	}

	if err := h.buildTrace(ctx, result); err != nil {
		return nil, err
	}
	result.State = record.Snapshot()

	actx := &AssertionContext{Type: typ}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep runs one step and checks its expectations. A step error that
// the step does not expect is a failure, not a harness error; store errors
// are harness errors.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	var (
		notified []string
		err      error
	)
	property := step.Property()
	if step.Notify != "" {
		notified, err = h.rec.Notify(ctx, property)
	} else {
		_, notified, err = h.rec.Write(ctx, property, step.Value())
	}
	h.stepEnds = append(h.stepEnds, h.clock.Current())

	h.logger.Debug("step executed",
		"step", i,
		"property", property,
		"notified", notified,
		"error", err)

	switch {
	case err != nil && step.Error == "":
		if errorCode(err) == "" {
			return err
		}
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, property, err))
		return nil
	case err == nil && step.Error != "":
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s error, got success", i, property, step.Error))
	case err != nil && errorCode(err) != step.Error:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s error, got: %v", i, property, step.Error, err))
	}

	if step.Expect != nil && !slices.Equal(*step.Expect, notified) {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected notifications %v, got %v",
			i, property, *step.Expect, notified))
	}
	return nil
}

// errorCode maps an engine error to its step error code, or "" when the
// error is not an engine error.
func errorCode(err error) string {
	switch {
	case depgraph.IsNotFound(err):
		return ErrorNotFound
	case depgraph.IsInvalidArgument(err):
		return ErrorInvalidArgument
	default:
		return ""
	}
}

// buildTrace reads the session timeline back from the store.
func (h *Harness) buildTrace(ctx context.Context, result *Result) error {
	events, err := h.store.ReadTimeline(ctx, result.SessionID)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	for _, ev := range events {
		step := h.stepOf(ev.Seq)
		switch ev.Type {
		case store.EventAssignment:
			a := ev.Assignment
			result.Trace = append(result.Trace, TraceEvent{
				Type:     EventWrite,
				Seq:      a.Seq,
				Step:     step,
				Property: a.Property,
				Value:    a.Value,
				Changed:  a.Changed,
			})
		case store.EventNotification:
			n := ev.Notification
			result.Trace = append(result.Trace, TraceEvent{
				Type:     EventNotify,
				Seq:      n.Seq,
				Step:     step,
				Property: n.Property,
				Cause:    n.Cause,
				Kind:     string(n.Kind),
			})
		}
	}
	return nil
}

// stepOf returns the index of the step that issued seq.
func (h *Harness) stepOf(seq int64) int {
	i, _ := slices.BinarySearch(h.stepEnds, seq)
	return i
}

// AssertionContext provides what assertions need beyond the trace.
type AssertionContext struct {
	// Type is the declared type of the object under test.
	Type *typeinfo.Type
}
