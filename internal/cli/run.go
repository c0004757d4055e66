package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/propdeps/internal/dynamic"
	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/observable"
	"github.com/roach88/propdeps/internal/recorder"
	"github.com/roach88/propdeps/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Type     string
	Init     []string // P=V, assigned without notifications
	Sets     []string // P=V, written in order
	Database string
	Record   bool
	Label    string
	Resume   string // session to append to

	// IDGenerator allows overriding the session ID generator (for testing).
	// If nil, defaults to recorder.UUIDv7Generator.
	IDGenerator recorder.IDGenerator
}

// RunStep is the outcome of one --set.
type RunStep struct {
	Property string   `json:"property"`
	Value    any      `json:"value"`
	Changed  bool     `json:"changed"`
	Notified []string `json:"notified"`
}

// RunResult holds the outcome of a run.
type RunResult struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Database  string         `json:"database,omitempty"`
	Steps     []RunStep      `json:"steps"`
	State     map[string]any `json:"state"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [specs-dir]",
		Short: "Write properties of a declared type and show the notifications",
		Long: `Create one object of a declared type, write properties in order and
print the notifications each write fires.

Values are parsed as YAML scalars: 5 is an integer, true a boolean, anything
else a string. With --db (or --record, using the configured database) the
session is recorded for the trace command. --resume appends the writes to
an existing session of the same type, continuing its sequence numbers.

Example:
  propdeps run ./specs --type Invoice --init A=1 --set A=2 --set B=3
  propdeps run ./specs --type Invoice --set A=2 --db ./traces.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrites(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "declared type (required)")
	cmd.Flags().StringArrayVar(&opts.Init, "init", nil, "initial value P=V (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "write P=V (repeatable, in order)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the session to this SQLite database")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "record the session to the configured database")
	cmd.Flags().StringVar(&opts.Label, "label", "", "session label")
	cmd.Flags().StringVar(&opts.Resume, "resume", "", "append to a recorded session in the trace database")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runWrites(opts *RunOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	initial, err := parseAssignments(opts.Init)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
	}
	writes, err := parseAssignmentList(opts.Sets)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
	}

	specs, reg, err := loadRegistry(specsDir)
	if err != nil {
		code, message := errorCodeOf(err, ErrCodeGeneric)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	typ, err := lookupType(reg, opts.Type)
	if err != nil {
		code, message := errorCodeOf(err, ErrCodeGeneric)
		return formatter.Fail(ExitCommandError, code, message, nil)
	}
	specHash, err := ir.SpecHash(specs)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("hashing declarations: %v", err), nil)
	}

	record, err := dynamic.New(typ, initial, observable.WithLogger(logger))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEngine, err.Error(), nil)
	}

	recOpts := []recorder.Option{
		recorder.WithLabel(opts.Label),
		recorder.WithSpecHash(specHash),
		recorder.WithLogger(logger),
	}
	if opts.IDGenerator != nil {
		recOpts = append(recOpts, recorder.WithIDGenerator(opts.IDGenerator))
	}

	dbPath := opts.Database
	if dbPath == "" && (opts.Record || opts.Resume != "") {
		dbPath = opts.dbPath()
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		recOpts = append(recOpts, recorder.WithSink(st))

		if opts.Resume != "" {
			resumeOpts, err := resumeSession(ctx, st, opts.Resume, typ.Name())
			if err != nil {
				code, message := errorCodeOf(err, ErrCodeStore)
				return formatter.Fail(ExitCommandError, code, message, nil)
			}
			recOpts = append(recOpts, resumeOpts...)
			logger.Debug("resuming session", "session", opts.Resume)
		}
	}

	rec, err := recorder.New(ctx, record, recOpts...)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer rec.Close()

	result := RunResult{
		Type:      typ.Name(),
		SessionID: rec.Session().ID,
		Database:  dbPath,
		Steps:     make([]RunStep, 0, len(writes)),
	}

	for _, w := range writes {
		changed, notified, err := rec.Write(ctx, w.property, w.value)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeEngine,
				fmt.Sprintf("set %s: %v", w.property, err), result)
		}
		result.Steps = append(result.Steps, RunStep{
			Property: w.property,
			Value:    w.value,
			Changed:  changed,
			Notified: notified,
		})
	}
	result.State = record.Snapshot()

	logger.Debug("run finished", "type", result.Type, "session", result.SessionID, "writes", len(result.Steps))

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputRunText(formatter, result)
}

func outputRunText(formatter *OutputFormatter, result RunResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "%s (session %s)\n", result.Type, result.SessionID)
	for _, step := range result.Steps {
		if !step.Changed {
			fmt.Fprintf(w, "  set %s = %v: unchanged\n", step.Property, step.Value)
			continue
		}
		fmt.Fprintf(w, "  set %s = %v: %s\n", step.Property, step.Value, strings.Join(step.Notified, " → "))
	}
	if result.Database != "" {
		fmt.Fprintf(w, "Recorded to %s\n", result.Database)
	}
	return nil
}

// resumeSession checks that id is a recorded session of typeName and
// returns the options that continue it.
func resumeSession(ctx context.Context, st *store.Store, id, typeName string) ([]recorder.Option, error) {
	sess, err := st.ReadSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("session not found: %s", id)}
	}
	if err != nil {
		return nil, err
	}
	if sess.TypeName != typeName {
		return nil, &LoadError{
			Code:    ErrCodeBadArgument,
			Message: fmt.Sprintf("session %s records %s, not %s", id, sess.TypeName, typeName),
		}
	}
	last, err := st.LastSeq(ctx, id)
	if err != nil {
		return nil, err
	}
	return []recorder.Option{
		recorder.WithIDGenerator(recorder.NewSequenceGenerator(id)),
		recorder.WithClock(recorder.NewClockAt(last)),
	}, nil
}

type assignment struct {
	property string
	value    any
}

// parseAssignmentList parses P=V flags in order.
func parseAssignmentList(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: want PROPERTY=VALUE", arg)
		}
		value, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid assignment %q: %w", arg, err)
		}
		out = append(out, assignment{property: name, value: value})
	}
	return out, nil
}

// parseAssignments parses P=V flags into a map. Later flags win.
func parseAssignments(args []string) (map[string]any, error) {
	list, err := parseAssignmentList(args)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(list))
	for _, a := range list {
		out[a.property] = a.value
	}
	return out, nil
}

// parseValue decodes a YAML scalar. An empty value is the empty string.
func parseValue(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		return nil, fmt.Errorf("value must be a scalar")
	}
	return v, nil
}
