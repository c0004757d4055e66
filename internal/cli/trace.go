package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Property string // optional - filter to notifications of one property
}

// TraceEvent represents a single event in the session timeline.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Type     string `json:"type"` // "assignment" or "notification"
	Property string `json:"property"`
	Value    any    `json:"value,omitempty"`
	Changed  *bool  `json:"changed,omitempty"`
	Cause    string `json:"cause,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// TraceStats holds summary statistics for a session.
type TraceStats struct {
	Assignments   int   `json:"assignments"`
	Changed       int   `json:"changed"`
	Notifications int   `json:"notifications"`
	Dependents    int   `json:"dependents"`
	Matching      int   `json:"matching,omitempty"` // notifications of --property
	LastSeq       int64 `json:"last_seq"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  ir.Session   `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show recorded sessions",
		Long: `Show sessions recorded by run --db.

Without --session, lists the sessions in the database. With --session,
shows the session's timeline: each write followed by the notifications it
fired, with their cause and kind (primary or dependent).

Examples:
  propdeps trace --db ./traces.db
  propdeps trace --db ./traces.db --session 0192f0c4-...
  propdeps trace --db ./traces.db --session 0192f0c4-... --property Total`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to show")
	cmd.Flags().StringVar(&opts.Property, "property", "", "only notifications of this property")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.dbPath()
	}
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, formatter, st)
	}

	result, err := buildTrace(ctx, st, opts.Session, opts.Property)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session not found: %s", opts.Session), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	opts.logger().Debug("read session", "session", opts.Session, "events", len(result.Timeline))

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(formatter, result)
}

func listSessions(ctx context.Context, formatter *OutputFormatter, st *store.Store) error {
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(sessions)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(formatter.Writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Type", "Label", "Spec hash"})
	for _, s := range sessions {
		t.AppendRow(table.Row{s.ID, s.TypeName, s.Label, shortHash(s.SpecHash)})
	}
	t.Render()
	fmt.Fprintf(formatter.Writer, "%d session(s)\n", len(sessions))
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// buildTrace reads a session's timeline, optionally keeping only the
// notifications of one property. Stats always cover the whole session.
func buildTrace(ctx context.Context, st *store.Store, sessionID, property string) (*TraceResult, error) {
	sess, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	events, err := st.ReadTimeline(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lastSeq, err := st.LastSeq(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &TraceResult{
		Session:  sess,
		Timeline: []TraceEvent{},
		Stats:    TraceStats{LastSeq: lastSeq},
	}
	if property != "" {
		if result.Stats.Matching, err = st.CountNotifications(ctx, sessionID, property); err != nil {
			return nil, err
		}
	}

	for _, ev := range events {
		switch ev.Type {
		case store.EventAssignment:
			a := ev.Assignment
			result.Stats.Assignments++
			if a.Changed {
				result.Stats.Changed++
			}
			if property != "" {
				continue
			}
			changed := a.Changed
			result.Timeline = append(result.Timeline, TraceEvent{
				Seq:      a.Seq,
				Type:     ev.Type.String(),
				Property: a.Property,
				Value:    a.Value,
				Changed:  &changed,
			})
		case store.EventNotification:
			n := ev.Notification
			result.Stats.Notifications++
			if n.Kind == ir.KindDependent {
				result.Stats.Dependents++
			}
			if property != "" && n.Property != property {
				continue
			}
			result.Timeline = append(result.Timeline, TraceEvent{
				Seq:      n.Seq,
				Type:     ev.Type.String(),
				Property: n.Property,
				Cause:    n.Cause,
				Kind:     string(n.Kind),
			})
		}
	}
	return result, nil
}

func outputTraceText(formatter *OutputFormatter, result *TraceResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Session %s (%s)\n", result.Session.ID, result.Session.TypeName)
	if result.Session.Label != "" {
		fmt.Fprintf(w, "Label: %s\n", result.Session.Label)
	}
	fmt.Fprintln(w)

	for _, ev := range result.Timeline {
		if ev.Type == store.EventAssignment.String() {
			fmt.Fprintf(w, "[%d] set %s = %v", ev.Seq, ev.Property, ev.Value)
			if ev.Changed != nil && !*ev.Changed {
				fmt.Fprint(w, " (unchanged)")
			}
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "[%d]   notify %s (%s of %s)\n", ev.Seq, ev.Property, ev.Kind, ev.Cause)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d write(s), %d changed, %d notification(s), %d dependent\n",
		result.Stats.Assignments, result.Stats.Changed, result.Stats.Notifications, result.Stats.Dependents)
	if result.Stats.Matching > 0 {
		fmt.Fprintf(w, "%d notification(s) of the filtered property\n", result.Stats.Matching)
	}
	return nil
}
