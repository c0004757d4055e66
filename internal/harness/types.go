package harness

// Trace event types.
const (
	EventWrite  = "write"
	EventNotify = "notify"
)

// TraceEvent is one entry of a scenario trace: a recorded write or a
// notification it raised.
type TraceEvent struct {
	Type     string `json:"type"` // "write" or "notify"
	Seq      int64  `json:"seq"`
	Step     int    `json:"step"`
	Property string `json:"property"`

	// Write fields.
	Value   any  `json:"value,omitempty"`
	Changed bool `json:"changed,omitempty"`

	// Notify fields.
	Cause string `json:"cause,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// SessionID identifies the recorded session.
	SessionID string `json:"session_id"`

	// Trace is the persisted session timeline in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the object's final property values.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Notified returns the notified properties of the trace, in order. A step
// of -1 selects the whole trace.
func (r *Result) Notified(step int) []string {
	out := []string{}
	for _, e := range r.Trace {
		if e.Type != EventNotify {
			continue
		}
		if step >= 0 && e.Step != step {
			continue
		}
		out = append(out, e.Property)
	}
	return out
}
