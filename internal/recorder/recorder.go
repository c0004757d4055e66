// Package recorder captures the writes and notifications of one observable
// object as a session: an ordered trace stamped with a logical clock and
// optionally persisted to a Sink such as *store.Store.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/propdeps/internal/ir"
	"github.com/roach88/propdeps/internal/observable"
	"github.com/roach88/propdeps/internal/typeinfo"
)

// Target is an observable object that accepts writes by property name.
// *dynamic.Record implements it.
type Target interface {
	Type() *typeinfo.Type
	Subscribe(fn observable.Observer) (cancel func())
	Set(property string, value any) (bool, error)
	NotifyChanged(property string) error
}

// Sink persists a session. *store.Store implements it.
type Sink interface {
	WriteSession(ctx context.Context, sess ir.Session) error
	WriteAssignment(ctx context.Context, a ir.Assignment) error
	WriteNotification(ctx context.Context, n ir.Notification) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock. Defaults to NewClock().
func WithClock(c Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// WithIDGenerator sets the session ID source. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Recorder) { r.ids = g }
}

// WithSink persists the session as it is recorded.
func WithSink(s Sink) Option {
	return func(r *Recorder) { r.sink = s }
}

// WithLabel sets a free-form session label, such as a scenario name.
func WithLabel(label string) Option {
	return func(r *Recorder) { r.session.Label = label }
}

// WithSpecHash records the hash of the declarations the target's type was
// linked from.
func WithSpecHash(hash string) Option {
	return func(r *Recorder) { r.session.SpecHash = hash }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// Recorder records one session against one target.
//
// Notifications raised during Write carry the written property as their
// cause; the first notification for that property is the primary, the rest
// are dependents. Notifications raised outside Write (a direct
// NotifyChanged on the target) are recorded as primaries of themselves.
type Recorder struct {
	target  Target
	session ir.Session
	clock   Clock
	ids     IDGenerator
	sink    Sink
	logger  *slog.Logger
	cancel  func()

	mu            sync.Mutex
	cause         string
	primarySeen   bool
	pending       []ir.Notification
	assignments   []ir.Assignment
	notifications []ir.Notification
	sinkErr       error
}

// New starts a session against target and subscribes to its
// notifications. With a sink, the session record is written immediately.
func New(ctx context.Context, target Target, opts ...Option) (*Recorder, error) {
	if target == nil {
		return nil, fmt.Errorf("recorder: target is required")
	}

	r := &Recorder{
		target: target,
		session: ir.Session{
			TypeName:      target.Type().Name(),
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		},
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.session.ID = r.ids.Generate()

	if r.sink != nil {
		if err := r.sink.WriteSession(ctx, r.session); err != nil {
			return nil, fmt.Errorf("recorder: %w", err)
		}
	}

	r.cancel = target.Subscribe(func(property string) { r.observe(ctx, property) })

	r.logger.Debug("session started",
		"session", r.session.ID,
		"type", r.session.TypeName,
		"label", r.session.Label)
	return r, nil
}

// Session returns the session record.
func (r *Recorder) Session() ir.Session {
	return r.session
}

// Write sets property on the target and records the assignment followed
// by the notifications it raised. The assignment is recorded even when the
// equality gate suppresses the write.
//
// Returns the properties notified by this write, in order.
func (r *Recorder) Write(ctx context.Context, property string, value any) (bool, []string, error) {
	seq := r.clock.Next()

	r.begin(property)
	changed, setErr := r.target.Set(property, value)

	a := ir.Assignment{
		SessionID: r.session.ID,
		Seq:       seq,
		Property:  property,
		Value:     value,
		Changed:   changed,
	}
	r.mu.Lock()
	r.assignments = append(r.assignments, a)
	r.mu.Unlock()
	pending := r.end()
	notified := properties(pending)

	r.logger.Debug("recorded write",
		"session", r.session.ID,
		"property", property,
		"changed", changed,
		"notified", len(notified))

	if setErr != nil {
		return changed, notified, setErr
	}

	if r.sink != nil {
		if err := r.sink.WriteAssignment(ctx, a); err != nil {
			return changed, notified, fmt.Errorf("recorder: %w", err)
		}
		if err := r.flush(ctx, pending); err != nil {
			return changed, notified, err
		}
	}

	return changed, notified, nil
}

// Notify raises a change notification for property without a write and
// records what it raised. No assignment is recorded.
func (r *Recorder) Notify(ctx context.Context, property string) ([]string, error) {
	r.begin(property)
	notifyErr := r.target.NotifyChanged(property)
	pending := r.end()
	notified := properties(pending)

	r.logger.Debug("recorded notify",
		"session", r.session.ID,
		"property", property,
		"notified", len(notified))

	if notifyErr != nil {
		return notified, notifyErr
	}
	if r.sink != nil {
		if err := r.flush(ctx, pending); err != nil {
			return notified, err
		}
	}
	return notified, nil
}

func (r *Recorder) begin(cause string) {
	r.mu.Lock()
	r.cause = cause
	r.primarySeen = false
	r.pending = nil
	r.mu.Unlock()
}

func (r *Recorder) end() []ir.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	pending := r.pending
	r.cause = ""
	r.pending = nil
	r.notifications = append(r.notifications, pending...)
	return pending
}

// batchSink is a Sink that can write a write's notifications atomically.
// *store.Store implements it.
type batchSink interface {
	WriteNotifications(ctx context.Context, ns []ir.Notification) error
}

func (r *Recorder) flush(ctx context.Context, pending []ir.Notification) error {
	if len(pending) == 0 {
		return nil
	}
	if bs, ok := r.sink.(batchSink); ok {
		if err := bs.WriteNotifications(ctx, pending); err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
		return nil
	}
	for _, n := range pending {
		if err := r.sink.WriteNotification(ctx, n); err != nil {
			return fmt.Errorf("recorder: %w", err)
		}
	}
	return nil
}

func properties(ns []ir.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Property
	}
	return out
}

// observe is the target subscription.
func (r *Recorder) observe(ctx context.Context, property string) {
	seq := r.clock.Next()

	r.mu.Lock()
	if r.cause != "" {
		kind := ir.KindDependent
		if property == r.cause && !r.primarySeen {
			kind = ir.KindPrimary
			r.primarySeen = true
		}
		r.pending = append(r.pending, ir.Notification{
			SessionID: r.session.ID,
			Seq:       seq,
			Cause:     r.cause,
			Property:  property,
			Kind:      kind,
		})
		r.mu.Unlock()
		return
	}

	n := ir.Notification{
		SessionID: r.session.ID,
		Seq:       seq,
		Cause:     property,
		Property:  property,
		Kind:      ir.KindPrimary,
	}
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.WriteNotification(ctx, n); err != nil {
			r.mu.Lock()
			if r.sinkErr == nil {
				r.sinkErr = err
			}
			r.mu.Unlock()
			r.logger.Warn("recorder sink failed", "session", r.session.ID, "error", err)
		}
	}
}

// Assignments returns the recorded assignments in seq order.
func (r *Recorder) Assignments() []ir.Assignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.assignments)
}

// Notifications returns the recorded notifications in seq order.
func (r *Recorder) Notifications() []ir.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.notifications)
}

// Close stops recording. It returns the first sink error from a
// notification raised outside Write, if any.
func (r *Recorder) Close() error {
	r.cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sinkErr != nil {
		return fmt.Errorf("recorder: %w", r.sinkErr)
	}
	return nil
}
