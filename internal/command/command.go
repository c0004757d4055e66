// Package command provides a relay command whose enabled state tracks the
// properties of the object that holds it.
//
// A Command stored in a property that depends on other properties is told
// about their changes through observable.DependencyReactor, re-derives
// whether it can execute, and raises CanExecuteChanged to its own
// subscribers.
package command

import (
	"errors"
	"sync"

	"github.com/roach88/propdeps/internal/depgraph"
)

// ErrDisabled is returned by Execute when the command cannot execute.
var ErrDisabled = errors.New("command: cannot execute")

// Command runs an action guarded by an optional predicate.
//
// Thread-safety: safe for concurrent use. Handlers run outside the lock.
type Command struct {
	execute    func() error
	canExecute func() bool

	mu       sync.Mutex
	enabled  bool
	handlers []handler
	nextID   uint64
}

type handler struct {
	id uint64
	fn func(enabled bool)
}

// New creates a command. execute is required; canExecute may be nil, in
// which case the command is always enabled.
func New(execute func() error, canExecute func() bool) (*Command, error) {
	if execute == nil {
		return nil, depgraph.NewInvalidArgument("execute", "command action is required")
	}
	c := &Command{execute: execute, canExecute: canExecute}
	c.enabled = c.evaluate()
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(execute func() error, canExecute func() bool) *Command {
	c, err := New(execute, canExecute)
	if err != nil {
		panic(err)
	}
	return c
}

// CanExecute evaluates the predicate.
func (c *Command) CanExecute() bool {
	return c.evaluate()
}

// Enabled returns the state derived at the last change signal.
func (c *Command) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Execute runs the action if the command can execute.
func (c *Command) Execute() error {
	if !c.evaluate() {
		return ErrDisabled
	}
	return c.execute()
}

// OnCanExecuteChanged subscribes fn to capability changes. The returned
// function unsubscribes.
func (c *Command) OnCanExecuteChanged(fn func(enabled bool)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.handlers = append(c.handlers, handler{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, h := range c.handlers {
			if h.id == id {
				c.handlers = append(c.handlers[:i:i], c.handlers[i+1:]...)
				return
			}
		}
	}
}

// RaiseCanExecuteChanged re-derives the enabled state and notifies every
// subscriber, whether or not the state flipped.
func (c *Command) RaiseCanExecuteChanged() {
	enabled := c.evaluate()

	c.mu.Lock()
	c.enabled = enabled
	fns := make([]func(bool), len(c.handlers))
	for i, h := range c.handlers {
		fns[i] = h.fn
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(enabled)
	}
}

// OnDependencyChanged implements observable.DependencyReactor.
func (c *Command) OnDependencyChanged() {
	c.RaiseCanExecuteChanged()
}

func (c *Command) evaluate() bool {
	if c.canExecute == nil {
		return true
	}
	return c.canExecute()
}
