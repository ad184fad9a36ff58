// Package progress carries run status from fetch tasks to an optional observer.
//
// A run emits exactly one Total event, carrying the number of fetch tasks it
// spawned, and one Tick event for every task that completed successfully.
// Total and Tick are unordered relative to each other: tasks may finish and
// Tick before the tree walk that determines the total has ended. Consumers
// must accept either interleaving.
package progress

import (
	"context"
	"fmt"
)

// Kind discriminates progress events.
type Kind int

const (
	// KindTotal carries the final number of fetch tasks for a run.
	KindTotal Kind = iota
	// KindTick reports one successfully completed fetch task.
	KindTick
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindTotal:
		return "total"
	case KindTick:
		return "tick"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a single progress notification.
type Event struct {
	Kind Kind
	// N is the task count for KindTotal events and zero otherwise.
	N int
}

// Total returns a KindTotal event for n tasks.
func Total(n int) Event {
	return Event{Kind: KindTotal, N: n}
}

// Tick returns a KindTick event.
func Tick() Event {
	return Event{Kind: KindTick}
}

// Reporter is the producer side of a progress channel. It is safe for
// concurrent use by many fetch tasks. A nil Reporter, or one built around a
// nil channel, discards every event.
type Reporter struct {
	ch chan<- Event
}

// NewReporter returns a Reporter that sends on ch. ch may be nil.
func NewReporter(ch chan<- Event) *Reporter {
	return &Reporter{ch: ch}
}

// Total sends a Total(n) event.
func (r *Reporter) Total(ctx context.Context, n int) error {
	return r.send(ctx, Total(n))
}

// Tick sends a Tick event.
func (r *Reporter) Tick(ctx context.Context) error {
	return r.send(ctx, Tick())
}

// send blocks until the observer accepts ev or ctx is done.
func (r *Reporter) send(ctx context.Context, ev Event) error {
	if r == nil || r.ch == nil {
		return nil
	}
	select {
	case r.ch <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("progress: send %s: %w", ev.Kind, ctx.Err())
	}
}
