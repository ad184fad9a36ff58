package progress

import "sync"

// Counter accumulates events from a progress channel. It is a convenience
// consumer for callers that only need the totals, such as a progress bar.
type Counter struct {
	mu       sync.Mutex
	total    int
	hasTotal bool
	done     int
}

// Observe records ev.
func (c *Counter) Observe(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case KindTotal:
		c.total = ev.N
		c.hasTotal = true
	case KindTick:
		c.done++
	}
}

// Consume observes events from ch until it is closed, calling onEvent (if
// non-nil) after each one.
func (c *Counter) Consume(ch <-chan Event, onEvent func(Snapshot)) {
	for ev := range ch {
		c.Observe(ev)
		if onEvent != nil {
			onEvent(c.Snapshot())
		}
	}
}

// Snapshot is a point-in-time view of a Counter.
type Snapshot struct {
	// Total is the announced task count, valid only when HasTotal is set.
	Total    int
	HasTotal bool
	Done     int
}

// Fraction returns the completed share in [0, 1]. It is 0 until the total is
// known, and 1 for a known total of zero.
func (s Snapshot) Fraction() float64 {
	if !s.HasTotal {
		return 0
	}
	if s.Total == 0 {
		return 1
	}
	f := float64(s.Done) / float64(s.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Snapshot returns the current counts.
func (c *Counter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{Total: c.total, HasTotal: c.hasTotal, Done: c.done}
}
