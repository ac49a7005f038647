// Package debounce coalesces bursts of value changes into a single
// settled value, driven by the Bubble Tea message loop.
//
// A Debouncer never touches goroutines or timers directly: Set returns a
// tea.Cmd that sleeps for the delay and then delivers a FireMsg, and Update
// accepts that message only if no newer Set happened in between. Everything
// runs on the program's update loop, so no locking is needed.
package debounce

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var nextID atomic.Int64

// FireMsg is delivered when a countdown elapses.
type FireMsg struct {
	id  int64
	seq uint64
}

// Debouncer holds a raw input value and a derived value that follows it
// once the input has been stable for the configured delay.
type Debouncer[T comparable] struct {
	id      int64
	delay   time.Duration
	seq     uint64
	pending T
	armed   bool
	value   T
}

// New creates a Debouncer with the given quiet period. A non-positive
// delay makes every Set settle on the next update cycle.
func New[T comparable](delay time.Duration) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{
		id:    nextID.Add(1),
		delay: delay,
	}
}

// Delay returns the configured quiet period.
func (d *Debouncer[T]) Delay() time.Duration { return d.delay }

// Set records v as the latest input and restarts the countdown, even when
// v equals the current input or derived value.
func (d *Debouncer[T]) Set(v T) tea.Cmd {
	d.seq++
	d.pending = v
	d.armed = true

	msg := FireMsg{id: d.id, seq: d.seq}
	if d.delay == 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d.delay, func(time.Time) tea.Msg { return msg })
}

// Update consumes a FireMsg belonging to this debouncer. It returns true
// when the countdown was current and the derived value changed as a result.
// Messages from superseded countdowns, other debouncers, or any other type
// are ignored.
func (d *Debouncer[T]) Update(msg tea.Msg) bool {
	fire, ok := msg.(FireMsg)
	if !ok || fire.id != d.id || !d.armed || fire.seq != d.seq {
		return false
	}
	d.armed = false
	if d.pending == d.value {
		return false
	}
	d.value = d.pending
	return true
}

// Owns reports whether msg is a countdown message of this debouncer,
// current or stale.
func (d *Debouncer[T]) Owns(msg tea.Msg) bool {
	fire, ok := msg.(FireMsg)
	return ok && fire.id == d.id
}

// Value returns the derived (settled) value.
func (d *Debouncer[T]) Value() T { return d.value }

// Input returns the most recent raw value passed to Set.
func (d *Debouncer[T]) Input() T { return d.pending }

// Pending reports whether a countdown is running.
func (d *Debouncer[T]) Pending() bool { return d.armed }

// Stop cancels the running countdown; its FireMsg will be ignored.
func (d *Debouncer[T]) Stop() {
	d.seq++
	d.armed = false
}

// Reset stops any countdown and sets both input and derived value to v
// without emitting an update.
func (d *Debouncer[T]) Reset(v T) {
	d.Stop()
	d.pending = v
	d.value = v
}
