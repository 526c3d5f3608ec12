package listctl

import "time"

// DefaultDebounce is the quiet period after the last keystroke before a
// search fires.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer tracks a single re-armable delayed action. It does not own a
// timer: Arm hands out a token, the caller schedules a wake-up carrying that
// token, and Accept tells it whether the wake-up is still the current one.
type Debouncer struct {
	Interval time.Duration

	id    uint64
	armed bool
}

// NewDebouncer returns a Debouncer with the given quiet period. Non-positive
// intervals fall back to DefaultDebounce.
func NewDebouncer(interval time.Duration) Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return Debouncer{Interval: interval}
}

// Arm restarts the quiet period. Any token handed out earlier is cancelled.
func (d *Debouncer) Arm() uint64 {
	d.id++
	d.armed = true
	return d.id
}

// Cancel drops the pending action, if any.
func (d *Debouncer) Cancel() {
	d.id++
	d.armed = false
}

// Accept reports whether token belongs to the pending action and, if so,
// consumes it. A token is accepted at most once.
func (d *Debouncer) Accept(token uint64) bool {
	if !d.armed || token != d.id {
		return false
	}
	d.armed = false
	return true
}

// Pending reports whether an armed action is waiting to fire.
func (d *Debouncer) Pending() bool {
	return d.armed
}
