package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default settle window for change bursts.
const DefaultDebounceDuration = 100 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback after a quiet
// period. Editors and SQLite both produce several filesystem events per
// logical write; subscribers want one notification.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given settle window. A zero or
// negative duration falls back to DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Duration returns the configured settle window.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Trigger schedules fn after the settle window, replacing any previously
// scheduled call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
