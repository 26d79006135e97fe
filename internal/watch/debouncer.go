package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer collapses a burst of filesystem events into a single callback.
// A compiler rewriting a build directory touches many class files in quick
// succession; only the last event of a burst should trigger a rerun.
type Debouncer struct {
	interval time.Duration
	callback func(path string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback with the path of the last observed event.
func NewDebouncer(interval time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event for path, restarting the quiet timer. Once the
// interval passes without further events, the callback fires with the path
// seen last.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = path

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("debounced callback panicked", slog.Any("error", r))
			}
		}()

		d.mu.Lock()
		p := d.pending
		d.mu.Unlock()

		d.callback(p)
	})
}

// Stop cancels a pending callback, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
