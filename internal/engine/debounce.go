package engine

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into one call of fn with the
// latest text. Each trigger restarts the quiet window. A call that has
// started runs to completion; triggers during it schedule one more call.
type Debouncer struct {
	wait time.Duration
	fn   func(ctx context.Context, text string)
	ctx  context.Context

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	latest  string
	running bool
	dirty   bool
	closed  bool
	wg      sync.WaitGroup
}

func NewDebouncer(ctx context.Context, wait time.Duration, fn func(ctx context.Context, text string)) *Debouncer {
	return &Debouncer{wait: wait, fn: fn, ctx: context.WithoutCancel(ctx)}
}

func (d *Debouncer) Trigger(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.latest = text
	if d.running {
		d.dirty = true
		return
	}
	d.scheduleLocked()
}

func (d *Debouncer) scheduleLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// fire ignores timers that were superseded after they had already expired.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen || d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	text := d.latest
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	d.fn(d.ctx, text)

	d.mu.Lock()
	d.running = false
	if d.dirty && !d.closed {
		d.dirty = false
		d.scheduleLocked()
	}
	d.mu.Unlock()
}

// Close drops any pending trigger and waits for a running call.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
