package main

import (
	"sync"
	"time"
)

// Debouncer batches rapid file events into a single action after a quiet
// period. The paths of every event in the batch are handed to the action.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	action   func(paths []string)
	pending  []string
	seen     map[string]bool
	seq      uint64         // invalidates timers that fire after a reset
	wg       sync.WaitGroup // tracks in-flight actions for shutdown
}

// NewDebouncer creates a debouncer that calls action once duration has
// passed since the last Trigger.
func NewDebouncer(duration time.Duration, action func(paths []string)) *Debouncer {
	return &Debouncer{
		duration: duration,
		action:   action,
		seen:     make(map[string]bool),
	}
}

// Trigger adds path to the pending batch and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if path != "" && !d.seen[path] {
		d.seen[path] = true
		d.pending = append(d.pending, path)
	}
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}

	d.seq++
	currentSeq := d.seq

	d.wg.Add(1)
	d.timer = time.AfterFunc(d.duration, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.seq != currentSeq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		paths := d.pending
		d.pending = nil
		d.seen = make(map[string]bool)
		d.mu.Unlock()

		d.action(paths)
	})
}

// Cancel drops the pending batch. It does not wait for a running action.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		if d.timer.Stop() {
			d.wg.Done()
		}
		d.timer = nil
	}
	d.pending = nil
	d.seen = make(map[string]bool)
}

// CancelAndWait drops the pending batch and blocks until a running action
// completes.
func (d *Debouncer) CancelAndWait() {
	d.Cancel()
	d.wg.Wait()
}
