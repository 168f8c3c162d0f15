//
// Date: 2026-08-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Polling loop that diffs playback state and emits change events.
//

package spotify

import (
	"context"
	"log"
	"sync"
	"time"
)

// Notifier polls the current playback state on an interval, diffs each result
// against the previously observed Snapshot, and emits change events through
// its own event hub. One Notifier tracks one account's playback.
//
// A fetch failure never stops the loop: the tick emits a single "error" event,
// leaves the stored Snapshot untouched, and the schedule keeps running.
type Notifier struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	events   *hub

	// mu guards the run state and the stored snapshot. tickMu serializes
	// fetch-and-diff cycles so a forced refresh can never race a scheduled
	// tick over the same previous snapshot.
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	snapshot Snapshot

	tickMu sync.Mutex
}

// NewNotifier creates a Notifier polling through the given fetcher. Zero
// durations fall back to DefaultPollInterval and DefaultFetchTimeout.
func NewNotifier(fetcher Fetcher, interval, timeout time.Duration) *Notifier {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Notifier{
		fetcher:  fetcher,
		interval: interval,
		timeout:  timeout,
		events:   newHub(),
	}
}

// On registers a handler for the named event. Handlers are invoked
// synchronously in registration order on the polling goroutine.
func (n *Notifier) On(name string, fn Handler) {
	n.events.on(name, fn)
}

// SetPollInterval changes the delay between polls. Takes effect on the next
// Start.
func (n *Notifier) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	n.mu.Lock()
	n.interval = d
	n.mu.Unlock()
}

// CurrentSnapshot returns the last known playback snapshot. The returned
// value is a copy; the Notifier never exposes a partially updated state.
func (n *Notifier) CurrentSnapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot
}

// Start begins the polling loop. An immediate fetch-and-diff runs before the
// first timed tick so subscribers get the initial state without waiting a
// full interval. Calling Start while running tears down the existing loop
// first, so there is never more than one timer per Notifier.
func (n *Notifier) Start() {
	n.mu.Lock()
	if n.running {
		close(n.stopCh)
	}
	stop := make(chan struct{})
	n.stopCh = stop
	n.running = true
	interval := n.interval
	n.mu.Unlock()

	go n.loop(stop, interval)
}

// Stop halts the polling loop. It is a no-op when not running, safe to call
// repeatedly, and safe to call from inside an event handler. After Stop
// returns no further ticks fire; the result of a fetch still in flight is
// discarded rather than applied.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return
	}
	n.running = false
	close(n.stopCh)
	n.stopCh = nil
}

// ForceRefresh runs one fetch-and-diff cycle outside the regular schedule.
// It shares the single-flight lock with the loop, so it waits for any
// in-progress tick and never interferes with the interval timer. It also
// works when the Notifier is stopped, as a one-shot poll.
func (n *Notifier) ForceRefresh() {
	n.mu.Lock()
	stop := n.stopCh
	n.mu.Unlock()
	n.refresh(stop)
}

// loop drives the scheduled ticks until stop is closed.
func (n *Notifier) loop(stop chan struct{}, interval time.Duration) {
	n.refresh(stop)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.refresh(stop)
		}
	}
}

// refresh performs one fetch-and-diff cycle. stop identifies the loop
// incarnation the cycle belongs to; once that channel closes the cycle's
// result is discarded. A nil stop means a one-shot cycle that always applies.
func (n *Notifier) refresh(stop <-chan struct{}) {
	n.tickMu.Lock()
	defer n.tickMu.Unlock()

	if cancelled(stop) {
		return
	}

	n.mu.Lock()
	prev := n.snapshot
	timeout := n.timeout
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	state, err := n.fetcher.CurrentPlayback(ctx)

	// The notifier may have been stopped while the request was in flight.
	if cancelled(stop) {
		return
	}

	if err != nil {
		log.Printf("Warning: playback fetch failed: %v", err)
		n.events.emit(Event{Name: EventError, Snapshot: prev, Err: err})
		return
	}

	cur := newSnapshot(state)

	// Nothing was playing before and nothing is playing now.
	if cur.empty() && prev.empty() {
		return
	}

	var changed []string
	if cur.empty() {
		// Playback stopped: every per-field listener hears the reset.
		changed = allChangeEvents()
	} else {
		changed = cur.diff(prev)
	}

	// Store before emitting so handlers reading CurrentSnapshot observe the
	// state that produced their event.
	n.mu.Lock()
	n.snapshot = cur
	n.mu.Unlock()

	for _, name := range changed {
		n.events.emit(Event{Name: name, State: state, Snapshot: cur})
	}

	prog := newProgress(cur, prev)
	n.events.emit(Event{Name: EventProgress, State: state, Snapshot: cur, Progress: &prog})
	n.events.emit(Event{Name: EventUpdate, State: state, Snapshot: cur})
}

// cancelled reports whether the loop incarnation owning stop has been torn
// down. A nil channel never cancels.
func cancelled(stop <-chan struct{}) bool {
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
