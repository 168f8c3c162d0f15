//
// Date: 2026-08-19
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Unit tests for the polling notifier.
//

package spotify

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

// stubFetcher is a mock Fetcher driven by a function field, so each test can
// script the fetch results it needs.
type stubFetcher struct {
	CurrentPlaybackFunc func(ctx context.Context) (*PlayerState, error)
}

// CurrentPlayback returns the scripted result.
func (s *stubFetcher) CurrentPlayback(ctx context.Context) (*PlayerState, error) {
	if s.CurrentPlaybackFunc != nil {
		return s.CurrentPlaybackFunc(ctx)
	}
	return nil, nil
}

// recorder collects event names in emission order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) handler(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e.Name)
	r.mu.Unlock()
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// subscribeAll registers the recorder for every event the notifier can emit.
func subscribeAll(n *Notifier, rec *recorder) {
	names := append(allChangeEvents(), EventProgress, EventUpdate, EventError)
	for _, name := range names {
		n.On(name, rec.handler)
	}
}

// TestNotifierInitialTick tests that the first poll diffs against the empty
// sentinel, so only the fields that left their zero value fire.
func TestNotifierInitialTick(t *testing.T) {
	state := testState("spotify:track:t1", "", "", true, 50, 1000, 200000)
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			return state, nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	var progress Progress
	n.On(EventProgress, func(e Event) { progress = *e.Progress })

	n.ForceRefresh()

	want := []string{
		EventSongChanged,
		EventPlayingStateChanged,
		EventVolumeChanged,
		EventProgress,
		EventUpdate,
	}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("events = %v, want %v", rec.names(), want)
	}

	if progress.ProgressPercent != 0.005 {
		t.Errorf("ProgressPercent = %v, want 0.005", progress.ProgressPercent)
	}

	snap := n.CurrentSnapshot()
	if snap.TrackID != "spotify:track:t1" || snap.VolumePercent != 50 {
		t.Errorf("stored snapshot = %+v", snap)
	}
}

// TestNotifierNoOpStability tests that a repeated identical payload emits no
// per-field events, only progress and update.
func TestNotifierNoOpStability(t *testing.T) {
	progressMs := 1000
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			return testState("spotify:track:t1", "spotify:album:a1", "d1", true, 50, progressMs, 200000), nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	var progress Progress
	n.On(EventProgress, func(e Event) { progress = *e.Progress })

	n.ForceRefresh()
	rec.reset()

	progressMs = 2000
	n.ForceRefresh()

	want := []string{EventProgress, EventUpdate}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("events = %v, want %v", rec.names(), want)
	}
	if progress.DeltaMs != 1000 {
		t.Errorf("DeltaMs = %v, want 1000", progress.DeltaMs)
	}
}

// TestNotifierFieldIsolation tests that changing one field fires exactly its
// event, carrying the full payload.
func TestNotifierFieldIsolation(t *testing.T) {
	track := "spotify:track:A"
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			return testState(track, "spotify:album:a1", "d1", true, 50, 0, 200000), nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	var songEvent Event
	n.On(EventSongChanged, func(e Event) { songEvent = e })

	n.ForceRefresh()
	rec.reset()

	track = "spotify:track:B"
	n.ForceRefresh()

	want := []string{EventSongChanged, EventProgress, EventUpdate}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("events = %v, want %v", rec.names(), want)
	}

	if songEvent.State == nil || songEvent.State.Item == nil || songEvent.State.Item.URI != "spotify:track:B" {
		t.Errorf("song-changed payload = %+v, want full payload with new track", songEvent.State)
	}
}

// TestNotifierStopToEmpty tests the transition from active playback to a
// confirmed "nothing playing": all eight field events fire once with the
// sentinel value and the stored snapshot becomes the sentinel.
func TestNotifierStopToEmpty(t *testing.T) {
	var state *PlayerState = testState("spotify:track:t1", "spotify:album:a1", "d1", true, 50, 1000, 200000)
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			return state, nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	n.ForceRefresh()
	rec.reset()

	state = nil
	n.ForceRefresh()

	want := append(allChangeEvents(), EventProgress, EventUpdate)
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("events = %v, want %v", rec.names(), want)
	}

	if !n.CurrentSnapshot().empty() {
		t.Errorf("stored snapshot = %+v, want empty sentinel", n.CurrentSnapshot())
	}
}

// TestNotifierSteadyEmpty tests that consecutive "nothing playing" polls are
// completely silent.
func TestNotifierSteadyEmpty(t *testing.T) {
	fetcher := &stubFetcher{}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	n.ForceRefresh()
	n.ForceRefresh()

	if len(rec.names()) != 0 {
		t.Errorf("events = %v, want none", rec.names())
	}
}

// TestNotifierFailureIsolation tests that a failed fetch leaves the snapshot
// untouched and emits exactly one error event, nothing else.
func TestNotifierFailureIsolation(t *testing.T) {
	fail := false
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			if fail {
				return nil, errors.New("connection refused")
			}
			return testState("spotify:track:t1", "spotify:album:a1", "d1", true, 50, 1000, 200000), nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	n.ForceRefresh()
	before := n.CurrentSnapshot()
	rec.reset()

	fail = true
	n.ForceRefresh()

	want := []string{EventError}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("events = %v, want %v", rec.names(), want)
	}

	if n.CurrentSnapshot() != before {
		t.Errorf("snapshot changed on failed fetch: %+v", n.CurrentSnapshot())
	}

	// The loop must keep going: the next successful poll behaves normally.
	fail = false
	rec.reset()
	n.ForceRefresh()

	want = []string{EventProgress, EventUpdate}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("events after recovery = %v, want %v", rec.names(), want)
	}
}

// TestNotifierSingleFlight tests that a forced refresh issued while another
// cycle's fetch is outstanding waits for it instead of racing it.
func TestNotifierSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	var mu sync.Mutex
	var order []string
	first := true

	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			mu.Lock()
			blocking := first
			first = false
			order = append(order, "start")
			mu.Unlock()

			if blocking {
				close(started)
				<-release
			}

			mu.Lock()
			order = append(order, "end")
			mu.Unlock()
			return nil, nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		n.ForceRefresh()
	}()

	<-started
	go func() {
		defer wg.Done()
		n.ForceRefresh()
	}()

	// Give the second refresh a chance to (incorrectly) start fetching.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	inFlight := len(order)
	mu.Unlock()
	if inFlight != 1 {
		t.Fatalf("second fetch started while first was outstanding: order = %v", order)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []string{"start", "end", "start", "end"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

// TestNotifierStopIdempotent tests that Stop is safe to call twice or before
// Start.
func TestNotifierStopIdempotent(t *testing.T) {
	n := NewNotifier(&stubFetcher{}, 0, 0)

	n.Stop()
	n.Stop()

	n.Start()
	n.Stop()
	n.Stop()
}

// TestNotifierStopDiscardsInFlight tests that the result of a fetch still in
// flight when Stop is called is discarded, not applied.
func TestNotifierStopDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	once := sync.Once{}

	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			once.Do(func() { close(started) })
			<-release
			return testState("spotify:track:t1", "", "d1", true, 50, 0, 1000), nil
		},
	}

	n := NewNotifier(fetcher, time.Hour, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	n.Start()
	<-started
	n.Stop()
	close(release)

	// Give the discarded tick time to (incorrectly) apply.
	time.Sleep(50 * time.Millisecond)

	if !n.CurrentSnapshot().empty() {
		t.Errorf("in-flight result was applied after Stop: %+v", n.CurrentSnapshot())
	}
	if len(rec.names()) != 0 {
		t.Errorf("events fired after Stop: %v", rec.names())
	}
}

// TestNotifierStopFromHandler tests that Stop can be called from inside an
// event handler without deadlocking, and that no ticks follow.
func TestNotifierStopFromHandler(t *testing.T) {
	var mu sync.Mutex
	fetches := 0

	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			mu.Lock()
			fetches++
			mu.Unlock()
			return testState("spotify:track:t1", "", "d1", true, 50, 0, 1000), nil
		},
	}

	n := NewNotifier(fetcher, 5*time.Millisecond, 0)

	done := make(chan struct{})
	n.On(EventUpdate, func(e Event) {
		n.Stop()
		close(done)
	})

	n.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop from handler deadlocked")
	}

	// No further ticks should fire once Stop has run.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	after := fetches
	mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	final := fetches
	mu.Unlock()

	if final != after {
		t.Errorf("ticks kept firing after Stop: %d -> %d", after, final)
	}
}

// TestNotifierStartRestarts tests that calling Start while running replaces
// the existing loop instead of stacking a second timer.
func TestNotifierStartRestarts(t *testing.T) {
	var mu sync.Mutex
	fetches := 0

	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			mu.Lock()
			fetches++
			mu.Unlock()
			return nil, nil
		},
	}

	n := NewNotifier(fetcher, 20*time.Millisecond, 0)

	n.Start()
	n.Start()
	n.Start()

	time.Sleep(110 * time.Millisecond)
	n.Stop()

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	count := fetches
	mu.Unlock()

	// Three immediate fetches from the three Starts plus roughly five timed
	// ticks from the surviving loop. With stacked timers this would be close
	// to three times as many.
	if count > 12 {
		t.Errorf("fetch count = %d, suggests duplicate polling loops", count)
	}
}

// TestNotifierForceRefreshWhenStopped tests that ForceRefresh works as a
// one-shot poll without a running loop.
func TestNotifierForceRefreshWhenStopped(t *testing.T) {
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			return testState("spotify:track:t1", "", "d1", true, 30, 0, 1000), nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	n.ForceRefresh()

	if n.CurrentSnapshot().TrackID != "spotify:track:t1" {
		t.Errorf("snapshot = %+v, want track applied", n.CurrentSnapshot())
	}
	if len(rec.names()) == 0 {
		t.Error("expected events from one-shot refresh")
	}
}

// TestNotifierScenario walks the documented two-tick scenario end to end.
func TestNotifierScenario(t *testing.T) {
	progressMs := 1000
	fetcher := &stubFetcher{
		CurrentPlaybackFunc: func(ctx context.Context) (*PlayerState, error) {
			return testState("spotify:track:t1", "", "", true, 50, progressMs, 200000), nil
		},
	}

	n := NewNotifier(fetcher, 0, 0)
	rec := &recorder{}
	subscribeAll(n, rec)

	var progress Progress
	n.On(EventProgress, func(e Event) { progress = *e.Progress })

	// Tick 1: from empty to playing.
	n.ForceRefresh()

	want := []string{
		EventSongChanged,
		EventPlayingStateChanged,
		EventVolumeChanged,
		EventProgress,
		EventUpdate,
	}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("tick 1 events = %v, want %v", rec.names(), want)
	}
	if progress.ProgressPercent != 0.005 {
		t.Errorf("tick 1 ProgressPercent = %v, want 0.005", progress.ProgressPercent)
	}

	// Tick 2: identical payload, only progress advanced.
	rec.reset()
	progressMs = 2000
	n.ForceRefresh()

	want = []string{EventProgress, EventUpdate}
	if !reflect.DeepEqual(rec.names(), want) {
		t.Errorf("tick 2 events = %v, want %v", rec.names(), want)
	}
	if progress.DeltaMs != 1000 {
		t.Errorf("tick 2 DeltaMs = %v, want 1000", progress.DeltaMs)
	}
}
