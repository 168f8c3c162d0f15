//
// Date: 2026-08-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Event hub for playback change notifications.
//

package spotify

import (
	"log"
	"sync"
)

// Event names emitted by the Notifier. The per-field names fire only when the
// corresponding field changed between two polls; "progress" and "update" fire
// on every successful poll and "error" whenever a poll fails.
const (
	EventSongChanged         = "song-changed"
	EventAlbumChanged        = "album-changed"
	EventDeviceChanged       = "device-changed"
	EventPlayingStateChanged = "playing-state-changed"
	EventShuffleStateChanged = "shuffle-state-changed"
	EventRepeatStateChanged  = "repeat-state-changed"
	EventVolumeChanged       = "volume-changed"
	EventPlayingTypeChanged  = "playing-type-changed"
	EventProgress            = "progress"
	EventUpdate              = "update"
	EventError               = "error"
)

// Event is delivered to every handler registered for its name. State is the
// full raw payload of the poll that produced the event (nil when playback
// stopped or on error events), Snapshot the parsed state after that poll.
// Progress is set on "progress" events and Err on "error" events.
type Event struct {
	Name     string
	State    *PlayerState
	Snapshot Snapshot
	Progress *Progress
	Err      error
}

// Handler is a callback registered for a named event.
type Handler func(Event)

// hub is a minimal publish/subscribe registry. Each Notifier owns one, so
// listeners on one account never observe another account's playback.
type hub struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

func newHub() *hub {
	return &hub{handlers: make(map[string][]Handler)}
}

// on registers a handler for an event name. Handlers cannot be removed;
// registering the same handler twice means it fires twice.
func (h *hub) on(name string, fn Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[name] = append(h.handlers[name], fn)
}

// emit invokes every handler registered for the event's name synchronously,
// in registration order, on the calling goroutine. A panicking handler is
// logged and skipped so it cannot starve the handlers after it.
func (h *hub) emit(e Event) {
	h.mu.Lock()
	registered := h.handlers[e.Name]
	handlers := make([]Handler, len(registered))
	copy(handlers, registered)
	h.mu.Unlock()

	for _, fn := range handlers {
		safeCall(fn, e)
	}
}

// safeCall runs one handler with panic isolation.
func safeCall(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: event handler for %q panicked: %v", e.Name, r)
		}
	}()
	fn(e)
}
