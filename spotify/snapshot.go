//
// Date: 2026-08-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Snapshot of observed playback state and field-level diffing.
//

package spotify

// Snapshot is one observed instant of playback state. It is a plain value:
// once built from a fetch response it is never mutated, only replaced. The
// zero value is the canonical "nothing playing" sentinel.
type Snapshot struct {
	TrackID        string
	AlbumID        string
	DeviceID       string
	IsPlaying      bool
	ShuffleEnabled bool
	RepeatMode     string
	VolumePercent  int
	PlayingType    string
	ProgressMs     int
	DurationMs     int
	ContextURI     string
}

// newSnapshot builds a Snapshot from a parsed playback payload. A nil payload
// yields the empty sentinel.
func newSnapshot(state *PlayerState) Snapshot {
	if state == nil {
		return Snapshot{}
	}
	s := Snapshot{
		DeviceID:       state.Device.ID,
		IsPlaying:      state.IsPlaying,
		ShuffleEnabled: state.ShuffleState,
		RepeatMode:     state.RepeatState,
		VolumePercent:  state.Device.VolumePercent,
		PlayingType:    state.PlayingType,
		ProgressMs:     state.ProgressMs,
	}
	if state.Item != nil {
		s.TrackID = state.Item.URI
		s.AlbumID = state.Item.Album.URI
		s.DurationMs = state.Item.DurationMs
	}
	if state.Context != nil {
		s.ContextURI = state.Context.URI
	}
	return s
}

// empty reports whether the snapshot is the "nothing playing" sentinel.
func (s Snapshot) empty() bool {
	return s == Snapshot{}
}

// diff compares the snapshot against the previous one and returns the change
// event names for every tracked field whose value differs, in a fixed order.
// ProgressMs and DurationMs are intentionally not diffed; they feed the
// derived progress event instead.
func (s Snapshot) diff(prev Snapshot) []string {
	var events []string
	if s.TrackID != prev.TrackID {
		events = append(events, EventSongChanged)
	}
	if s.AlbumID != prev.AlbumID {
		events = append(events, EventAlbumChanged)
	}
	if s.DeviceID != prev.DeviceID {
		events = append(events, EventDeviceChanged)
	}
	if s.IsPlaying != prev.IsPlaying {
		events = append(events, EventPlayingStateChanged)
	}
	if s.ShuffleEnabled != prev.ShuffleEnabled {
		events = append(events, EventShuffleStateChanged)
	}
	if s.RepeatMode != prev.RepeatMode {
		events = append(events, EventRepeatStateChanged)
	}
	if s.VolumePercent != prev.VolumePercent {
		events = append(events, EventVolumeChanged)
	}
	if s.PlayingType != prev.PlayingType {
		events = append(events, EventPlayingTypeChanged)
	}
	return events
}

// allChangeEvents returns every tracked-field event name, used when playback
// stops and each per-field listener must be told the field reset.
func allChangeEvents() []string {
	return []string{
		EventSongChanged,
		EventAlbumChanged,
		EventDeviceChanged,
		EventPlayingStateChanged,
		EventShuffleStateChanged,
		EventRepeatStateChanged,
		EventVolumeChanged,
		EventPlayingTypeChanged,
	}
}

// Progress is the derived playback position for one tick. Percent values are
// ratios in [0, 1]; deltas are against the previous tick and go negative on a
// backward seek or a track change.
type Progress struct {
	DurationMs      int
	ProgressMs      int
	ProgressPercent float64
	DeltaMs         int
	DeltaPercent    float64
}

// progressPercent returns the snapshot's position as a ratio, zero when the
// duration is unknown.
func (s Snapshot) progressPercent() float64 {
	if s.DurationMs == 0 {
		return 0
	}
	return float64(s.ProgressMs) / float64(s.DurationMs)
}

// newProgress computes the derived progress of the current snapshot relative
// to the previous one.
func newProgress(cur, prev Snapshot) Progress {
	return Progress{
		DurationMs:      cur.DurationMs,
		ProgressMs:      cur.ProgressMs,
		ProgressPercent: cur.progressPercent(),
		DeltaMs:         cur.ProgressMs - prev.ProgressMs,
		DeltaPercent:    cur.progressPercent() - prev.progressPercent(),
	}
}
