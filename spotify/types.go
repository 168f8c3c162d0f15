//
// Date: 2026-08-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Type definitions and interfaces for the Spotify Watch library.
//

package spotify

import (
	"context"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Client defines the interface for Spotify API operations used by the
// playback controls. This allows for mocking in tests.
type Client interface {
	CurrentUser(ctx context.Context) (*spotifyLib.PrivateUser, error)
	CurrentUsersPlaylists(ctx context.Context, opts ...spotifyLib.RequestOption) (*spotifyLib.SimplePlaylistPage, error)
	PlayerDevices(ctx context.Context) ([]spotifyLib.PlayerDevice, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, position int) error
	Volume(ctx context.Context, percent int) error
	Shuffle(ctx context.Context, shuffle bool) error
	Repeat(ctx context.Context, state string) error
	TransferPlayback(ctx context.Context, deviceID spotifyLib.ID, play bool) error
	QueueSong(ctx context.Context, trackID spotifyLib.ID) error
}

// PlayerState mirrors the response body of GET /v1/me/player. It is decoded
// once at the fetch boundary; everything downstream works with this struct or
// the Snapshot derived from it.
type PlayerState struct {
	Device struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Type          string `json:"type"`
		Active        bool   `json:"is_active"`
		VolumePercent int    `json:"volume_percent"`
	} `json:"device"`
	ShuffleState bool             `json:"shuffle_state"`
	RepeatState  string           `json:"repeat_state"`
	Timestamp    int64            `json:"timestamp"`
	Context      *PlaybackContext `json:"context"`
	ProgressMs   int              `json:"progress_ms"`
	IsPlaying    bool             `json:"is_playing"`
	PlayingType  string           `json:"currently_playing_type"`
	Item         *TrackItem       `json:"item"`
}

// PlaybackContext is the playlist or album a track is playing from. Only the
// URI is used as an identity key; the rest is informational.
type PlaybackContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
	Href string `json:"href"`
}

// TrackItem represents the item object of the playback payload. The API sends
// null for it when nothing is playing, so it is always accessed through a
// pointer.
type TrackItem struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Name       string `json:"name"`
	DurationMs int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
		URI  string `json:"uri"`
	} `json:"artists"`
	Album struct {
		ID   string `json:"id"`
		URI  string `json:"uri"`
		Name string `json:"name"`
	} `json:"album"`
}
