//
// Date: 2026-08-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Player ties authentication, playback controls, and the
// change notifier together for a single Spotify account.
//

package spotify

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Player is the top-level handle for one Spotify account: it runs the auth
// flow, exposes playback controls, and owns the Notifier that reports state
// changes. Construct one Player per account; nothing is shared between
// instances.
type Player struct {
	cfg     Config
	flow    *authFlow
	fetcher *apiFetcher

	mu     sync.Mutex
	client Client

	notifier *Notifier
}

// NewPlayer validates the configuration and returns an unauthenticated
// Player. Call Authenticate or SetToken before using playback controls or
// starting the Notifier.
func NewPlayer(cfg Config) (*Player, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	flow, err := newAuthFlow(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := newAPIFetcher()
	return &Player{
		cfg:      cfg,
		flow:     flow,
		fetcher:  fetcher,
		notifier: NewNotifier(fetcher, cfg.PollInterval, cfg.FetchTimeout),
	}, nil
}

// Notifier returns the player's change notifier.
func (p *Player) Notifier() *Notifier {
	return p.notifier
}

// On registers an event handler. Shorthand for Notifier().On.
func (p *Player) On(name string, fn Handler) {
	p.notifier.On(name, fn)
}

// AuthURL returns the authorization URL for this player's PKCE attempt.
func (p *Player) AuthURL() string {
	return p.flow.authURL()
}

// SetToken installs an OAuth token obtained elsewhere and builds the
// authenticated API client from it.
func (p *Player) SetToken(token *oauth2.Token) {
	hc := p.flow.client(context.Background(), token)
	p.fetcher.setClient(hc)

	p.mu.Lock()
	p.client = spotifyLib.New(hc)
	p.mu.Unlock()
}

// SetAccessToken installs a bare access token, for callers that ran the
// token exchange themselves.
func (p *Player) SetAccessToken(accessToken string) {
	p.SetToken(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

// SetClient replaces the API client. Used by tests to inject a mock.
func (p *Player) SetClient(client Client) {
	p.mu.Lock()
	p.client = client
	p.mu.Unlock()
}

// api returns the authenticated client or an error when the auth flow has
// not completed yet.
func (p *Player) api() (Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil, fmt.Errorf("not authenticated")
	}
	return p.client, nil
}

// CurrentUser fetches the authenticated user's profile. Useful to verify the
// auth flow worked before starting the notifier.
func (p *Player) CurrentUser(ctx context.Context) (*spotifyLib.PrivateUser, error) {
	client, err := p.api()
	if err != nil {
		return nil, err
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return user, nil
}

// Play resumes playback on the active device.
func (p *Player) Play(ctx context.Context) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Play(ctx); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// Pause pauses playback on the active device.
func (p *Player) Pause(ctx context.Context) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// Next skips to the next track.
func (p *Player) Next(ctx context.Context) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Next(ctx); err != nil {
		return fmt.Errorf("failed to skip to next track: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// Previous skips to the previous track.
func (p *Player) Previous(ctx context.Context) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Previous(ctx); err != nil {
		return fmt.Errorf("failed to skip to previous track: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// Seek moves playback to the given position in the current track.
func (p *Player) Seek(ctx context.Context, positionMs int) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Seek(ctx, positionMs); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// SetVolume sets the playback volume, 0-100.
func (p *Player) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", percent)
	}
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Volume(ctx, percent); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// Shuffle enables or disables shuffle mode.
func (p *Player) Shuffle(ctx context.Context, on bool) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Shuffle(ctx, on); err != nil {
		return fmt.Errorf("failed to set shuffle: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// Repeat sets the repeat mode: "off", "track", or "context".
func (p *Player) Repeat(ctx context.Context, state string) error {
	switch state {
	case "off", "track", "context":
	default:
		return fmt.Errorf("repeat state must be off, track, or context, got %q", state)
	}
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.Repeat(ctx, state); err != nil {
		return fmt.Errorf("failed to set repeat: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// TransferPlayback moves playback to another device.
func (p *Player) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	if err := client.TransferPlayback(ctx, spotifyLib.ID(deviceID), play); err != nil {
		return fmt.Errorf("failed to transfer playback: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}

// QueueTrack adds a track to the playback queue by ID or spotify:track: URI.
func (p *Player) QueueTrack(ctx context.Context, track string) error {
	client, err := p.api()
	if err != nil {
		return err
	}
	id := spotifyLib.ID(ExtractTrackID(track))
	if err := client.QueueSong(ctx, id); err != nil {
		return fmt.Errorf("failed to queue track: %w", err)
	}
	p.notifier.ForceRefresh()
	return nil
}
