//
// Date: 2026-08-14
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Configuration for the Spotify Watch library.
//

package spotify

import (
	"fmt"
	"time"
)

const (
	// DefaultRedirectURI is used when no redirect URI is configured.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"

	// DefaultPollInterval is the default delay between playback polls.
	DefaultPollInterval = 1000 * time.Millisecond

	// DefaultFetchTimeout bounds a single playback fetch so a hung request
	// cannot stall the polling loop indefinitely.
	DefaultFetchTimeout = 10 * time.Second
)

// Config holds the credentials and tuning knobs for a Player. Each Player
// owns its own Config; there is no package-level state.
type Config struct {
	// ClientID is the Spotify application client ID. Required.
	ClientID string

	// RedirectURI must match a redirect URI registered for the application.
	// Defaults to DefaultRedirectURI.
	RedirectURI string

	// Scopes requested during authorization. When empty the playback
	// read/modify scopes are requested.
	Scopes []string

	// PollInterval is the delay between playback polls. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration

	// FetchTimeout bounds each playback fetch. Defaults to
	// DefaultFetchTimeout.
	FetchTimeout time.Duration
}

// validate checks required fields and fills in defaults. It is called when a
// Player is constructed so a bad configuration fails fast instead of
// surfacing later inside the polling loop.
func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}
	if c.RedirectURI == "" {
		c.RedirectURI = DefaultRedirectURI
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	return nil
}
