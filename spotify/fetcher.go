//
// Date: 2026-08-15
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Current-playback fetching with a tri-state result.
//

package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

const playerEndpoint = "https://api.spotify.com/v1/me/player"

// Fetcher retrieves the current playback state. Implementations must follow
// the tri-state contract:
//
//	(state, nil) - playback payload received
//	(nil, nil)   - confirmed nothing playing (HTTP 204 or empty body)
//	(nil, err)   - transport, HTTP, or parse failure
//
// The classification happens once here; the Notifier never re-derives it.
type Fetcher interface {
	CurrentPlayback(ctx context.Context) (*PlayerState, error)
}

// StatusError is returned when the API answers with a non-success status.
// Callers can pick out authentication (401) and rate-limit (429) responses
// with errors.As.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify API returned status %d", e.Code)
}

// AuthFailed reports whether the access token was rejected.
func (e *StatusError) AuthFailed() bool {
	return e.Code == http.StatusUnauthorized
}

// RateLimited reports whether the request was throttled.
func (e *StatusError) RateLimited() bool {
	return e.Code == http.StatusTooManyRequests
}

// apiFetcher is the production Fetcher. It performs the GET through an
// oauth2-authenticated http.Client, so the bearer token rides along
// automatically. The client is installed once the auth flow completes.
type apiFetcher struct {
	mu       sync.Mutex
	hc       *http.Client
	endpoint string
}

// newAPIFetcher returns a Fetcher hitting the real player endpoint. It
// reports an error until setClient provides an authenticated client.
func newAPIFetcher() *apiFetcher {
	return &apiFetcher{endpoint: playerEndpoint}
}

// setClient installs the authenticated HTTP client.
func (f *apiFetcher) setClient(hc *http.Client) {
	f.mu.Lock()
	f.hc = hc
	f.mu.Unlock()
}

// CurrentPlayback implements Fetcher against the Spotify Web API.
func (f *apiFetcher) CurrentPlayback(ctx context.Context) (*PlayerState, error) {
	f.mu.Lock()
	hc := f.hc
	f.mu.Unlock()
	if hc == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build playback request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playback: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read playback response: %w", err)
	}

	// Some proxies turn 204 into a 200 with an empty body. Treat that the
	// same as a confirmed "nothing playing".
	if len(body) == 0 {
		return nil, nil
	}

	var state PlayerState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to decode playback response: %w", err)
	}

	return &state, nil
}
