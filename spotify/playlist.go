//
// Date: 2026-08-16
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Playlist listing, ID extraction, and display functions.
//

package spotify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	spotifyLib "github.com/zmb3/spotify/v2"
)

// Playlists returns every playlist of the authenticated user, following
// pagination until the last page.
func (p *Player) Playlists(ctx context.Context) ([]spotifyLib.SimplePlaylist, error) {
	client, err := p.api()
	if err != nil {
		return nil, err
	}

	var all []spotifyLib.SimplePlaylist
	limit := 50
	offset := 0

	for {
		playlists, err := client.CurrentUsersPlaylists(ctx, spotifyLib.Limit(limit), spotifyLib.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlists: %w", err)
		}

		all = append(all, playlists.Playlists...)

		if len(playlists.Playlists) < limit {
			break
		}
		offset += limit
	}

	return all, nil
}

// ExtractPlaylistID extracts the playlist ID from a Spotify URL or URI, or
// returns the input as-is if it's already just an ID.
func ExtractPlaylistID(input string) string {
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}
	// Full URL like https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=xxx
	if strings.Contains(input, "spotify.com/playlist/") {
		parts := strings.Split(input, "/playlist/")
		if len(parts) > 1 {
			// Remove any query parameters
			return strings.Split(parts[1], "?")[0]
		}
	}
	// Already just an ID
	return input
}

// ExtractTrackID extracts the track ID from a Spotify URL or URI, or returns
// the input as-is if it's already just an ID.
func ExtractTrackID(input string) string {
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}
	if strings.Contains(input, "spotify.com/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) > 1 {
			return strings.Split(parts[1], "?")[0]
		}
	}
	return input
}

// PrintPlaylistsTable displays the user's Spotify playlists in a formatted table.
func PrintPlaylistsTable(playlists []spotifyLib.SimplePlaylist) {
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	cyan.Println("🎵 Your Spotify Playlists")
	fmt.Println()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Name", "Tracks", "Owner", "Playlist ID"})

	for i, playlist := range playlists {
		t.AppendRow(table.Row{
			i + 1,
			color.New(color.Bold).Sprint(playlist.Name),
			playlist.Tracks.Total,
			playlist.Owner.DisplayName,
			color.HiBlackString(string(playlist.ID)),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Println()
	green.Printf("Total playlists: %d\n", len(playlists))
}
