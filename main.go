//
// Date: 2026-08-17
// Author: Spicer Matthews <spicer@cloudmanic.com>
// Copyright (c) 2026 Cloudmanic Labs, LLC. All rights reserved.
//
// Description: Spotify playback watcher. This application authenticates with
// Spotify using the PKCE flow, then watches the account's playback and prints
// every change (track, device, volume, shuffle, repeat, play state) as it
// happens. It can also issue one-shot playback commands.
//

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/cloudmanic/spotify-watch/spotify"
)

// main is the entry point for the application. It handles authentication,
// one-shot playback commands, and the live watch mode.
func main() {
	// Parse command line flags
	listDevices := flag.Bool("devices", false, "List available Spotify Connect devices and exit")
	listPlaylists := flag.Bool("playlists", false, "List your Spotify playlists and exit")
	play := flag.Bool("play", false, "Resume playback and exit")
	pause := flag.Bool("pause", false, "Pause playback and exit")
	next := flag.Bool("next", false, "Skip to the next track and exit")
	prev := flag.Bool("prev", false, "Skip to the previous track and exit")
	volume := flag.Int("volume", -1, "Set playback volume (0-100) and exit")
	shuffleFlag := flag.String("shuffle", "", "Set shuffle mode (on|off) and exit")
	repeatFlag := flag.String("repeat", "", "Set repeat mode (off|track|context) and exit")
	queue := flag.String("queue", "", "Queue a track by ID, URI, or URL and exit")
	transfer := flag.String("transfer", "", "Transfer playback to a device ID and exit")
	interval := flag.Duration("interval", time.Second, "Poll interval for watch mode")
	flag.Parse()

	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	// Get credentials from environment variables
	clientID := os.Getenv("SPOTIFY_CLIENT_ID")
	redirectURI := os.Getenv("SPOTIFY_REDIRECT_URI")

	if clientID == "" {
		log.Fatal("SPOTIFY_CLIENT_ID environment variable is required")
	}

	player, err := spotify.NewPlayer(spotify.Config{
		ClientID:     clientID,
		RedirectURI:  redirectURI,
		PollInterval: *interval,
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	ctx := context.Background()

	// Run the PKCE flow; this blocks until the browser redirect lands on the
	// local callback server.
	if err := player.Authenticate(ctx); err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}

	// Get user info to verify authentication
	user, err := player.CurrentUser(ctx)
	if err != nil {
		log.Fatalf("Failed to get user info: %v", err)
	}
	fmt.Printf("Authenticated as: %s\n", user.DisplayName)

	// If --devices flag is set, list devices and exit
	if *listDevices {
		devices, err := player.Devices(ctx)
		if err != nil {
			log.Fatalf("Failed to get devices: %v", err)
		}
		spotify.PrintDevicesTable(devices)
		return
	}

	// If --playlists flag is set, list playlists and exit
	if *listPlaylists {
		playlists, err := player.Playlists(ctx)
		if err != nil {
			log.Fatalf("Failed to get playlists: %v", err)
		}
		spotify.PrintPlaylistsTable(playlists)
		return
	}

	// One-shot playback commands
	switch {
	case *play:
		runCommand("Playback resumed", player.Play(ctx))
		return
	case *pause:
		runCommand("Playback paused", player.Pause(ctx))
		return
	case *next:
		runCommand("Skipped to next track", player.Next(ctx))
		return
	case *prev:
		runCommand("Skipped to previous track", player.Previous(ctx))
		return
	case *volume >= 0:
		runCommand(fmt.Sprintf("Volume set to %d%%", *volume), player.SetVolume(ctx, *volume))
		return
	case *shuffleFlag != "":
		runCommand("Shuffle updated", player.Shuffle(ctx, *shuffleFlag == "on"))
		return
	case *repeatFlag != "":
		runCommand("Repeat updated", player.Repeat(ctx, *repeatFlag))
		return
	case *queue != "":
		runCommand("Track queued", player.QueueTrack(ctx, *queue))
		return
	case *transfer != "":
		runCommand("Playback transferred", player.TransferPlayback(ctx, *transfer, true))
		return
	}

	// Default: watch mode
	watch(player)
}

// runCommand prints the success message or exits with the command's error.
func runCommand(message string, err error) {
	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}
	fmt.Println(message)
}

// watch subscribes to every change event and prints them until interrupted.
func watch(player *spotify.Player) {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	player.On(spotify.EventSongChanged, func(e spotify.Event) {
		if e.State == nil || e.State.Item == nil {
			cyan.Println("♪ Playback stopped")
			return
		}
		cyan.Printf("♪ Now playing: %s — %s\n", artistNames(e.State.Item), e.State.Item.Name)
	})
	player.On(spotify.EventAlbumChanged, func(e spotify.Event) {
		if e.State != nil && e.State.Item != nil {
			cyan.Printf("  Album: %s\n", e.State.Item.Album.Name)
		}
	})
	player.On(spotify.EventDeviceChanged, func(e spotify.Event) {
		if e.State != nil {
			yellow.Printf("  Device: %s (%s)\n", e.State.Device.Name, e.State.Device.Type)
		}
	})
	player.On(spotify.EventPlayingStateChanged, func(e spotify.Event) {
		if e.Snapshot.IsPlaying {
			yellow.Println("  Playing")
		} else {
			yellow.Println("  Paused")
		}
	})
	player.On(spotify.EventShuffleStateChanged, func(e spotify.Event) {
		yellow.Printf("  Shuffle: %v\n", e.Snapshot.ShuffleEnabled)
	})
	player.On(spotify.EventRepeatStateChanged, func(e spotify.Event) {
		yellow.Printf("  Repeat: %s\n", e.Snapshot.RepeatMode)
	})
	player.On(spotify.EventVolumeChanged, func(e spotify.Event) {
		yellow.Printf("  Volume: %d%%\n", e.Snapshot.VolumePercent)
	})
	player.On(spotify.EventPlayingTypeChanged, func(e spotify.Event) {
		yellow.Printf("  Playing type: %s\n", e.Snapshot.PlayingType)
	})
	player.On(spotify.EventError, func(e spotify.Event) {
		red.Printf("  Error: %v\n", e.Err)
	})

	notifier := player.Notifier()
	notifier.Start()
	defer notifier.Stop()

	fmt.Println("Watching playback. Press Ctrl+C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	fmt.Println("\nStopping.")
}

// artistNames joins the artist names of a track for display.
func artistNames(item *spotify.TrackItem) string {
	names := ""
	for i, artist := range item.Artists {
		if i > 0 {
			names += ", "
		}
		names += artist.Name
	}
	return names
}
