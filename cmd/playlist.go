package main

import (
	"context"
	"fmt"

	"github.com/domgiordano/xomify/internal/shared"
	"github.com/domgiordano/xomify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistList lists the user's playlists.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists")

	playlists, err := spotify.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}

	return nil
}

// PlaylistFromRadar builds a playlist from the user's release radar.
func (r *Runner) PlaylistFromRadar(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")

	engine, err := r.ensureEngine()
	if err != nil {
		return err
	}

	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	profile, err := spotify.Profile(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch profile: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("building playlist from radar", "user", profile.ID, "name", name)
	r.writePlain("Building playlist from your release radar...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchRadar:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchTracks:
				if update.Step == 0 {
					r.writePlain("\n🔍 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.CreatePlaylist, tasks.AddTracks:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.BuildFromRadar(ctx, progressCh, profile.ID, name, tasks.BuildOpts{
		Description: cmd.String("description"),
		Public:      cmd.Bool("public"),
		NumWorkers:  int(cmd.Int("workers")),
		RateLimit:   cmd.Float("rate"),
	})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Playlist Created!")
	r.writePlain("Name: %s (ID: %s)\n", result.Playlist.Name, result.Playlist.ID)
	r.writePlain("Matched: %d/%d (%.1f%%)\n", result.SuccessCount, result.TotalQueries, result.MatchPercentage)

	if result.FailedCount > 0 {
		r.writePlain("\nCould not match %d releases:\n", result.FailedCount)
		for _, match := range result.TrackMatches {
			if match.Matched == nil {
				r.writePlain("  - %s - %s\n", match.Query.Artist, match.Query.Title)
			}
		}
	}

	return nil
}
