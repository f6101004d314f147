package main

import (
	"context"
	"fmt"

	"github.com/domgiordano/xomify/internal/formatter"
	"github.com/domgiordano/xomify/internal/models"
	"github.com/domgiordano/xomify/internal/services"
	"github.com/domgiordano/xomify/internal/shared"
	"github.com/urfave/cli/v3"
)

// resolveRange maps the CLI's short/medium/long to Spotify time ranges.
func resolveRange(name string) (string, error) {
	switch name {
	case "short", services.RangeShortTerm:
		return services.RangeShortTerm, nil
	case "medium", "", services.RangeMediumTerm:
		return services.RangeMediumTerm, nil
	case "long", services.RangeLongTerm:
		return services.RangeLongTerm, nil
	default:
		return "", fmt.Errorf("%w: invalid range '%s' (must be short, medium, or long)", shared.ErrInvalidFlag, name)
	}
}

// StatsTopTracks lists the user's most played tracks for a time range.
func (r *Runner) StatsTopTracks(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := resolveRange(cmd.String("range"))
	if err != nil {
		return err
	}

	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	r.logger.Info("fetching top tracks", "range", timeRange, "limit", cmd.Int("limit"))

	tracks, err := spotify.TopTracks(ctx, timeRange, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.renderTracks("Top Tracks", tracks, cmd)
}

// StatsTopArtists lists the user's most played artists for a time range.
func (r *Runner) StatsTopArtists(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := resolveRange(cmd.String("range"))
	if err != nil {
		return err
	}

	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	r.logger.Info("fetching top artists", "range", timeRange, "limit", cmd.Int("limit"))

	artists, err := spotify.TopArtists(ctx, timeRange, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.renderArtists("Top Artists", artists, cmd)
}

// StatsFollowed lists the artists the user follows.
func (r *Runner) StatsFollowed(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	r.logger.Info("fetching followed artists")

	artists, err := spotify.FollowedArtists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(artists) {
		artists = artists[:limit]
	}

	return r.renderArtists("Followed Artists", artists, cmd)
}

// StatsAlbums lists the user's saved albums.
func (r *Runner) StatsAlbums(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	r.logger.Info("fetching saved albums")

	albums, err := spotify.SavedAlbums(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.renderAlbums("Saved Albums", albums, cmd)
}

// StatsNewReleases lists new releases on Spotify.
func (r *Runner) StatsNewReleases(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	r.logger.Info("fetching new releases")

	albums, err := spotify.NewReleases(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.renderAlbums("New Releases", albums, cmd)
}

func (r *Runner) renderTracks(title string, tracks []models.Track, cmd *cli.Command) error {
	switch cmd.String("format") {
	case "json":
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	case "csv":
		file, err := formatter.WriteTracksCSV(tracks, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", file)
	case "markdown":
		_, err := r.output.Write(formatter.TracksToMarkdown(title, tracks))
		return err
	default:
		r.writePlain("%s (%d):\n\n", title, len(tracks))
		for i, track := range tracks {
			r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
			if track.Album != "" {
				r.writePlain("   Album: %s\n", track.Album)
			}
			r.writePlain("   Duration: %s\n", shared.FormatDuration(track.Duration))
		}
		return nil
	}
}

func (r *Runner) renderArtists(title string, artists []models.Artist, cmd *cli.Command) error {
	switch cmd.String("format") {
	case "json":
		return r.writeJSON(artists, cmd.Bool("pretty"))
	case "csv":
		file, err := formatter.WriteArtistsCSV(artists, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", file)
	case "markdown":
		_, err := r.output.Write(formatter.ArtistsToMarkdown(title, artists))
		return err
	default:
		r.writePlain("%s (%d):\n\n", title, len(artists))
		for i, artist := range artists {
			r.writePlain("%d. %s\n", i+1, artist.Name)
			if len(artist.Genres) > 0 {
				r.writePlain("   Genres: %s\n", artist.Genres[0])
			}
			r.writePlain("   Followers: %d\n", artist.Followers)
		}
		return nil
	}
}

func (r *Runner) renderAlbums(title string, albums []models.Album, cmd *cli.Command) error {
	switch cmd.String("format") {
	case "json":
		return r.writeJSON(albums, cmd.Bool("pretty"))
	default:
		r.writePlain("%s (%d):\n\n", title, len(albums))
		for i, album := range albums {
			r.writePlain("%d. %s - %s\n", i+1, album.Artist, album.Name)
			if album.ReleaseDate != "" {
				r.writePlain("   Released: %s\n", album.ReleaseDate)
			}
			r.writePlain("   Tracks: %d\n", album.TotalTracks)
		}
		return nil
	}
}
