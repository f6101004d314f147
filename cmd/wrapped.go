package main

import (
	"context"
	"fmt"

	"github.com/domgiordano/xomify/internal/formatter"
	"github.com/domgiordano/xomify/internal/shared"
	"github.com/urfave/cli/v3"
)

// WrappedShow displays the year-in-review summary from the statistics backend.
func (r *Runner) WrappedShow(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	profile, err := spotify.Profile(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch profile: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("fetching wrapped summary", "user", profile.ID)

	summary, err := r.ensureBackend().Wrapped(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	switch cmd.String("format") {
	case "json":
		return r.writeJSON(summary, cmd.Bool("pretty"))
	case "markdown":
		_, err := r.output.Write(formatter.WrappedToMarkdown(summary))
		return err
	default:
		r.writePlainHeader(fmt.Sprintf("Wrapped %d", summary.Year))
		_, err := r.output.Write(formatter.WrappedToText(summary))
		return err
	}
}

// WrappedRadar displays fresh releases from the user's followed artists.
func (r *Runner) WrappedRadar(ctx context.Context, cmd *cli.Command) error {
	spotify, err := r.ensureSpotify()
	if err != nil {
		return err
	}

	profile, err := spotify.Profile(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch profile: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Info("fetching release radar", "user", profile.ID)

	entries, err := r.ensureBackend().ReleaseRadar(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.String("format") == "json" {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		r.writePlain("No fresh releases from artists you follow\n")
		return nil
	}

	r.writePlain("Release Radar (%d):\n\n", len(entries))
	_, err = r.output.Write(formatter.RadarToText(entries))
	return err
}
