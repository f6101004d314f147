package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/domgiordano/xomify/internal/shared"
	"github.com/domgiordano/xomify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for browsing listening statistics.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := resolveRange(cmd.String("range"))
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

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/xomify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, spotify, r.ensureBackend(), profile.ID, timeRange)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
