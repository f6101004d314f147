package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/domgiordano/xomify/internal/auth"
	"github.com/domgiordano/xomify/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the OAuth2 PKCE flow: opens the browser, waits for the
// callback, and persists the resulting credentials.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession()
	if err != nil {
		return err
	}

	if session.State() == auth.StateLoggedIn {
		r.writePlain("✓ Already logged in (token valid until %s)\n", session.ExpiresAt().Format(time.RFC1123))
		r.writePlain("Run 'xomify auth logout' first to switch accounts\n")
		return nil
	}

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	if err := session.Login(ctx); err != nil {
		switch {
		case errors.Is(err, shared.ErrUserCancelled):
			return fmt.Errorf("authorization was denied: %w", err)
		case errors.Is(err, shared.ErrTimeout):
			return fmt.Errorf("authorization timed out: %w", err)
		default:
			return fmt.Errorf("login failed: %w", err)
		}
	}

	r.logger.Info("login complete", "expires_at", session.ExpiresAt())

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Credentials saved\n\n")
	r.writePlain("You can now use: xomify stats top-tracks\n")
	return nil
}

// AuthStatus reports the current session state without touching the network.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession()
	if err != nil {
		return err
	}

	switch session.State() {
	case auth.StateLoggedIn:
		r.writePlain("✓ Logged in\n")
		r.writePlain("Token valid until: %s\n", session.ExpiresAt().Format(time.RFC1123))
	case auth.StateExpired:
		r.writePlain("⚠ Logged in, token expired\n")
		r.writePlain("The next request will refresh it automatically\n")
	default:
		r.writePlain("✗ Not logged in\n")
		r.writePlain("Run 'xomify auth login' to authenticate\n")
	}

	return nil
}

// AuthLogout clears stored credentials. Safe to run when already logged out.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	session, err := r.ensureSession()
	if err != nil {
		return err
	}

	if err := session.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	r.writePlain("✓ Logged out\n")
	return nil
}
