package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/shared"
)

// AuthLogin exchanges credentials for a token and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("logging in", "email", cmd.String("email"))

	resp, err := r.api().Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	return r.saveSession(resp, "Logged in")
}

// AuthRegister creates an account and stores the session it returns.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("registering", "username", cmd.String("username"), "email", cmd.String("email"))

	resp, err := r.api().Register(ctx, cmd.String("username"), cmd.String("email"), cmd.String("password"))
	if err != nil {
		var apiErr *services.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, apiErr.Message)
		}
		return err
	}
	return r.saveSession(resp, "Account created")
}

func (r *Runner) saveSession(resp *services.AuthResponse, verb string) error {
	if err := r.storage(); err != nil {
		return err
	}

	session := models.NewSession(resp.Token, resp.User, r.now())
	if err := r.sessions.Save(session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Debug("session stored", "id", session.ID, "expires_at", session.ExpiresAt)
	return r.writePlain("✓ %s as %s (%s)\n", verb, session.User.Username, session.User.Email)
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.storage(); err != nil {
		return err
	}
	if err := r.sessions.Clear(); err != nil {
		return err
	}
	r.api().SetToken("")
	return r.writePlain("✓ Logged out\n")
}

// AuthWhoami prints the user the stored token belongs to, as reported by the API.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.authorize(); err != nil {
		return err
	}

	user, err := r.api().Me(ctx)
	if err != nil {
		return err
	}

	r.writePlain("Username: %s\n", user.Username)
	r.writePlain("Email:    %s\n", user.Email)
	if user.CreatedAt != "" {
		r.writePlain("Member since: %s\n", user.CreatedAt)
	}
	return nil
}

// AuthStatus reports the local session and pings the catalog endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	if err := r.storage(); err != nil {
		return err
	}

	session, err := r.sessions.Current()
	switch {
	case err == nil:
		r.api().SetToken(session.Token)
		r.writePlain("Session: ✓ %s, expires in %s\n", session.User.Username, session.Remaining(r.now()).Round(time.Second))
	case errors.Is(err, shared.ErrSessionExpired):
		r.writePlain("Session: ✗ expired at %s\n", session.ExpiresAt.Local().Format(time.DateTime))
		if n, err := r.sessions.PurgeExpired(); err != nil {
			r.logger.Warn("failed to purge expired sessions", "error", err)
		} else {
			r.logger.Debug("purged expired sessions", "count", n)
		}
	case errors.Is(err, shared.ErrNotAuthenticated):
		r.writePlain("Session: ✗ Not logged in\n")
	default:
		return err
	}

	resp, err := r.api().Raw(ctx, http.MethodGet, "/movies/filters", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	return r.writePlain("API: ✓ %s\n", r.api().BaseURL())
}
