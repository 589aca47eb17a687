package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/formatter"
	"github.com/desertthunder/cinex/internal/models"
)

// LikesAdd likes a movie with POST /user/likes.
func (r *Runner) LikesAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}
	if err := r.api().Like(ctx, id); err != nil {
		return err
	}
	return r.writePlain("♥ Liked movie %d\n", id)
}

// LikesRemove unlikes a movie with DELETE /user/likes/:id.
func (r *Runner) LikesRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}
	if err := r.api().Unlike(ctx, id); err != nil {
		return err
	}
	return r.writePlain("♡ Unliked movie %d\n", id)
}

// DashboardAdd saves a movie to the dashboard watchlist with POST /user/watchlist.
func (r *Runner) DashboardAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}
	if err := r.api().AddUserWatchlist(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Saved movie %d to your dashboard\n", id)
}

// DashboardRemove drops a movie from the dashboard watchlist with DELETE /user/watchlist/:id.
func (r *Runner) DashboardRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}
	if err := r.api().RemoveUserWatchlist(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Removed movie %d from your dashboard\n", id)
}

type dashboard struct {
	User            string         `json:"user"`
	Watchlist       []models.Movie `json:"watchlist"`
	Recommendations []models.Movie `json:"recommendations"`
}

// Dashboard prints the user's watchlist and recommendations. Recommendations are optional.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	session, err := r.authorize()
	if err != nil {
		return err
	}

	watchlist, err := r.api().UserWatchlist(ctx)
	if err != nil {
		return err
	}

	recs, err := r.api().Recommendations(ctx)
	if err != nil {
		r.logger.Debug("recommendations unavailable", "error", err)
		recs = nil
	}

	d := dashboard{User: session.User.Username, Watchlist: watchlist, Recommendations: recs}
	if format == formatter.FormatJSON {
		return r.writeJSON(d, true)
	}

	r.writePlainHeader("Your Dashboard")
	r.writePlain("\nYour Watchlist (%d)\n", len(d.Watchlist))
	if len(d.Watchlist) == 0 {
		r.writePlain("  Your watchlist is empty\n")
	}
	for _, m := range d.Watchlist {
		r.writePlain("  • %s\n", dashboardLine(m))
	}

	r.writePlain("\nRecommended for You\n")
	if len(d.Recommendations) == 0 {
		return r.writePlain("  No recommendations available\n")
	}
	for _, m := range d.Recommendations {
		r.writePlain("  • %s\n", dashboardLine(m))
	}
	return nil
}

func dashboardLine(m models.Movie) string {
	line := m.Title
	if m.ReleaseYear != 0 {
		line += fmt.Sprintf(" (%d)", m.ReleaseYear)
	}
	return fmt.Sprintf("%s  %s %s", line, formatter.Stars(m.IMDbRating), formatter.Rating(m.IMDbRating))
}
