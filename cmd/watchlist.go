package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/formatter"
	"github.com/desertthunder/cinex/internal/shared"
	"github.com/desertthunder/cinex/internal/tasks"
)

// WatchlistList renders GET /watchlist.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}

	list, err := r.api().Watchlist(ctx)
	if err != nil {
		return err
	}

	data, err := formatter.Watchlist(format, list.Watchlist)
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// WatchlistAdd adds one movie. Adding a movie twice reports it without failing.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}

	res, err := r.api().AddToWatchlist(ctx, id)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("movie %d", id)
	if res.Movie != nil {
		title = res.Movie.Title
	}
	if !res.Success && res.InWatchlist {
		return r.writePlain("%s is already in your watchlist\n", title)
	}
	return r.writePlain("✓ Added %s to your watchlist\n", title)
}

// WatchlistRemove removes one movie.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	if _, err := r.authorize(); err != nil {
		return err
	}

	if _, err := r.api().RemoveFromWatchlist(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotInWatchlist) {
			return fmt.Errorf("%w: movie %d", shared.ErrNotInWatchlist, id)
		}
		return err
	}
	return r.writePlain("✓ Removed movie %d from your watchlist\n", id)
}

// WatchlistStatus prints one line per requested movie ID.
func (r *Runner) WatchlistStatus(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one movie ID is required", shared.ErrMissingArgument)
	}

	ids := make([]int, len(args))
	for i, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	if _, err := r.authorize(); err != nil {
		return err
	}

	status, err := r.api().WatchlistStatus(ctx, ids)
	if err != nil {
		return err
	}

	for _, id := range ids {
		mark := "✗"
		if status[id] {
			mark = "✓"
		}
		r.writePlain("%s %d\n", mark, id)
	}
	return r.writePlain("%s\n", formatter.WatchlistCount(status.Count()))
}

// WatchlistClear removes every movie with bounded concurrency, printing progress as it goes.
func (r *Runner) WatchlistClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to remove every movie from your watchlist", shared.ErrMissingArgument)
	}
	if _, err := r.authorize(); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	res, err := tasks.ClearWatchlist(ctx, r.api(), int(cmd.Int("concurrency")), progress)
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	if res.Requested == 0 {
		return r.writePlain("Your watchlist is already empty\n")
	}
	return r.writePlain("✓ Removed %d of %d movies from your watchlist\n", res.Removed, res.Requested)
}
