package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/shared"
)

// DefaultClearConcurrency bounds the number of concurrent DELETE requests.
const DefaultClearConcurrency = 4

// WatchlistClearer is the subset of the API needed to empty a watchlist.
type WatchlistClearer interface {
	Watchlist(ctx context.Context) (*services.WatchlistList, error)
	RemoveFromWatchlist(ctx context.Context, movieID int) (*services.WatchlistMutation, error)
}

// ClearResult reports what [ClearWatchlist] did.
type ClearResult struct {
	Requested int // movies in the watchlist when clearing started
	Removed   int // movies removed by this call
}

// ClearWatchlist removes every movie from the user's watchlist with at most concurrency requests in flight.
//
// A movie that is already gone is skipped. The first other failure cancels the remaining requests.
func ClearWatchlist(ctx context.Context, api WatchlistClearer, concurrency int, progress chan<- ProgressUpdate) (*ClearResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultClearConcurrency
	}

	sendProgress(progress, fetchWatchlistUpdate())
	list, err := api.Watchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear watchlist: %w", err)
	}

	result := &ClearResult{Requested: len(list.Watchlist)}
	if result.Requested == 0 {
		return result, nil
	}

	var removed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, entry := range list.Watchlist {
		g.Go(func() error {
			_, err := api.RemoveFromWatchlist(gctx, entry.ID)
			if errors.Is(err, shared.ErrNotInWatchlist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("movie %d: %w", entry.ID, err)
			}

			n := removed.Add(1)
			sendProgress(progress, removeMovieUpdate(int(n), result.Requested, entry.Movie))
			return nil
		})
	}

	err = g.Wait()
	result.Removed = int(removed.Load())
	if err != nil {
		return result, fmt.Errorf("failed to clear watchlist: %w", err)
	}
	return result, nil
}
