package tasks

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/shared"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type listCall struct {
	filters models.FilterState
	ctx     context.Context
}

// fakeQueryAPI is a programmable [services.MovieQueryService].
type fakeQueryAPI struct {
	mu            sync.Mutex
	authenticated bool
	calls         []listCall
	statusCalls   [][]int

	listFn   func(ctx context.Context, f models.FilterState) (*services.MovieList, error)
	statusFn func(ctx context.Context, ids []int) (models.WatchlistStatus, error)
	addFn    func(ctx context.Context, id int) (*services.WatchlistMutation, error)
	removeFn func(ctx context.Context, id int) (*services.WatchlistMutation, error)
}

func (f *fakeQueryAPI) ListMovies(ctx context.Context, filters models.FilterState, limit int) (*services.MovieList, error) {
	f.mu.Lock()
	f.calls = append(f.calls, listCall{filters: filters, ctx: ctx})
	fn := f.listFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, filters)
	}
	return moviesFor(filters), nil
}

func (f *fakeQueryAPI) WatchlistStatus(ctx context.Context, ids []int) (models.WatchlistStatus, error) {
	f.mu.Lock()
	f.statusCalls = append(f.statusCalls, ids)
	fn := f.statusFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, ids)
	}
	return models.WatchlistStatus{}, nil
}

func (f *fakeQueryAPI) AddToWatchlist(ctx context.Context, id int) (*services.WatchlistMutation, error) {
	if f.addFn != nil {
		return f.addFn(ctx, id)
	}
	return &services.WatchlistMutation{Success: true, InWatchlist: true}, nil
}

func (f *fakeQueryAPI) RemoveFromWatchlist(ctx context.Context, id int) (*services.WatchlistMutation, error) {
	if f.removeFn != nil {
		return f.removeFn(ctx, id)
	}
	return &services.WatchlistMutation{Success: true, InWatchlist: false}, nil
}

func (f *fakeQueryAPI) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeQueryAPI) listCalls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall(nil), f.calls...)
}

func (f *fakeQueryAPI) statusCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.statusCalls)
}

// moviesFor returns one movie titled after the search term so tests can tell responses apart.
func moviesFor(f models.FilterState) *services.MovieList {
	title := f.Search
	if title == "" {
		title = "all"
	}
	return &services.MovieList{Movies: []models.Movie{{ID: 1, Title: title}, {ID: 2, Title: title + " 2"}}, TotalCount: 2}
}

func newTestSync(t *testing.T, api *fakeQueryAPI, delay time.Duration) *Synchronizer {
	t.Helper()
	s := NewSynchronizer(SyncOpts{API: api, Delay: delay, Logger: shared.NewLogger(io.Discard), Buffer: 256})
	t.Cleanup(s.Close)
	return s
}

func loadedWith(s *Synchronizer, title string) func() bool {
	return func() bool {
		st := s.State()
		return !st.Loading && len(st.Movies) > 0 && st.Movies[0].Title == title
	}
}

func TestSynchronizer(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		s := newTestSync(t, &fakeQueryAPI{}, 0)

		assert.Equal(t, DefaultDebounce, s.delay)
		assert.Equal(t, models.DefaultFilterState(), s.State().Filters)
		assert.Zero(t, s.State().Generation)
	})

	t.Run("Rapid Changes Produce One Request With The Last Filters", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := newTestSync(t, api, 40*time.Millisecond)

		for _, q := range []string{"s", "sh", "sho", "shol", "sholay"} {
			s.SetSearch(q)
			time.Sleep(5 * time.Millisecond)
		}

		require.Eventually(t, loadedWith(s, "sholay"), waitFor, tick)
		time.Sleep(80 * time.Millisecond)

		calls := api.listCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, "sholay", calls[0].filters.Search)
		assert.Equal(t, uint64(5), s.State().Generation)
	})

	t.Run("Changing A Filter Cancels The Pending Request", func(t *testing.T) {
		started := make(chan struct{}, 1)
		api := &fakeQueryAPI{}
		api.listFn = func(ctx context.Context, f models.FilterState) (*services.MovieList, error) {
			if f.Genre == "Drama" {
				started <- struct{}{}
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return moviesFor(f), nil
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.SetFilters(models.FilterState{Genre: "Drama"})
		select {
		case <-started:
		case <-time.After(waitFor):
			t.Fatal("first request never started")
		}

		s.SetFilters(models.FilterState{Genre: "Comedy", Search: "golmaal"})
		require.Eventually(t, loadedWith(s, "golmaal"), waitFor, tick)

		calls := api.listCalls()
		require.Len(t, calls, 2)
		assert.ErrorIs(t, calls[0].ctx.Err(), context.Canceled)
		assert.NoError(t, s.State().Err, "a cancelled request must not surface as an error")
	})

	t.Run("Changing A Filter Stops The Debounce Timer", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := newTestSync(t, api, 30*time.Millisecond)

		s.SetSearch("first")
		s.Refresh()

		require.Eventually(t, loadedWith(s, "first"), waitFor, tick)
		time.Sleep(60 * time.Millisecond)
		assert.Len(t, api.listCalls(), 1, "refresh supersedes the pending debounced fetch")
	})

	t.Run("Stale Response Never Overwrites A Newer One", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{}, 1)
		api := &fakeQueryAPI{}
		api.listFn = func(ctx context.Context, f models.FilterState) (*services.MovieList, error) {
			if f.Search == "old" {
				started <- struct{}{}
				<-release // ignores cancellation, like a response already on the wire
				return moviesFor(f), nil
			}
			return moviesFor(f), nil
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.SetSearch("old")
		<-started
		s.SetSearch("new")
		require.Eventually(t, loadedWith(s, "new"), waitFor, tick)

		close(release)
		time.Sleep(30 * time.Millisecond)

		st := s.State()
		assert.Equal(t, "new", st.Movies[0].Title)
		assert.Equal(t, "new", st.Filters.Search)
	})

	t.Run("ClearFilters Resets To Default Sort And Empty Search", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.SetFilters(models.FilterState{Search: "dil", Genre: "Romance", Year: 1995, MinRating: 7, Sort: models.SortTitleAsc})
		s.ClearFilters()

		st := s.State()
		assert.Equal(t, models.DefaultFilterState(), st.Filters)
		assert.Equal(t, models.SortRatingDesc, st.Filters.Sort)
		assert.Empty(t, st.Filters.Search)

		require.Eventually(t, loadedWith(s, "all"), waitFor, tick)
		calls := api.listCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, models.DefaultFilterState(), calls[0].filters)
	})

	t.Run("UpdateFilters Toggles Genre And Year", func(t *testing.T) {
		s := newTestSync(t, &fakeQueryAPI{}, time.Hour)

		s.ToggleGenre("Drama")
		s.ToggleYear(2001)
		assert.Equal(t, "Drama", s.State().Filters.Genre)
		assert.Equal(t, 2001, s.State().Filters.Year)

		s.ToggleGenre("Drama")
		s.ToggleYear(2001)
		assert.Empty(t, s.State().Filters.Genre)
		assert.Zero(t, s.State().Filters.Year)

		s.UpdateFilters(func(f *models.FilterState) { f.Sort = "" })
		assert.Equal(t, models.SortRatingDesc, s.State().Filters.Sort, "empty sort falls back to the default")
	})

	t.Run("Stores Trimmed Search And Genre", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := newTestSync(t, api, 0)

		s.UpdateFilters(func(f *models.FilterState) { f.Genre = " Drama " })
		s.SetSearch("  dil ")
		assert.Equal(t, "dil", s.State().Filters.Search)
		assert.Equal(t, "Drama", s.State().Filters.Genre)

		require.Eventually(t, loadedWith(s, "dil"), waitFor, tick)
		calls := api.listCalls()
		require.NotEmpty(t, calls)
		last := calls[len(calls)-1].filters
		assert.Equal(t, "dil", last.Search)
		assert.Equal(t, s.State().Filters, last)

		s.SetFilters(models.FilterState{Search: " lagaan "})
		assert.Equal(t, "lagaan", s.State().Filters.Search)
	})

	t.Run("Fetch Error Clears Movies And Shows Message", func(t *testing.T) {
		fail := true
		var mu sync.Mutex
		api := &fakeQueryAPI{}
		api.listFn = func(ctx context.Context, f models.FilterState) (*services.MovieList, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return nil, &services.APIError{StatusCode: 500, Message: "database unavailable"}
			}
			return moviesFor(f), nil
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.Refresh()
		require.Eventually(t, func() bool { return s.State().Err != nil }, waitFor, tick)

		st := s.State()
		assert.Empty(t, st.Movies)
		assert.Equal(t, "database unavailable", st.ErrMessage)
		assert.Equal(t, "database unavailable", st.Summary())
		assert.ErrorIs(t, st.Err, shared.ErrServiceUnavailable)

		mu.Lock()
		fail = false
		mu.Unlock()

		s.Retry()
		require.Eventually(t, loadedWith(s, "all"), waitFor, tick)
		assert.NoError(t, s.State().Err)
		assert.Equal(t, "2 movies found", s.State().Summary())
	})

	t.Run("Fetch Error Without API Message", func(t *testing.T) {
		api := &fakeQueryAPI{}
		api.listFn = func(ctx context.Context, f models.FilterState) (*services.MovieList, error) {
			return nil, errors.New("dial tcp: connection refused")
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.Refresh()
		require.Eventually(t, func() bool { return s.State().Err != nil }, waitFor, tick)
		assert.Equal(t, "failed to fetch movies", s.State().ErrMessage)
	})

	t.Run("Status Lookup Only When Authenticated", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.Refresh()
		require.Eventually(t, loadedWith(s, "all"), waitFor, tick)
		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, api.statusCallCount())
	})

	t.Run("Status Lookup Skipped For Empty List", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		api.listFn = func(ctx context.Context, f models.FilterState) (*services.MovieList, error) {
			return &services.MovieList{Movies: []models.Movie{}}, nil
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.Refresh()
		require.Eventually(t, func() bool { return !s.State().Loading && s.State().Generation == 1 }, waitFor, tick)
		time.Sleep(20 * time.Millisecond)
		assert.Zero(t, api.statusCallCount())
		assert.Equal(t, "0 movies found", s.State().Summary())
	})

	t.Run("Status Lookup Merges Into State", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		api.statusFn = func(ctx context.Context, ids []int) (models.WatchlistStatus, error) {
			return models.WatchlistStatus{1: true, 2: false}, nil
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.Refresh()
		require.Eventually(t, func() bool { return s.State().InWatchlistCount() == 1 }, waitFor, tick)
		assert.True(t, s.State().InWatchlist(1))
		assert.False(t, s.State().InWatchlist(2))
	})

	t.Run("Status Failure Leaves List Intact", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		api.statusFn = func(ctx context.Context, ids []int) (models.WatchlistStatus, error) {
			return nil, errors.New("status endpoint down")
		}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.Refresh()
		require.Eventually(t, func() bool { return api.statusCallCount() == 1 }, waitFor, tick)
		time.Sleep(20 * time.Millisecond)

		st := s.State()
		assert.Len(t, st.Movies, 2)
		assert.NoError(t, st.Err)
		assert.Zero(t, st.InWatchlistCount())
	})

	t.Run("Updates Report Phases", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := newTestSync(t, api, 10*time.Millisecond)

		s.SetSearch("lagaan")

		var phases []Phase
		timeout := time.After(waitFor)
		for len(phases) == 0 || phases[len(phases)-1] != Loaded {
			select {
			case u := <-s.Updates():
				phases = append(phases, u.Phase)
			case <-timeout:
				t.Fatalf("timed out waiting for loaded, got %v", phases)
			}
		}
		assert.Equal(t, []Phase{Scheduled, Fetching, Loaded}, phases)
	})

	t.Run("Close Stops Pending Fetch", func(t *testing.T) {
		api := &fakeQueryAPI{}
		s := NewSynchronizer(SyncOpts{API: api, Delay: 20 * time.Millisecond, Logger: shared.NewLogger(io.Discard)})

		s.SetSearch("never")
		s.Close()
		s.Close()
		time.Sleep(40 * time.Millisecond)

		assert.Empty(t, api.listCalls())
		s.SetSearch("after close")
		s.Refresh()
		assert.Empty(t, api.listCalls())

		_, open := <-s.Updates()
		for open {
			_, open = <-s.Updates()
		}
	})
}

func TestToggleWatchlist(t *testing.T) {
	ctx := context.Background()

	t.Run("Requires Authentication", func(t *testing.T) {
		s := newTestSync(t, &fakeQueryAPI{}, time.Hour)

		_, err := s.ToggleWatchlist(ctx, 1)
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.Empty(t, s.State().Status)
	})

	t.Run("Optimistic Then Confirmed", func(t *testing.T) {
		release := make(chan struct{})
		api := &fakeQueryAPI{authenticated: true}
		api.addFn = func(ctx context.Context, id int) (*services.WatchlistMutation, error) {
			<-release
			return &services.WatchlistMutation{Success: true, InWatchlist: true}, nil
		}
		s := newTestSync(t, api, time.Hour)

		done := make(chan bool)
		go func() {
			in, err := s.ToggleWatchlist(ctx, 7)
			assert.NoError(t, err)
			done <- in
		}()

		require.Eventually(t, func() bool { return s.State().InWatchlist(7) }, waitFor, tick, "local status flips before the server answers")
		close(release)

		assert.True(t, <-done)
		assert.True(t, s.State().InWatchlist(7))
		assert.Equal(t, 1, s.State().InWatchlistCount())
	})

	t.Run("Server Answer Wins", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		api.addFn = func(ctx context.Context, id int) (*services.WatchlistMutation, error) {
			return &services.WatchlistMutation{Success: false, Message: "Movie already in watchlist", InWatchlist: true}, nil
		}
		s := newTestSync(t, api, time.Hour)

		in, err := s.ToggleWatchlist(ctx, 3)
		require.NoError(t, err)
		assert.True(t, in)
	})

	t.Run("Remove Toggles Back", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		s := newTestSync(t, api, time.Hour)

		in, err := s.ToggleWatchlist(ctx, 4)
		require.NoError(t, err)
		require.True(t, in)

		in, err = s.ToggleWatchlist(ctx, 4)
		require.NoError(t, err)
		assert.False(t, in)
		assert.False(t, s.State().InWatchlist(4))
	})

	t.Run("Not In Watchlist Confirms Removal", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		api.removeFn = func(ctx context.Context, id int) (*services.WatchlistMutation, error) {
			return nil, &services.APIError{StatusCode: 404, Message: "Movie not in watchlist"}
		}
		s := newTestSync(t, api, time.Hour)
		s.status[5] = true

		in, err := s.ToggleWatchlist(ctx, 5)
		require.NoError(t, err)
		assert.False(t, in)
	})

	t.Run("Error Reverts Optimistic Value", func(t *testing.T) {
		api := &fakeQueryAPI{authenticated: true}
		api.addFn = func(ctx context.Context, id int) (*services.WatchlistMutation, error) {
			return nil, &services.APIError{StatusCode: 500}
		}
		api.removeFn = func(ctx context.Context, id int) (*services.WatchlistMutation, error) {
			return nil, errors.New("connection reset")
		}
		s := newTestSync(t, api, time.Hour)

		in, err := s.ToggleWatchlist(ctx, 9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update watchlist")
		assert.False(t, in)
		_, present := s.State().Status[9]
		assert.False(t, present, "unknown status is restored to unknown")

		s.status[8] = true
		in, err = s.ToggleWatchlist(ctx, 8)
		require.Error(t, err)
		assert.True(t, in)
		assert.True(t, s.State().InWatchlist(8))
	})

	t.Run("Toggle Survives Status Lookup", func(t *testing.T) {
		lookup := make(chan struct{})
		api := &fakeQueryAPI{authenticated: true}
		api.statusFn = func(ctx context.Context, ids []int) (models.WatchlistStatus, error) {
			<-lookup
			return models.WatchlistStatus{1: false, 2: false}, nil
		}
		s := newTestSync(t, api, time.Hour)

		s.Refresh()
		require.Eventually(t, func() bool { return api.statusCallCount() == 1 }, waitFor, tick)

		in, err := s.ToggleWatchlist(ctx, 1)
		require.NoError(t, err)
		require.True(t, in)

		close(lookup)
		require.Eventually(t, func() bool { _, ok := s.State().Status[2]; return ok }, waitFor, tick)
		assert.True(t, s.State().InWatchlist(1), "a lookup that started before the toggle must not undo it")
	})
}
