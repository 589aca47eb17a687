package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/shared"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	fetchFailed     = "failed to fetch movies"
)

// State is a snapshot of the synchronizer.
type State struct {
	Filters    models.FilterState
	Movies     []models.Movie
	TotalCount int
	Status     models.WatchlistStatus
	Loading    bool
	Err        error
	ErrMessage string
	Generation uint64
}

// InWatchlistCount returns how many listed movies are watchlisted.
func (s State) InWatchlistCount() int { return s.Status.Count() }

// InWatchlist reports the cached status of movieID.
func (s State) InWatchlist(movieID int) bool { return s.Status[movieID] }

// Summary is the status line for the listing, e.g. "5 movies found".
func (s State) Summary() string {
	if s.Err != nil {
		return s.ErrMessage
	}
	return moviesFound(s.TotalCount)
}

// SyncOpts configures a [Synchronizer].
type SyncOpts struct {
	API     services.MovieQueryService
	Logger  *log.Logger
	Delay   time.Duration      // debounce delay, defaults to [DefaultDebounce]
	Limit   int                // GET /movies limit; zero uses the server default
	Buffer  int                // Updates channel capacity, defaults to 32
	Initial models.FilterState // starting filters; the zero value means [models.DefaultFilterState]
}

// Synchronizer debounces filter changes into movie fetches and merges the latest response.
//
// All fields below mu are guarded by it. At most one fetch is authoritative: the one whose generation equals
// the current generation.
type Synchronizer struct {
	api     services.MovieQueryService
	logger  *log.Logger
	delay   time.Duration
	limit   int
	updates chan Update
	wg      sync.WaitGroup

	mu         sync.Mutex
	filters    models.FilterState
	movies     []models.Movie
	total      int
	status     models.WatchlistStatus
	loading    bool
	err        error
	errMessage string
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	closed     bool
	drained    bool
}

// NewSynchronizer creates a synchronizer. Nothing is fetched until a filter changes or [Synchronizer.Refresh] is called.
func NewSynchronizer(opts SyncOpts) *Synchronizer {
	delay := opts.Delay
	if delay <= 0 {
		delay = DefaultDebounce
	}

	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 32
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	filters := opts.Initial
	if filters == (models.FilterState{}) {
		filters = models.DefaultFilterState()
	}

	return &Synchronizer{
		api:     opts.API,
		logger:  shared.WithLogger(logger, "component", "sync"),
		delay:   delay,
		limit:   opts.Limit,
		updates: make(chan Update, buffer),
		filters: filters,
		status:  models.WatchlistStatus{},
	}
}

// Updates returns the channel state changes are published on. It is closed by [Synchronizer.Close].
func (s *Synchronizer) Updates() <-chan Update {
	return s.updates
}

// SetFilters replaces the filters wholesale and schedules a debounced fetch.
func (s *Synchronizer) SetFilters(f models.FilterState) {
	f = f.Normalized()
	if f.Sort == "" {
		f.Sort = models.SortRatingDesc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	s.scheduleLocked(false)
}

// UpdateFilters applies fn to a copy of the current filters and schedules a debounced fetch.
func (s *Synchronizer) UpdateFilters(fn func(*models.FilterState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.filters
	fn(&f)
	f = f.Normalized()
	if f.Sort == "" {
		f.Sort = models.SortRatingDesc
	}
	s.filters = f
	s.scheduleLocked(false)
}

// SetSearch replaces only the search term.
func (s *Synchronizer) SetSearch(query string) {
	s.UpdateFilters(func(f *models.FilterState) { f.Search = query })
}

// ToggleGenre selects genre, or clears it when it is already selected.
func (s *Synchronizer) ToggleGenre(genre string) {
	s.UpdateFilters(func(f *models.FilterState) { *f = f.WithGenreToggled(genre) })
}

// ToggleYear selects year, or clears it when it is already selected.
func (s *Synchronizer) ToggleYear(year int) {
	s.UpdateFilters(func(f *models.FilterState) { *f = f.WithYearToggled(year) })
}

// ClearFilters resets to [models.DefaultFilterState] and schedules a debounced fetch.
func (s *Synchronizer) ClearFilters() {
	s.SetFilters(models.DefaultFilterState())
}

// Refresh clears any error and fetches immediately with the current filters.
func (s *Synchronizer) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err, s.errMessage = nil, ""
	s.scheduleLocked(true)
}

// Retry is the manual recovery action after a failed fetch.
func (s *Synchronizer) Retry() { s.Refresh() }

// State returns a snapshot safe to use from any goroutine.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops the pending timer, cancels any in-flight request, waits for fetch goroutines and closes [Synchronizer.Updates].
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopLocked()
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.drained = true
	close(s.updates)
	s.mu.Unlock()
}

// ToggleWatchlist flips the watchlist status of movieID and returns the confirmed value.
//
// The local status changes before the request is sent. It is then set to the server's in_watchlist, or
// restored to its previous value when the request fails.
func (s *Synchronizer) ToggleWatchlist(ctx context.Context, movieID int) (bool, error) {
	if !s.api.Authenticated() {
		return false, shared.ErrNotAuthenticated
	}

	s.mu.Lock()
	prev, known := s.status[movieID]
	next := !prev
	s.status[movieID] = next
	s.sendLocked(toggledUpdate(s.generation, movieID, next))
	s.mu.Unlock()

	var (
		res *services.WatchlistMutation
		err error
	)
	if next {
		res, err = s.api.AddToWatchlist(ctx, movieID)
	} else {
		res, err = s.api.RemoveFromWatchlist(ctx, movieID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, shared.ErrNotInWatchlist):
		s.status[movieID] = false
	case err != nil:
		if known {
			s.status[movieID] = prev
		} else {
			delete(s.status, movieID)
		}
		s.sendLocked(toggledUpdate(s.generation, movieID, prev))
		return prev, fmt.Errorf("failed to update watchlist: %w", err)
	default:
		s.status[movieID] = res.InWatchlist
	}

	s.sendLocked(toggledUpdate(s.generation, movieID, s.status[movieID]))
	return s.status[movieID], nil
}

// stopLocked stops the debounce timer and cancels the in-flight request.
func (s *Synchronizer) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.sendLocked(cancelledUpdate(s.generation))
	}
}

func (s *Synchronizer) scheduleLocked(immediate bool) {
	if s.closed {
		return
	}

	s.stopLocked()
	s.generation++
	gen := s.generation

	if immediate {
		s.startFetchLocked(gen)
		return
	}

	s.sendLocked(scheduledUpdate(gen, s.filters))
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Synchronizer) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || gen != s.generation {
		return
	}
	s.timer = nil
	s.startFetchLocked(gen)
}

func (s *Synchronizer) startFetchLocked(gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loading = true
	s.sendLocked(fetchingUpdate(gen))

	s.wg.Add(1)
	go s.fetch(ctx, cancel, gen, s.filters)
}

func (s *Synchronizer) isCurrentLocked(ctx context.Context, gen uint64) bool {
	return !s.closed && ctx.Err() == nil && gen == s.generation
}

func (s *Synchronizer) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, filters models.FilterState) {
	defer s.wg.Done()
	defer cancel()

	list, err := s.api.ListMovies(ctx, filters, s.limit)

	s.mu.Lock()
	if !s.isCurrentLocked(ctx, gen) {
		s.mu.Unlock()
		s.logger.Debug("dropping stale response", "generation", gen)
		return
	}

	s.loading = false
	s.status = models.WatchlistStatus{}
	if err != nil {
		s.movies, s.total = nil, 0
		s.err = err
		s.errMessage = services.ErrorMessage(err, fetchFailed)
		s.cancel = nil
		s.sendLocked(failedUpdate(gen, s.errMessage))
		s.mu.Unlock()
		s.logger.Error("fetch failed", "generation", gen, "filters", filters.Summary(), "error", err)
		return
	}

	s.movies, s.total = list.Movies, list.TotalCount
	s.err, s.errMessage = nil, ""
	s.sendLocked(loadedUpdate(gen, s.total))

	ids := models.MovieIDs(s.movies)
	if len(ids) == 0 || !s.api.Authenticated() {
		s.cancel = nil
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	status, err := s.api.WatchlistStatus(ctx, ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isCurrentLocked(ctx, gen) {
		return
	}
	s.cancel = nil

	if err != nil {
		s.logger.Warn("watchlist status lookup failed", "generation", gen, "error", err)
		return
	}

	for id, in := range status {
		if _, toggled := s.status[id]; !toggled {
			s.status[id] = in
		}
	}
	s.sendLocked(statusUpdate(gen, s.status.Count()))
}

func (s *Synchronizer) snapshotLocked() State {
	return State{
		Filters:    s.filters,
		Movies:     slices.Clone(s.movies),
		TotalCount: s.total,
		Status:     s.status.Clone(),
		Loading:    s.loading,
		Err:        s.err,
		ErrMessage: s.errMessage,
		Generation: s.generation,
	}
}

// sendLocked publishes u with a fresh snapshot without blocking.
func (s *Synchronizer) sendLocked(u Update) {
	if s.drained {
		return
	}
	u.State = s.snapshotLocked()
	select {
	case s.updates <- u:
	default:
	}
}
