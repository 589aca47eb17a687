package tasks

import (
	"fmt"

	"github.com/desertthunder/cinex/internal/models"
)

// Phase identifies what an update reports.
type Phase int

const (
	Scheduled Phase = iota
	Fetching
	Loaded
	Failed
	Cancelled
	StatusLoaded
	Toggled
	FetchWatchlist
	RemoveMovie
)

func (p Phase) String() string {
	switch p {
	case Scheduled:
		return "scheduled"
	case Fetching:
		return "fetching"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case StatusLoaded:
		return "status"
	case Toggled:
		return "toggled"
	case FetchWatchlist:
		return "fetch_watchlist"
	case RemoveMovie:
		return "remove_movie"
	default:
		return ""
	}
}

// Update is a synchronizer state change along with a snapshot taken when it happened.
type Update struct {
	Phase      Phase
	Generation uint64
	Message    string
	State      State
}

// ProgressUpdate represents a progress event during a batch operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func scheduledUpdate(gen uint64, f models.FilterState) Update {
	return Update{Phase: Scheduled, Generation: gen, Message: "Waiting to fetch: " + f.Summary()}
}

func fetchingUpdate(gen uint64) Update {
	return Update{Phase: Fetching, Generation: gen, Message: "Loading movies..."}
}

func loadedUpdate(gen uint64, count int) Update {
	return Update{Phase: Loaded, Generation: gen, Message: moviesFound(count)}
}

func failedUpdate(gen uint64, message string) Update {
	return Update{Phase: Failed, Generation: gen, Message: message}
}

func cancelledUpdate(gen uint64) Update {
	return Update{Phase: Cancelled, Generation: gen, Message: fmt.Sprintf("Cancelled request #%d", gen)}
}

func statusUpdate(gen uint64, count int) Update {
	return Update{Phase: StatusLoaded, Generation: gen, Message: fmt.Sprintf("%d in your watchlist", count)}
}

func toggledUpdate(gen uint64, movieID int, in bool) Update {
	verb := "Removed from"
	if in {
		verb = "Added to"
	}
	return Update{Phase: Toggled, Generation: gen, Message: fmt.Sprintf("%s watchlist (movie %d)", verb, movieID)}
}

func moviesFound(count int) string {
	if count == 1 {
		return "1 movie found"
	}
	return fmt.Sprintf("%d movies found", count)
}

func fetchWatchlistUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchWatchlist, Step: 1, Total: 1, Message: "Fetching watchlist..."}
}

func removeMovieUpdate(step, total int, m models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveMovie,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Removed %s", step, total, m.Title),
		Data:    m,
	}
}
