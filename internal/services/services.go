package services

import (
	"context"

	"github.com/desertthunder/cinex/internal/models"
)

// MovieQueryService lists movies and tracks their watchlist state.
type MovieQueryService interface {
	// ListMovies fetches GET /movies with the encoded filters and a result limit (zero uses the server default).
	ListMovies(ctx context.Context, filters models.FilterState, limit int) (*MovieList, error)

	// WatchlistStatus reports which of movieIDs are in the user's watchlist.
	WatchlistStatus(ctx context.Context, movieIDs []int) (models.WatchlistStatus, error)

	// AddToWatchlist adds a movie. Adding a movie that is already present is not an error.
	AddToWatchlist(ctx context.Context, movieID int) (*WatchlistMutation, error)

	// RemoveFromWatchlist removes a movie; a movie that isn't present returns [shared.ErrNotInWatchlist].
	RemoveFromWatchlist(ctx context.Context, movieID int) (*WatchlistMutation, error)

	// Authenticated reports whether a bearer token is attached.
	Authenticated() bool
}

// CatalogService covers the read-only catalog endpoints and the watchlist page.
type CatalogService interface {
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
	GetMovie(ctx context.Context, movieID int) (*models.Movie, error)
	Watchlist(ctx context.Context) (*WatchlistList, error)
}

// AuthService exchanges credentials for a bearer token.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	SetToken(token string)
}

// UserService covers the per-user endpoints used by the detail page and dashboard.
type UserService interface {
	Like(ctx context.Context, movieID int) error
	Unlike(ctx context.Context, movieID int) error
	UserWatchlist(ctx context.Context) ([]models.Movie, error)
	AddUserWatchlist(ctx context.Context, movieID int) error
	RemoveUserWatchlist(ctx context.Context, movieID int) error
	Recommendations(ctx context.Context) ([]models.Movie, error)
}

// API is the full surface of the movie API.
type API interface {
	MovieQueryService
	CatalogService
	AuthService
	UserService
}

var _ API = (*Client)(nil)

// MovieList is the body of GET /movies.
type MovieList struct {
	Movies         []models.Movie `json:"movies"`
	TotalCount     int            `json:"total_count"`
	FiltersApplied AppliedFilters `json:"filters_applied"`
}

// AppliedFilters echoes what the server actually filtered on; unset numeric filters are null.
type AppliedFilters struct {
	Search    string   `json:"search"`
	Genre     string   `json:"genre"`
	Year      *int     `json:"year"`
	MinRating *float64 `json:"min_rating"`
	MaxRating *float64 `json:"max_rating"`
	Sort      string   `json:"sort"`
}

// WatchlistList is the body of GET /watchlist.
type WatchlistList struct {
	Watchlist  []models.WatchlistEntry `json:"watchlist"`
	TotalCount int                     `json:"total_count"`
}

// WatchlistMutation is the body returned by POST and DELETE /watchlist/:id.
type WatchlistMutation struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	InWatchlist bool          `json:"in_watchlist"`
	Movie       *models.Movie `json:"movie,omitempty"`
}

// AuthResponse is the body of the login and register endpoints.
type AuthResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

type statusResponse struct {
	Status models.WatchlistStatus `json:"status"`
}

type moviesResponse struct {
	Movies []models.Movie `json:"movies"`
}

type movieIDRequest struct {
	MovieID int `json:"movie_id"`
}
