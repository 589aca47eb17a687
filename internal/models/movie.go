package models

import (
	"slices"
	"strings"
	"time"
)

// Movie is a catalog entry as returned by the API.
//
// Synopsis is only populated by the detail endpoint.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	ReleaseYear  int     `json:"release_year,omitempty"`
	Genre        string  `json:"genre,omitempty"`
	Language     string  `json:"language,omitempty"`
	IMDbRating   float64 `json:"imdb_rating,omitempty"`
	BudgetCrores float64 `json:"budget_crores,omitempty"`
	GrossCrores  float64 `json:"gross_crores,omitempty"`
	FilmImageURL string  `json:"film_image_url,omitempty"`
	PosterURL    string  `json:"poster_url,omitempty"`
	Synopsis     string  `json:"synopsis,omitempty"`
}

// PosterImage returns the film image, falling back to the legacy poster URL.
func (m Movie) PosterImage() string {
	if m.FilmImageURL != "" {
		return m.FilmImageURL
	}
	return m.PosterURL
}

// WatchlistEntry is a watchlisted [Movie].
//
// AddedToWatchlist is kept as sent: the API emits ISO-8601 timestamps without a zone.
type WatchlistEntry struct {
	Movie
	AddedToWatchlist string `json:"added_to_watchlist,omitempty"`
	InWatchlist      bool   `json:"in_watchlist"`
}

// AddedDate returns the date part of AddedToWatchlist.
func (e WatchlistEntry) AddedDate() string {
	if d, _, ok := strings.Cut(e.AddedToWatchlist, "T"); ok {
		return d
	}
	return e.AddedToWatchlist
}

// WatchlistStatus maps movie IDs to whether they are in the user's watchlist.
type WatchlistStatus map[int]bool

// Count returns how many movies are watchlisted.
func (s WatchlistStatus) Count() int {
	n := 0
	for _, in := range s {
		if in {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (s WatchlistStatus) Clone() WatchlistStatus {
	out := make(WatchlistStatus, len(s))
	for id, in := range s {
		out[id] = in
	}
	return out
}

// MovieIDs returns the IDs of movies in list order.
func MovieIDs(movies []Movie) []int {
	ids := make([]int, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}

// RatingRange is the span of IMDb ratings offered as filters.
type RatingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SortOption pairs a [SortKey] with its label.
type SortOption struct {
	Value SortKey `json:"value"`
	Label string  `json:"label"`
}

// FilterOptions describes what the filter sidebar offers.
type FilterOptions struct {
	Genres      []string     `json:"genres"`
	Years       []int        `json:"years"`
	RatingRange RatingRange  `json:"rating_range"`
	SortOptions []SortOption `json:"sort_options"`
}

// FallbackGenres is offered when the API can't provide filter options.
var FallbackGenres = []string{
	"Action", "Adventure", "Animation", "Biography", "Comedy", "Crime",
	"Documentary", "Drama", "Family", "Fantasy", "Film-Noir", "History",
	"Horror", "Music", "Musical", "Mystery", "Romance", "Sci-Fi",
	"Sport", "Thriller", "War", "Western",
}

// FallbackFilterOptions builds the offline options: built-in genres and the ten years ending at now.
func FallbackFilterOptions(now time.Time) FilterOptions {
	years := make([]int, 10)
	for i := range years {
		years[i] = now.Year() - i
	}

	sorts := make([]SortOption, len(SortKeys))
	for i, k := range SortKeys {
		sorts[i] = SortOption{Value: k, Label: k.Label()}
	}

	return FilterOptions{
		Genres:      slices.Clone(FallbackGenres),
		Years:       years,
		RatingRange: RatingRange{Min: 0, Max: 10},
		SortOptions: sorts,
	}
}

// WithDefaults fills empty parts of o from the fallback options.
func (o FilterOptions) WithDefaults(now time.Time) FilterOptions {
	fb := FallbackFilterOptions(now)
	if len(o.Genres) == 0 {
		o.Genres = fb.Genres
	}
	if len(o.Years) == 0 {
		o.Years = fb.Years
	}
	if len(o.SortOptions) == 0 {
		o.SortOptions = fb.SortOptions
	}
	if o.RatingRange.Max == 0 {
		o.RatingRange = fb.RatingRange
	}
	return o
}
