package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SortKey names a server-side ordering of the movie list.
type SortKey string

const (
	SortRatingDesc SortKey = "rating_desc"
	SortRatingAsc  SortKey = "rating_asc"
	SortYearDesc   SortKey = "year_desc"
	SortYearAsc    SortKey = "year_asc"
	SortTitleAsc   SortKey = "title_asc"
)

// SortKeys lists the known sort keys in display order.
var SortKeys = []SortKey{SortRatingDesc, SortRatingAsc, SortYearDesc, SortYearAsc, SortTitleAsc}

// Label returns the human-readable name of the sort key.
// Unknown keys are returned verbatim; the server treats them as [SortRatingDesc].
func (k SortKey) Label() string {
	switch k {
	case SortRatingDesc:
		return "Rating: High to Low"
	case SortRatingAsc:
		return "Rating: Low to High"
	case SortYearDesc:
		return "Year: Newest First"
	case SortYearAsc:
		return "Year: Oldest First"
	case SortTitleAsc:
		return "Title: A to Z"
	default:
		return string(k)
	}
}

// Known reports whether k is one of [SortKeys].
func (k SortKey) Known() bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// FilterState is the complete set of listing parameters.
//
// Zero values mean "unset": an empty string, a zero year, or a zero rating bound are omitted when encoding.
// A FilterState is replaced wholesale on every change.
type FilterState struct {
	Search    string
	Genre     string
	Year      int
	MinRating float64
	MaxRating float64
	Sort      SortKey
}

// DefaultFilterState has no filters and sorts by rating, highest first.
func DefaultFilterState() FilterState {
	return FilterState{Sort: SortRatingDesc}
}

// HasActiveFilters reports whether any filter other than the sort key is set.
func (f FilterState) HasActiveFilters() bool {
	return f.Search != "" || f.Genre != "" || f.Year != 0 || f.MinRating != 0 || f.MaxRating != 0
}

// Normalized trims the search term and genre, the way the API strips them before filtering.
func (f FilterState) Normalized() FilterState {
	f.Search = strings.TrimSpace(f.Search)
	f.Genre = strings.TrimSpace(f.Genre)
	return f
}

// WithGenreToggled selects genre, or clears it when it is already the active genre.
func (f FilterState) WithGenreToggled(genre string) FilterState {
	if f.Genre == genre {
		f.Genre = ""
	} else {
		f.Genre = genre
	}
	return f
}

// WithYearToggled selects year, or clears it when it is already the active year.
func (f FilterState) WithYearToggled(year int) FilterState {
	if f.Year == year {
		f.Year = 0
	} else {
		f.Year = year
	}
	return f
}

// Values encodes the state as URL query parameters, omitting empty values.
func (f FilterState) Values() url.Values {
	v := url.Values{}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Set("search", s)
	}
	if g := strings.TrimSpace(f.Genre); g != "" {
		v.Set("genre", g)
	}
	if f.Year != 0 {
		v.Set("year", strconv.Itoa(f.Year))
	}
	if f.MinRating != 0 {
		v.Set("min_rating", formatRating(f.MinRating))
	}
	if f.MaxRating != 0 {
		v.Set("max_rating", formatRating(f.MaxRating))
	}
	if f.Sort != "" {
		v.Set("sort", string(f.Sort))
	}
	return v
}

// Encode returns the state as a query string (without the leading "?").
func (f FilterState) Encode() string {
	return f.Values().Encode()
}

// Params returns the query parameters for GET /movies with the given result limit.
func (f FilterState) Params(limit int) url.Values {
	v := f.Values()
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// ParseFilterState decodes a query string produced by [FilterState.Encode].
//
// A leading "?" is accepted. Missing sort falls back to [SortRatingDesc]; unknown keys are ignored.
func ParseFilterState(raw string) (FilterState, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(strings.TrimSpace(raw), "?"))
	if err != nil {
		return FilterState{}, fmt.Errorf("invalid query %q: %w", raw, err)
	}
	return FilterStateFromValues(values)
}

// FilterStateFromValues decodes already-parsed query parameters.
func FilterStateFromValues(values url.Values) (FilterState, error) {
	f := DefaultFilterState()
	f.Search = strings.TrimSpace(values.Get("search"))
	f.Genre = strings.TrimSpace(values.Get("genre"))

	if s := values.Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return FilterState{}, fmt.Errorf("invalid year %q: %w", s, err)
		}
		f.Year = year
	}

	var err error
	if f.MinRating, err = parseRating(values.Get("min_rating")); err != nil {
		return FilterState{}, fmt.Errorf("invalid min_rating: %w", err)
	}
	if f.MaxRating, err = parseRating(values.Get("max_rating")); err != nil {
		return FilterState{}, fmt.Errorf("invalid max_rating: %w", err)
	}

	if s := values.Get("sort"); s != "" {
		f.Sort = SortKey(s)
	}
	return f, nil
}

// Validate checks the rating bounds.
func (f FilterState) Validate() error {
	if f.MinRating < 0 || f.MinRating > 10 {
		return fmt.Errorf("min rating %v out of range 0-10", f.MinRating)
	}
	if f.MaxRating < 0 || f.MaxRating > 10 {
		return fmt.Errorf("max rating %v out of range 0-10", f.MaxRating)
	}
	if f.MinRating != 0 && f.MaxRating != 0 && f.MinRating > f.MaxRating {
		return fmt.Errorf("min rating %v is greater than max rating %v", f.MinRating, f.MaxRating)
	}
	return nil
}

// Summary renders the active filters for a status line, e.g. `genre=Drama year=1975`.
func (f FilterState) Summary() string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Genre != "" {
		parts = append(parts, "genre="+f.Genre)
	}
	if f.Year != 0 {
		parts = append(parts, "year="+strconv.Itoa(f.Year))
	}
	if f.MinRating != 0 {
		parts = append(parts, "min="+formatRating(f.MinRating))
	}
	if f.MaxRating != 0 {
		parts = append(parts, "max="+formatRating(f.MaxRating))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, " ")
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func parseRating(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
