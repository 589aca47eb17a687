package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovie(t *testing.T) {
	t.Run("PosterImage", func(t *testing.T) {
		m := Movie{PosterURL: "https://img.example.com/old.jpg"}
		if got := m.PosterImage(); got != m.PosterURL {
			t.Errorf("expected poster url fallback, got %q", got)
		}

		m.FilmImageURL = "https://img.example.com/new.jpg"
		if got := m.PosterImage(); got != m.FilmImageURL {
			t.Errorf("expected film image url, got %q", got)
		}
	})

	t.Run("Decode Watchlist Entry", func(t *testing.T) {
		body := `{"id": 7, "title": "Lagaan", "release_year": 2001, "imdb_rating": 8.1,
			"budget_crores": 25, "gross_crores": 65.97, "added_to_watchlist": "2025-03-01T10:11:12.000123", "in_watchlist": true}`

		var e WatchlistEntry
		require.NoError(t, json.Unmarshal([]byte(body), &e))
		assert.Equal(t, 7, e.ID)
		assert.Equal(t, "Lagaan", e.Title)
		assert.Equal(t, 8.1, e.IMDbRating)
		assert.True(t, e.InWatchlist)
		assert.Equal(t, "2025-03-01", e.AddedDate())
	})

	t.Run("Decode Null Fields", func(t *testing.T) {
		var m Movie
		require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "title": "Untitled", "imdb_rating": null, "release_year": null}`), &m))
		assert.Zero(t, m.IMDbRating)
		assert.Zero(t, m.ReleaseYear)
	})

	t.Run("MovieIDs", func(t *testing.T) {
		assert.Equal(t, []int{3, 1, 2}, MovieIDs([]Movie{{ID: 3}, {ID: 1}, {ID: 2}}))
	})
}

func TestWatchlistStatus(t *testing.T) {
	t.Run("Decode String Keys", func(t *testing.T) {
		var resp struct {
			Status WatchlistStatus `json:"status"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"status": {"1": true, "2": false, "9": true}}`), &resp))
		assert.Equal(t, WatchlistStatus{1: true, 2: false, 9: true}, resp.Status)
		assert.Equal(t, 2, resp.Status.Count())
	})

	t.Run("Clone", func(t *testing.T) {
		s := WatchlistStatus{1: true}
		c := s.Clone()
		c[1] = false
		assert.True(t, s[1], "clone must not alias the original")
	})
}

func TestFilterOptions(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Fallback", func(t *testing.T) {
		o := FallbackFilterOptions(now)
		assert.Len(t, o.Years, 10)
		assert.Equal(t, 2026, o.Years[0])
		assert.Equal(t, 2017, o.Years[9])
		assert.Contains(t, o.Genres, "Drama")
		assert.Len(t, o.SortOptions, len(SortKeys))
	})

	t.Run("WithDefaults Keeps Server Values", func(t *testing.T) {
		o := FilterOptions{Genres: []string{"Action"}}.WithDefaults(now)
		assert.Equal(t, []string{"Action"}, o.Genres)
		assert.Len(t, o.Years, 10)
		assert.Equal(t, 10.0, o.RatingRange.Max)
	})
}

func TestSession(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession("tok", User{ID: 1, Username: "asha"}, now)

	assert.True(t, s.Valid(now))
	assert.Equal(t, time.Hour, s.Remaining(now))
	assert.False(t, s.Valid(now.Add(time.Hour)))
	assert.Zero(t, s.Remaining(now.Add(2*time.Hour)))

	var nilSession *Session
	assert.False(t, nilSession.Valid(now))
}

func TestFilterPreset(t *testing.T) {
	p := NewFilterPreset(" classics ", FilterState{Year: 1975, Sort: SortRatingDesc})
	assert.Equal(t, "classics", p.Name())
	assert.NoError(t, p.Validate())

	assert.Error(t, NewFilterPreset("", DefaultFilterState()).Validate())
	assert.Error(t, NewFilterPreset("old films", DefaultFilterState()).Validate())
	assert.Error(t, NewFilterPreset("bad", FilterState{MinRating: 12}).Validate())
}
