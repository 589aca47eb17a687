package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterState(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		f := DefaultFilterState()
		if f.Sort != SortRatingDesc {
			t.Errorf("expected default sort rating_desc, got %s", f.Sort)
		}
		if f.HasActiveFilters() {
			t.Error("default state should have no active filters")
		}
		if got := f.Encode(); got != "sort=rating_desc" {
			t.Errorf("expected only sort in encoding, got %q", got)
		}
	})

	t.Run("Encode Omits Empty Values", func(t *testing.T) {
		tc := []struct {
			name  string
			state FilterState
			want  string
		}{
			{"empty", FilterState{}, ""},
			{"search only", FilterState{Search: "  sholay "}, "search=sholay"},
			{"genre and year", FilterState{Genre: "Drama", Year: 1975, Sort: SortYearAsc}, "genre=Drama&sort=year_asc&year=1975"},
			{"ratings", FilterState{MinRating: 7.5, MaxRating: 9}, "max_rating=9&min_rating=7.5"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.state.Encode(); got != tt.want {
					t.Errorf("Encode() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		states := []FilterState{
			DefaultFilterState(),
			{Search: "dil", Genre: "Romance", Year: 1995, MinRating: 6.5, MaxRating: 9.1, Sort: SortTitleAsc},
			{Genre: "Sci-Fi & Fantasy", Sort: SortRatingAsc},
		}

		for _, want := range states {
			got, err := ParseFilterState(want.Encode())
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Normalized Round Trip", func(t *testing.T) {
		padded := FilterState{Search: "  dil ", Genre: " Romance ", Sort: SortRatingDesc}

		got, err := ParseFilterState(padded.Encode())
		require.NoError(t, err)
		assert.NotEqual(t, padded, got)

		want := padded.Normalized()
		assert.Equal(t, FilterState{Search: "dil", Genre: "Romance", Sort: SortRatingDesc}, want)
		assert.Equal(t, want, got)
		assert.Equal(t, want, want.Normalized())
	})

	t.Run("Parse", func(t *testing.T) {
		f, err := ParseFilterState("?genre=Action&year=2001")
		require.NoError(t, err)
		assert.Equal(t, "Action", f.Genre)
		assert.Equal(t, 2001, f.Year)
		assert.Equal(t, SortRatingDesc, f.Sort, "missing sort falls back to default")

		_, err = ParseFilterState("year=nineteen")
		assert.Error(t, err)

		_, err = ParseFilterState("min_rating=high")
		assert.Error(t, err)
	})

	t.Run("Unknown Sort Passes Through", func(t *testing.T) {
		f, err := ParseFilterState("sort=budget_desc")
		require.NoError(t, err)
		assert.Equal(t, SortKey("budget_desc"), f.Sort)
		assert.False(t, f.Sort.Known())
		assert.Equal(t, "budget_desc", f.Sort.Label())
	})

	t.Run("Params", func(t *testing.T) {
		p := FilterState{Genre: "Drama"}.Params(60)
		assert.Equal(t, "60", p.Get("limit"))
		assert.Equal(t, "Drama", p.Get("genre"))
		assert.False(t, p.Has("year"))
	})

	t.Run("Toggle", func(t *testing.T) {
		f := DefaultFilterState().WithGenreToggled("Drama")
		assert.Equal(t, "Drama", f.Genre)
		assert.Equal(t, "", f.WithGenreToggled("Drama").Genre, "selecting the active genre clears it")
		assert.Equal(t, "Comedy", f.WithGenreToggled("Comedy").Genre)

		f = f.WithYearToggled(2010)
		assert.Equal(t, 2010, f.Year)
		assert.Equal(t, 0, f.WithYearToggled(2010).Year)
	})

	t.Run("Validate", func(t *testing.T) {
		assert.NoError(t, FilterState{MinRating: 5, MaxRating: 8}.Validate())
		assert.Error(t, FilterState{MinRating: 11}.Validate())
		assert.Error(t, FilterState{MaxRating: -1}.Validate())
		assert.Error(t, FilterState{MinRating: 8, MaxRating: 5}.Validate())
	})

	t.Run("Summary", func(t *testing.T) {
		assert.Equal(t, "no filters", DefaultFilterState().Summary())
		assert.Equal(t, `search="dil" genre=Drama min=7`, FilterState{Search: "dil", Genre: "Drama", MinRating: 7}.Summary())
	})
}
