package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/cinex/internal/models"
)

const ratingStep = 0.5

type rowKind int

const (
	rowSort rowKind = iota
	rowMinRating
	rowMaxRating
	rowGenre
	rowYear
	rowClear
)

type sidebarRow struct {
	kind  rowKind
	genre string
	year  int
}

// sidebar is the filter panel: sort, rating bounds, genres, years and a clear action.
type sidebar struct {
	rows    []sidebarRow
	cursor  int
	ratings models.RatingRange
	sorts   []models.SortOption
}

func newSidebar(o models.FilterOptions) sidebar {
	rows := []sidebarRow{{kind: rowSort}, {kind: rowMinRating}, {kind: rowMaxRating}}
	for _, g := range o.Genres {
		rows = append(rows, sidebarRow{kind: rowGenre, genre: g})
	}
	for _, y := range o.Years {
		rows = append(rows, sidebarRow{kind: rowYear, year: y})
	}
	rows = append(rows, sidebarRow{kind: rowClear})

	return sidebar{rows: rows, ratings: o.RatingRange, sorts: o.SortOptions}
}

func (s *sidebar) move(delta int) {
	if len(s.rows) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.rows)) % len(s.rows)
}

func (s sidebar) current() sidebarRow {
	if len(s.rows) == 0 {
		return sidebarRow{kind: rowClear}
	}
	return s.rows[s.cursor]
}

// apply returns f changed by the current row. delta is 0 for enter and -1/+1 for left/right.
func (s sidebar) apply(f models.FilterState, delta int) models.FilterState {
	row := s.current()
	switch row.kind {
	case rowSort:
		if delta == 0 {
			delta = 1
		}
		f.Sort = s.nextSort(f.Sort, delta)
	case rowMinRating:
		f.MinRating = s.stepRating(f.MinRating, delta)
		if f.MaxRating != 0 && f.MinRating > f.MaxRating {
			f.MinRating = f.MaxRating
		}
	case rowMaxRating:
		f.MaxRating = s.stepRating(f.MaxRating, delta)
		if f.MaxRating != 0 && f.MinRating > f.MaxRating {
			f.MaxRating = f.MinRating
		}
	case rowGenre:
		if delta == 0 {
			f = f.WithGenreToggled(row.genre)
		}
	case rowYear:
		if delta == 0 {
			f = f.WithYearToggled(row.year)
		}
	case rowClear:
		if delta == 0 {
			f = models.DefaultFilterState()
		}
	}
	return f
}

func (s sidebar) sortKeys() []models.SortKey {
	if len(s.sorts) == 0 {
		return models.SortKeys
	}
	keys := make([]models.SortKey, len(s.sorts))
	for i, o := range s.sorts {
		keys[i] = o.Value
	}
	return keys
}

func (s sidebar) nextSort(cur models.SortKey, delta int) models.SortKey {
	keys := s.sortKeys()
	i := slices.Index(keys, cur)
	if i < 0 {
		return keys[0]
	}
	return keys[(i+delta+len(keys))%len(keys)]
}

func (s sidebar) sortLabel(k models.SortKey) string {
	for _, o := range s.sorts {
		if o.Value == k {
			return o.Label
		}
	}
	return k.Label()
}

// stepRating moves a bound by [ratingStep]; enter clears it. Stepping below the range minimum unsets it.
func (s sidebar) stepRating(cur float64, delta int) float64 {
	if delta == 0 {
		return 0
	}

	lo, hi := s.ratings.Min, s.ratings.Max
	if hi == 0 {
		hi = 10
	}
	if cur == 0 {
		cur = lo
	}

	next := cur + float64(delta)*ratingStep
	if next <= lo {
		return 0
	}
	return min(next, hi)
}

func ratingLabel(r float64) string {
	if r == 0 {
		return "any"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// view renders at most height rows around the cursor.
func (s sidebar) view(f models.FilterState, focused bool, height int) string {
	lines := make([]string, len(s.rows))
	for i, row := range s.rows {
		var label string
		switch row.kind {
		case rowSort:
			label = "Sort: " + s.sortLabel(f.Sort)
		case rowMinRating:
			label = "Min rating: " + ratingLabel(f.MinRating)
		case rowMaxRating:
			label = "Max rating: " + ratingLabel(f.MaxRating)
		case rowGenre:
			label = checkbox(f.Genre == row.genre) + row.genre
		case rowYear:
			label = checkbox(f.Year == row.year) + strconv.Itoa(row.year)
		case rowClear:
			label = "Clear filters"
		}

		if focused && i == s.cursor {
			lines[i] = styles.selected.Render("> " + label)
		} else {
			lines[i] = "  " + label
		}
	}

	start, end := window(len(lines), s.cursor, height)
	title := styles.title.Render("Filters")
	if !focused {
		title = styles.help.Render("Filters (f)")
	}
	return styles.sidebar.Render(fmt.Sprintf("%s\n%s", title, strings.Join(lines[start:end], "\n")))
}

func checkbox(on bool) string {
	if on {
		return "[x] "
	}
	return "[ ] "
}

// window returns the [start, end) slice of n rows of the given height that keeps cursor visible.
func window(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := max(cursor-height/2, 0)
	end := start + height
	if end > n {
		end = n
		start = n - height
	}
	return start, end
}
