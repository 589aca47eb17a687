package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/cinex/internal/formatter"
	"github.com/desertthunder/cinex/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = entryItem{}
)

// movieItem wraps [models.Movie] with its watchlist status to implement [list.Item].
type movieItem struct {
	movie       models.Movie
	inWatchlist bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.inWatchlist {
		return "✓ " + i.movie.Title
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	return describe(i.movie)
}

// entryItem wraps [models.WatchlistEntry] to implement [list.Item].
type entryItem struct {
	entry models.WatchlistEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string       { return i.entry.Title }
func (i entryItem) Description() string {
	desc := describe(i.entry.Movie)
	if d := i.entry.AddedDate(); d != "" {
		desc = fmt.Sprintf("%s • added %s", desc, d)
	}
	return desc
}

func describe(m models.Movie) string {
	parts := []string{formatter.Stars(m.IMDbRating) + " " + formatter.Rating(m.IMDbRating)}
	if m.ReleaseYear != 0 {
		parts = append(parts, fmt.Sprint(m.ReleaseYear))
	}
	if m.Genre != "" {
		parts = append(parts, m.Genre)
	}
	return strings.Join(parts, " • ")
}

func movieItems(movies []models.Movie, status models.WatchlistStatus) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, inWatchlist: status[m.ID]}
	}
	return items
}

func entryItems(entries []models.WatchlistEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}

func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return l
}
