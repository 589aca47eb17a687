// package formatter renders movies, watchlists and filter options as plain text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, csv, markdown or json)", shared.ErrInvalidFlag, s)
	}
}

const (
	fullStar  = "★"
	halfStar  = "½"
	emptyStar = "☆"
	maxStars  = 5
)

// Stars renders an IMDb rating as five glyphs: one full star per whole point, a half star for any fraction.
//
// Ratings above five saturate.
func Stars(rating float64) string {
	if rating < 0 {
		rating = 0
	}

	full := min(int(math.Floor(rating)), maxStars)
	half := 0
	if full < maxStars && rating != math.Floor(rating) {
		half = 1
	}

	return strings.Repeat(fullStar, full) + strings.Repeat(halfStar, half) + strings.Repeat(emptyStar, maxStars-full-half)
}

// Rating renders a rating to one decimal, or "N/A" when unrated.
func Rating(r float64) string {
	if r == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

// Crores renders an amount in crores of rupees, e.g. "₹12.5 Crores". Zero is empty.
func Crores(v float64) string {
	if v == 0 {
		return ""
	}
	return "₹" + strconv.FormatFloat(v, 'f', -1, 64) + " Crores"
}

// ListTitle is the heading of a listing: the search term when one is active.
func ListTitle(f models.FilterState) string {
	if f.Search != "" {
		return fmt.Sprintf("Search Results for %q", f.Search)
	}
	return "Discover Movies"
}

// MovieCount renders "1 movie found" or "N movies found".
func MovieCount(n int) string {
	if n == 1 {
		return "1 movie found"
	}
	return fmt.Sprintf("%d movies found", n)
}

// WatchlistCount renders "N in your watchlist".
func WatchlistCount(n int) string {
	return fmt.Sprintf("%d in your watchlist", n)
}

func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// MoviesToText renders a numbered list, one movie per line, followed by the count.
//
// A non-nil status marks watchlisted movies with "+".
func MoviesToText(movies []models.Movie, total int, status models.WatchlistStatus) []byte {
	var buf bytes.Buffer
	if len(movies) == 0 {
		buf.WriteString("No movies found\n")
		return buf.Bytes()
	}

	for i, m := range movies {
		mark := " "
		if status[m.ID] {
			mark = "+"
		}
		fmt.Fprintf(&buf, "%s %3d. [%d] %s (%s) %s %s  %s\n",
			mark, i+1, m.ID, m.Title, year(m.ReleaseYear), Stars(m.IMDbRating), Rating(m.IMDbRating), m.Genre)
	}

	fmt.Fprintf(&buf, "\n%s", MovieCount(total))
	if status != nil {
		fmt.Fprintf(&buf, ", %s", WatchlistCount(status.Count()))
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

// MoviesToCSV renders movies with columns: ID, Title, Year, Genre, Language, Rating, Budget, Gross, Image
func MoviesToCSV(movies []models.Movie) ([]byte, error) {
	rows := make([][]string, len(movies))
	for i, m := range movies {
		rows[i] = movieRecord(m)
	}
	return writeCSV(movieHeaders, rows)
}

var movieHeaders = []string{"ID", "Title", "Year", "Genre", "Language", "Rating", "Budget (Cr)", "Gross (Cr)", "Image"}

func movieRecord(m models.Movie) []string {
	return []string{
		strconv.Itoa(m.ID),
		m.Title,
		year(m.ReleaseYear),
		m.Genre,
		m.Language,
		strconv.FormatFloat(m.IMDbRating, 'f', -1, 64),
		strconv.FormatFloat(m.BudgetCrores, 'f', -1, 64),
		strconv.FormatFloat(m.GrossCrores, 'f', -1, 64),
		m.PosterImage(),
	}
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range rows {
		if err := writer.Write(r); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// MoviesToMarkdown renders a titled Markdown table.
func MoviesToMarkdown(title string, movies []models.Movie, total int) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**%s**\n\n", MovieCount(total))

	if len(movies) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("| # | Title | Year | Genre | Rating |\n")
	buf.WriteString("|---|-------|------|-------|--------|\n")
	for i, m := range movies {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s %s |\n",
			i+1, escapeCell(m.Title), year(m.ReleaseYear), escapeCell(m.Genre), Stars(m.IMDbRating), Rating(m.IMDbRating))
	}
	return buf.Bytes()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// MovieToText renders the detail view of a single movie.
func MovieToText(m models.Movie) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s", m.Title)
	if m.ReleaseYear != 0 {
		fmt.Fprintf(&buf, " (%d)", m.ReleaseYear)
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "Rating: %s %s\n", Stars(m.IMDbRating), Rating(m.IMDbRating))

	fields := []struct{ label, value string }{
		{"Genre", m.Genre},
		{"Language", m.Language},
		{"Budget", Crores(m.BudgetCrores)},
		{"Gross", Crores(m.GrossCrores)},
		{"Image", m.PosterImage()},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(&buf, "%s: %s\n", f.label, f.value)
		}
	}

	if m.Synopsis != "" {
		fmt.Fprintf(&buf, "\n%s\n", m.Synopsis)
	}
	return buf.Bytes()
}

// WatchlistToText renders watchlist entries with the date each was added.
func WatchlistToText(entries []models.WatchlistEntry) []byte {
	var buf bytes.Buffer
	if len(entries) == 0 {
		buf.WriteString("Your watchlist is empty\n")
		return buf.Bytes()
	}

	for i, e := range entries {
		fmt.Fprintf(&buf, "%3d. [%d] %s (%s) %s", i+1, e.ID, e.Title, year(e.ReleaseYear), Rating(e.IMDbRating))
		if d := e.AddedDate(); d != "" {
			fmt.Fprintf(&buf, "  added %s", d)
		}
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "\n%s\n", WatchlistCount(len(entries)))
	return buf.Bytes()
}

// WatchlistToCSV renders entries with the movie columns plus the date added.
func WatchlistToCSV(entries []models.WatchlistEntry) ([]byte, error) {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = append(movieRecord(e.Movie), e.AddedToWatchlist)
	}
	return writeCSV(append(movieHeaders, "Added"), rows)
}

// WatchlistToMarkdown renders entries as a Markdown checklist.
func WatchlistToMarkdown(entries []models.WatchlistEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Watchlist\n\n")
	fmt.Fprintf(&buf, "**%s**\n\n", WatchlistCount(len(entries)))
	for _, e := range entries {
		fmt.Fprintf(&buf, "- [ ] %s (%s) %s\n", e.Title, year(e.ReleaseYear), Rating(e.IMDbRating))
	}
	return buf.Bytes()
}

// FilterOptionsToText renders the sidebar choices.
func FilterOptionsToText(o models.FilterOptions) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Genres: %s\n", strings.Join(o.Genres, ", "))

	years := make([]string, len(o.Years))
	for i, y := range o.Years {
		years[i] = strconv.Itoa(y)
	}
	fmt.Fprintf(&buf, "Years: %s\n", strings.Join(years, ", "))
	fmt.Fprintf(&buf, "Rating: %s - %s\n", strconv.FormatFloat(o.RatingRange.Min, 'f', 1, 64), strconv.FormatFloat(o.RatingRange.Max, 'f', 1, 64))

	buf.WriteString("Sort:\n")
	for _, s := range o.SortOptions {
		fmt.Fprintf(&buf, "  %-12s %s\n", s.Value, s.Label)
	}
	return buf.Bytes()
}

// ToJSON renders v as indented JSON with a trailing newline.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Movies renders a listing in the requested format.
func Movies(format Format, filters models.FilterState, movies []models.Movie, total int, status models.WatchlistStatus) ([]byte, error) {
	switch format {
	case FormatCSV:
		return MoviesToCSV(movies)
	case FormatMarkdown:
		return MoviesToMarkdown(ListTitle(filters), movies, total), nil
	case FormatJSON:
		return ToJSON(struct {
			Movies     []models.Movie         `json:"movies"`
			TotalCount int                    `json:"total_count"`
			Status     models.WatchlistStatus `json:"watchlist_status,omitempty"`
		}{movies, total, status})
	default:
		return MoviesToText(movies, total, status), nil
	}
}

// Watchlist renders watchlist entries in the requested format.
func Watchlist(format Format, entries []models.WatchlistEntry) ([]byte, error) {
	switch format {
	case FormatCSV:
		return WatchlistToCSV(entries)
	case FormatMarkdown:
		return WatchlistToMarkdown(entries), nil
	case FormatJSON:
		return ToJSON(entries)
	default:
		return WatchlistToText(entries), nil
	}
}

// DownloadImage fetches an image URL with client and returns the raw bytes.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidArgument)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// WriteFile writes rendered output to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path is required", shared.ErrMissingArgument)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
