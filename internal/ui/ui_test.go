package ui

import (
	"context"
	"io"
	"net/http"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/shared"
	"github.com/desertthunder/cinex/internal/tasks"
	tu "github.com/desertthunder/cinex/internal/testing"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

type fakeSessions struct {
	saved   []*models.Session
	cleared int
}

func (f *fakeSessions) Save(s *models.Session) error {
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeSessions) Clear() error {
	f.cleared++
	return nil
}

type harness struct {
	t      *testing.T
	server *tu.MovieServer
	client *services.Client
	sync   *tasks.Synchronizer
	store  *fakeSessions
	model  *Model
	token  string
}

// newHarness wires a model to a fake API. A non-empty token starts the model logged in with it.
func newHarness(t *testing.T, token string) *harness {
	t.Helper()

	server := tu.NewMovieServer(t)
	seeded := server.SeedUser("asha", "asha@example.com", "secret")
	if token == "valid" {
		token = seeded
	}

	client := services.NewClient(services.ClientOpts{BaseURL: server.URL, Token: token, Logger: quietLogger()})
	sync := tasks.NewSynchronizer(tasks.SyncOpts{API: client, Logger: quietLogger(), Delay: 5 * time.Millisecond})
	t.Cleanup(sync.Close)

	var session *models.Session
	if token != "" {
		session = models.NewSession(token, models.User{ID: 1, Username: "asha", Email: "asha@example.com"}, time.Now())
	}

	store := &fakeSessions{}
	m := NewModel(context.Background(), ModelOpts{
		API:      client,
		Sync:     sync,
		Sessions: store,
		Session:  session,
		Logger:   quietLogger(),
	})
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})

	return &harness{t: t, server: server, client: client, sync: sync, store: store, model: m, token: seeded}
}

// run executes cmd and feeds its message back into the model.
func (h *harness) run(cmd tea.Cmd) tea.Cmd {
	h.t.Helper()
	require.NotNil(h.t, cmd, "expected a command")
	_, next := h.model.Update(cmd())
	return next
}

// press sends a single key and returns the resulting command.
func (h *harness) press(k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+r":
		msg = tea.KeyMsg{Type: tea.KeyCtrlR}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := h.model.Update(msg)
	return cmd
}

// drainUntil applies synchronizer updates until done reports true.
func (h *harness) drainUntil(done func(tasks.Update) bool) {
	h.t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-h.sync.Updates():
			require.True(h.t, ok, "updates closed")
			h.model.Update(syncUpdateMsg(u))
			if done(u) {
				return
			}
		case <-timeout:
			h.t.Fatal("timed out waiting for synchronizer")
		}
	}
}

func phaseIs(phases ...tasks.Phase) func(tasks.Update) bool {
	return func(u tasks.Update) bool { return slices.Contains(phases, u.Phase) }
}

// load refreshes the listing and waits for the watchlist status lookup.
func (h *harness) load() {
	h.t.Helper()
	h.sync.Refresh()
	h.drainUntil(phaseIs(tasks.StatusLoaded, tasks.Failed))
}

func TestLogin(t *testing.T) {
	t.Run("Starts At Login Without Session", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Equal(t, LoginView, h.model.ViewState())
		assert.Contains(t, h.model.View(), "Sign in to cinex")
	})

	t.Run("Validation", func(t *testing.T) {
		h := newHarness(t, "")
		assert.Nil(t, h.press("enter"))
		assert.Equal(t, "Email and password are required", h.model.login.err)

		h.model.login.inputs[fieldEmail].SetValue("not-an-email")
		h.model.login.inputs[fieldPassword].SetValue("secret")
		h.press("enter")
		assert.Equal(t, "Please enter a valid email address", h.model.login.err)
	})

	t.Run("Success", func(t *testing.T) {
		h := newHarness(t, "")
		h.model.login.inputs[fieldEmail].SetValue("asha@example.com")
		h.model.login.inputs[fieldPassword].SetValue("secret")

		cmd := h.press("enter")
		assert.True(t, h.model.login.pending)
		h.run(cmd)

		assert.Equal(t, BrowseView, h.model.ViewState())
		require.Len(t, h.store.saved, 1)
		assert.NotEmpty(t, h.store.saved[0].Token)
		assert.Equal(t, "asha", h.store.saved[0].User.Username)
		assert.True(t, h.client.Authenticated())

		h.drainUntil(phaseIs(tasks.StatusLoaded))
		assert.Len(t, h.model.movies.Items(), 5)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		h := newHarness(t, "")
		h.model.login.inputs[fieldEmail].SetValue("asha@example.com")
		h.model.login.inputs[fieldPassword].SetValue("wrong")

		h.run(h.press("enter"))
		assert.Equal(t, LoginView, h.model.ViewState())
		assert.Equal(t, "Invalid email or password", h.model.login.err)
		assert.Empty(t, h.store.saved)
	})

	t.Run("Register", func(t *testing.T) {
		h := newHarness(t, "")
		h.press("ctrl+r")
		require.True(t, h.model.login.register)
		assert.Equal(t, fieldUsername, h.model.login.focus)

		h.model.login.inputs[fieldUsername].SetValue("ravi")
		h.model.login.inputs[fieldEmail].SetValue("ravi@example.com")
		h.model.login.inputs[fieldPassword].SetValue("pw")
		h.run(h.press("enter"))

		assert.Equal(t, BrowseView, h.model.ViewState())
		assert.Equal(t, "ravi", h.model.user.Username)
	})

	t.Run("Expired Token Returns To Login", func(t *testing.T) {
		h := newHarness(t, "bogus")
		require.Equal(t, BrowseView, h.model.ViewState())

		h.run(h.press("2"))
		assert.Equal(t, LoginView, h.model.ViewState())
		assert.Contains(t, h.model.login.err, "expired")
		assert.Equal(t, 1, h.store.cleared)
		assert.False(t, h.client.Authenticated())
	})
}

func TestBrowse(t *testing.T) {
	t.Run("Listing And Status Line", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.load()

		require.Len(t, h.model.movies.Items(), 5)
		first := h.model.movies.Items()[0].(movieItem)
		assert.Equal(t, "3 Idiots", first.movie.Title)

		view := h.model.View()
		assert.Contains(t, view, "Discover Movies")
		assert.Contains(t, view, "5 movies found • 0 in your watchlist")
	})

	t.Run("Toggle Watchlist", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.load()

		h.run(h.press("w"))
		assert.Equal(t, "Added to watchlist", h.model.flash)
		assert.True(t, h.server.InWatchlist(h.token, 4))
		assert.True(t, h.sync.State().InWatchlist(4))

		h.run(h.press("w"))
		assert.Equal(t, "Removed from watchlist", h.model.flash)
		assert.False(t, h.server.InWatchlist(h.token, 4))
	})

	t.Run("Search", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.load()

		h.press("/")
		require.True(t, h.model.search.Focused())
		for _, r := range "dil" {
			h.press(string(r))
		}
		assert.Equal(t, "dil", h.sync.State().Filters.Search)

		h.drainUntil(func(u tasks.Update) bool {
			return u.Phase == tasks.Loaded && u.State.Filters.Search == "dil"
		})
		assert.Len(t, h.model.movies.Items(), 1)
		assert.Contains(t, h.model.View(), `Search Results for "dil"`)

		h.press("enter")
		assert.False(t, h.model.search.Focused())

		h.press("c")
		assert.Empty(t, h.model.search.Value())
		assert.Equal(t, models.DefaultFilterState(), h.sync.State().Filters)
	})

	t.Run("Sidebar Genre", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.run(h.model.fetchOptions())
		assert.Contains(t, h.model.options.Genres, "Drama")

		h.press("f")
		require.True(t, h.model.sidebarOn)

		idx := slices.IndexFunc(h.model.filters.rows, func(r sidebarRow) bool { return r.kind == rowGenre && r.genre == "Drama" })
		require.GreaterOrEqual(t, idx, 0)
		h.model.filters.cursor = idx

		h.press("enter")
		assert.Equal(t, "Drama", h.sync.State().Filters.Genre)

		h.drainUntil(phaseIs(tasks.StatusLoaded, tasks.Failed))
		assert.Len(t, h.model.movies.Items(), 2)

		h.press("enter")
		assert.Empty(t, h.sync.State().Filters.Genre, "selecting the active genre again clears it")

		h.press("esc")
		assert.False(t, h.model.sidebarOn)
	})

	t.Run("Empty State", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.sync.SetSearch("zzz")
		h.drainUntil(phaseIs(tasks.Loaded))
		assert.Contains(t, h.model.View(), "No movies found")
	})

	t.Run("Error And Retry", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.server.Fail("/movies", http.StatusInternalServerError, "Database unavailable")
		h.load()

		assert.Contains(t, h.model.View(), "Error: Database unavailable")

		h.server.Recover("/movies")
		h.press("r")
		h.drainUntil(phaseIs(tasks.StatusLoaded))
		assert.Len(t, h.model.movies.Items(), 5)
	})
}

func TestDetail(t *testing.T) {
	h := newHarness(t, "valid")
	h.load()

	h.run(h.press("enter"))
	require.Equal(t, DetailView, h.model.ViewState())
	require.NotNil(t, h.model.detail)
	assert.Equal(t, 4, h.model.detail.ID)
	assert.Contains(t, h.model.View(), "3 Idiots (2009)")
	assert.Contains(t, h.model.View(), "Add to watchlist")

	h.run(h.press("L"))
	assert.True(t, h.server.Liked(h.token, 4))
	assert.Contains(t, h.model.View(), "Liked")

	h.run(h.press("L"))
	assert.False(t, h.server.Liked(h.token, 4))

	h.run(h.press("w"))
	assert.True(t, h.model.detailIn)
	assert.Contains(t, h.model.View(), "In your watchlist")

	h.press("esc")
	assert.Equal(t, BrowseView, h.model.ViewState())
}

func TestWatchlistView(t *testing.T) {
	h := newHarness(t, "valid")
	ctx := context.Background()
	for _, id := range []int{1, 2, 3} {
		_, err := h.client.AddToWatchlist(ctx, id)
		require.NoError(t, err)
	}

	h.run(h.press("2"))
	require.Equal(t, WatchlistView, h.model.ViewState())
	require.Len(t, h.model.entries.Items(), 3)
	assert.Contains(t, h.model.View(), "3 in your watchlist")

	h.run(h.press("d"))
	assert.Len(t, h.model.entries.Items(), 2)
	assert.Equal(t, 2, h.model.entryCount)
	assert.True(t, h.model.stale)

	h.press("X")
	require.True(t, h.model.confirmClear)
	assert.Contains(t, h.model.View(), "(y/n)")

	h.press("n")
	assert.False(t, h.model.confirmClear)

	h.press("X")
	h.run(h.press("y"))
	assert.Empty(t, h.model.entries.Items())
	assert.Equal(t, "Removed 2 movies from your watchlist", h.model.flash)
	for _, id := range []int{1, 2, 3} {
		assert.False(t, h.server.InWatchlist(h.token, id))
	}
	assert.Contains(t, h.model.View(), "Your watchlist is empty")
}

func TestDashboard(t *testing.T) {
	t.Run("Watchlist And Recommendations", func(t *testing.T) {
		h := newHarness(t, "valid")
		_, err := h.client.AddToWatchlist(context.Background(), 4)
		require.NoError(t, err)

		h.run(h.press("3"))
		require.Equal(t, DashboardView, h.model.ViewState())
		assert.Len(t, h.model.dashWatch, 1)

		view := h.model.View()
		assert.Contains(t, view, "Your Watchlist (1)")
		assert.Contains(t, view, "Recommended for You")
		assert.Contains(t, view, "Drishyam")
	})

	t.Run("Recommendations Are Optional", func(t *testing.T) {
		h := newHarness(t, "valid")
		h.server.Fail("/user/recommendations", http.StatusInternalServerError, "boom")

		h.run(h.press("3"))
		assert.NoError(t, h.model.err)
		assert.Contains(t, h.model.View(), "No recommendations available")
	})
}

func TestProfile(t *testing.T) {
	h := newHarness(t, "valid")

	h.run(h.press("4"))
	require.Equal(t, ProfileView, h.model.ViewState())
	assert.Contains(t, h.model.View(), "asha@example.com")

	h.press("o")
	assert.Equal(t, LoginView, h.model.ViewState())
	assert.Equal(t, 1, h.store.cleared)
	assert.False(t, h.client.Authenticated())
}

func TestSidebar(t *testing.T) {
	sb := newSidebar(models.FilterOptions{
		Genres:      []string{"Action", "Drama"},
		Years:       []int{2015, 2009},
		RatingRange: models.RatingRange{Min: 6, Max: 9},
	})
	require.Len(t, sb.rows, 3+2+2+1)

	t.Run("Sort Cycles", func(t *testing.T) {
		f := sb.apply(models.DefaultFilterState(), 0)
		assert.Equal(t, models.SortRatingAsc, f.Sort)

		f = sb.apply(models.DefaultFilterState(), -1)
		assert.Equal(t, models.SortTitleAsc, f.Sort)
	})

	t.Run("Rating Steps", func(t *testing.T) {
		s := sb
		s.cursor = 1
		f := s.apply(models.DefaultFilterState(), 1)
		assert.Equal(t, 6.5, f.MinRating)

		f = s.apply(f, -1)
		assert.Zero(t, f.MinRating, "stepping to the range minimum unsets the bound")

		f = s.apply(models.FilterState{MinRating: 8.5}, 1)
		assert.Equal(t, 9.0, f.MinRating)
		f = s.apply(f, 1)
		assert.Equal(t, 9.0, f.MinRating, "clamped to the range maximum")

		s.cursor = 2
		f = s.apply(models.FilterState{MinRating: 8, MaxRating: 8}, -1)
		assert.Equal(t, 8.0, f.MaxRating, "max never drops below min")
	})

	t.Run("Genre And Year Toggle", func(t *testing.T) {
		s := sb
		s.cursor = 4
		f := s.apply(models.DefaultFilterState(), 0)
		assert.Equal(t, "Drama", f.Genre)
		assert.Empty(t, s.apply(f, 0).Genre)

		s.cursor = 5
		assert.Equal(t, 2015, s.apply(f, 0).Year)
	})

	t.Run("Clear", func(t *testing.T) {
		s := sb
		s.cursor = len(s.rows) - 1
		f := s.apply(models.FilterState{Genre: "Drama", Year: 2009, Sort: models.SortYearAsc}, 0)
		assert.Equal(t, models.DefaultFilterState(), f)
	})

	t.Run("Move Wraps", func(t *testing.T) {
		s := sb
		s.move(-1)
		assert.Equal(t, len(s.rows)-1, s.cursor)
		s.move(1)
		assert.Zero(t, s.cursor)
	})

	t.Run("Window", func(t *testing.T) {
		start, end := window(10, 0, 4)
		assert.Equal(t, 0, start)
		assert.Equal(t, 4, end)

		start, end = window(10, 9, 4)
		assert.Equal(t, 6, start)
		assert.Equal(t, 10, end)

		start, end = window(3, 1, 10)
		assert.Equal(t, 0, start)
		assert.Equal(t, 3, end)
	})
}

func TestBrowseStatus(t *testing.T) {
	movies := tu.SampleMovies()[:2]

	assert.Equal(t, "Loading...", browseStatus(tasks.State{Loading: true}, true))
	assert.Contains(t, browseStatus(tasks.State{Err: shared.ErrAPIRequest, ErrMessage: "failed to fetch movies"}, true), "Error: failed to fetch movies")
	assert.Contains(t, browseStatus(tasks.State{}, true), "No movies found")
	assert.Equal(t, "2 movies found", browseStatus(tasks.State{Movies: movies}, false))
	assert.Equal(t, "2 movies found • 1 in your watchlist",
		browseStatus(tasks.State{Movies: movies, Status: models.WatchlistStatus{1: true}}, true))
}

func TestLoginForm(t *testing.T) {
	f := newLoginForm()
	assert.Equal(t, []int{fieldEmail, fieldPassword}, f.fields())
	assert.Equal(t, fieldEmail, f.focus)

	f.next()
	assert.Equal(t, fieldPassword, f.focus)
	f.next()
	assert.Equal(t, fieldEmail, f.focus)

	f.toggleMode()
	assert.Equal(t, []int{fieldUsername, fieldEmail, fieldPassword}, f.fields())
	assert.Equal(t, "Username is required", f.validate())
	assert.Contains(t, f.view(), "Create a cinex account")
}
