package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/shared"
	"github.com/desertthunder/cinex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	BrowseView
	DetailView
	WatchlistView
	DashboardView
	ProfileView
)

func (v ViewState) String() string {
	switch v {
	case LoginView:
		return "Login"
	case BrowseView:
		return "Browse"
	case DetailView:
		return "Detail"
	case WatchlistView:
		return "Watchlist"
	case DashboardView:
		return "Dashboard"
	case ProfileView:
		return "Profile"
	default:
		return ""
	}
}

const sidebarWidth = 30

// SessionStore persists the login between runs.
type SessionStore interface {
	Save(*models.Session) error
	Clear() error
}

// ModelOpts holds the dependencies of [Model].
type ModelOpts struct {
	API      services.API
	Sync     *tasks.Synchronizer
	Sessions SessionStore
	Session  *models.Session // nil when logged out
	Logger   *log.Logger
	Now      func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	api      services.API
	sync     *tasks.Synchronizer
	sessions SessionStore
	session  *models.Session
	logger   *log.Logger
	now      func() time.Time

	view   ViewState
	width  int
	height int
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	flash  string
	err    error

	// browse
	state     tasks.State
	status    string
	movies    list.Model
	search    textinput.Model
	options   models.FilterOptions
	filters   sidebar
	sidebarOn bool
	stale     bool

	// detail
	detail     *models.Movie
	detailIn   bool
	detailBusy bool
	liked      map[int]bool
	back       ViewState

	// watchlist
	entries      list.Model
	entryCount   int
	confirmClear bool
	busy         bool

	// dashboard
	dashWatch []models.Movie
	recs      []models.Movie

	user  *models.User
	login loginForm
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	search := textinput.New()
	search.Placeholder = "Search movies..."
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 40

	options := models.FallbackFilterOptions(now())

	m := &Model{
		ctx:      ctx,
		api:      opts.API,
		sync:     opts.Sync,
		sessions: opts.Sessions,
		session:  opts.Session,
		logger:   shared.WithLogger(logger, "component", "ui"),
		now:      now,
		view:     LoginView,
		keys:     newKeyMap(),
		help:     help.New(),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		state:    opts.Sync.State(),
		movies:   newList("Discover Movies", nil, 0, 0),
		entries:  newList("Your Watchlist", nil, 0, 0),
		search:   search,
		options:  options,
		filters:  newSidebar(options),
		liked:    map[int]bool{},
		login:    newLoginForm(),
	}

	if m.authenticated() {
		m.view = BrowseView
		m.user = &m.session.User
	}
	return m
}

// Init starts listening for synchronizer updates and loads the filter options.
// With a valid session the first listing is fetched immediately.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForUpdate(), m.fetchOptions(), m.spin.Tick}
	if m.view == BrowseView {
		m.sync.Refresh()
	} else {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// ViewState reports which view is active.
func (m *Model) ViewState() ViewState { return m.view }

func (m *Model) authenticated() bool {
	return m.session.Valid(m.now()) && m.api.Authenticated()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.view == LoginView:
		m.login, cmd = m.login.update(msg)
	case m.search.Focused():
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize() {
	listWidth := max(m.width-sidebarWidth-4, 20)
	listHeight := max(m.height-10, 5)
	m.movies.SetSize(listWidth, listHeight)
	m.entries.SetSize(max(m.width-4, 20), listHeight)
	m.help.Width = m.width
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSyncUpdate:
		u := msg.data.(tasks.Update)
		m.applyState(u.State)
		m.status = u.Message
		if errors.Is(u.State.Err, shared.ErrNotAuthenticated) && m.view != LoginView {
			return m, tea.Batch(m.expire(), m.waitForUpdate())
		}
		return m, m.waitForUpdate()

	case MsgSyncClosed:
		return m, nil

	case MsgFilterOptions:
		m.options = msg.data.(models.FilterOptions)
		m.filters = newSidebar(m.options)

	case MsgMovieFetched:
		d := msg.data.(detailData)
		m.detailBusy = false
		if d.err != nil {
			m.err = d.err
			return m, m.expireOn(d.err)
		}
		m.err = nil
		m.detail = d.movie
		m.detailIn = d.inWatchlist

	case MsgWatchlistToggled:
		d := msg.data.(toggleData)
		if m.detail != nil && m.detail.ID == d.movieID {
			m.detailIn = d.on
		}
		if d.err != nil {
			m.flash = services.ErrorMessage(d.err, "Failed to update watchlist")
			return m, m.expireOn(d.err)
		}
		m.flash = "Removed from watchlist"
		if d.on {
			m.flash = "Added to watchlist"
		}

	case MsgLikeToggled:
		d := msg.data.(toggleData)
		if d.err != nil {
			m.flash = services.ErrorMessage(d.err, "Failed to update like status")
			return m, m.expireOn(d.err)
		}
		m.liked[d.movieID] = d.on

	case MsgWatchlistFetched:
		d := msg.data.(watchlistData)
		m.busy = false
		if d.err != nil {
			m.err = d.err
			return m, m.expireOn(d.err)
		}
		m.err = nil
		m.entryCount = d.list.TotalCount
		return m, m.entries.SetItems(entryItems(d.list.Watchlist))

	case MsgEntryRemoved:
		d := msg.data.(toggleData)
		if d.err != nil {
			m.flash = services.ErrorMessage(d.err, "Failed to remove movie")
			return m, m.expireOn(d.err)
		}
		m.stale = true
		for i, item := range m.entries.Items() {
			if e, ok := item.(entryItem); ok && e.entry.ID == d.movieID {
				m.entries.RemoveItem(i)
				m.entryCount = max(m.entryCount-1, 0)
				break
			}
		}
		m.flash = "Removed from watchlist"

	case MsgWatchlistCleared:
		d := msg.data.(clearedData)
		m.busy = false
		m.stale = true
		if d.err != nil {
			m.flash = d.err.Error()
			return m, tea.Batch(m.fetchWatchlist(), m.expireOn(d.err))
		}
		m.entryCount = 0
		m.flash = fmt.Sprintf("Removed %d movies from your watchlist", d.result.Removed)
		return m, m.entries.SetItems(nil)

	case MsgDashboardFetched:
		d := msg.data.(dashboardData)
		m.busy = false
		if d.err != nil {
			m.err = d.err
			return m, m.expireOn(d.err)
		}
		m.err = nil
		m.dashWatch = d.watchlist
		m.recs = d.recommendations

	case MsgAuthenticated:
		return m.handleAuthenticated(msg.data.(authData))

	case MsgProfileFetched:
		d := msg.data.(profileData)
		if d.err != nil {
			m.flash = services.ErrorMessage(d.err, "Failed to load profile")
			return m, m.expireOn(d.err)
		}
		m.user = d.user
	}
	return m, nil
}

func (m *Model) handleAuthenticated(d authData) (tea.Model, tea.Cmd) {
	m.login.pending = false
	if d.err != nil {
		m.login.err = authMessage(d.err)
		return m, nil
	}

	session := models.NewSession(d.resp.Token, d.resp.User, m.now())
	if m.sessions != nil {
		if err := m.sessions.Save(session); err != nil {
			m.logger.Error("failed to persist session", "error", err)
		}
	}

	m.session = session
	m.user = &session.User
	m.login = newLoginForm()
	m.view = BrowseView
	m.flash = "Welcome, " + session.User.Username
	m.sync.Refresh()
	return m, nil
}

func authMessage(err error) string {
	if msg := services.ErrorMessage(err, ""); msg != "" {
		return msg
	}
	if errors.Is(err, shared.ErrAuthFailed) {
		return "Invalid email or password"
	}
	return err.Error()
}

// applyState stores a synchronizer snapshot and rebuilds the movie list.
func (m *Model) applyState(s tasks.State) {
	m.state = s
	m.movies.Title = listTitle(s.Filters)
	m.movies.SetItems(movieItems(s.Movies, s.Status))
}

// expire drops the session and shows the login view.
func (m *Model) expire() tea.Cmd {
	m.logout()
	m.login.err = "Your session has expired, please log in again"
	return textinput.Blink
}

func (m *Model) expireOn(err error) tea.Cmd {
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return m.expire()
	}
	return nil
}

func (m *Model) logout() {
	if m.sessions != nil {
		if err := m.sessions.Clear(); err != nil {
			m.logger.Error("failed to clear session", "error", err)
		}
	}
	m.api.SetToken("")
	m.session = nil
	m.user = nil
	m.detail = nil
	m.liked = map[int]bool{}
	m.view = LoginView
	m.login = newLoginForm()
}

// switchView moves to v and starts whatever load it needs.
func (m *Model) switchView(v ViewState) tea.Cmd {
	m.err = nil
	m.flash = ""
	m.confirmClear = false
	m.sidebarOn = false
	m.search.Blur()
	m.view = v

	switch v {
	case BrowseView:
		if m.stale {
			m.stale = false
			m.sync.Refresh()
		}
	case WatchlistView:
		m.busy = true
		return m.fetchWatchlist()
	case DashboardView:
		m.busy = true
		return m.fetchDashboard()
	case ProfileView:
		return m.fetchProfile()
	}
	return nil
}

func (m *Model) openDetail(movieID int) tea.Cmd {
	if m.view != DetailView {
		m.back = m.view
	}
	m.view = DetailView
	m.detail = nil
	m.detailBusy = true
	m.err = nil
	m.flash = ""
	return m.fetchMovie(movieID)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case LoginView:
		return m.handleLoginKeys(msg)
	case BrowseView:
		if m.search.Focused() {
			return m.handleSearchKeys(msg)
		}
		if m.sidebarOn {
			return m.handleSidebarKeys(msg)
		}
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.browse):
		return m, m.switchView(BrowseView)
	case key.Matches(msg, m.keys.saved):
		return m, m.switchView(WatchlistView)
	case key.Matches(msg, m.keys.dashboard):
		return m, m.switchView(DashboardView)
	case key.Matches(msg, m.keys.profile):
		return m, m.switchView(ProfileView)
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.view {
	case BrowseView:
		return m.handleBrowseKeys(msg)
	case DetailView:
		return m.handleDetailKeys(msg)
	case WatchlistView:
		return m.handleWatchlistKeys(msg)
	case DashboardView:
		if key.Matches(msg, m.keys.retry) {
			m.busy = true
			return m, m.fetchDashboard()
		}
	case ProfileView:
		if key.Matches(msg, m.keys.logout) {
			m.logout()
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.pending {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.tab):
		m.login.next()
		return m, nil
	case key.Matches(msg, m.keys.register):
		m.login.toggleMode()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if problem := m.login.validate(); problem != "" {
			m.login.err = problem
			return m, nil
		}
		m.login.pending = true
		m.login.err = ""
		return m, m.submitLogin()
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.sync.SetSearch(after)
	}
	return m, cmd
}

func (m *Model) handleSidebarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sb := m.filters
	switch {
	case key.Matches(msg, m.keys.filters), key.Matches(msg, m.keys.back):
		m.sidebarOn = false
	case key.Matches(msg, m.keys.up):
		m.filters.move(-1)
	case key.Matches(msg, m.keys.down):
		m.filters.move(1)
	case key.Matches(msg, m.keys.enter):
		m.applySidebar(sb, 0)
	case key.Matches(msg, m.keys.left):
		m.applySidebar(sb, -1)
	case key.Matches(msg, m.keys.right):
		m.applySidebar(sb, 1)
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) applySidebar(sb sidebar, delta int) {
	if sb.current().kind == rowClear {
		m.clearFilters()
		return
	}
	m.sync.UpdateFilters(func(f *models.FilterState) { *f = sb.apply(*f, delta) })
}

func (m *Model) clearFilters() {
	m.search.SetValue("")
	m.sync.ClearFilters()
}

func (m *Model) selectedMovie() (models.Movie, bool) {
	if item, ok := m.movies.SelectedItem().(movieItem); ok {
		return item.movie, true
	}
	return models.Movie{}, false
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		m.sidebarOn = false
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.filters):
		m.sidebarOn = true
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.clearFilters()
		return m, nil
	case key.Matches(msg, m.keys.retry):
		m.sync.Retry()
		return m, nil
	case key.Matches(msg, m.keys.sort):
		m.sync.UpdateFilters(func(f *models.FilterState) { f.Sort = m.filters.nextSort(f.Sort, 1) })
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if movie, ok := m.selectedMovie(); ok {
			return m, m.openDetail(movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.watchlist):
		if movie, ok := m.selectedMovie(); ok {
			return m, m.toggleWatchlist(movie.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.switchView(m.back)
	case m.detail == nil:
		return m, nil
	case key.Matches(msg, m.keys.watchlist):
		return m, m.toggleWatchlist(m.detail.ID)
	case key.Matches(msg, m.keys.like):
		return m, m.toggleLike(m.detail.ID, m.liked[m.detail.ID])
	case msg.String() == "p":
		if err := shared.OpenBrowser(m.detail.PosterImage()); err != nil {
			m.flash = "No poster available"
		}
	}
	return m, nil
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		switch {
		case key.Matches(msg, m.keys.yes):
			m.confirmClear = false
			m.busy = true
			return m, m.clearWatchlist()
		case key.Matches(msg, m.keys.no):
			m.confirmClear = false
		}
		return m, nil
	}

	item, selected := m.entries.SelectedItem().(entryItem)
	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.switchView(BrowseView)
	case key.Matches(msg, m.keys.retry):
		m.busy = true
		return m, m.fetchWatchlist()
	case key.Matches(msg, m.keys.clearAll):
		if len(m.entries.Items()) > 0 {
			m.confirmClear = true
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if selected {
			return m, m.removeEntry(item.entry.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if selected {
			return m, m.openDetail(item.entry.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.sync.Updates()
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return syncClosedMsg()
		}
		return syncUpdateMsg(u)
	}
}

func (m *Model) fetchOptions() tea.Cmd {
	ctx, api, logger, now := m.ctx, m.api, m.logger, m.now
	return func() tea.Msg {
		o, err := api.FilterOptions(ctx)
		if err != nil {
			logger.Warn("using fallback filter options", "error", err)
			return filterOptionsMsg(models.FallbackFilterOptions(now()))
		}
		return filterOptionsMsg(o.WithDefaults(now()))
	}
}

func (m *Model) fetchMovie(movieID int) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		movie, err := api.GetMovie(ctx, movieID)
		if err != nil {
			return movieFetchedMsg(nil, false, err)
		}

		in := false
		if api.Authenticated() {
			if status, err := api.WatchlistStatus(ctx, []int{movieID}); err == nil {
				in = status[movieID]
			}
		}
		return movieFetchedMsg(movie, in, nil)
	}
}

func (m *Model) toggleWatchlist(movieID int) tea.Cmd {
	ctx, sync := m.ctx, m.sync
	return func() tea.Msg {
		in, err := sync.ToggleWatchlist(ctx, movieID)
		return watchlistToggledMsg(movieID, in, err)
	}
}

func (m *Model) toggleLike(movieID int, liked bool) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		var err error
		if liked {
			err = api.Unlike(ctx, movieID)
		} else {
			err = api.Like(ctx, movieID)
		}
		return likeToggledMsg(movieID, !liked, err)
	}
}

func (m *Model) fetchWatchlist() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		l, err := api.Watchlist(ctx)
		return watchlistFetchedMsg(l, err)
	}
}

func (m *Model) removeEntry(movieID int) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.RemoveFromWatchlist(ctx, movieID)
		if errors.Is(err, shared.ErrNotInWatchlist) {
			err = nil
		}
		return entryRemovedMsg(movieID, err)
	}
}

func (m *Model) clearWatchlist() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		res, err := tasks.ClearWatchlist(ctx, api, tasks.DefaultClearConcurrency, nil)
		return watchlistClearedMsg(res, err)
	}
}

// fetchDashboard loads the watchlist and recommendations. Recommendations are optional.
func (m *Model) fetchDashboard() tea.Cmd {
	ctx, api, logger := m.ctx, m.api, m.logger
	return func() tea.Msg {
		watchlist, err := api.UserWatchlist(ctx)
		if err != nil {
			return dashboardFetchedMsg(nil, nil, err)
		}

		recs, err := api.Recommendations(ctx)
		if err != nil {
			logger.Debug("recommendations unavailable", "error", err)
			recs = nil
		}
		return dashboardFetchedMsg(watchlist, recs, nil)
	}
}

func (m *Model) fetchProfile() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		u, err := api.Me(ctx)
		return profileFetchedMsg(u, err)
	}
}

func (m *Model) submitLogin() tea.Cmd {
	ctx, api, f := m.ctx, m.api, m.login
	email, password := f.value(fieldEmail), f.inputs[fieldPassword].Value()
	username, register := f.value(fieldUsername), f.register
	return func() tea.Msg {
		var (
			resp *services.AuthResponse
			err  error
		)
		if register {
			resp, err = api.Register(ctx, username, email, password)
		} else {
			resp, err = api.Login(ctx, email, password)
		}
		return authenticatedMsg(resp, err)
	}
}
