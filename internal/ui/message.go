package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSyncUpdate MsgKind = iota
	MsgSyncClosed
	MsgFilterOptions
	MsgMovieFetched
	MsgWatchlistFetched
	MsgDashboardFetched
	MsgWatchlistToggled
	MsgLikeToggled
	MsgEntryRemoved
	MsgWatchlistCleared
	MsgAuthenticated
	MsgProfileFetched
)

type detailData struct {
	movie       *models.Movie
	inWatchlist bool
	err         error
}

type watchlistData struct {
	list *services.WatchlistList
	err  error
}

type dashboardData struct {
	watchlist       []models.Movie
	recommendations []models.Movie
	err             error
}

type toggleData struct {
	movieID int
	on      bool
	err     error
}

type clearedData struct {
	result *tasks.ClearResult
	err    error
}

type authData struct {
	resp *services.AuthResponse
	err  error
}

type profileData struct {
	user *models.User
	err  error
}

// syncUpdateMsg is the constructor for [MsgSyncUpdate]
func syncUpdateMsg(u tasks.Update) Msg {
	return Msg{kind: MsgSyncUpdate, data: u}
}

// syncClosedMsg is the constructor for [MsgSyncClosed]
func syncClosedMsg() Msg {
	return Msg{kind: MsgSyncClosed}
}

// filterOptionsMsg is the constructor for [MsgFilterOptions]
func filterOptionsMsg(o models.FilterOptions) Msg {
	return Msg{kind: MsgFilterOptions, data: o}
}

// movieFetchedMsg is the constructor for [MsgMovieFetched]
func movieFetchedMsg(m *models.Movie, inWatchlist bool, err error) Msg {
	return Msg{kind: MsgMovieFetched, data: detailData{m, inWatchlist, err}}
}

// watchlistFetchedMsg is the constructor for [MsgWatchlistFetched]
func watchlistFetchedMsg(l *services.WatchlistList, err error) Msg {
	return Msg{kind: MsgWatchlistFetched, data: watchlistData{l, err}}
}

// dashboardFetchedMsg is the constructor for [MsgDashboardFetched]
func dashboardFetchedMsg(watchlist, recommendations []models.Movie, err error) Msg {
	return Msg{kind: MsgDashboardFetched, data: dashboardData{watchlist, recommendations, err}}
}

// watchlistToggledMsg is the constructor for [MsgWatchlistToggled]
func watchlistToggledMsg(movieID int, in bool, err error) Msg {
	return Msg{kind: MsgWatchlistToggled, data: toggleData{movieID, in, err}}
}

// likeToggledMsg is the constructor for [MsgLikeToggled]
func likeToggledMsg(movieID int, liked bool, err error) Msg {
	return Msg{kind: MsgLikeToggled, data: toggleData{movieID, liked, err}}
}

// entryRemovedMsg is the constructor for [MsgEntryRemoved]
func entryRemovedMsg(movieID int, err error) Msg {
	return Msg{kind: MsgEntryRemoved, data: toggleData{movieID: movieID, err: err}}
}

// watchlistClearedMsg is the constructor for [MsgWatchlistCleared]
func watchlistClearedMsg(r *tasks.ClearResult, err error) Msg {
	return Msg{kind: MsgWatchlistCleared, data: clearedData{r, err}}
}

// authenticatedMsg is the constructor for [MsgAuthenticated]
func authenticatedMsg(resp *services.AuthResponse, err error) Msg {
	return Msg{kind: MsgAuthenticated, data: authData{resp, err}}
}

// profileFetchedMsg is the constructor for [MsgProfileFetched]
func profileFetchedMsg(u *models.User, err error) Msg {
	return Msg{kind: MsgProfileFetched, data: profileData{u, err}}
}
