package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	left      key.Binding
	right     key.Binding
	enter     key.Binding
	back      key.Binding
	tab       key.Binding
	search    key.Binding
	filters   key.Binding
	sort      key.Binding
	clear     key.Binding
	retry     key.Binding
	watchlist key.Binding
	like      key.Binding
	remove    key.Binding
	clearAll  key.Binding
	yes       key.Binding
	no        key.Binding
	browse    key.Binding
	saved     key.Binding
	dashboard key.Binding
	profile   key.Binding
	logout    key.Binding
	register  key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		filters:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		watchlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist +/-")),
		like:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "like")),
		remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		clearAll:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		browse:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "browse")),
		saved:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "watchlist")),
		dashboard: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "dashboard")),
		profile:   key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "profile")),
		logout:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
		register:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.filters, k.sort, k.clear, k.retry},
		{k.watchlist, k.like, k.remove, k.clearAll},
		{k.browse, k.saved, k.dashboard, k.profile, k.quit},
	}
}
