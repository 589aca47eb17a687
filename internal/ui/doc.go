// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the pages of the movie site:
//  1. [LoginView] : Sign in or register; every other view requires a session
//  2. [BrowseView] : Movie list with a filter sidebar and debounced search
//  3. [DetailView] : A single movie with watchlist and like toggles
//  4. [WatchlistView] : Saved movies with remove and clear-all
//  5. [DashboardView] : Watchlist summary and recommendations
//  6. [ProfileView] : Account details and logout
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Listing state flows through the Synchronizer's update channel, so filter changes never block the event loop.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
