package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/cinex/internal/formatter"
	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/services"
	"github.com/desertthunder/cinex/internal/tasks"
)

var tabs = []ViewState{BrowseView, WatchlistView, DashboardView, ProfileView}

func listTitle(f models.FilterState) string {
	return formatter.ListTitle(f)
}

// browseStatus is the line under the listing title.
func browseStatus(s tasks.State, authenticated bool) string {
	switch {
	case s.Loading:
		return "Loading..."
	case s.Err != nil:
		return styles.err.Render("Error: "+s.ErrMessage) + "  " + styles.help.Render("r retry")
	case len(s.Movies) == 0:
		return styles.warn.Render("No movies found") + "  " +
			styles.help.Render("Try adjusting your search or filters to discover more movies. c clear filters")
	}

	line := formatter.MovieCount(len(s.Movies))
	if authenticated {
		line += " • " + formatter.WatchlistCount(s.InWatchlistCount())
	}
	return line
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.view == LoginView {
		return m.login.view()
	}

	var body string
	switch m.view {
	case BrowseView:
		body = m.renderBrowse()
	case DetailView:
		body = m.renderDetail()
	case WatchlistView:
		body = m.renderWatchlist()
	case DashboardView:
		body = m.renderDashboard()
	case ProfileView:
		body = m.renderProfile()
	}

	footer := m.help.ShortHelpView(m.viewKeys())
	if m.help.ShowAll {
		footer = m.help.View(m.keys)
	}
	if m.flash != "" {
		footer = styles.ok.Render(m.flash) + "\n" + footer
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderTabs(), body, footer)
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(tabs))
	for i, v := range tabs {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.view || (m.view == DetailView && v == m.back) {
			parts[i] = styles.tabOn.Render(label)
		} else {
			parts[i] = styles.tab.Render(label)
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.user != nil {
		bar += "  " + styles.help.Render("@"+m.user.Username)
	}
	return bar
}

func (m *Model) viewKeys() []key.Binding {
	k := m.keys
	switch m.view {
	case BrowseView:
		if m.sidebarOn {
			return []key.Binding{k.up, k.down, k.enter, k.left, k.right, k.back}
		}
		return []key.Binding{k.enter, k.search, k.filters, k.sort, k.watchlist, k.clear, k.retry, k.quit}
	case DetailView:
		return []key.Binding{k.watchlist, k.like, key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "poster")), k.back}
	case WatchlistView:
		if m.confirmClear {
			return []key.Binding{k.yes, k.no}
		}
		return []key.Binding{k.enter, k.remove, k.clearAll, k.retry, k.back}
	case DashboardView:
		return []key.Binding{k.retry, k.quit}
	case ProfileView:
		return []key.Binding{k.logout, k.quit}
	}
	return []key.Binding{k.quit}
}

func (m *Model) renderBrowse() string {
	status := browseStatus(m.state, m.authenticated())
	if m.state.Loading {
		status = m.spin.View() + " " + status
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		styles.title.Render(listTitle(m.state.Filters)),
		status,
		m.search.View(),
	)

	panel := m.filters.view(m.state.Filters, m.sidebarOn, max(m.height-12, 5))
	content := m.movies.View()
	if len(m.state.Movies) == 0 {
		content = ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(sidebarWidth).Render(panel), " ", content),
	)
}

func (m *Model) renderDetail() string {
	switch {
	case m.detailBusy:
		return m.spin.View() + " Loading movie..."
	case m.err != nil:
		return styles.err.Render("Error: "+services.ErrorMessage(m.err, "Failed to fetch movie details")) + "\n" +
			styles.help.Render("esc back")
	case m.detail == nil:
		return styles.warn.Render("Movie not found")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(m.detail.Title))
	b.WriteString("\n")
	b.Write(formatter.MovieToText(*m.detail))

	watch := "☐ Add to watchlist"
	if m.detailIn {
		watch = styles.ok.Render("✓ In your watchlist")
	}
	like := "♡ Like"
	if m.liked[m.detail.ID] {
		like = styles.err.Render("♥ Liked")
	}
	fmt.Fprintf(&b, "\n%s   %s", watch, like)
	return b.String()
}

func (m *Model) renderWatchlist() string {
	switch {
	case m.busy:
		return m.spin.View() + " Loading watchlist..."
	case m.err != nil:
		return styles.err.Render("Error: "+services.ErrorMessage(m.err, "Failed to fetch watchlist")) + "  " +
			styles.help.Render("r retry")
	case len(m.entries.Items()) == 0:
		return styles.title.Render("Your Watchlist") + "\n" +
			"Your watchlist is empty\n" +
			styles.help.Render("Start adding movies you want to watch. Press 1 to discover movies.")
	}

	view := m.entries.View() + "\n" + formatter.WatchlistCount(m.entryCount)
	if m.confirmClear {
		view += "\n\n" + styles.warn.Render(fmt.Sprintf("Remove all %d movies from your watchlist? (y/n)", len(m.entries.Items())))
	}
	return view
}

func (m *Model) renderDashboard() string {
	switch {
	case m.busy:
		return m.spin.View() + " Loading dashboard..."
	case m.err != nil:
		return styles.err.Render("Oops! Something went wrong: "+services.ErrorMessage(m.err, "Failed to fetch user data")) +
			"  " + styles.help.Render("r try again")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Your Dashboard"))
	b.WriteString("\n")

	b.WriteString(styles.selected.Render(fmt.Sprintf("Your Watchlist (%d)", len(m.dashWatch))))
	b.WriteString("\n")
	if len(m.dashWatch) == 0 {
		b.WriteString("  Your watchlist is empty\n")
	}
	for _, movie := range m.dashWatch {
		fmt.Fprintf(&b, "  • %s\n", describeLine(movie))
	}

	b.WriteString("\n")
	b.WriteString(styles.selected.Render("Recommended for You"))
	b.WriteString("\n")
	if len(m.recs) == 0 {
		b.WriteString(styles.help.Render("  No recommendations available"))
		b.WriteString("\n")
	}
	for _, movie := range m.recs {
		fmt.Fprintf(&b, "  • %s\n", describeLine(movie))
	}
	return b.String()
}

func describeLine(movie models.Movie) string {
	return fmt.Sprintf("%s  %s", movie.Title, styles.help.Render(describe(movie)))
}

func (m *Model) renderProfile() string {
	if m.user == nil {
		return m.spin.View() + " Loading profile..."
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Profile Settings"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Username: %s\n", m.user.Username)
	fmt.Fprintf(&b, "Email:    %s\n", m.user.Email)
	if m.user.CreatedAt != "" {
		fmt.Fprintf(&b, "Member since: %s\n", dateOnly(m.user.CreatedAt))
	}
	if m.user.LastLogin != "" {
		fmt.Fprintf(&b, "Last login:   %s\n", dateOnly(m.user.LastLogin))
	}
	if m.session != nil {
		fmt.Fprintf(&b, "Session expires in %s\n", m.session.Remaining(m.now()).Round(time.Second))
	}
	fmt.Fprintf(&b, "Watchlist items in view: %d\n", m.state.InWatchlistCount())
	return b.String()
}

func dateOnly(ts string) string {
	d, _, _ := strings.Cut(ts, "T")
	return d
}
