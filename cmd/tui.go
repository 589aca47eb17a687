package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinex/internal/shared"
	"github.com/desertthunder/cinex/internal/tasks"
	"github.com/desertthunder/cinex/internal/ui"
)

// TUI launches the interactive movie browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(shared.ExpandHome(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.storage(); err != nil {
		return err
	}
	session := r.tryAuthorize()

	sync := tasks.NewSynchronizer(tasks.SyncOpts{
		API:    r.api(),
		Logger: fileLogger,
		Delay:  r.config.Sync.Debounce(),
		Limit:  r.config.Sync.Limit,
	})
	defer sync.Close()

	model := ui.NewModel(ctx, ui.ModelOpts{
		API:      r.api(),
		Sync:     sync,
		Sessions: r.sessions,
		Session:  session,
		Logger:   fileLogger,
		Now:      r.now,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
