package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/desertthunder/zerolauncher/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal launcher.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(filepath.Join(r.config.Device.StateDir, "zl-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.ApplyLogLevel(fileLogger, r.config.Logging.Level)
	r.SetLogger(fileLogger)

	if err := r.open(ctx); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Launcher:  r.launcher,
		Refresher: r.refresher,
		Interval:  r.config.Refresh.Interval.Duration,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
