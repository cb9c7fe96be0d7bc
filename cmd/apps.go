package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/zerolauncher/internal/formatter"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/urfave/cli/v3"
)

func requirePackage(cmd *cli.Command) (string, error) {
	pkg := cmd.StringArg("package")
	if pkg == "" {
		return "", fmt.Errorf("%w: package name", shared.ErrMissingArgument)
	}
	return pkg, nil
}

// rows builds listing rows with favorite, hidden, locked and badge state.
func (r *Runner) rows(ctx context.Context, all bool) []formatter.AppRow {
	apps := r.launcher.Visible()
	if all {
		apps = r.launcher.Installed()
	}

	locked, err := r.engine.LockedView(ctx)
	if err != nil {
		r.logger.Warn("failed to read locked apps", "error", err)
	}

	return formatter.BuildRows(apps, formatter.RowState{
		Favorites:     r.launcher.FavoriteNames(),
		Hidden:        r.launcher.Hidden(),
		Locked:        locked,
		Notifications: r.launcher.NotificationCounts(ctx),
	})
}

// AppsList prints visible apps, or every installed app with --all.
func (r *Runner) AppsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	title := "Apps"
	if cmd.Bool("all") {
		title = "All Apps"
	}
	rows := r.rows(ctx, cmd.Bool("all"))

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, title, rows); err != nil {
			return err
		}
		r.logger.Info("exported app list", "path", path, "apps", len(rows))
		return r.writePlain("✓ Exported %d apps to %s\n", len(rows), path)
	}

	out, err := formatter.Render(cmd.String("format"), title, rows)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// AppsOpen launches an app through the app lock.
func (r *Runner) AppsOpen(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.Open(ctx, pkg, cmd.String("password")); err != nil {
		if errors.Is(err, shared.ErrIncorrectPassword) && cmd.String("password") == "" {
			return fmt.Errorf("%w (pass --password)", err)
		}
		return err
	}
	return r.writePlain("✓ Opened %s\n", r.label(pkg))
}

// AppsHide hides an app and drops it from favorites.
func (r *Runner) AppsHide(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.HideApp(ctx, pkg); err != nil {
		return err
	}
	return r.writePlain("✓ %s is hidden\n", r.label(pkg))
}

// AppsUnhide removes an app from the hidden set. Favorite status is not restored.
func (r *Runner) AppsUnhide(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.UnhideApp(ctx, pkg); err != nil {
		return err
	}
	return r.writePlain("✓ %s is visible\n", r.label(pkg))
}

// AppsInfo opens the system info screen for an app.
func (r *Runner) AppsInfo(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	ok, err := r.launcher.AppInfo(ctx, pkg)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrAppNotInstalled, pkg)
	}
	return r.writePlain("✓ Opened info for %s\n", r.label(pkg))
}

// AppsUninstall requests removal of an app and reloads the app list.
func (r *Runner) AppsUninstall(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	label := r.label(pkg)
	ok, err := r.launcher.Uninstall(ctx, pkg)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrAppNotInstalled, pkg)
	}
	return r.writePlain("✓ Uninstall requested for %s\n", label)
}

// AppsShortcuts lists an app's shortcuts, or launches the one named by --id.
func (r *Runner) AppsShortcuts(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if id := cmd.String("id"); id != "" {
		if err := r.launcher.LaunchShortcut(ctx, pkg, id, cmd.String("password")); err != nil {
			return err
		}
		return r.writePlain("✓ Launched shortcut %s of %s\n", id, r.label(pkg))
	}

	shortcuts, err := r.launcher.Shortcuts(ctx, pkg)
	if err != nil {
		return err
	}
	if len(shortcuts) == 0 {
		return r.writePlain("No shortcuts for %s\n", r.label(pkg))
	}

	r.writePlainHeader(fmt.Sprintf("Shortcuts: %s", r.label(pkg)))
	for _, s := range shortcuts {
		r.writePlain("%-20s %s\n", s.ID, s.Label)
	}
	return nil
}

// AppsHome reports whether zl is the default home app, optionally opening its settings.
func (r *Runner) AppsHome(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	if cmd.Bool("settings") {
		ok, err := r.launcher.OpenDefaultHomeSettings(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: default home settings", shared.ErrCapabilityUnavailable)
		}
		return r.writePlain("✓ Opened default home settings\n")
	}

	isDefault, err := r.launcher.IsDefaultHome(ctx)
	if err != nil {
		return err
	}
	if isDefault {
		return r.writePlain("zl is the default home app\n")
	}
	return r.writePlain("zl is not the default home app\n")
}
