package launcher

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/device"
	"github.com/desertthunder/zerolauncher/internal/lock"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/repositories"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// Launcher opens apps through the app lock and records their usage.
type Launcher struct {
	*Reconciler

	engine   *lock.Engine
	registry device.Registry
	counter  device.NotificationCounter
	store    *repositories.Store
	logger   *log.Logger
}

// LauncherOpts wires the collaborators of a [Launcher]. Counter may be nil.
type LauncherOpts struct {
	Store      *repositories.Store
	Engine     *lock.Engine
	Registry   device.Registry
	Counter    device.NotificationCounter
	Reconciler *Reconciler
	Logger     *log.Logger
}

// New creates a Launcher.
func New(opts LauncherOpts) *Launcher {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Launcher{
		Reconciler: opts.Reconciler,
		engine:     opts.Engine,
		registry:   opts.Registry,
		counter:    opts.Counter,
		store:      opts.Store,
		logger:     shared.WithLogger(opts.Logger, "component", "launcher"),
	}
}

// Engine returns the app lock engine.
func (l *Launcher) Engine() *lock.Engine { return l.engine }

// Open launches packageName, asking the lock engine first.
//
// password is only checked when the app is locked. A successful launch increments usage;
// failing to record it is logged.
func (l *Launcher) Open(ctx context.Context, packageName, password string) error {
	if err := l.engine.Authorize(ctx, packageName, password); err != nil {
		return err
	}

	ok, err := l.registry.Launch(ctx, packageName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrAppNotInstalled, packageName)
	}

	if err := l.store.Usage.RecordLaunch(ctx, packageName); err != nil {
		l.logger.Warn("failed to record launch", "package", packageName, "error", err)
	}
	l.logger.Debug("launched", "package", packageName)
	return nil
}

// OpenLockSettings authorizes access to the lock settings surface.
func (l *Launcher) OpenLockSettings(ctx context.Context, password string) error {
	return l.engine.Authorize(ctx, models.LockSettingsTarget, password)
}

// NeedsPassword reports whether opening target requires the password.
func (l *Launcher) NeedsPassword(ctx context.Context, target string) bool {
	needed, err := l.engine.NeedsPassword(ctx, target)
	if err != nil {
		l.logger.Warn("failed to read app lock state", "error", err)
		return true
	}
	return needed
}

// MostUsed returns up to limit installed apps ordered by launch count.
func (l *Launcher) MostUsed(ctx context.Context, limit int) ([]models.InstalledApp, error) {
	names, err := l.store.Usage.TopUsed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FavoriteApps(l.Installed(), names), nil
}

// LaunchShortcut opens a shortcut, gated like its app.
func (l *Launcher) LaunchShortcut(ctx context.Context, packageName, shortcutID, password string) error {
	if err := l.engine.Authorize(ctx, packageName, password); err != nil {
		return err
	}

	ok, err := l.registry.LaunchShortcut(ctx, packageName, shortcutID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: shortcut %s/%s", shared.ErrInvalidArgument, packageName, shortcutID)
	}
	return nil
}

// Shortcuts lists packageName's shortcuts.
func (l *Launcher) Shortcuts(ctx context.Context, packageName string) ([]models.AppShortcut, error) {
	return l.registry.ListShortcuts(ctx, packageName)
}

// AppInfo opens the system info screen for packageName.
func (l *Launcher) AppInfo(ctx context.Context, packageName string) (bool, error) {
	return l.registry.OpenInfo(ctx, packageName)
}

// Uninstall removes packageName and reloads the view.
func (l *Launcher) Uninstall(ctx context.Context, packageName string) (bool, error) {
	ok, err := l.registry.Uninstall(ctx, packageName)
	if err != nil || !ok {
		return ok, err
	}
	if err := l.Reload(ctx); err != nil {
		l.logger.Warn("failed to reload after uninstall", "error", err)
	}
	return true, nil
}

// IsDefaultHome reports whether this launcher is the default home app.
func (l *Launcher) IsDefaultHome(ctx context.Context) (bool, error) {
	return l.registry.IsDefaultHomeApp(ctx)
}

// OpenDefaultHomeSettings opens the system chooser for the home app.
func (l *Launcher) OpenDefaultHomeSettings(ctx context.Context) (bool, error) {
	return l.registry.OpenDefaultHomeAppSettings(ctx)
}

// NotificationCounts returns unread counts per package, empty when unavailable.
func (l *Launcher) NotificationCounts(ctx context.Context) map[string]int {
	if l.counter == nil {
		return map[string]int{}
	}

	counts, err := l.counter.Counts(ctx)
	if err != nil {
		l.logger.Warn("failed to read notification counts", "error", err)
		return map[string]int{}
	}
	return counts
}

// WatchNotifications subscribes fn to notification count updates. Without a counter it is a no-op.
func (l *Launcher) WatchNotifications(ctx context.Context, fn func(map[string]int)) func() {
	if l.counter == nil {
		return func() {}
	}

	cancel, err := l.counter.Subscribe(ctx, fn)
	if err != nil {
		l.logger.Warn("notification updates unavailable", "error", err)
		return func() {}
	}
	return cancel
}
