// Package device defines the platform capabilities the launcher core consumes and the adapters
// that implement them off-device.
//
// Key Types:
//   - [Registry] : installed app enumeration, launch, uninstall and shortcuts
//   - [NotificationCounter] : per-package notification badges with push updates
//   - [FirstLaunchFlag] : one-shot "setup complete" marker
//
// Adapters:
//   - [ManifestRegistry] : apps described by a TOML manifest
//   - [UnsupportedRegistry] : every call fails with [shared.ErrCapabilityUnavailable]
//   - [SafeRegistry] : degrades any adapter's errors to empty or false results
//   - [FileNotificationCounter] : counts read from a TOML file, watched with fsnotify
//   - [FileFlag] : marker file under the state directory
package device

import (
	"context"

	"github.com/desertthunder/zerolauncher/internal/models"
)

// Registry is the device app registry.
type Registry interface {
	ListInstalledApps(ctx context.Context) ([]models.InstalledApp, error)
	Launch(ctx context.Context, packageName string) (bool, error)
	OpenInfo(ctx context.Context, packageName string) (bool, error)
	Uninstall(ctx context.Context, packageName string) (bool, error)
	ListShortcuts(ctx context.Context, packageName string) ([]models.AppShortcut, error)
	LaunchShortcut(ctx context.Context, packageName, shortcutID string) (bool, error)
	IsDefaultHomeApp(ctx context.Context) (bool, error)
	OpenDefaultHomeAppSettings(ctx context.Context) (bool, error)
}

// NotificationCounter reports unread notification counts per package.
//
// Subscribe calls fn with the full count map whenever it changes until cancel is called or ctx
// is done.
type NotificationCounter interface {
	Counts(ctx context.Context) (map[string]int, error)
	Subscribe(ctx context.Context, fn func(map[string]int)) (cancel func(), err error)
}

// FirstLaunchFlag records whether initial setup has completed.
//
// IsFirstLaunch returns true when the flag cannot be read so setup is never skipped silently.
// MarkLaunchComplete is best-effort.
type FirstLaunchFlag interface {
	IsFirstLaunch(ctx context.Context) bool
	MarkLaunchComplete(ctx context.Context)
}
