package device

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// SafeRegistry wraps a [Registry] so that no call returns an error.
//
// Failures are logged and replaced with an empty list or false.
type SafeRegistry struct {
	inner  Registry
	logger *log.Logger
}

// NewSafeRegistry wraps inner.
func NewSafeRegistry(inner Registry, logger *log.Logger) *SafeRegistry {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SafeRegistry{inner: inner, logger: shared.WithLogger(logger, "component", "registry")}
}

func (s *SafeRegistry) ListInstalledApps(ctx context.Context) ([]models.InstalledApp, error) {
	apps, err := s.inner.ListInstalledApps(ctx)
	if err != nil {
		s.logger.Warn("failed to list installed apps", "error", err)
		return []models.InstalledApp{}, nil
	}
	if apps == nil {
		apps = []models.InstalledApp{}
	}
	return apps, nil
}

func (s *SafeRegistry) Launch(ctx context.Context, packageName string) (bool, error) {
	return s.check("launch", packageName)(s.inner.Launch(ctx, packageName))
}

func (s *SafeRegistry) OpenInfo(ctx context.Context, packageName string) (bool, error) {
	return s.check("open info", packageName)(s.inner.OpenInfo(ctx, packageName))
}

func (s *SafeRegistry) Uninstall(ctx context.Context, packageName string) (bool, error) {
	return s.check("uninstall", packageName)(s.inner.Uninstall(ctx, packageName))
}

func (s *SafeRegistry) ListShortcuts(ctx context.Context, packageName string) ([]models.AppShortcut, error) {
	shortcuts, err := s.inner.ListShortcuts(ctx, packageName)
	if err != nil {
		s.logger.Warn("failed to list shortcuts", "package", packageName, "error", err)
		return []models.AppShortcut{}, nil
	}
	if shortcuts == nil {
		shortcuts = []models.AppShortcut{}
	}
	return shortcuts, nil
}

func (s *SafeRegistry) LaunchShortcut(ctx context.Context, packageName, shortcutID string) (bool, error) {
	return s.check("launch shortcut", packageName+"/"+shortcutID)(s.inner.LaunchShortcut(ctx, packageName, shortcutID))
}

func (s *SafeRegistry) IsDefaultHomeApp(ctx context.Context) (bool, error) {
	return s.check("check default home", "")(s.inner.IsDefaultHomeApp(ctx))
}

func (s *SafeRegistry) OpenDefaultHomeAppSettings(ctx context.Context) (bool, error) {
	return s.check("open home settings", "")(s.inner.OpenDefaultHomeAppSettings(ctx))
}

func (s *SafeRegistry) check(op, target string) func(bool, error) (bool, error) {
	return func(ok bool, err error) (bool, error) {
		if err != nil {
			s.logger.Warn("registry call failed", "op", op, "target", target, "error", err)
			return false, nil
		}
		return ok, nil
	}
}
