package device

import (
	"context"

	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// UnsupportedRegistry is the [Registry] for platforms with no app registry.
type UnsupportedRegistry struct{}

func (UnsupportedRegistry) ListInstalledApps(context.Context) ([]models.InstalledApp, error) {
	return nil, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) Launch(context.Context, string) (bool, error) {
	return false, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) OpenInfo(context.Context, string) (bool, error) {
	return false, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) Uninstall(context.Context, string) (bool, error) {
	return false, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) ListShortcuts(context.Context, string) ([]models.AppShortcut, error) {
	return nil, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) LaunchShortcut(context.Context, string, string) (bool, error) {
	return false, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) IsDefaultHomeApp(context.Context) (bool, error) {
	return false, shared.ErrCapabilityUnavailable
}

func (UnsupportedRegistry) OpenDefaultHomeAppSettings(context.Context) (bool, error) {
	return false, shared.ErrCapabilityUnavailable
}
