package models

import (
	"slices"
	"strings"
	"time"
)

// MaxFavorites caps the favorites list.
const MaxFavorites = 10

// MinSetupFavorites is the smallest selection accepted by first-launch setup.
const MinSetupFavorites = 3

// LockSettingsTarget names the lock settings surface when it is gated like an app.
const LockSettingsTarget = "zl.lock-settings"

// SystemLockedPackages are always locked while the app lock is enabled and cannot be toggled off.
var SystemLockedPackages = []string{"com.android.vending", "com.android.settings"}

// IsSystemLocked reports whether packageName belongs to [SystemLockedPackages].
func IsSystemLocked(packageName string) bool {
	return slices.Contains(SystemLockedPackages, packageName)
}

// InstalledApp is an application reported by the device app registry.
type InstalledApp struct {
	PackageName string `json:"package_name" toml:"package_name"`
	Label       string `json:"label" toml:"label"`
	Icon        []byte `json:"icon,omitempty" toml:"-"`
	IsSystemApp bool   `json:"is_system_app" toml:"system"`
}

// AppShortcut is a launchable shortcut published by an installed app.
type AppShortcut struct {
	ID          string `json:"id" toml:"id"`
	PackageName string `json:"package_name" toml:"-"`
	Label       string `json:"label" toml:"label"`
	LongLabel   string `json:"long_label,omitempty" toml:"long_label"`
	Icon        []byte `json:"icon,omitempty" toml:"-"`
}

// SortByLabel orders apps by case-insensitive label, then package name, in place.
func SortByLabel(apps []InstalledApp) {
	slices.SortStableFunc(apps, func(a, b InstalledApp) int {
		if c := strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label)); c != 0 {
			return c
		}
		return strings.Compare(a.PackageName, b.PackageName)
	})
}

// UsageRecord tracks how often a package was launched.
type UsageRecord struct {
	PackageName string    `json:"package_name"`
	UsageCount  int       `json:"usage_count"`
	LastUsed    time.Time `json:"last_used"`
}

// FavoriteEntry is a favorite package at its 0-based display position.
type FavoriteEntry struct {
	PackageName string `json:"package_name"`
	Position    int    `json:"position"`
}

// LockConfig is the public view of the app lock singleton. The digest is never exposed.
type LockConfig struct {
	Enabled     bool `json:"enabled"`
	HasPassword bool `json:"has_password"`
}

// LockState enumerates the reachable app lock states.
type LockState int

const (
	DisabledNoPassword LockState = iota
	DisabledHasPassword
	EnabledHasPassword
)

// State maps the config onto a [LockState].
//
// Enabled without a password cannot be produced by the lock engine; a store in that shape is
// reported as [DisabledNoPassword] because nothing can be verified against it.
func (c LockConfig) State() LockState {
	switch {
	case c.HasPassword && c.Enabled:
		return EnabledHasPassword
	case c.HasPassword:
		return DisabledHasPassword
	default:
		return DisabledNoPassword
	}
}

func (s LockState) String() string {
	switch s {
	case DisabledNoPassword:
		return "disabled"
	case DisabledHasPassword:
		return "disabled (password set)"
	case EnabledHasPassword:
		return "enabled"
	default:
		return ""
	}
}

// UnlockAttempt records one password prompt for a locked target.
type UnlockAttempt struct {
	ID      string    `json:"id"`
	Target  string    `json:"target"`
	Success bool      `json:"success"`
	At      time.Time `json:"at"`
}
