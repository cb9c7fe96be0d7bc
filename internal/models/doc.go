// Package models defines the launcher's domain entities.
//
// The package contains two categories of types:
//
// 1. Device records: supplied wholly by the device app registry and never mutated here
//   - [InstalledApp] : An installed, launchable application
//   - [AppShortcut] : A static or dynamic shortcut published by an app
//
// 2. Persisted state: rows owned by the repositories package
//   - [UsageRecord] : Launch count and last launch time per package
//   - [FavoriteEntry] : A favorite with its display position
//   - [LockConfig] : The app lock singleton (enabled flag and whether a password is set)
//   - [UnlockAttempt] : Audit entry for a password prompt
//
// [LockState] names the reachable combinations of [LockConfig] and [SystemLockedPackages] lists
// the packages that are always locked while the app lock is enabled.
package models
