// Package tasks runs the launcher's background refresh with real-time progress reporting.
//
// # Refresh
//
// [Refresher.RunOnce] performs one pass:
//
//  1. Reload the installed app list and persisted sets ([AppSource])
//  2. Fetch the current temperature when a [WeatherSource] is configured
//  3. Read notification counts when a [CountSource] is configured
//
// Only the reload can fail a pass; weather and counts are optional and degrade to empty values.
// [Refresher.Run] repeats the pass on an interval until the context is cancelled. A pass is
// idempotent, so it is safe to run while the user edits favorites.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for UI rendering.
// Updates use select with default to prevent blocking.
package tasks
