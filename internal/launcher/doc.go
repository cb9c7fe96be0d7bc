// Package launcher derives the home screen views from the installed app list and the persisted
// favorites and hidden sets, and runs the launch flow through the app lock.
//
// [Reconciler] owns the in-memory view. Reads never block on storage; mutations update memory
// first and persist best-effort, logging failures. [Reconciler.Reload] may run from a periodic
// refresh alongside user edits; the last write to the in-memory view wins.
//
// Invariants kept by the Reconciler:
//   - at most [models.MaxFavorites] favorites
//   - a hidden app is never a favorite
//   - favorites keep user order; uninstalled favorites are skipped in views, not deleted
//     (unless pruning is enabled)
//
// [Launcher] wraps a [device.Registry] with the [lock.Engine] gate and usage tracking.
package launcher
