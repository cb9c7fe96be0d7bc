// Package repositories implements SQLite persistence for the launcher's local state.
//
// Each repository owns one table and exposes small, single-row atomic operations. Reads against
// empty tables return empty values rather than errors, and every driver failure is wrapped with
// [shared.ErrUnavailableStorage] so callers can decide whether to degrade or surface it.
//
// Key Implementations:
//   - [UsageRepository] : Launch counts with most-used ordering
//   - [FavoriteRepository] : Ordered favorites with contiguous 0-based positions
//   - [HiddenRepository] : Set of hidden packages
//   - [LockConfigRepository] : App lock singleton (enabled flag and password digest)
//   - [LockedAppRepository] : Set of user-locked packages
//   - [AttemptRepository] : Unlock attempt audit trail
//
// [Store] bundles the repositories behind one connection with an explicit Open/Close lifecycle.
package repositories
