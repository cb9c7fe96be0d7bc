// Package lock implements the app lock engine.
//
// The engine is a small state machine over the persisted enabled flag and password digest:
//
//	disabled (no password) --SetPassword--> enabled
//	enabled --Disable--> disabled (no password)
//	disabled (password set) --RequestEnable--> enabled
//
// Enabling without a password is refused with [shared.ErrPasswordRequired] so the caller can run
// password setup first. Disabling is a reset: the password and every user-locked app are cleared.
//
// While enabled, packages in [models.SystemLockedPackages] are locked without a stored row and
// cannot be toggled off. [Engine.Authorize] gates app launches and the lock settings surface.
package lock
