// Package ui implements an interactive terminal launcher using bubbletea's Elm architecture.
//
// Views:
//  1. [HomeView] : Favorites with notification badges and the current temperature
//  2. [AppsView] : Every installed app; favorite, hide and open from here
//  3. [UnlockView] : Masked password prompt shown before a locked app or lock settings opens
//  4. [LockView] : Toggle which apps are locked (reached through [UnlockView] when enabled)
//  5. [SetupView] : First-launch picker for the initial favorites
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// A refresh runs on start and then on every tick; results arrive as messages so user edits are never blocked.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
