package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/zerolauncher/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRefreshed MsgKind = iota
	MsgTick
	MsgLaunched
	MsgUnlocked
	MsgActionDone
	MsgNotifications
)

type refreshedData struct {
	result *tasks.RefreshResult
	err    error
}

type launchedData struct {
	target string
	err    error
}

// refreshedMsg is the constructor for [MsgRefreshed]
func refreshedMsg(result *tasks.RefreshResult, err error) Msg {
	return Msg{kind: MsgRefreshed, data: refreshedData{result, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg() Msg {
	return Msg{kind: MsgTick}
}

// launchedMsg is the constructor for [MsgLaunched]
func launchedMsg(target string, err error) Msg {
	return Msg{kind: MsgLaunched, data: launchedData{target, err}}
}

// unlockedMsg is the constructor for [MsgUnlocked]; it reports lock settings authorization.
func unlockedMsg(err error) Msg {
	return Msg{kind: MsgUnlocked, data: err}
}

// actionDoneMsg is the constructor for [MsgActionDone]; status is shown in the footer.
func actionDoneMsg(status string, err error) Msg {
	return Msg{kind: MsgActionDone, data: launchedData{status, err}}
}

// notificationsMsg is the constructor for [MsgNotifications]
func notificationsMsg(counts map[string]int) Msg {
	return Msg{kind: MsgNotifications, data: counts}
}
