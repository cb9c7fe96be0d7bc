package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/zerolauncher/internal/launcher"
	"github.com/desertthunder/zerolauncher/internal/lock"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/desertthunder/zerolauncher/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	AppsView
	UnlockView
	LockView
	SetupView
)

// Options wires the TUI to the launcher. Refresher is optional; without it the app list is
// reloaded directly. A zero Interval disables periodic refresh.
type Options struct {
	Launcher  *launcher.Launcher
	Refresher *tasks.Refresher
	Interval  time.Duration
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	prev      ViewState
	launcher  *launcher.Launcher
	refresher *tasks.Refresher
	interval  time.Duration
	width     int
	height    int
	home      list.Model
	apps      list.Model
	locks     list.Model
	setup     list.Model
	password  textinput.Model
	pending   string
	picks     []string
	counts    map[string]int
	temp      *int
	notify    chan map[string]int
	unwatch   func()
	status    string
	err       error
	help      help.Model
	keys      keyMap
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = lock.MaxPasswordLength

	return &Model{
		ctx:       ctx,
		view:      HomeView,
		launcher:  opts.Launcher,
		refresher: opts.Refresher,
		interval:  opts.Interval,
		home:      newList("Favorites"),
		apps:      newList("All Apps"),
		locks:     newList("Locked Apps"),
		setup:     newList("Pick 3-10 favorites"),
		password:  password,
		counts:    map[string]int{},
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Current returns the active [ViewState].
func (m *Model) Current() ViewState { return m.view }

// Close stops the notification subscription.
func (m *Model) Close() {
	if m.unwatch != nil {
		m.unwatch()
		m.unwatch = nil
	}
}

// Init initializes the TUI by refreshing the app list and subscribing to notification updates.
func (m *Model) Init() tea.Cmd {
	m.notify = make(chan map[string]int, 1)
	m.unwatch = m.launcher.WatchNotifications(m.ctx, func(counts map[string]int) {
		select {
		case m.notify <- counts:
		default:
		}
	})
	return tea.Batch(m.refresh(), m.tick(), m.waitForNotifications())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.home, &m.apps, &m.locks, &m.setup} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case HomeView:
			return m.handleHomeKeys(msg)
		case AppsView:
			return m.handleAppsKeys(msg)
		case UnlockView:
			return m.handleUnlockKeys(msg)
		case LockView:
			return m.handleLockKeys(msg)
		case SetupView:
			return m.handleSetupKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRefreshed:
		data := msg.data.(refreshedData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		if data.result != nil {
			m.temp = data.result.Temperature
			m.counts = data.result.Notifications
		}
		if m.launcher.NeedsSetup(m.ctx) {
			m.view = SetupView
		}
		m.rebuild()
		return m, nil

	case MsgTick:
		return m, tea.Batch(m.refresh(), m.tick())

	case MsgLaunched:
		data := msg.data.(launchedData)
		if data.err != nil {
			m.setError(data.err)
			m.password.Reset()
			return m, nil
		}
		if m.view == UnlockView {
			m.view = m.prev
			m.password.Reset()
			m.password.Blur()
		}
		m.setStatus(fmt.Sprintf("Opened %s", m.label(data.target)))
		return m, nil

	case MsgUnlocked:
		if err, _ := msg.data.(error); err != nil {
			m.setError(err)
			m.password.Reset()
			return m, nil
		}
		m.password.Reset()
		m.password.Blur()
		m.view = LockView
		m.rebuild()
		return m, nil

	case MsgActionDone:
		data := msg.data.(launchedData)
		if data.err != nil {
			m.setError(data.err)
		} else {
			m.setStatus(data.target)
		}
		if m.view == SetupView && !m.launcher.NeedsSetup(m.ctx) {
			m.view = HomeView
			m.picks = nil
		}
		m.rebuild()
		return m, nil

	case MsgNotifications:
		m.counts = msg.data.(map[string]int)
		m.rebuild()
		return m, m.waitForNotifications()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case HomeView:
		body = m.renderList(m.home, m.keys.enter, m.keys.apps, m.keys.favorite, m.keys.hide, m.keys.settings, m.keys.quit)
	case AppsView:
		body = m.renderList(m.apps, m.keys.enter, m.keys.favorite, m.keys.hide, m.keys.back, m.keys.quit)
	case UnlockView:
		body = m.renderUnlock()
	case LockView:
		body = m.renderList(m.locks, m.keys.toggle, m.keys.back)
	case SetupView:
		body = m.renderSetup()
	}

	return fmt.Sprintf("%s\n%s\n%s", m.renderHeader(), body, m.renderStatus())
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.home.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.apps):
		m.view = AppsView
		return m, nil
	case key.Matches(msg, m.keys.settings):
		return m, m.openSettings()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.enter):
		if pkg, ok := selected(m.home); ok {
			return m, m.open(pkg)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if pkg, ok := selected(m.home); ok {
			return m, m.toggleFavorite(pkg)
		}
		return m, nil
	case key.Matches(msg, m.keys.hide):
		if pkg, ok := selected(m.home); ok {
			return m, m.toggleHidden(pkg)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleAppsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.apps.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = HomeView
		return m, nil
	case key.Matches(msg, m.keys.settings):
		return m, m.openSettings()
	case key.Matches(msg, m.keys.enter):
		if pkg, ok := selected(m.apps); ok {
			return m, m.open(pkg)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if pkg, ok := selected(m.apps); ok {
			return m, m.toggleFavorite(pkg)
		}
		return m, nil
	case key.Matches(msg, m.keys.hide):
		if pkg, ok := selected(m.apps); ok {
			return m, m.toggleHidden(pkg)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleUnlockKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.view = m.prev
		m.pending = ""
		m.password.Reset()
		m.password.Blur()
		return m, nil
	case tea.KeyEnter:
		return m, m.submitPassword()
	}

	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m *Model) handleLockKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.locks.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back):
		m.view = HomeView
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if pkg, ok := selected(m.locks); ok {
			return m, m.toggleLock(pkg)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleSetupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.setup.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		if pkg, ok := selected(m.setup); ok {
			m.togglePick(pkg)
			m.rebuild()
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if err := launcher.ValidateSetupSelection(m.picks); err != nil {
			m.setError(err)
			return m, nil
		}
		return m, m.completeSetup(slices.Clone(m.picks))
	}

	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case HomeView:
		m.home, cmd = m.home.Update(msg)
	case AppsView:
		m.apps, cmd = m.apps.Update(msg)
	case LockView:
		m.locks, cmd = m.locks.Update(msg)
	case SetupView:
		m.setup, cmd = m.setup.Update(msg)
	}
	return m, cmd
}

func (m *Model) togglePick(pkg string) {
	if i := slices.Index(m.picks, pkg); i >= 0 {
		m.picks = slices.Delete(m.picks, i, i+1)
		return
	}
	if len(m.picks) < models.MaxFavorites {
		m.picks = append(m.picks, pkg)
	}
}

// prompt switches to the password prompt for target.
func (m *Model) prompt(target string) tea.Cmd {
	m.prev = m.view
	m.pending = target
	m.view = UnlockView
	m.err = nil
	m.password.Reset()
	return m.password.Focus()
}

func (m *Model) open(pkg string) tea.Cmd {
	if m.launcher.NeedsPassword(m.ctx, pkg) {
		return m.prompt(pkg)
	}
	return m.launch(pkg, "")
}

func (m *Model) openSettings() tea.Cmd {
	if m.launcher.NeedsPassword(m.ctx, models.LockSettingsTarget) {
		return m.prompt(models.LockSettingsTarget)
	}
	m.view = LockView
	m.rebuild()
	return nil
}

func (m *Model) submitPassword() tea.Cmd {
	target, password := m.pending, m.password.Value()
	if target == models.LockSettingsTarget {
		return func() tea.Msg {
			return unlockedMsg(m.launcher.OpenLockSettings(m.ctx, password))
		}
	}
	return m.launch(target, password)
}

func (m *Model) launch(pkg, password string) tea.Cmd {
	return func() tea.Msg {
		return launchedMsg(pkg, m.launcher.Open(m.ctx, pkg, password))
	}
}

func (m *Model) toggleFavorite(pkg string) tea.Cmd {
	return func() tea.Msg {
		if m.launcher.IsFavorite(pkg) {
			err := m.launcher.RemoveFavorite(m.ctx, pkg)
			return actionDoneMsg(fmt.Sprintf("Removed %s from favorites", m.label(pkg)), err)
		}
		err := m.launcher.AddFavorite(m.ctx, pkg)
		return actionDoneMsg(fmt.Sprintf("Added %s to favorites", m.label(pkg)), err)
	}
}

func (m *Model) toggleHidden(pkg string) tea.Cmd {
	return func() tea.Msg {
		if m.launcher.IsHidden(pkg) {
			err := m.launcher.UnhideApp(m.ctx, pkg)
			return actionDoneMsg(fmt.Sprintf("%s is visible", m.label(pkg)), err)
		}
		err := m.launcher.HideApp(m.ctx, pkg)
		return actionDoneMsg(fmt.Sprintf("%s is hidden", m.label(pkg)), err)
	}
}

func (m *Model) toggleLock(pkg string) tea.Cmd {
	return func() tea.Msg {
		locked, err := m.launcher.Engine().ToggleLock(m.ctx, pkg)
		state := "unlocked"
		if locked {
			state = "locked"
		}
		return actionDoneMsg(fmt.Sprintf("%s %s", m.label(pkg), state), err)
	}
}

func (m *Model) completeSetup(picks []string) tea.Cmd {
	return func() tea.Msg {
		err := m.launcher.CompleteSetup(m.ctx, picks)
		return actionDoneMsg(fmt.Sprintf("Saved %d favorites", len(picks)), err)
	}
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		if m.refresher != nil {
			result, err := m.refresher.RunOnce(m.ctx, nil)
			return refreshedMsg(result, err)
		}
		return refreshedMsg(nil, m.launcher.Reload(m.ctx))
	}
}

func (m *Model) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg() })
}

func (m *Model) waitForNotifications() tea.Cmd {
	if m.notify == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case counts := <-m.notify:
			return notificationsMsg(counts)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// rebuild refreshes every list from the launcher's current view.
func (m *Model) rebuild() {
	locked, _ := m.launcher.Engine().LockedView(m.ctx)
	decorate := func(item *appItem) {
		pkg := item.app.PackageName
		item.favorite = m.launcher.IsFavorite(pkg)
		item.hidden = m.launcher.IsHidden(pkg)
		item.locked = slices.Contains(locked, pkg)
		item.badge = m.counts[pkg]
		item.pick = slices.Index(m.picks, pkg) + 1
	}

	m.home.SetItems(toItems(m.launcher.Favorites(), decorate))
	m.apps.SetItems(toItems(m.launcher.Installed(), decorate))
	m.locks.SetItems(toItems(m.launcher.Installed(), decorate))
	m.setup.SetItems(toItems(m.launcher.Visible(), decorate))
}

func (m *Model) label(pkg string) string {
	if pkg == models.LockSettingsTarget {
		return "lock settings"
	}
	if app, ok := m.launcher.Lookup(pkg); ok {
		return app.Label
	}
	return pkg
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m *Model) setError(err error) {
	m.status = ""
	m.err = err
}

func selected(l list.Model) (string, bool) {
	item, ok := l.SelectedItem().(appItem)
	if !ok {
		return "", false
	}
	return item.app.PackageName, true
}

func (m *Model) renderHeader() string {
	title := "zero launcher"
	if m.temp != nil {
		title = fmt.Sprintf("%s • %d°C", title, *m.temp)
	}
	return styles.title.Render(title)
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil:
		return styles.err.Render(describe(m.err))
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return ""
	}
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderUnlock() string {
	title := styles.warn.Render(fmt.Sprintf("🔒 %s is locked", m.label(m.pending)))
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "unlock"))
	helpView := m.help.ShortHelpView([]key.Binding{submit, m.keys.back})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.password.View(), helpView)
}

func (m *Model) renderSetup() string {
	var b strings.Builder
	b.WriteString(styles.help.Render(fmt.Sprintf("%d selected", len(m.picks))))
	b.WriteString("\n")
	confirm := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done"))
	b.WriteString(m.renderList(m.setup, m.keys.toggle, confirm, m.keys.quit))
	return b.String()
}

// describe turns known errors into short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, shared.ErrIncorrectPassword):
		return "Incorrect password"
	case errors.Is(err, shared.ErrTooManyAttempts):
		return "Too many attempts, try again later"
	default:
		return err.Error()
	}
}
