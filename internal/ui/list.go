package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/zerolauncher/internal/models"
)

var _ list.Item = appItem{}

// appItem wraps [models.InstalledApp] to implement [list.Item].
type appItem struct {
	app      models.InstalledApp
	favorite bool
	hidden   bool
	locked   bool
	badge    int
	pick     int // 1-based setup selection order, 0 when unselected
}

func (i appItem) FilterValue() string { return i.app.Label }

func (i appItem) Title() string {
	title := i.app.Label
	if i.pick > 0 {
		title = fmt.Sprintf("[%d] %s", i.pick, title)
	}
	if i.badge > 0 {
		title = fmt.Sprintf("%s %s", title, styles.badge.Render(fmt.Sprintf("(%d)", i.badge)))
	}
	return title
}

func (i appItem) Description() string {
	parts := []string{i.app.PackageName}
	if i.favorite {
		parts = append(parts, "★ favorite")
	}
	if i.hidden {
		parts = append(parts, "hidden")
	}
	if i.locked {
		parts = append(parts, "🔒 locked")
	}
	return strings.Join(parts, " • ")
}

func toItems(apps []models.InstalledApp, decorate func(*appItem)) []list.Item {
	items := make([]list.Item, len(apps))
	for i, app := range apps {
		item := appItem{app: app}
		if decorate != nil {
			decorate(&item)
		}
		items[i] = item
	}
	return items
}
