// package formatter renders app listings in various formats (CSV, JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/zerolauncher/internal/models"
)

// AppRow is one app in a listing with its launcher state.
type AppRow struct {
	PackageName   string `json:"package_name"`
	Label         string `json:"label"`
	System        bool   `json:"system"`
	Favorite      bool   `json:"favorite"`
	Hidden        bool   `json:"hidden"`
	Locked        bool   `json:"locked"`
	Notifications int    `json:"notifications,omitempty"`
}

// RowState looks up per-package state while building rows.
type RowState struct {
	Favorites     []string
	Hidden        []string
	Locked        []string
	Notifications map[string]int
}

// BuildRows pairs apps with their state, preserving order.
func BuildRows(apps []models.InstalledApp, state RowState) []AppRow {
	in := func(list []string) map[string]bool {
		set := make(map[string]bool, len(list))
		for _, pkg := range list {
			set[pkg] = true
		}
		return set
	}
	favorites, hidden, locked := in(state.Favorites), in(state.Hidden), in(state.Locked)

	rows := make([]AppRow, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, AppRow{
			PackageName:   app.PackageName,
			Label:         app.Label,
			System:        app.IsSystemApp,
			Favorite:      favorites[app.PackageName],
			Hidden:        hidden[app.PackageName],
			Locked:        locked[app.PackageName],
			Notifications: state.Notifications[app.PackageName],
		})
	}
	return rows
}

// flags is the compact marker column used by the text renderers.
func (r AppRow) flags() string {
	var b strings.Builder
	if r.Favorite {
		b.WriteString("★")
	}
	if r.Hidden {
		b.WriteString("H")
	}
	if r.Locked {
		b.WriteString("L")
	}
	return b.String()
}

// ExportToCSV converts rows to CSV with columns: Package, Label, System, Favorite, Hidden, Locked, Notifications
func ExportToCSV(rows []AppRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Package", "Label", "System", "Favorite", "Hidden", "Locked", "Notifications"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.PackageName,
			row.Label,
			strconv.FormatBool(row.System),
			strconv.FormatBool(row.Favorite),
			strconv.FormatBool(row.Hidden),
			strconv.FormatBool(row.Locked),
			strconv.Itoa(row.Notifications),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts rows to an indented JSON array.
func ExportToJSON(rows []AppRow) ([]byte, error) {
	if rows == nil {
		rows = []AppRow{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToMarkdown converts rows to a Markdown table under title.
func ExportToMarkdown(title string, rows []AppRow) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Apps**: %d\n\n", len(rows))

	buf.WriteString("| # | Label | Package | Flags |\n")
	buf.WriteString("|---|-------|---------|-------|\n")
	for i, row := range rows {
		label := strings.ReplaceAll(row.Label, "|", `\|`)
		fmt.Fprintf(&buf, "| %d | %s | `%s` | %s |\n", i+1, label, row.PackageName, row.flags())
	}

	return buf.Bytes(), nil
}

// ExportToText converts rows to numbered plain text lines.
func ExportToText(rows []AppRow) ([]byte, error) {
	var buf bytes.Buffer

	for i, row := range rows {
		fmt.Fprintf(&buf, "%d. %s (%s)", i+1, row.Label, row.PackageName)
		if flags := row.flags(); flags != "" {
			fmt.Fprintf(&buf, " [%s]", flags)
		}
		if row.Notifications > 0 {
			fmt.Fprintf(&buf, " (%d)", row.Notifications)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Render picks an exporter by format name: text, json, csv or markdown.
func Render(format, title string, rows []AppRow) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text", "txt":
		return ExportToText(rows)
	case "json":
		return ExportToJSON(rows)
	case "csv":
		return ExportToCSV(rows)
	case "markdown", "md":
		return ExportToMarkdown(title, rows)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// WriteExport renders rows in the format implied by path's extension and writes the file.
func WriteExport(path, title string, rows []AppRow) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := Render(format, title, rows)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
