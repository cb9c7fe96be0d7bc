package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// Manifest is the on-disk description of installed apps read by [ManifestRegistry].
//
//	default_home = true
//
//	[[apps]]
//	package_name = "com.example.mail"
//	label = "Mail"
//
//	  [[apps.shortcuts]]
//	  id = "compose"
//	  label = "Compose"
type Manifest struct {
	DefaultHome bool          `toml:"default_home"`
	Apps        []ManifestApp `toml:"apps"`
}

// ManifestApp is one installed app entry.
type ManifestApp struct {
	PackageName string               `toml:"package_name"`
	Label       string               `toml:"label"`
	System      bool                 `toml:"system,omitempty"`
	Shortcuts   []models.AppShortcut `toml:"shortcuts,omitempty"`
}

func (a ManifestApp) installed() models.InstalledApp {
	return models.InstalledApp{PackageName: a.PackageName, Label: a.Label, IsSystemApp: a.System}
}

// ManifestRegistry is a [Registry] backed by a TOML manifest file.
//
// The manifest is re-read on every listing so edits show up on the next refresh. Launch-style
// calls succeed for listed packages and append a line to the activity writer.
type ManifestRegistry struct {
	mu       sync.Mutex
	path     string
	activity io.Writer
	logger   *log.Logger
	now      func() time.Time
}

// NewManifestRegistry creates a registry for the manifest at path. activity may be nil.
func NewManifestRegistry(path string, activity io.Writer, logger *log.Logger) *ManifestRegistry {
	if activity == nil {
		activity = io.Discard
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ManifestRegistry{
		path:     path,
		activity: activity,
		logger:   shared.WithLogger(logger, "component", "registry"),
		now:      time.Now,
	}
}

// Load reads the manifest. A missing file is an empty manifest.
func (r *ManifestRegistry) Load() (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(r.path, &m); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &m, nil
		}
		return nil, fmt.Errorf("failed to read app manifest: %w", err)
	}
	return &m, nil
}

// Save writes m to the manifest path.
func (r *ManifestRegistry) Save(m *Manifest) error {
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to write app manifest: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("failed to encode app manifest: %w", err)
	}
	return nil
}

func (r *ManifestRegistry) ListInstalledApps(ctx context.Context) ([]models.InstalledApp, error) {
	m, err := r.Load()
	if err != nil {
		return nil, err
	}

	apps := make([]models.InstalledApp, 0, len(m.Apps))
	for _, a := range m.Apps {
		if a.PackageName == "" {
			continue
		}
		apps = append(apps, a.installed())
	}
	return apps, nil
}

func (r *ManifestRegistry) Launch(ctx context.Context, packageName string) (bool, error) {
	return r.act("launch", packageName)
}

func (r *ManifestRegistry) OpenInfo(ctx context.Context, packageName string) (bool, error) {
	return r.act("info", packageName)
}

// Uninstall removes packageName from the manifest.
func (r *ManifestRegistry) Uninstall(ctx context.Context, packageName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.Load()
	if err != nil {
		return false, err
	}

	kept := m.Apps[:0]
	for _, a := range m.Apps {
		if a.PackageName != packageName {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(m.Apps) {
		return false, nil
	}
	m.Apps = kept

	if err := r.Save(m); err != nil {
		return false, err
	}
	r.logActivity("uninstall", packageName)
	return true, nil
}

func (r *ManifestRegistry) ListShortcuts(ctx context.Context, packageName string) ([]models.AppShortcut, error) {
	app, err := r.find(packageName)
	if err != nil || app == nil {
		return []models.AppShortcut{}, err
	}

	shortcuts := make([]models.AppShortcut, 0, len(app.Shortcuts))
	for _, sc := range app.Shortcuts {
		sc.PackageName = packageName
		shortcuts = append(shortcuts, sc)
	}
	return shortcuts, nil
}

func (r *ManifestRegistry) LaunchShortcut(ctx context.Context, packageName, shortcutID string) (bool, error) {
	app, err := r.find(packageName)
	if err != nil || app == nil {
		return false, err
	}

	for _, sc := range app.Shortcuts {
		if sc.ID == shortcutID {
			r.logActivity("shortcut", packageName+"/"+shortcutID)
			return true, nil
		}
	}
	return false, nil
}

func (r *ManifestRegistry) IsDefaultHomeApp(ctx context.Context) (bool, error) {
	m, err := r.Load()
	if err != nil {
		return false, err
	}
	return m.DefaultHome, nil
}

func (r *ManifestRegistry) OpenDefaultHomeAppSettings(ctx context.Context) (bool, error) {
	r.logActivity("home-settings", "")
	return true, nil
}

func (r *ManifestRegistry) act(action, packageName string) (bool, error) {
	app, err := r.find(packageName)
	if err != nil || app == nil {
		return false, err
	}
	r.logActivity(action, packageName)
	return true, nil
}

func (r *ManifestRegistry) find(packageName string) (*ManifestApp, error) {
	m, err := r.Load()
	if err != nil {
		return nil, err
	}
	for i := range m.Apps {
		if m.Apps[i].PackageName == packageName {
			return &m.Apps[i], nil
		}
	}
	return nil, nil
}

func (r *ManifestRegistry) logActivity(action, target string) {
	if _, err := fmt.Fprintf(r.activity, "%s\t%s\t%s\n", r.now().Format(time.RFC3339), action, target); err != nil {
		r.logger.Warn("failed to write activity", "action", action, "error", err)
	}
}
