// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"maps"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/passwd"
	"github.com/desertthunder/zerolauncher/internal/repositories"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// FastParams are argon2 parameters cheap enough for unit tests.
var FastParams = passwd.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16}

// NewQuietLogger returns a logger that discards its output.
func NewQuietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

// OpenStore opens a migrated in-memory store that is closed when the test ends.
func OpenStore(t *testing.T) *repositories.Store {
	t.Helper()

	s, err := repositories.Open(context.Background(), repositories.StoreOpts{
		Path:   ":memory:",
		Hasher: passwd.NewHasher(FastParams),
		Logger: NewQuietLogger(),
	})
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// MockRegistry is a test double for [device.Registry].
//
// Launch-style calls succeed for installed packages and are recorded in Launched.
type MockRegistry struct {
	mu        sync.Mutex
	Apps      []models.InstalledApp
	Shortcuts map[string][]models.AppShortcut
	Launched  []string
	Removed   []string
	IsDefault bool
	Err       error
}

// NewMockRegistry creates a registry with apps installed.
func NewMockRegistry(apps ...models.InstalledApp) *MockRegistry {
	return &MockRegistry{Apps: apps, Shortcuts: map[string][]models.AppShortcut{}}
}

// SetApps replaces the installed list.
func (m *MockRegistry) SetApps(apps ...models.InstalledApp) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Apps = apps
}

func (m *MockRegistry) ListInstalledApps(ctx context.Context) ([]models.InstalledApp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.Apps), nil
}

func (m *MockRegistry) Launch(ctx context.Context, packageName string) (bool, error) {
	return m.record(&m.Launched, packageName)
}

func (m *MockRegistry) OpenInfo(ctx context.Context, packageName string) (bool, error) {
	return m.record(nil, packageName)
}

// Uninstall drops packageName from Apps.
func (m *MockRegistry) Uninstall(ctx context.Context, packageName string) (bool, error) {
	ok, err := m.record(&m.Removed, packageName)
	if ok {
		m.mu.Lock()
		m.Apps = slices.DeleteFunc(m.Apps, func(a models.InstalledApp) bool { return a.PackageName == packageName })
		m.mu.Unlock()
	}
	return ok, err
}

func (m *MockRegistry) ListShortcuts(ctx context.Context, packageName string) ([]models.AppShortcut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.Shortcuts[packageName]), nil
}

func (m *MockRegistry) LaunchShortcut(ctx context.Context, packageName, shortcutID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for _, sc := range m.Shortcuts[packageName] {
		if sc.ID == shortcutID {
			m.Launched = append(m.Launched, packageName+"/"+shortcutID)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRegistry) IsDefaultHomeApp(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IsDefault, m.Err
}

func (m *MockRegistry) OpenDefaultHomeAppSettings(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err == nil, m.Err
}

func (m *MockRegistry) record(into *[]string, packageName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if !slices.ContainsFunc(m.Apps, func(a models.InstalledApp) bool { return a.PackageName == packageName }) {
		return false, nil
	}
	if into != nil {
		*into = append(*into, packageName)
	}
	return true, nil
}

// MockFlag is an in-memory [device.FirstLaunchFlag].
type MockFlag struct {
	mu       sync.Mutex
	complete bool
	Marks    int
}

// NewMockFlag returns a flag that already reports setup as complete when complete is set.
func NewMockFlag(complete bool) *MockFlag {
	return &MockFlag{complete: complete}
}

func (f *MockFlag) IsFirstLaunch(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.complete
}

func (f *MockFlag) MarkLaunchComplete(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complete = true
	f.Marks++
}

// MockCounter is a [device.NotificationCounter] whose counts are set by the test.
type MockCounter struct {
	mu     sync.Mutex
	counts map[string]int
	subs   map[int]func(map[string]int)
	next   int
}

// NewMockCounter creates a counter reporting counts.
func NewMockCounter(counts map[string]int) *MockCounter {
	return &MockCounter{counts: maps.Clone(counts), subs: map[int]func(map[string]int){}}
}

func (c *MockCounter) Counts(ctx context.Context) (map[string]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts), nil
}

func (c *MockCounter) Subscribe(ctx context.Context, fn func(map[string]int)) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}, nil
}

// Push replaces the counts and notifies every subscriber.
func (c *MockCounter) Push(counts map[string]int) {
	c.mu.Lock()
	c.counts = maps.Clone(counts)
	subs := slices.Collect(maps.Values(c.subs))
	c.mu.Unlock()

	for _, fn := range subs {
		fn(maps.Clone(counts))
	}
}

// App builds an installed app for tests.
func App(packageName, label string) models.InstalledApp {
	return models.InstalledApp{PackageName: packageName, Label: label}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
