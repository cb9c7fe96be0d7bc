package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/fsnotify/fsnotify"
)

const notificationDebounce = 100 * time.Millisecond

// FileNotificationCounter reads counts from a TOML file of package = count pairs:
//
//	"com.example.mail" = 3
//	"com.example.chat" = 12
type FileNotificationCounter struct {
	path   string
	logger *log.Logger
}

// NewFileNotificationCounter creates a counter for the file at path.
func NewFileNotificationCounter(path string, logger *log.Logger) *FileNotificationCounter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FileNotificationCounter{path: path, logger: shared.WithLogger(logger, "component", "notifications")}
}

// Counts reads the file. A missing file means no notifications.
func (c *FileNotificationCounter) Counts(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	if _, err := toml.DecodeFile(c.path, &counts); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("failed to read notification counts: %w", err)
	}

	for pkg, n := range counts {
		if n <= 0 {
			delete(counts, pkg)
		}
	}
	return counts, nil
}

// Subscribe watches the file's directory and calls fn with fresh counts after each change.
//
// Bursts of events are coalesced. Read failures are logged and skipped. The watcher is released
// when ctx ends or cancel is called, whichever comes first.
func (c *FileNotificationCounter) Subscribe(ctx context.Context, fn func(map[string]int)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go c.watch(ctx, watcher, fn, stop, done)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}
	return cancel, nil
}

func (c *FileNotificationCounter) watch(ctx context.Context, w *fsnotify.Watcher, fn func(map[string]int), stop, done chan struct{}) {
	defer close(done)
	defer w.Close()

	target := filepath.Clean(c.path)
	timer := time.NewTimer(notificationDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(notificationDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.logger.Warn("notification watcher error", "error", err)
		case <-timer.C:
			counts, err := c.Counts(ctx)
			if err != nil {
				c.logger.Warn("failed to reload notification counts", "error", err)
				continue
			}
			fn(counts)
		}
	}
}
