package device

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// FlagFileName is the marker written under the state directory once setup completes.
const FlagFileName = "first_launch_complete"

// FileFlag is a [FirstLaunchFlag] stored as a marker file.
type FileFlag struct {
	path   string
	logger *log.Logger
}

// NewFileFlag creates a flag stored in stateDir.
func NewFileFlag(stateDir string, logger *log.Logger) *FileFlag {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &FileFlag{
		path:   filepath.Join(stateDir, FlagFileName),
		logger: shared.WithLogger(logger, "component", "first-launch"),
	}
}

// IsFirstLaunch reports true unless the marker is known to exist.
func (f *FileFlag) IsFirstLaunch(ctx context.Context) bool {
	_, err := os.Stat(f.path)
	if err == nil {
		return false
	}
	if !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("failed to read first launch flag", "error", err)
	}
	return true
}

// MarkLaunchComplete writes the marker, logging any failure.
func (f *FileFlag) MarkLaunchComplete(ctx context.Context) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.logger.Warn("failed to create state directory", "error", err)
		return
	}
	if err := os.WriteFile(f.path, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		f.logger.Warn("failed to write first launch flag", "error", err)
	}
}
