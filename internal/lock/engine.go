package lock

import (
	"context"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/repositories"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"golang.org/x/time/rate"
)

const (
	MinPasswordLength = 4
	MaxPasswordLength = 21
)

// EngineOpts configures [NewEngine].
//
// MaxAttempts failed unlocks are allowed per Window; zero allows unlimited retries.
type EngineOpts struct {
	MaxAttempts int
	Window      time.Duration
	Logger      *log.Logger
}

// Engine applies the app lock rules on top of a [repositories.Store].
//
// The failure budget is read from the stored attempts, so it holds across engines and processes
// sharing a database. The limiter only paces retries within this engine.
type Engine struct {
	store       *repositories.Store
	limiter     *rate.Limiter
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	logger      *log.Logger
}

// NewEngine creates an Engine backed by store.
func NewEngine(store *repositories.Store, opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	e := &Engine{store: store, now: time.Now, logger: shared.WithLogger(opts.Logger, "component", "lock")}
	if opts.MaxAttempts > 0 {
		window := opts.Window
		if window <= 0 {
			window = time.Minute
		}
		e.maxAttempts = opts.MaxAttempts
		e.window = window
		e.limiter = rate.NewLimiter(rate.Every(window/time.Duration(opts.MaxAttempts)), opts.MaxAttempts)
	}
	return e
}

// ValidatePassword checks length bounds (in characters) and the confirmation.
func ValidatePassword(password, confirm string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return shared.ErrInvalidPassword
	}
	if password != confirm {
		return shared.ErrPasswordMismatch
	}
	return nil
}

// IsSystemLocked reports whether packageName is always locked while the feature is enabled.
func IsSystemLocked(packageName string) bool {
	return models.IsSystemLocked(packageName)
}

// Config returns the persisted lock configuration.
func (e *Engine) Config(ctx context.Context) (models.LockConfig, error) {
	return e.store.Lock.Get(ctx)
}

// State returns the current [models.LockState].
func (e *Engine) State(ctx context.Context) (models.LockState, error) {
	cfg, err := e.store.Lock.Get(ctx)
	if err != nil {
		return models.DisabledNoPassword, err
	}
	return cfg.State(), nil
}

// RequestEnable turns the lock on when a password exists.
//
// Without one it returns [shared.ErrPasswordRequired] and persists nothing; the caller then
// collects a password and calls [Engine.SetPassword], which enables the lock.
func (e *Engine) RequestEnable(ctx context.Context) error {
	cfg, err := e.store.Lock.Get(ctx)
	if err != nil {
		return err
	}
	if !cfg.HasPassword {
		return shared.ErrPasswordRequired
	}
	if cfg.Enabled {
		return nil
	}

	if err := e.store.Lock.SetEnabled(ctx, true); err != nil {
		return err
	}
	e.logger.Info("app lock enabled")
	return nil
}

// SetPassword validates and stores a new password and enables the lock.
func (e *Engine) SetPassword(ctx context.Context, password, confirm string) error {
	if err := ValidatePassword(password, confirm); err != nil {
		return err
	}
	if err := e.store.Lock.SetPassword(ctx, password); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}

	e.logger.Info("app lock password set")
	return nil
}

// Disable turns the lock off, clearing the password and all user-locked apps.
func (e *Engine) Disable(ctx context.Context) error {
	if err := e.store.ResetLock(ctx); err != nil {
		return err
	}

	e.logger.Info("app lock disabled")
	return nil
}

// IsLocked reports whether launching packageName needs the password.
func (e *Engine) IsLocked(ctx context.Context, packageName string) (bool, error) {
	cfg, err := e.store.Lock.Get(ctx)
	if err != nil {
		return false, err
	}
	if !cfg.Enabled {
		return false, nil
	}
	if IsSystemLocked(packageName) {
		return true, nil
	}
	return e.store.Locked.Contains(ctx, packageName)
}

// Verify reports whether password matches the stored digest.
func (e *Engine) Verify(ctx context.Context, password string) (bool, error) {
	return e.store.Lock.Verify(ctx, password)
}

// ToggleLock flips the locked state of packageName and returns the new state.
//
// System-locked packages are rejected with [shared.ErrSystemLocked] while the lock is enabled.
func (e *Engine) ToggleLock(ctx context.Context, packageName string) (bool, error) {
	cfg, err := e.store.Lock.Get(ctx)
	if err != nil {
		return false, err
	}
	if cfg.Enabled && IsSystemLocked(packageName) {
		return true, shared.ErrSystemLocked
	}

	locked, err := e.store.Locked.Contains(ctx, packageName)
	if err != nil {
		return false, err
	}

	if locked {
		err = e.store.Locked.Remove(ctx, packageName)
	} else {
		err = e.store.Locked.Add(ctx, packageName)
	}
	if err != nil {
		return locked, err
	}

	e.logger.Debug("toggled app lock", "package", packageName, "locked", !locked)
	return !locked, nil
}

// LockedView returns the persisted locked apps plus, while enabled, the system-locked set. Sorted.
func (e *Engine) LockedView(ctx context.Context) ([]string, error) {
	cfg, err := e.store.Lock.Get(ctx)
	if err != nil {
		return nil, err
	}

	locked, err := e.store.Locked.List(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Enabled {
		for _, pkg := range models.SystemLockedPackages {
			if !slices.Contains(locked, pkg) {
				locked = append(locked, pkg)
			}
		}
		slices.Sort(locked)
	}
	return locked, nil
}

// NeedsPassword reports whether opening target must be authorized.
//
// target is a package name or [models.LockSettingsTarget]. Nothing is gated unless the lock is
// enabled with a password set.
func (e *Engine) NeedsPassword(ctx context.Context, target string) (bool, error) {
	cfg, err := e.store.Lock.Get(ctx)
	if err != nil {
		return false, err
	}
	if cfg.State() != models.EnabledHasPassword {
		return false, nil
	}
	if target == models.LockSettingsTarget {
		return true, nil
	}
	return e.IsLocked(ctx, target)
}

// Authorize returns nil when target may be opened with password.
//
// A wrong or empty password yields [shared.ErrIncorrectPassword]. When throttling is configured
// and the failure budget is spent, [shared.ErrTooManyAttempts] is returned without checking.
func (e *Engine) Authorize(ctx context.Context, target, password string) error {
	needed, err := e.NeedsPassword(ctx, target)
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}
	if password == "" {
		return fmt.Errorf("%w: %s is locked", shared.ErrIncorrectPassword, target)
	}
	if e.throttled(ctx) {
		e.logger.Warn("unlock throttled", "target", target)
		return shared.ErrTooManyAttempts
	}

	ok, err := e.store.Lock.Verify(ctx, password)
	if err != nil {
		return err
	}
	e.recordAttempt(ctx, target, ok)

	if !ok {
		if e.limiter != nil {
			e.limiter.Allow()
		}
		return shared.ErrIncorrectPassword
	}
	return nil
}

// throttled reports whether the failure budget for the current window is spent.
//
// A failed count query falls back to the in-process limiter.
func (e *Engine) throttled(ctx context.Context) bool {
	if e.maxAttempts <= 0 {
		return false
	}

	failures, err := e.store.Attempts.RecentFailures(ctx, e.now().Add(-e.window))
	if err != nil {
		e.logger.Warn("failed to count unlock failures", "error", err)
		return e.limiter.Tokens() < 1
	}
	return failures >= e.maxAttempts || e.limiter.Tokens() < 1
}

// Attempts returns the most recent unlock attempts, newest first.
func (e *Engine) Attempts(ctx context.Context, limit int) ([]models.UnlockAttempt, error) {
	return e.store.Attempts.List(ctx, limit)
}

func (e *Engine) recordAttempt(ctx context.Context, target string, success bool) {
	if _, err := e.store.Attempts.Record(ctx, target, success); err != nil {
		e.logger.Warn("failed to record unlock attempt", "target", target, "error", err)
	}
}
