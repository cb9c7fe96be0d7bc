package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
	tu "github.com/desertthunder/zerolauncher/internal/testing"
	"github.com/google/go-cmp/cmp"
)

func setupEngine(t *testing.T, opts EngineOpts) *Engine {
	t.Helper()
	opts.Logger = tu.NewQuietLogger()
	return NewEngine(tu.OpenStore(t), opts)
}

func mustSetPassword(t *testing.T, e *Engine, password string) {
	t.Helper()
	if err := e.SetPassword(context.Background(), password, password); err != nil {
		t.Fatalf("failed to set password: %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tt := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{name: "too short", password: "ab", confirm: "ab", wantErr: shared.ErrInvalidPassword},
		{name: "minimum length", password: "abcd", confirm: "abcd"},
		{name: "maximum length", password: "abcdefghijklmnopqrstu", confirm: "abcdefghijklmnopqrstu"},
		{name: "too long", password: "abcdefghijklmnopqrstuv", confirm: "abcdefghijklmnopqrstuv", wantErr: shared.ErrInvalidPassword},
		{name: "multibyte counted as characters", password: "ääää", confirm: "ääää"},
		{name: "mismatch", password: "abcd", confirm: "abce", wantErr: shared.ErrPasswordMismatch},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password, tc.confirm)
			if tc.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	t.Run("mismatch is an invalid password", func(t *testing.T) {
		if !errors.Is(ValidatePassword("abcd", "dcba"), shared.ErrInvalidPassword) {
			t.Error("expected mismatch to match ErrInvalidPassword")
		}
	})
}

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("initial state", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})

		state, err := e.State(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state != models.DisabledNoPassword {
			t.Errorf("expected %v, got %v", models.DisabledNoPassword, state)
		}
	})

	t.Run("short password rejected without state change", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})

		if err := e.SetPassword(ctx, "ab", "ab"); !errors.Is(err, shared.ErrInvalidPassword) {
			t.Fatalf("expected ErrInvalidPassword, got %v", err)
		}

		cfg, _ := e.Config(ctx)
		if cfg.Enabled || cfg.HasPassword {
			t.Errorf("expected no state change, got %+v", cfg)
		}
	})

	t.Run("SetPassword enables", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		cfg, _ := e.Config(ctx)
		if !cfg.Enabled || !cfg.HasPassword {
			t.Errorf("expected enabled with password, got %+v", cfg)
		}
	})

	t.Run("RequestEnable without password needs setup", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})

		if err := e.RequestEnable(ctx); !errors.Is(err, shared.ErrPasswordRequired) {
			t.Fatalf("expected ErrPasswordRequired, got %v", err)
		}

		cfg, _ := e.Config(ctx)
		if cfg.Enabled {
			t.Error("pending setup must not persist enabled")
		}
	})

	t.Run("RequestEnable with password", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		if err := e.store.Lock.SetEnabled(ctx, false); err != nil {
			t.Fatalf("failed to disable flag: %v", err)
		}
		if state, _ := e.State(ctx); state != models.DisabledHasPassword {
			t.Fatalf("expected %v, got %v", models.DisabledHasPassword, state)
		}

		if err := e.RequestEnable(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state, _ := e.State(ctx); state != models.EnabledHasPassword {
			t.Errorf("expected %v, got %v", models.EnabledHasPassword, state)
		}
	})

	t.Run("Disable resets password and locked apps", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		if _, err := e.ToggleLock(ctx, "com.example.bank"); err != nil {
			t.Fatalf("failed to toggle: %v", err)
		}
		if err := e.Disable(ctx); err != nil {
			t.Fatalf("failed to disable: %v", err)
		}

		cfg, _ := e.Config(ctx)
		if cfg != (models.LockConfig{}) {
			t.Errorf("expected {enabled:false, hasPassword:false}, got %+v", cfg)
		}

		locked, _ := e.LockedView(ctx)
		if len(locked) != 0 {
			t.Errorf("expected no locked apps, got %v", locked)
		}

		if err := e.RequestEnable(ctx); !errors.Is(err, shared.ErrPasswordRequired) {
			t.Errorf("re-enabling should need a fresh password, got %v", err)
		}
	})
}

func TestEngineVerify(t *testing.T) {
	ctx := context.Background()
	e := setupEngine(t, EngineOpts{})

	if ok, err := e.Verify(ctx, "abcd"); ok || err != nil {
		t.Errorf("Verify() with no password = %v, %v; want false, nil", ok, err)
	}

	mustSetPassword(t, e, "correct horse")

	tt := []struct {
		input string
		want  bool
	}{
		{"correct horse", true},
		{"correct hors", false},
		{"Correct horse", false},
		{"", false},
	}

	for _, tc := range tt {
		t.Run(tc.input, func(t *testing.T) {
			got, err := e.Verify(ctx, tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Verify(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestEngineLocking(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing is locked while disabled", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})

		if _, err := e.ToggleLock(ctx, "com.example.bank"); err != nil {
			t.Fatalf("toggle while disabled should be allowed: %v", err)
		}

		for _, pkg := range append([]string{"com.example.bank", "com.example.other"}, models.SystemLockedPackages...) {
			if locked, _ := e.IsLocked(ctx, pkg); locked {
				t.Errorf("expected %s unlocked while disabled", pkg)
			}
		}
	})

	t.Run("system packages locked while enabled", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		for _, pkg := range models.SystemLockedPackages {
			if locked, _ := e.IsLocked(ctx, pkg); !locked {
				t.Errorf("expected %s to be locked", pkg)
			}
		}

		stored, _ := e.store.Locked.List(ctx)
		if len(stored) != 0 {
			t.Errorf("system locks must not be persisted, got %v", stored)
		}
	})

	t.Run("system packages cannot be toggled while enabled", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		locked, err := e.ToggleLock(ctx, "com.android.settings")
		if !errors.Is(err, shared.ErrSystemLocked) {
			t.Fatalf("expected ErrSystemLocked, got %v", err)
		}
		if !locked {
			t.Error("rejected toggle should report the package as still locked")
		}
	})

	t.Run("toggle flips user lock", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		if locked, err := e.ToggleLock(ctx, "com.example.bank"); err != nil || !locked {
			t.Fatalf("first toggle = %v, %v; want true, nil", locked, err)
		}
		if locked, _ := e.IsLocked(ctx, "com.example.bank"); !locked {
			t.Error("expected package to be locked")
		}

		if locked, err := e.ToggleLock(ctx, "com.example.bank"); err != nil || locked {
			t.Fatalf("second toggle = %v, %v; want false, nil", locked, err)
		}
		if locked, _ := e.IsLocked(ctx, "com.example.bank"); locked {
			t.Error("expected package to be unlocked")
		}
	})

	t.Run("LockedView unions system set when enabled", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")
		_, _ = e.ToggleLock(ctx, "com.example.bank")

		got, err := e.LockedView(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"com.android.settings", "com.android.vending", "com.example.bank"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LockedView() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEngineAuthorize(t *testing.T) {
	ctx := context.Background()

	t.Run("no gate without password", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})

		for _, target := range []string{"com.android.vending", models.LockSettingsTarget} {
			if err := e.Authorize(ctx, target, ""); err != nil {
				t.Errorf("Authorize(%s) = %v, want nil", target, err)
			}
		}
	})

	t.Run("gates locked apps and settings", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		tt := []struct {
			name     string
			target   string
			password string
			wantErr  error
		}{
			{name: "unlocked app", target: "com.example.notes"},
			{name: "system app without password", target: "com.android.vending", wantErr: shared.ErrIncorrectPassword},
			{name: "system app wrong password", target: "com.android.vending", password: "nope", wantErr: shared.ErrIncorrectPassword},
			{name: "system app right password", target: "com.android.vending", password: "abcd"},
			{name: "settings wrong password", target: models.LockSettingsTarget, password: "abce", wantErr: shared.ErrIncorrectPassword},
			{name: "settings right password", target: models.LockSettingsTarget, password: "abcd"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				err := e.Authorize(ctx, tc.target, tc.password)
				if tc.wantErr == nil && err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, err)
				}
			})
		}

		attempts, err := e.Attempts(ctx, 10)
		if err != nil {
			t.Fatalf("failed to list attempts: %v", err)
		}
		if len(attempts) != 4 {
			t.Errorf("expected 4 recorded attempts, got %d", len(attempts))
		}
	})

	t.Run("unlimited retries by default", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{})
		mustSetPassword(t, e, "abcd")

		for range 20 {
			if err := e.Authorize(ctx, models.LockSettingsTarget, "wrong"); !errors.Is(err, shared.ErrIncorrectPassword) {
				t.Fatalf("expected ErrIncorrectPassword, got %v", err)
			}
		}
		if err := e.Authorize(ctx, models.LockSettingsTarget, "abcd"); err != nil {
			t.Errorf("expected success after failures, got %v", err)
		}
	})

	t.Run("throttles after max attempts", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{MaxAttempts: 3, Window: time.Hour})
		mustSetPassword(t, e, "abcd")

		for i := range 3 {
			if err := e.Authorize(ctx, models.LockSettingsTarget, "wrong"); !errors.Is(err, shared.ErrIncorrectPassword) {
				t.Fatalf("attempt %d: expected ErrIncorrectPassword, got %v", i, err)
			}
		}

		if err := e.Authorize(ctx, models.LockSettingsTarget, "abcd"); !errors.Is(err, shared.ErrTooManyAttempts) {
			t.Errorf("expected ErrTooManyAttempts, got %v", err)
		}
	})

	t.Run("failure budget is shared through the store", func(t *testing.T) {
		store := tu.OpenStore(t)
		opts := EngineOpts{MaxAttempts: 2, Window: time.Hour, Logger: tu.NewQuietLogger()}
		mustSetPassword(t, NewEngine(store, opts), "abcd")

		for i := range 2 {
			e := NewEngine(store, opts)
			if err := e.Authorize(ctx, models.LockSettingsTarget, "wrong"); !errors.Is(err, shared.ErrIncorrectPassword) {
				t.Fatalf("engine %d: expected ErrIncorrectPassword, got %v", i, err)
			}
		}

		fresh := NewEngine(store, opts)
		if err := fresh.Authorize(ctx, models.LockSettingsTarget, "abcd"); !errors.Is(err, shared.ErrTooManyAttempts) {
			t.Errorf("expected ErrTooManyAttempts from a new engine, got %v", err)
		}
	})

	t.Run("failures outside the window are forgiven", func(t *testing.T) {
		store := tu.OpenStore(t)
		opts := EngineOpts{MaxAttempts: 1, Window: time.Minute, Logger: tu.NewQuietLogger()}
		first := NewEngine(store, opts)
		mustSetPassword(t, first, "abcd")

		if err := first.Authorize(ctx, models.LockSettingsTarget, "wrong"); !errors.Is(err, shared.ErrIncorrectPassword) {
			t.Fatalf("expected ErrIncorrectPassword, got %v", err)
		}

		later := NewEngine(store, opts)
		later.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		if err := later.Authorize(ctx, models.LockSettingsTarget, "abcd"); err != nil {
			t.Errorf("expected success once the window passed, got %v", err)
		}
	})

	t.Run("successful unlocks do not spend budget", func(t *testing.T) {
		e := setupEngine(t, EngineOpts{MaxAttempts: 1, Window: time.Hour})
		mustSetPassword(t, e, "abcd")

		for range 5 {
			if err := e.Authorize(ctx, models.LockSettingsTarget, "abcd"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	})
}
