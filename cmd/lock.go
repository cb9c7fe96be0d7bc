package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/urfave/cli/v3"
)

// authorizeSettings checks the --password flag against the lock settings gate.
func (r *Runner) authorizeSettings(ctx context.Context, cmd *cli.Command) error {
	if err := r.launcher.OpenLockSettings(ctx, cmd.String("password")); err != nil {
		if errors.Is(err, shared.ErrIncorrectPassword) && cmd.String("password") == "" {
			return fmt.Errorf("%w: lock settings require --password", shared.ErrMissingArgument)
		}
		return err
	}
	return nil
}

// LockStatus prints the lock state and the number of locked apps.
func (r *Runner) LockStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	cfg, err := r.engine.Config(ctx)
	if err != nil {
		return err
	}
	locked, err := r.engine.LockedView(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			models.LockConfig
			State  string   `json:"state"`
			Locked []string `json:"locked"`
		}{cfg, cfg.State().String(), locked}, true)
	}

	r.writePlainHeader("App Lock")
	r.writePlain("State:   %s\n", cfg.State())
	r.writePlain("Locked:  %d apps\n", len(locked))
	return nil
}

// LockEnable turns the lock on. Without a stored password --password and --confirm set one.
func (r *Runner) LockEnable(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	err := r.engine.RequestEnable(ctx)
	switch {
	case err == nil:
		return r.writePlain("✓ App lock enabled\n")
	case !errors.Is(err, shared.ErrPasswordRequired):
		return err
	}

	password := cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password", shared.ErrPasswordRequired)
	}
	if err := r.engine.SetPassword(ctx, password, cmd.String("confirm")); err != nil {
		return err
	}
	return r.writePlain("✓ Password set and app lock enabled\n")
}

// LockDisable turns the lock off, clearing the password and every locked app.
func (r *Runner) LockDisable(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if err := r.authorizeSettings(ctx, cmd); err != nil {
		return err
	}

	if err := r.engine.Disable(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ App lock disabled\n")
}

// LockPassword replaces the password after checking the current one.
func (r *Runner) LockPassword(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}
	if err := r.authorizeSettings(ctx, cmd); err != nil {
		return err
	}

	if err := r.engine.SetPassword(ctx, cmd.String("new"), cmd.String("confirm")); err != nil {
		return err
	}
	return r.writePlain("✓ Password changed\n")
}

// LockToggle locks or unlocks an app.
func (r *Runner) LockToggle(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}
	if err := r.authorizeSettings(ctx, cmd); err != nil {
		return err
	}

	locked, err := r.engine.ToggleLock(ctx, pkg)
	if err != nil {
		return err
	}
	if locked {
		return r.writePlain("✓ %s locked\n", r.label(pkg))
	}
	return r.writePlain("✓ %s unlocked\n", r.label(pkg))
}

// LockVerify checks a password without opening anything.
func (r *Runner) LockVerify(ctx context.Context, cmd *cli.Command) error {
	password := cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password", shared.ErrMissingArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	ok, err := r.engine.Verify(ctx, password)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrIncorrectPassword
	}
	return r.writePlain("✓ Password accepted\n")
}

// LockList prints locked apps, including the system-locked set while enabled.
func (r *Runner) LockList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	locked, err := r.engine.LockedView(ctx)
	if err != nil {
		return err
	}
	if len(locked) == 0 {
		return r.writePlain("No locked apps\n")
	}

	r.writePlainHeader(fmt.Sprintf("Locked Apps (%d)", len(locked)))
	for _, pkg := range locked {
		marker := ""
		if models.IsSystemLocked(pkg) {
			marker = " [system]"
		}
		r.writePlain("%s (%s)%s\n", r.label(pkg), pkg, marker)
	}
	return nil
}

// LockAttempts prints recent unlock attempts, newest first.
func (r *Runner) LockAttempts(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	attempts, err := r.engine.Attempts(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return r.writePlain("No unlock attempts\n")
	}

	r.writePlainHeader("Unlock Attempts")
	for _, a := range attempts {
		result := "✗"
		if a.Success {
			result = "✓"
		}
		r.writePlain("%s %s %s\n", a.At.Local().Format(time.DateTime), result, r.label(a.Target))
	}
	return nil
}
