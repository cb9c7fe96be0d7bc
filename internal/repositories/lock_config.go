package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/passwd"
)

// LockConfigRepository persists the app lock singleton row (id = 1).
type LockConfigRepository struct {
	h      *handle
	hasher *passwd.Hasher
	logger *log.Logger
}

// Get returns the lock configuration, or the zero config when the row does not exist yet.
func (r *LockConfigRepository) Get(ctx context.Context) (models.LockConfig, error) {
	enabled, digest, err := r.read(ctx)
	if err != nil {
		return models.LockConfig{}, err
	}
	return models.LockConfig{Enabled: enabled, HasPassword: digest != ""}, nil
}

// SetEnabled stores the enabled flag, leaving the password untouched.
func (r *LockConfigRepository) SetEnabled(ctx context.Context, enabled bool) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO app_lock_config (id, enabled) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET enabled = excluded.enabled
	`
	if _, err := db.ExecContext(ctx, query, enabled); err != nil {
		return storageErr("failed to set app lock enabled", err)
	}
	return nil
}

// SetPassword hashes plaintext under a fresh salt, stores the digest and enables the lock.
func (r *LockConfigRepository) SetPassword(ctx context.Context, plaintext string) error {
	digest, err := r.hasher.HashNew(plaintext)
	if err != nil {
		return err
	}
	return r.storeDigest(ctx, digest, true)
}

// ClearPassword removes the stored digest. The enabled flag is left to the caller.
func (r *LockConfigRepository) ClearPassword(ctx context.Context) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "UPDATE app_lock_config SET password_hash = NULL WHERE id = 1"); err != nil {
		return storageErr("failed to clear app lock password", err)
	}
	return nil
}

// Verify reports whether plaintext matches the stored digest. No digest means false.
//
// A matching digest in an outdated format is rewritten with current parameters; failure to do so is only logged.
func (r *LockConfigRepository) Verify(ctx context.Context, plaintext string) (bool, error) {
	_, digest, err := r.read(ctx)
	if err != nil {
		return false, err
	}
	if digest == "" || !r.hasher.Verify(plaintext, digest) {
		return false, nil
	}

	if r.hasher.NeedsRehash(digest) {
		if upgraded, err := r.hasher.HashNew(plaintext); err == nil {
			if err := r.storeDigest(ctx, upgraded, false); err != nil {
				r.logger.Warn("failed to upgrade password digest", "error", err)
			} else {
				r.logger.Info("upgraded password digest")
			}
		}
	}
	return true, nil
}

func (r *LockConfigRepository) read(ctx context.Context) (bool, string, error) {
	db, err := r.h.conn()
	if err != nil {
		return false, "", err
	}

	var (
		enabled bool
		digest  sql.NullString
	)
	err = db.QueryRowContext(ctx, "SELECT enabled, password_hash FROM app_lock_config WHERE id = 1").Scan(&enabled, &digest)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", nil
	}
	if err != nil {
		return false, "", storageErr("failed to query app lock config", err)
	}
	return enabled, digest.String, nil
}

// storeDigest writes digest, also setting enabled when enable is true.
func (r *LockConfigRepository) storeDigest(ctx context.Context, digest string, enable bool) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO app_lock_config (id, password_hash, enabled) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET password_hash = excluded.password_hash
	`
	if enable {
		query += ", enabled = 1"
	}

	if _, err := db.ExecContext(ctx, query, digest, enable); err != nil {
		return storageErr("failed to store app lock password", err)
	}
	return nil
}
