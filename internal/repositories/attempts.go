package repositories

import (
	"context"
	"time"

	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// AttemptRepository records unlock attempts for auditing and throttling.
type AttemptRepository struct {
	h   *handle
	now func() time.Time
}

// Record stores one attempt against target and returns it.
func (r *AttemptRepository) Record(ctx context.Context, target string, success bool) (*models.UnlockAttempt, error) {
	db, err := r.h.conn()
	if err != nil {
		return nil, err
	}

	attempt := &models.UnlockAttempt{
		ID:      shared.GenerateID(),
		Target:  target,
		Success: success,
		At:      r.now().UTC(),
	}

	query := "INSERT INTO unlock_attempts (id, target, success, attempted_at) VALUES (?, ?, ?, ?)"
	if _, err := db.ExecContext(ctx, query, attempt.ID, attempt.Target, attempt.Success, attempt.At); err != nil {
		return nil, storageErr("failed to record unlock attempt", err)
	}
	return attempt, nil
}

// RecentFailures counts failed attempts at or after since.
func (r *AttemptRepository) RecentFailures(ctx context.Context, since time.Time) (int, error) {
	db, err := r.h.conn()
	if err != nil {
		return 0, err
	}

	var n int
	query := "SELECT COUNT(*) FROM unlock_attempts WHERE success = 0 AND attempted_at >= ?"
	if err := db.QueryRowContext(ctx, query, since.UTC()).Scan(&n); err != nil {
		return 0, storageErr("failed to count unlock failures", err)
	}
	return n, nil
}

// List returns up to limit attempts, newest first.
func (r *AttemptRepository) List(ctx context.Context, limit int) ([]models.UnlockAttempt, error) {
	db, err := r.h.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, target, success, attempted_at FROM unlock_attempts
		ORDER BY attempted_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, storageErr("failed to query unlock attempts", err)
	}
	defer rows.Close()

	attempts := []models.UnlockAttempt{}
	for rows.Next() {
		var a models.UnlockAttempt
		if err := rows.Scan(&a.ID, &a.Target, &a.Success, &a.At); err != nil {
			return nil, storageErr("failed to scan unlock attempt", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("row iteration error", err)
	}
	return attempts, nil
}
