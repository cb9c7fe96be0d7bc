package repositories

import (
	"context"
	"time"

	"github.com/desertthunder/zerolauncher/internal/models"
)

func defaultClock() time.Time { return time.Now() }

// UsageRepository persists launch counts in app_usage.
type UsageRepository struct {
	h   *handle
	now func() time.Time
}

// RecordLaunch creates the package's row with count 1 or increments it, stamping the launch time.
func (r *UsageRepository) RecordLaunch(ctx context.Context, packageName string) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	now := r.now().UnixMilli()
	query := `
		INSERT INTO app_usage (package_name, usage_count, last_used) VALUES (?, 1, ?)
		ON CONFLICT(package_name) DO UPDATE SET usage_count = usage_count + 1, last_used = excluded.last_used
	`

	if _, err := db.ExecContext(ctx, query, packageName, now); err != nil {
		return storageErr("failed to record launch", err)
	}
	return nil
}

// TopUsed returns up to limit package names ordered by count, then most recent launch.
func (r *UsageRepository) TopUsed(ctx context.Context, limit int) ([]string, error) {
	db, err := r.h.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []string{}, nil
	}

	names, err := queryNames(ctx, db, `
		SELECT package_name FROM app_usage
		ORDER BY usage_count DESC, last_used DESC, package_name ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, storageErr("failed to query most used apps", err)
	}
	return names, nil
}

// List returns every usage record in most-used order.
func (r *UsageRepository) List(ctx context.Context) ([]models.UsageRecord, error) {
	db, err := r.h.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT package_name, usage_count, last_used FROM app_usage
		ORDER BY usage_count DESC, last_used DESC, package_name ASC
	`)
	if err != nil {
		return nil, storageErr("failed to query usage", err)
	}
	defer rows.Close()

	records := []models.UsageRecord{}
	for rows.Next() {
		var (
			rec      models.UsageRecord
			lastUsed int64
		)
		if err := rows.Scan(&rec.PackageName, &rec.UsageCount, &lastUsed); err != nil {
			return nil, storageErr("failed to scan usage", err)
		}
		rec.LastUsed = time.UnixMilli(lastUsed)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("row iteration error", err)
	}
	return records, nil
}
