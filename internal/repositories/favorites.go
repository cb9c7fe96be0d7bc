package repositories

import (
	"context"
	"database/sql"

	"github.com/desertthunder/zerolauncher/internal/models"
)

// FavoriteRepository persists the ordered favorites list.
//
// Positions are kept contiguous from 0: removals re-number the remaining rows.
type FavoriteRepository struct {
	h *handle
}

// List returns favorite package names in display order.
func (r *FavoriteRepository) List(ctx context.Context) ([]string, error) {
	db, err := r.h.conn()
	if err != nil {
		return nil, err
	}

	names, err := queryNames(ctx, db, "SELECT package_name FROM favorite_apps ORDER BY position ASC, package_name ASC")
	if err != nil {
		return nil, storageErr("failed to query favorites", err)
	}
	return names, nil
}

// Entries returns favorites with their stored positions.
func (r *FavoriteRepository) Entries(ctx context.Context) ([]models.FavoriteEntry, error) {
	db, err := r.h.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT package_name, position FROM favorite_apps ORDER BY position ASC, package_name ASC")
	if err != nil {
		return nil, storageErr("failed to query favorites", err)
	}
	defer rows.Close()

	entries := []models.FavoriteEntry{}
	for rows.Next() {
		var e models.FavoriteEntry
		if err := rows.Scan(&e.PackageName, &e.Position); err != nil {
			return nil, storageErr("failed to scan favorite", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("row iteration error", err)
	}
	return entries, nil
}

// Add appends packageName after the last favorite. Existing favorites are left in place.
func (r *FavoriteRepository) Add(ctx context.Context, packageName string) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	query := `
		INSERT OR IGNORE INTO favorite_apps (package_name, position)
		SELECT ?, COALESCE(MAX(position), -1) + 1 FROM favorite_apps
	`
	if _, err := db.ExecContext(ctx, query, packageName); err != nil {
		return storageErr("failed to add favorite", err)
	}
	return nil
}

// Remove deletes packageName and closes the gap it leaves. Absent packages are ignored.
func (r *FavoriteRepository) Remove(ctx context.Context, packageName string) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("failed to begin favorite removal", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM favorite_apps WHERE package_name = ?", packageName)
	if err != nil {
		return storageErr("failed to remove favorite", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("failed to remove favorite", err)
	}
	if rows > 0 {
		if err := compactFavorites(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("failed to commit favorite removal", err)
	}
	return nil
}

// ReplaceAll rewrites the list as packageNames with positions 0..n-1.
//
// Repeated names keep their first position.
func (r *FavoriteRepository) ReplaceAll(ctx context.Context, packageNames []string) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("failed to begin favorites replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM favorite_apps"); err != nil {
		return storageErr("failed to clear favorites", err)
	}

	seen := make(map[string]struct{}, len(packageNames))
	position := 0
	for _, name := range packageNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if _, err := tx.ExecContext(ctx, "INSERT INTO favorite_apps (package_name, position) VALUES (?, ?)", name, position); err != nil {
			return storageErr("failed to insert favorite", err)
		}
		position++
	}

	if err := tx.Commit(); err != nil {
		return storageErr("failed to commit favorites replace", err)
	}
	return nil
}

// Count returns the number of favorites.
func (r *FavoriteRepository) Count(ctx context.Context) (int, error) {
	db, err := r.h.conn()
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM favorite_apps").Scan(&n); err != nil {
		return 0, storageErr("failed to count favorites", err)
	}
	return n, nil
}

// compactFavorites re-numbers favorites 0..n-1 preserving their current order.
func compactFavorites(ctx context.Context, tx *sql.Tx) error {
	names, err := queryNames(ctx, tx, "SELECT package_name FROM favorite_apps ORDER BY position ASC, package_name ASC")
	if err != nil {
		return storageErr("failed to read favorites", err)
	}

	for i, name := range names {
		if _, err := tx.ExecContext(ctx, "UPDATE favorite_apps SET position = ? WHERE package_name = ?", i, name); err != nil {
			return storageErr("failed to renumber favorites", err)
		}
	}
	return nil
}
