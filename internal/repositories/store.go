package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/passwd"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// handle is the connection shared by a store's repositories.
type handle struct {
	db     *sql.DB
	closed atomic.Bool
}

func (h *handle) conn() (*sql.DB, error) {
	if h.closed.Load() {
		return nil, shared.ErrStoreClosed
	}
	return h.db, nil
}

// storageErr wraps a driver error so it matches [shared.ErrUnavailableStorage].
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, shared.ErrUnavailableStorage, err)
}

// StoreOpts configures [Open].
type StoreOpts struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	Hasher       *passwd.Hasher
	Logger       *log.Logger
}

// Store is the process-wide persistent state. Open it once at startup and Close it on shutdown.
type Store struct {
	h      *handle
	logger *log.Logger

	Usage     *UsageRepository
	Favorites *FavoriteRepository
	Hidden    *HiddenRepository
	Lock      *LockConfigRepository
	Locked    *LockedAppRepository
	Attempts  *AttemptRepository
}

// Open connects to the database at opts.Path, applies pending migrations and wires the repositories.
//
// Startup failures are returned rather than deferred to the first query.
func Open(ctx context.Context, opts StoreOpts) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: database path", shared.ErrMissingConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Hasher == nil {
		opts.Hasher = passwd.NewHasher(passwd.DefaultParams())
	}

	db, err := shared.NewDatabase(opts.Path)
	if err != nil {
		return nil, err
	}

	if opts.Path != ":memory:" {
		shared.ConfigureDatabase(db, opts.MaxOpenConns, opts.MaxIdleConns)
		if err := shared.EnableWAL(db, opts.Path); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", shared.ErrUnavailableStorage, err)
	}

	logger := shared.WithLogger(opts.Logger, "component", "store")
	s := newStore(db, opts.Hasher, logger)
	logger.Debug("store opened", "path", opts.Path)
	return s, nil
}

func newStore(db *sql.DB, hasher *passwd.Hasher, logger *log.Logger) *Store {
	h := &handle{db: db}
	return &Store{
		h:         h,
		logger:    logger,
		Usage:     &UsageRepository{h: h, now: defaultClock},
		Favorites: &FavoriteRepository{h: h},
		Hidden:    &HiddenRepository{packageSet{h: h, table: "hidden_apps"}},
		Lock:      &LockConfigRepository{h: h, hasher: hasher, logger: logger},
		Locked:    &LockedAppRepository{packageSet{h: h, table: "locked_apps"}},
		Attempts:  &AttemptRepository{h: h, now: defaultClock},
	}
}

// Close releases the connection. Later calls on any repository fail with [shared.ErrStoreClosed].
func (s *Store) Close() error {
	if s.h.closed.Swap(true) {
		return nil
	}
	return s.h.db.Close()
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	db, err := s.h.conn()
	if err != nil {
		return 0, err
	}
	version, err := shared.CurrentVersion(ctx, db)
	if err != nil {
		return 0, storageErr("failed to read schema version", err)
	}
	return version, nil
}

// ResetLock disables the app lock, clears the password and every locked app in one transaction.
func (s *Store) ResetLock(ctx context.Context) error {
	db, err := s.h.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("failed to begin lock reset", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO app_lock_config (id, enabled, password_hash) VALUES (1, 0, NULL)
		ON CONFLICT(id) DO UPDATE SET enabled = 0, password_hash = NULL
	`); err != nil {
		return storageErr("failed to reset lock config", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM locked_apps"); err != nil {
		return storageErr("failed to clear locked apps", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("failed to commit lock reset", err)
	}
	return nil
}

// HideApp adds packageName to the hidden set and removes it from favorites in one transaction.
//
// It reports whether the package was a favorite.
func (s *Store) HideApp(ctx context.Context, packageName string) (bool, error) {
	db, err := s.h.conn()
	if err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, storageErr("failed to begin hide", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO hidden_apps (package_name) VALUES (?)", packageName); err != nil {
		return false, storageErr("failed to hide app", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM favorite_apps WHERE package_name = ?", packageName)
	if err != nil {
		return false, storageErr("failed to unfavorite hidden app", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, storageErr("failed to unfavorite hidden app", err)
	}
	if rows > 0 {
		if err := compactFavorites(ctx, tx); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, storageErr("failed to commit hide", err)
	}
	return rows > 0, nil
}

// PruneResult counts the rows removed by [Store.PruneMissing].
type PruneResult struct {
	Favorites int
	Hidden    int
	Locked    int
}

// Total is the number of rows removed across tables.
func (p PruneResult) Total() int { return p.Favorites + p.Hidden + p.Locked }

// PruneMissing removes favorite, hidden and locked rows whose package is not in installed.
//
// Favorites are re-numbered afterwards. Usage history is kept.
func (s *Store) PruneMissing(ctx context.Context, installed []string) (PruneResult, error) {
	var result PruneResult

	db, err := s.h.conn()
	if err != nil {
		return result, err
	}

	keep := make(map[string]struct{}, len(installed))
	for _, pkg := range installed {
		keep[pkg] = struct{}{}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, storageErr("failed to begin prune", err)
	}
	defer tx.Rollback()

	for _, target := range []struct {
		table string
		count *int
	}{
		{"favorite_apps", &result.Favorites},
		{"hidden_apps", &result.Hidden},
		{"locked_apps", &result.Locked},
	} {
		names, err := queryNames(ctx, tx, "SELECT package_name FROM "+target.table)
		if err != nil {
			return result, storageErr("failed to read "+target.table, err)
		}
		for _, name := range names {
			if _, ok := keep[name]; ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+target.table+" WHERE package_name = ?", name); err != nil {
				return result, storageErr("failed to prune "+target.table, err)
			}
			*target.count++
		}
	}

	if result.Favorites > 0 {
		if err := compactFavorites(ctx, tx); err != nil {
			return result, err
		}
	}

	if err := tx.Commit(); err != nil {
		return result, storageErr("failed to commit prune", err)
	}

	if result.Total() > 0 {
		s.logger.Info("pruned stale entries", "favorites", result.Favorites, "hidden", result.Hidden, "locked", result.Locked)
	}
	return result, nil
}

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// queryNames collects the first string column of every row.
func queryNames(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
