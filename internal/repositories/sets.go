package repositories

import "context"

// packageSet is an unordered set of package names stored in a single-column table.
type packageSet struct {
	h     *handle
	table string
}

// List returns the members sorted by package name.
func (s packageSet) List(ctx context.Context) ([]string, error) {
	db, err := s.h.conn()
	if err != nil {
		return nil, err
	}

	names, err := queryNames(ctx, db, "SELECT package_name FROM "+s.table+" ORDER BY package_name ASC")
	if err != nil {
		return nil, storageErr("failed to query "+s.table, err)
	}
	return names, nil
}

// Add inserts packageName. Adding an existing member is a no-op.
func (s packageSet) Add(ctx context.Context, packageName string) error {
	db, err := s.h.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "INSERT OR IGNORE INTO "+s.table+" (package_name) VALUES (?)", packageName); err != nil {
		return storageErr("failed to insert into "+s.table, err)
	}
	return nil
}

// Remove deletes packageName if present.
func (s packageSet) Remove(ctx context.Context, packageName string) error {
	db, err := s.h.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE package_name = ?", packageName); err != nil {
		return storageErr("failed to delete from "+s.table, err)
	}
	return nil
}

// Contains reports membership of packageName.
func (s packageSet) Contains(ctx context.Context, packageName string) (bool, error) {
	db, err := s.h.conn()
	if err != nil {
		return false, err
	}

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM "+s.table+" WHERE package_name = ?)", packageName).Scan(&exists); err != nil {
		return false, storageErr("failed to query "+s.table, err)
	}
	return exists, nil
}

// HiddenRepository persists packages excluded from the default views.
type HiddenRepository struct {
	packageSet
}

// LockedAppRepository persists packages the user chose to gate behind the app lock password.
type LockedAppRepository struct {
	packageSet
}

// ClearAll removes every locked app.
func (r *LockedAppRepository) ClearAll(ctx context.Context) error {
	db, err := r.h.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM locked_apps"); err != nil {
		return storageErr("failed to clear locked apps", err)
	}
	return nil
}
