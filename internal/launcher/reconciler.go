package launcher

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/device"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/repositories"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"golang.org/x/sync/errgroup"
)

// VisibleApps returns installed without hidden packages, keeping installed's order.
func VisibleApps(installed []models.InstalledApp, hidden []string) []models.InstalledApp {
	visible := make([]models.InstalledApp, 0, len(installed))
	for _, app := range installed {
		if !slices.Contains(hidden, app.PackageName) {
			visible = append(visible, app)
		}
	}
	return visible
}

// FavoriteApps resolves favorites against installed in favorites order, dropping unknown packages.
func FavoriteApps(installed []models.InstalledApp, favorites []string) []models.InstalledApp {
	byName := make(map[string]models.InstalledApp, len(installed))
	for _, app := range installed {
		byName[app.PackageName] = app
	}

	apps := make([]models.InstalledApp, 0, len(favorites))
	for _, pkg := range favorites {
		if app, ok := byName[pkg]; ok {
			apps = append(apps, app)
		}
	}
	return apps
}

// ReconcilerOpts configures [NewReconciler].
type ReconcilerOpts struct {
	// Prune removes favorite, hidden and locked rows for uninstalled packages on each reload.
	Prune  bool
	Logger *log.Logger
}

// Reconciler holds the installed, hidden and favorites view.
type Reconciler struct {
	store    *repositories.Store
	registry device.Registry
	flag     device.FirstLaunchFlag
	prune    bool
	logger   *log.Logger

	mu        sync.RWMutex
	installed []models.InstalledApp
	hidden    []string
	favorites []string
}

// NewReconciler creates an empty Reconciler; call [Reconciler.Reload] to populate it.
func NewReconciler(store *repositories.Store, registry device.Registry, flag device.FirstLaunchFlag, opts ReconcilerOpts) *Reconciler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Reconciler{
		store:     store,
		registry:  registry,
		flag:      flag,
		prune:     opts.Prune,
		logger:    shared.WithLogger(opts.Logger, "component", "reconciler"),
		installed: []models.InstalledApp{},
		hidden:    []string{},
		favorites: []string{},
	}
}

// Reload fetches the installed list and the persisted sets concurrently and replaces the view.
//
// A registry failure is returned and leaves the view untouched. Storage failures degrade to
// empty sets. Until setup completes the favorites view is empty, whatever the store holds.
func (r *Reconciler) Reload(ctx context.Context) error {
	var (
		installed []models.InstalledApp
		hidden    []string
		favorites = []string{}
	)
	firstLaunch := r.flag.IsFirstLaunch(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		apps, err := r.registry.ListInstalledApps(gctx)
		if err != nil {
			return fmt.Errorf("failed to list installed apps: %w", err)
		}
		installed = apps
		return nil
	})
	g.Go(func() error {
		names, err := r.store.Hidden.List(gctx)
		if err != nil {
			r.logger.Warn("failed to load hidden apps", "error", err)
			names = []string{}
		}
		hidden = names
		return nil
	})
	if !firstLaunch {
		g.Go(func() error {
			names, err := r.store.Favorites.List(gctx)
			if err != nil {
				r.logger.Warn("failed to load favorites", "error", err)
				names = []string{}
			}
			favorites = names
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	installed = slices.Clone(installed)
	models.SortByLabel(installed)

	if r.prune {
		hidden, favorites = r.pruneMissing(ctx, installed, hidden, favorites)
	}

	// Hidden wins over favorite if the store was edited out of band.
	favorites = slices.DeleteFunc(favorites, func(pkg string) bool { return slices.Contains(hidden, pkg) })
	if len(favorites) > models.MaxFavorites {
		favorites = favorites[:models.MaxFavorites]
	}

	r.mu.Lock()
	r.installed = installed
	r.hidden = hidden
	r.favorites = favorites
	r.mu.Unlock()

	r.logger.Debug("reloaded", "installed", len(installed), "hidden", len(hidden), "favorites", len(favorites))
	return nil
}

func (r *Reconciler) pruneMissing(ctx context.Context, installed []models.InstalledApp, hidden, favorites []string) ([]string, []string) {
	names := make([]string, len(installed))
	for i, app := range installed {
		names[i] = app.PackageName
	}

	if _, err := r.store.PruneMissing(ctx, names); err != nil {
		r.logger.Warn("failed to prune stale entries", "error", err)
	}

	keep := func(list []string) []string {
		return slices.DeleteFunc(slices.Clone(list), func(pkg string) bool { return !slices.Contains(names, pkg) })
	}
	return keep(hidden), keep(favorites)
}

// Installed returns every installed app sorted by label.
func (r *Reconciler) Installed() []models.InstalledApp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.installed)
}

// Visible returns installed apps that are not hidden.
func (r *Reconciler) Visible() []models.InstalledApp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return VisibleApps(r.installed, r.hidden)
}

// Favorites returns installed favorites in user order.
func (r *Reconciler) Favorites() []models.InstalledApp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FavoriteApps(r.installed, r.favorites)
}

// FavoriteNames returns the favorite package names, including uninstalled ones.
func (r *Reconciler) FavoriteNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.favorites)
}

// Hidden returns the hidden package names.
func (r *Reconciler) Hidden() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.hidden)
}

// IsHidden reports whether packageName is hidden.
func (r *Reconciler) IsHidden(packageName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.hidden, packageName)
}

// IsFavorite reports whether packageName is a favorite.
func (r *Reconciler) IsFavorite(packageName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.favorites, packageName)
}

// Lookup finds an installed app by package name.
func (r *Reconciler) Lookup(packageName string) (models.InstalledApp, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(packageName)
}

func (r *Reconciler) lookup(packageName string) (models.InstalledApp, bool) {
	i := slices.IndexFunc(r.installed, func(a models.InstalledApp) bool { return a.PackageName == packageName })
	if i < 0 {
		return models.InstalledApp{}, false
	}
	return r.installed[i], true
}

// AddFavorite appends packageName to favorites.
//
// It is rejected with [shared.ErrFavoritesFull], [shared.ErrAlreadyFavorite] or
// [shared.ErrAppNotInstalled], leaving the view unchanged. Hidden apps are rejected with
// [shared.ErrInvalidArgument]. Persistence is best-effort.
func (r *Reconciler) AddFavorite(ctx context.Context, packageName string) error {
	r.mu.Lock()
	switch {
	case len(r.favorites) >= models.MaxFavorites:
		r.mu.Unlock()
		return shared.ErrFavoritesFull
	case slices.Contains(r.favorites, packageName):
		r.mu.Unlock()
		return shared.ErrAlreadyFavorite
	}
	if _, ok := r.lookup(packageName); !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", shared.ErrAppNotInstalled, packageName)
	}
	if slices.Contains(r.hidden, packageName) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is hidden", shared.ErrInvalidArgument, packageName)
	}
	r.favorites = append(r.favorites, packageName)
	r.mu.Unlock()

	if err := r.store.Favorites.Add(ctx, packageName); err != nil {
		r.logger.Warn("failed to persist favorite", "package", packageName, "error", err)
	}
	return nil
}

// RemoveFavorite removes packageName from favorites. Absent packages are ignored.
func (r *Reconciler) RemoveFavorite(ctx context.Context, packageName string) error {
	r.mu.Lock()
	r.favorites = slices.DeleteFunc(r.favorites, func(pkg string) bool { return pkg == packageName })
	r.mu.Unlock()

	if err := r.store.Favorites.Remove(ctx, packageName); err != nil {
		r.logger.Warn("failed to persist favorite removal", "package", packageName, "error", err)
	}
	return nil
}

// MoveFavorite moves packageName to index, clamped to the list bounds.
func (r *Reconciler) MoveFavorite(ctx context.Context, packageName string, index int) error {
	r.mu.Lock()
	from := slices.Index(r.favorites, packageName)
	if from < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is not a favorite", shared.ErrInvalidArgument, packageName)
	}

	favorites := slices.Delete(slices.Clone(r.favorites), from, from+1)
	index = max(0, min(index, len(favorites)))
	favorites = slices.Insert(favorites, index, packageName)
	r.favorites = favorites
	r.mu.Unlock()

	if err := r.store.Favorites.ReplaceAll(ctx, favorites); err != nil {
		r.logger.Warn("failed to persist favorite order", "error", err)
	}
	return nil
}

// SetFavorites replaces favorites with packageNames.
//
// Every package must be installed and not hidden, and at most [models.MaxFavorites] are allowed.
func (r *Reconciler) SetFavorites(ctx context.Context, packageNames []string) error {
	favorites, err := r.validateSelection(packageNames, true)
	if err != nil {
		return err
	}
	if len(favorites) > models.MaxFavorites {
		return shared.ErrFavoritesFull
	}

	r.mu.Lock()
	r.favorites = favorites
	r.mu.Unlock()

	if err := r.store.Favorites.ReplaceAll(ctx, favorites); err != nil {
		r.logger.Warn("failed to persist favorites", "error", err)
	}
	return nil
}

// HideApp hides packageName and drops it from favorites.
func (r *Reconciler) HideApp(ctx context.Context, packageName string) error {
	r.mu.Lock()
	if !slices.Contains(r.hidden, packageName) {
		r.hidden = append(r.hidden, packageName)
		slices.Sort(r.hidden)
	}
	r.favorites = slices.DeleteFunc(r.favorites, func(pkg string) bool { return pkg == packageName })
	r.mu.Unlock()

	if _, err := r.store.HideApp(ctx, packageName); err != nil {
		r.logger.Warn("failed to persist hidden app", "package", packageName, "error", err)
	}
	return nil
}

// UnhideApp removes packageName from the hidden set. Favorite status is not restored.
func (r *Reconciler) UnhideApp(ctx context.Context, packageName string) error {
	r.mu.Lock()
	r.hidden = slices.DeleteFunc(r.hidden, func(pkg string) bool { return pkg == packageName })
	r.mu.Unlock()

	if err := r.store.Hidden.Remove(ctx, packageName); err != nil {
		r.logger.Warn("failed to persist unhidden app", "package", packageName, "error", err)
	}
	return nil
}

// NeedsSetup reports whether initial favorites must be picked before normal use.
func (r *Reconciler) NeedsSetup(ctx context.Context) bool {
	return r.flag.IsFirstLaunch(ctx)
}

// ValidateSetupSelection checks the size of an initial favorites pick made through the setup
// picker: between [models.MinSetupFavorites] and [models.MaxFavorites] apps.
func ValidateSetupSelection(packageNames []string) error {
	n := len(slices.Compact(slices.Sorted(slices.Values(packageNames))))
	if n < models.MinSetupFavorites || n > models.MaxFavorites {
		return fmt.Errorf("%w: %d selected", shared.ErrSetupSelection, n)
	}
	return nil
}

// CompleteSetup stores packageNames as the initial favorites, in order, and marks first launch
// complete. Once setup is complete further calls do nothing.
//
// The selection must hold 1 to [models.MaxFavorites] installed apps; storage failure is returned
// and leaves setup pending.
func (r *Reconciler) CompleteSetup(ctx context.Context, packageNames []string) error {
	if !r.flag.IsFirstLaunch(ctx) {
		return nil
	}

	favorites, err := r.validateSelection(packageNames, false)
	if err != nil {
		return err
	}
	if len(favorites) == 0 || len(favorites) > models.MaxFavorites {
		return fmt.Errorf("%w: %d selected", shared.ErrSetupSelection, len(favorites))
	}

	if err := r.store.Favorites.ReplaceAll(ctx, favorites); err != nil {
		return fmt.Errorf("failed to save initial favorites: %w", err)
	}

	r.mu.Lock()
	r.favorites = favorites
	r.mu.Unlock()

	r.flag.MarkLaunchComplete(ctx)
	r.logger.Info("setup complete", "favorites", len(favorites))
	return nil
}

// validateSelection de-duplicates packageNames and checks each is installed.
func (r *Reconciler) validateSelection(packageNames []string, rejectHidden bool) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]string, 0, len(packageNames))
	for _, pkg := range packageNames {
		if slices.Contains(selected, pkg) {
			continue
		}
		if _, ok := r.lookup(pkg); !ok {
			return nil, fmt.Errorf("%w: %s", shared.ErrAppNotInstalled, pkg)
		}
		if rejectHidden && slices.Contains(r.hidden, pkg) {
			return nil, fmt.Errorf("%w: %s is hidden", shared.ErrInvalidArgument, pkg)
		}
		selected = append(selected, pkg)
	}
	return selected, nil
}
