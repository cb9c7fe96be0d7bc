package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints favorites in display order.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	favorites := r.launcher.Favorites()
	if cmd.Bool("json") {
		entries := make([]models.FavoriteEntry, len(favorites))
		for i, app := range favorites {
			entries[i] = models.FavoriteEntry{PackageName: app.PackageName, Position: i}
		}
		return r.writeJSON(entries, true)
	}

	if len(favorites) == 0 {
		return r.writePlain("No favorites yet; add one with 'zl favorites add <package>'\n")
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d/%d)", len(favorites), models.MaxFavorites))
	for i, app := range favorites {
		r.writePlain("%d. %s (%s)\n", i+1, app.Label, app.PackageName)
	}
	return nil
}

// FavoritesAdd appends an app to favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.AddFavorite(ctx, pkg); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to favorites\n", r.label(pkg))
}

// FavoritesRemove drops an app from favorites. Removing a non-favorite succeeds.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.RemoveFavorite(ctx, pkg); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from favorites\n", r.label(pkg))
}

// FavoritesSet replaces the favorites list.
func (r *Runner) FavoritesSet(ctx context.Context, cmd *cli.Command) error {
	picks := cmd.Args().Slice()
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.SetFavorites(ctx, picks); err != nil {
		return err
	}
	return r.writePlain("✓ Saved %d favorites\n", len(r.launcher.FavoriteNames()))
}

// FavoritesMove moves a favorite to a new position.
func (r *Runner) FavoritesMove(ctx context.Context, cmd *cli.Command) error {
	pkg, err := requirePackage(cmd)
	if err != nil {
		return err
	}
	index := cmd.IntArg("index")
	if index < 0 {
		return fmt.Errorf("%w: index must not be negative", shared.ErrInvalidArgument)
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.launcher.MoveFavorite(ctx, pkg, index); err != nil {
		return err
	}
	return r.writePlain("✓ Moved %s\n", r.label(pkg))
}
