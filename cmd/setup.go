package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/zerolauncher/internal/launcher"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	if err := r.open(ctx); err != nil {
		return err
	}

	version, err := r.store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready (schema version %d)\n", version)
}

// SetupConfig writes the embedded default configuration to disk.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if path == "" {
		path = r.configPath
	}
	if path == "" {
		return fmt.Errorf("%w: --output", shared.ErrMissingArgument)
	}

	if _, err := os.Stat(path); err == nil {
		r.logger.Info("config file already exists", "path", path)
		return r.writePlain("Config already exists at %s\n", path)
	}

	r.logger.Info("config file not found, creating from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Point [device] manifest_path at your app manifest\n")
	r.writePlain("2. Run 'zl setup favorites <package>...' to pick initial favorites\n")
	return nil
}

// SetupFavorites completes first-launch setup with the given apps as the initial favorites.
func (r *Runner) SetupFavorites(ctx context.Context, cmd *cli.Command) error {
	picks := cmd.Args().Slice()
	if err := launcher.ValidateSetupSelection(picks); err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	if !r.launcher.NeedsSetup(ctx) {
		return r.writePlain("Setup already complete; use 'zl favorites set' to change favorites\n")
	}
	if err := r.launcher.CompleteSetup(ctx, picks); err != nil {
		return err
	}

	r.writePlain("✓ Setup complete\n")
	for i, app := range r.launcher.Favorites() {
		r.writePlain("%d. %s (%s)\n", i+1, app.Label, app.PackageName)
	}
	return nil
}
