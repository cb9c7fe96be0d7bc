package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/device"
	"github.com/desertthunder/zerolauncher/internal/launcher"
	"github.com/desertthunder/zerolauncher/internal/lock"
	"github.com/desertthunder/zerolauncher/internal/passwd"
	"github.com/desertthunder/zerolauncher/internal/repositories"
	"github.com/desertthunder/zerolauncher/internal/services"
	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/desertthunder/zerolauncher/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and the services built on it are opened lazily by [Runner.open] so that commands
// such as "setup config" work before a database exists.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	registry device.Registry
	counter  device.NotificationCounter
	flag     device.FirstLaunchFlag

	store      *repositories.Store
	ownsStore  bool
	engine     *lock.Engine
	reconciler *launcher.Reconciler
	launcher   *launcher.Launcher
	weather    *services.WeatherService
	refresher  *tasks.Refresher
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Registry, Counter, Flag and Store default to the file-backed adapters named in the config. A nil
// HTTPClient selects a client using the configured weather timeout.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Registry   device.Registry
	Counter    device.NotificationCounter
	Flag       device.FirstLaunchFlag
	Store      *repositories.Store
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		registry:   opts.Registry,
		counter:    opts.Counter,
		flag:       opts.Flag,
		store:      opts.Store,
	}
}

// SetLogger replaces the logger used by the runner and everything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// loadConfig reads the config file once. A missing file yields the defaults.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config != nil {
		return ctx, nil
	}
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	config, err := shared.LoadOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	shared.ApplyLogLevel(r.logger, config.Logging.Level)
	return ctx, nil
}

// open wires the store, lock engine, reconciler and launcher, then loads the app list.
func (r *Runner) open(ctx context.Context) error {
	if r.launcher != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	cfg := r.config

	if r.store == nil {
		hasher := passwd.NewHasher(passwd.Params{
			Time:    cfg.Lock.TimeCost,
			Memory:  cfg.Lock.MemoryKiB,
			Threads: cfg.Lock.Threads,
			KeyLen:  cfg.Lock.KeyLen,
		})
		store, err := repositories.Open(ctx, repositories.StoreOpts{
			Path:         cfg.Database.Path,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			Hasher:       hasher,
			Logger:       r.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		r.store = store
		r.ownsStore = true
	}

	if r.registry == nil {
		manifest := device.NewManifestRegistry(cfg.Device.ManifestPath, r.output, r.logger)
		r.registry = device.NewSafeRegistry(manifest, r.logger)
	}
	if r.counter == nil {
		r.counter = device.NewFileNotificationCounter(cfg.Device.NotificationsPath, r.logger)
	}
	if r.flag == nil {
		r.flag = device.NewFileFlag(cfg.Device.StateDir, r.logger)
	}

	r.engine = lock.NewEngine(r.store, lock.EngineOpts{
		MaxAttempts: cfg.Lock.MaxAttempts,
		Window:      cfg.Lock.AttemptWindow.Duration,
		Logger:      r.logger,
	})
	r.reconciler = launcher.NewReconciler(r.store, r.registry, r.flag, launcher.ReconcilerOpts{
		Prune:  cfg.Refresh.Prune,
		Logger: r.logger,
	})
	r.launcher = launcher.New(launcher.LauncherOpts{
		Store:      r.store,
		Engine:     r.engine,
		Registry:   r.registry,
		Counter:    r.counter,
		Reconciler: r.reconciler,
		Logger:     r.logger,
	})
	r.weather = services.NewWeatherService(cfg.Weather.BaseURL, r.httpClient, cfg.Weather.Timeout.Duration, r.logger)
	r.refresher = tasks.NewRefresher(tasks.RefresherOpts{
		Apps:      r.reconciler,
		Weather:   r.weather,
		Counts:    r.launcher,
		Latitude:  cfg.Weather.Latitude,
		Longitude: cfg.Weather.Longitude,
		Logger:    r.logger,
	})

	if err := r.reconciler.Reload(ctx); err != nil {
		r.logger.Warn("failed to load installed apps", "error", err)
	}
	return nil
}

// Close releases the store when the runner opened it.
func (r *Runner) Close() error {
	if r.store == nil || !r.ownsStore {
		return nil
	}
	return r.store.Close()
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "zl",
		Usage:   "A minimal launcher: favorites, hidden apps and app lock",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("ZL_CONFIG"),
			},
		},
		Before:   r.loadConfig,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, appsCommand, favoritesCommand, lockCommand, usageCommand, weatherCommand, refreshCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// label returns the display name for packageName, or the name itself when unknown.
func (r *Runner) label(packageName string) string {
	if app, ok := r.launcher.Lookup(packageName); ok {
		return app.Label
	}
	return packageName
}
