// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func passwordFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   usage,
		Sources: cli.EnvVars("ZL_PASSWORD"),
	}
}

func packageArg() cli.Argument {
	return &cli.StringArg{Name: "package", UsageText: "package name"}
}

// setupCommand handles setup operations for the database, config file and first-launch favorites.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write the default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (defaults to --config)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:      "favorites",
				Usage:     "Pick the initial 3-10 favorites on first launch",
				ArgsUsage: "<package>...",
				Action:    r.SetupFavorites,
			},
		},
	}
}

// appsCommand handles installed app operations.
func appsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "apps",
		Usage: "Installed app operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List visible apps",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Include hidden apps",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, json, csv, markdown)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file; format follows the extension",
					},
				},
				Action: r.AppsList,
			},
			{
				Name:      "open",
				Usage:     "Launch an app, asking for the lock password when it is locked",
				Arguments: []cli.Argument{packageArg()},
				Flags:     []cli.Flag{passwordFlag("App lock password")},
				Action:    r.AppsOpen,
			},
			{
				Name:      "hide",
				Usage:     "Hide an app (also removes it from favorites)",
				Arguments: []cli.Argument{packageArg()},
				Action:    r.AppsHide,
			},
			{
				Name:      "unhide",
				Usage:     "Show a hidden app again",
				Arguments: []cli.Argument{packageArg()},
				Action:    r.AppsUnhide,
			},
			{
				Name:      "info",
				Usage:     "Open the system info screen for an app",
				Arguments: []cli.Argument{packageArg()},
				Action:    r.AppsInfo,
			},
			{
				Name:      "uninstall",
				Usage:     "Request uninstalling an app",
				Arguments: []cli.Argument{packageArg()},
				Action:    r.AppsUninstall,
			},
			{
				Name:  "shortcuts",
				Usage: "List an app's shortcuts, or launch one with --id",
				Arguments: []cli.Argument{packageArg()},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Shortcut ID to launch",
					},
					passwordFlag("App lock password"),
				},
				Action: r.AppsShortcuts,
			},
			{
				Name:  "home",
				Usage: "Report whether zl is the default home app",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "settings",
						Usage: "Open the default home app settings",
					},
				},
				Action: r.AppsHome,
			},
		},
	}
}

// favoritesCommand handles the ordered favorites list.
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Favorite app operations",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List favorites in display order",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Append an app to favorites",
				Arguments: []cli.Argument{packageArg()},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an app from favorites",
				Arguments: []cli.Argument{packageArg()},
				Action:    r.FavoritesRemove,
			},
			{
				Name:      "set",
				Usage:     "Replace favorites with the given apps, in order",
				ArgsUsage: "<package>...",
				Action:    r.FavoritesSet,
			},
			{
				Name:  "move",
				Usage: "Move a favorite to a new 0-based position",
				Arguments: []cli.Argument{
					packageArg(),
					&cli.IntArg{Name: "index"},
				},
				Action: r.FavoritesMove,
			},
		},
	}
}

// lockCommand handles the app lock lifecycle and the locked app set.
func lockCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lock",
		Usage: "App lock operations",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the app lock state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LockStatus,
			},
			{
				Name:  "enable",
				Usage: "Enable the app lock, setting a password when none exists",
				Flags: []cli.Flag{
					passwordFlag("New password (4-21 characters)"),
					&cli.StringFlag{
						Name:  "confirm",
						Usage: "Repeat the new password",
					},
				},
				Action: r.LockEnable,
			},
			{
				Name:   "disable",
				Usage:  "Disable the app lock, clearing the password and locked apps",
				Flags:  []cli.Flag{passwordFlag("Current password")},
				Action: r.LockDisable,
			},
			{
				Name:  "password",
				Usage: "Change the app lock password",
				Flags: []cli.Flag{
					passwordFlag("Current password"),
					&cli.StringFlag{
						Name:     "new",
						Usage:    "New password (4-21 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "confirm",
						Usage: "Repeat the new password",
					},
				},
				Action: r.LockPassword,
			},
			{
				Name:      "toggle",
				Usage:     "Lock or unlock an app",
				Arguments: []cli.Argument{packageArg()},
				Flags:     []cli.Flag{passwordFlag("Current password")},
				Action:    r.LockToggle,
			},
			{
				Name:   "verify",
				Usage:  "Check a password against the stored one",
				Flags:  []cli.Flag{passwordFlag("Password to check")},
				Action: r.LockVerify,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List locked apps",
				Action:  r.LockList,
			},
			{
				Name:  "attempts",
				Usage: "Show recent unlock attempts",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of attempts to show",
						Value: 20,
					},
				},
				Action: r.LockAttempts,
			},
		},
	}
}

// usageCommand reports launch statistics.
func usageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "App usage statistics",
		Commands: []*cli.Command{
			{
				Name:  "top",
				Usage: "Show the most launched apps",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of apps",
						Value: 5,
					},
				},
				Action: r.UsageTop,
			},
		},
	}
}

// weatherCommand prints the current temperature for the configured location.
func weatherCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "weather",
		Usage: "Show the current temperature",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "lat",
				Usage: "Latitude (defaults to [weather] latitude)",
			},
			&cli.FloatFlag{
				Name:  "lon",
				Usage: "Longitude (defaults to [weather] longitude)",
			},
		},
		Action: r.Weather,
	}
}

// refreshCommand reloads launcher state once or on an interval.
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Reload installed apps, weather and notification counts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep refreshing every [refresh] interval until interrupted",
			},
		},
		Action: r.Refresh,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive launcher",
		Action:  r.TUI,
	}
}
