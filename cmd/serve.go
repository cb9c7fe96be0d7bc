package main

import (
	"context"

	"github.com/desertthunder/zerolauncher/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the local JSON API until interrupted, refreshing launcher state in the background.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	addr := r.config.Server.Addr
	if cmd.IsSet("addr") || addr == "" {
		addr = cmd.String("addr")
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Mount(server.NewLauncherHandler(r.launcher, r.logger))

	if interval := r.config.Refresh.Interval.Duration; interval > 0 {
		go func() {
			if err := r.refresher.Run(ctx, interval, nil); err != nil && ctx.Err() == nil {
				r.logger.Warn("background refresh stopped", "error", err)
			}
		}()
	}

	return server.Serve(ctx, addr, router, r.logger)
}

// serveCommand starts the local JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the launcher over a local JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to [server] addr)",
				Value: "127.0.0.1:7878",
			},
		},
		Action: r.Serve,
	}
}
