package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/zerolauncher/internal/shared"
	"github.com/desertthunder/zerolauncher/internal/tasks"
	"github.com/urfave/cli/v3"
)

// UsageTop prints the most launched apps.
func (r *Runner) UsageTop(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	apps, err := r.launcher.MostUsed(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		return r.writePlain("No launches recorded yet\n")
	}

	r.writePlainHeader("Most Used")
	for i, app := range apps {
		r.writePlain("%d. %s (%s)\n", i+1, app.Label, app.PackageName)
	}
	return nil
}

// Weather prints the current temperature in whole degrees Celsius.
func (r *Runner) Weather(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	lat, lon := r.config.Weather.Latitude, r.config.Weather.Longitude
	if cmd.IsSet("lat") {
		lat = cmd.Float("lat")
	}
	if cmd.IsSet("lon") {
		lon = cmd.Float("lon")
	}

	temp := r.weather.Current(ctx, lat, lon)
	if temp == nil {
		return fmt.Errorf("%w: weather unavailable", shared.ErrAPIRequest)
	}
	return r.writePlain("%d°C\n", *temp)
}

// Refresh reloads launcher state once, or every [refresh] interval with --watch.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	if !cmd.Bool("watch") {
		result, err := r.refresher.RunOnce(ctx, nil)
		if err != nil {
			return err
		}
		return r.printRefresh(result)
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan error, 1)
	go func() {
		done <- r.refresher.Run(ctx, r.config.Refresh.Interval.Duration, progress)
		close(progress)
	}()

	for update := range progress {
		if result, ok := update.Data.(*tasks.RefreshResult); ok && update.Phase == tasks.Complete {
			r.printRefresh(result)
		} else {
			r.logger.Debug("refresh", "phase", update.Phase, "message", update.Message)
		}
	}

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (r *Runner) printRefresh(result *tasks.RefreshResult) error {
	weather := "n/a"
	if result.Temperature != nil {
		weather = fmt.Sprintf("%d°C", *result.Temperature)
	}

	unread := 0
	for _, n := range result.Notifications {
		unread += n
	}

	return r.writePlain("%s  apps %d (visible %d)  favorites %d  weather %s  notifications %d\n",
		result.At.Format("15:04:05"), result.Installed, result.Visible, result.Favorites, weather, unread)
}
