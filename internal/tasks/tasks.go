package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

// AppSource is the view being refreshed; [launcher.Reconciler] implements it.
type AppSource interface {
	Reload(ctx context.Context) error
	Installed() []models.InstalledApp
	Visible() []models.InstalledApp
	Favorites() []models.InstalledApp
}

// WeatherSource returns the current temperature or nil.
type WeatherSource interface {
	Current(ctx context.Context, latitude, longitude float64) *int
}

// CountSource returns notification counts, empty when unavailable.
type CountSource interface {
	NotificationCounts(ctx context.Context) map[string]int
}

// RefreshResult summarizes one refresh pass.
type RefreshResult struct {
	Installed     int
	Visible       int
	Favorites     int
	Temperature   *int
	Notifications map[string]int
	At            time.Time
}

// RefresherOpts configures [NewRefresher]. Weather and Counts are optional.
type RefresherOpts struct {
	Apps      AppSource
	Weather   WeatherSource
	Counts    CountSource
	Latitude  float64
	Longitude float64
	Logger    *log.Logger
}

// Refresher periodically reloads launcher state.
type Refresher struct {
	apps      AppSource
	weather   WeatherSource
	counts    CountSource
	latitude  float64
	longitude float64
	logger    *log.Logger
	now       func() time.Time
}

// NewRefresher creates a Refresher.
func NewRefresher(opts RefresherOpts) *Refresher {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Refresher{
		apps:      opts.Apps,
		weather:   opts.Weather,
		counts:    opts.Counts,
		latitude:  opts.Latitude,
		longitude: opts.Longitude,
		logger:    shared.WithLogger(opts.Logger, "component", "refresher"),
		now:       time.Now,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (r *Refresher) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (r *Refresher) steps() int {
	n := 1
	if r.weather != nil {
		n++
	}
	if r.counts != nil {
		n++
	}
	return n
}

// RunOnce performs a single refresh pass.
func (r *Refresher) RunOnce(ctx context.Context, progress chan<- ProgressUpdate) (*RefreshResult, error) {
	total := r.steps()
	step := 1

	r.sendProgress(progress, reloadingUpdate(step, total))
	if err := r.apps.Reload(ctx); err != nil {
		return nil, err
	}

	result := &RefreshResult{
		Installed:     len(r.apps.Installed()),
		Visible:       len(r.apps.Visible()),
		Favorites:     len(r.apps.Favorites()),
		Notifications: map[string]int{},
	}
	r.sendProgress(progress, reloadedUpdate(step, total, result))

	if r.weather != nil {
		step++
		result.Temperature = r.weather.Current(ctx, r.latitude, r.longitude)
		r.sendProgress(progress, weatherUpdate(step, total, result.Temperature))
	}

	if r.counts != nil {
		step++
		result.Notifications = r.counts.NotificationCounts(ctx)
		r.sendProgress(progress, notificationsUpdate(step, total, result.Notifications))
	}

	result.At = r.now()
	r.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// Run refreshes immediately and then every interval until ctx is done.
//
// Failed passes are logged and retried on the next tick. Run returns ctx's error.
func (r *Refresher) Run(ctx context.Context, interval time.Duration, progress chan<- ProgressUpdate) error {
	if interval <= 0 {
		return shared.ErrInvalidArgument
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx, progress); err != nil {
			r.logger.Warn("refresh failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
