package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/zerolauncher/internal/models"
	tu "github.com/desertthunder/zerolauncher/internal/testing"
)

type mockApps struct {
	reloads atomic.Int32
	err     error
	apps    []models.InstalledApp
}

func (m *mockApps) Reload(ctx context.Context) error {
	m.reloads.Add(1)
	return m.err
}

func (m *mockApps) Installed() []models.InstalledApp { return m.apps }
func (m *mockApps) Visible() []models.InstalledApp   { return m.apps[:1] }
func (m *mockApps) Favorites() []models.InstalledApp { return nil }

type mockWeather struct{ temp *int }

func (m mockWeather) Current(context.Context, float64, float64) *int { return m.temp }

type mockCounts map[string]int

func (m mockCounts) NotificationCounts(context.Context) map[string]int { return m }

func newMockApps() *mockApps {
	return &mockApps{apps: []models.InstalledApp{tu.App("a", "A"), tu.App("b", "B")}}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{ReloadApps, "reload_apps"},
		{FetchWeather, "fetch_weather"},
		{FetchNotifications, "fetch_notifications"},
		{Complete, "complete"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.expected {
				t.Errorf("Phase.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRefresher(t *testing.T) {
	ctx := context.Background()

	t.Run("RunOnce", func(t *testing.T) {
		t.Run("Apps Only", func(t *testing.T) {
			apps := newMockApps()
			r := NewRefresher(RefresherOpts{Apps: apps, Logger: tu.NewQuietLogger()})
			progress := make(chan ProgressUpdate, 10)

			result, err := r.RunOnce(ctx, progress)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Installed != 2 || result.Visible != 1 || result.Favorites != 0 {
				t.Errorf("unexpected result: %+v", result)
			}
			if result.Temperature != nil {
				t.Error("expected no temperature without weather source")
			}

			updates := drain(progress)
			if len(updates) != 3 {
				t.Fatalf("expected 3 updates, got %d", len(updates))
			}
			if updates[0].Phase != ReloadApps || updates[len(updates)-1].Phase != Complete {
				t.Errorf("unexpected phases: %v ... %v", updates[0].Phase, updates[len(updates)-1].Phase)
			}
			if updates[0].Total != 1 {
				t.Errorf("expected 1 step, got %d", updates[0].Total)
			}
		})

		t.Run("With Weather And Counts", func(t *testing.T) {
			temp := 18
			r := NewRefresher(RefresherOpts{
				Apps:    newMockApps(),
				Weather: mockWeather{temp: &temp},
				Counts:  mockCounts{"a": 4},
				Logger:  tu.NewQuietLogger(),
			})
			progress := make(chan ProgressUpdate, 10)

			result, err := r.RunOnce(ctx, progress)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Temperature == nil || *result.Temperature != 18 {
				t.Errorf("expected temperature 18, got %v", result.Temperature)
			}
			if result.Notifications["a"] != 4 {
				t.Errorf("expected 4 notifications for a, got %v", result.Notifications)
			}

			var phases []Phase
			for _, u := range drain(progress) {
				phases = append(phases, u.Phase)
			}
			want := []Phase{ReloadApps, ReloadApps, FetchWeather, FetchNotifications, Complete}
			if len(phases) != len(want) {
				t.Fatalf("expected phases %v, got %v", want, phases)
			}
			for i := range want {
				if phases[i] != want[i] {
					t.Errorf("phase %d = %v, want %v", i, phases[i], want[i])
				}
			}
		})

		t.Run("Weather Unavailable", func(t *testing.T) {
			r := NewRefresher(RefresherOpts{Apps: newMockApps(), Weather: mockWeather{}, Logger: tu.NewQuietLogger()})

			result, err := r.RunOnce(ctx, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Temperature != nil {
				t.Error("expected nil temperature")
			}
		})

		t.Run("Reload Error", func(t *testing.T) {
			apps := newMockApps()
			apps.err = errors.New("registry down")
			r := NewRefresher(RefresherOpts{Apps: apps, Logger: tu.NewQuietLogger()})

			if _, err := r.RunOnce(ctx, nil); err == nil {
				t.Error("expected error")
			}
		})

		t.Run("Full Channel Does Not Block", func(t *testing.T) {
			r := NewRefresher(RefresherOpts{Apps: newMockApps(), Logger: tu.NewQuietLogger()})
			progress := make(chan ProgressUpdate)

			done := make(chan struct{})
			go func() {
				defer close(done)
				_, _ = r.RunOnce(ctx, progress)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("RunOnce blocked on progress channel")
			}
		})
	})

	t.Run("Run", func(t *testing.T) {
		t.Run("Repeats Until Cancelled", func(t *testing.T) {
			apps := newMockApps()
			apps.err = errors.New("flaky")
			r := NewRefresher(RefresherOpts{Apps: apps, Logger: tu.NewQuietLogger()})

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			err := r.Run(ctx, 10*time.Millisecond, nil)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected deadline exceeded, got %v", err)
			}
			if apps.reloads.Load() < 2 {
				t.Errorf("expected repeated reloads after failures, got %d", apps.reloads.Load())
			}
		})

		t.Run("Invalid Interval", func(t *testing.T) {
			r := NewRefresher(RefresherOpts{Apps: newMockApps(), Logger: tu.NewQuietLogger()})

			if err := r.Run(ctx, 0, nil); err == nil {
				t.Error("expected error for zero interval")
			}
		})
	})
}
