package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/zerolauncher/internal/shared"
	tu "github.com/desertthunder/zerolauncher/internal/testing"
)

func newTestWeather(t *testing.T, status int, body string) *WeatherService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("expected path '/v1/forecast', got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("current"); got != "temperature_2m" {
			t.Errorf("expected current=temperature_2m, got %q", got)
		}
		if got := r.URL.Query().Get("latitude"); got != "52.52" {
			t.Errorf("expected latitude 52.52, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return NewWeatherService(server.URL, nil, time.Second, tu.NewQuietLogger())
}

func TestWeatherService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewWeatherService("", nil, 0, nil)

			if srv.baseURL != defaultWeatherBaseURL {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
		})

		t.Run("With Custom Client", func(t *testing.T) {
			client := &http.Client{}
			srv := NewWeatherService("http://example.com", client, 0, nil)

			if srv.httpClient != client {
				t.Error("expected custom client to be used")
			}
		})
	})

	t.Run("Current", func(t *testing.T) {
		tt := []struct {
			name string
			body string
			want int
		}{
			{name: "rounds down", body: `{"current":{"temperature_2m":21.4}}`, want: 21},
			{name: "rounds up", body: `{"current":{"temperature_2m":21.5}}`, want: 22},
			{name: "negative half", body: `{"current":{"temperature_2m":-2.5}}`, want: -2},
			{name: "zero", body: `{"current":{"temperature_2m":0}}`, want: 0},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				srv := newTestWeather(t, http.StatusOK, tc.body)

				got := srv.Current(ctx, 52.52, 13.41)
				if got == nil {
					t.Fatal("expected a temperature")
				}
				if *got != tc.want {
					t.Errorf("expected %d, got %d", tc.want, *got)
				}
			})
		}
	})

	t.Run("Failures", func(t *testing.T) {
		t.Run("Non-2xx Status", func(t *testing.T) {
			srv := newTestWeather(t, http.StatusInternalServerError, `{"error":true}`)

			if _, err := srv.Fetch(ctx, 52.52, 13.41); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if got := srv.Current(ctx, 52.52, 13.41); got != nil {
				t.Errorf("expected nil temperature, got %d", *got)
			}
		})

		t.Run("Missing Temperature", func(t *testing.T) {
			srv := newTestWeather(t, http.StatusOK, `{"current":{}}`)

			if _, err := srv.Fetch(ctx, 52.52, 13.41); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			srv := newTestWeather(t, http.StatusOK, `not json`)

			if got := srv.Current(ctx, 52.52, 13.41); got != nil {
				t.Error("expected nil temperature")
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("network down"))}
			srv := NewWeatherService("http://example.com", client, 0, tu.NewQuietLogger())

			_, err := srv.Fetch(ctx, 1, 2)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Body Read Error", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			srv := NewWeatherService("http://example.com", client, 0, tu.NewQuietLogger())

			_, err := srv.Fetch(ctx, 1, 2)
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})
	})
}
