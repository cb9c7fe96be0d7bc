package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

const defaultWeatherBaseURL string = "https://api.open-meteo.com"

type weatherResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
	} `json:"current"`
}

// WeatherService fetches current conditions from open-meteo.
type WeatherService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewWeatherService creates a weather client. Empty baseURL and nil client select the defaults;
// a positive timeout applies to the default client.
func NewWeatherService(baseURL string, client *http.Client, timeout time.Duration, logger *log.Logger) *WeatherService {
	if baseURL == "" {
		baseURL = defaultWeatherBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &WeatherService{
		baseURL:    baseURL,
		httpClient: client,
		logger:     shared.WithLogger(logger, "component", "weather"),
	}
}

// Fetch returns the current temperature in Celsius at the given coordinates.
func (w *WeatherService) Fetch(ctx context.Context, latitude, longitude float64) (float64, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("current", "temperature_2m")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var data weatherResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, fmt.Errorf("failed to decode weather: %w", err)
	}
	if data.Current == nil || data.Current.Temperature == nil {
		return 0, fmt.Errorf("%w: no current temperature", shared.ErrInvalidInput)
	}

	return *data.Current.Temperature, nil
}

// Current returns the temperature rounded half up, or nil when it cannot be fetched.
func (w *WeatherService) Current(ctx context.Context, latitude, longitude float64) *int {
	temp, err := w.Fetch(ctx, latitude, longitude)
	if err != nil {
		w.logger.Warn("weather unavailable", "error", err)
		return nil
	}

	rounded := int(math.Floor(temp + 0.5))
	return &rounded
}
