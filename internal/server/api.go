package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zerolauncher/internal/launcher"
	"github.com/desertthunder/zerolauncher/internal/models"
	"github.com/desertthunder/zerolauncher/internal/shared"
)

const (
	routeHealth    = "GET /health"
	routeApps      = "GET /apps"
	routeFavorites = "GET /favorites"
	routeLock      = "GET /lock"
	routeOpen      = "POST /apps/{pkg}/open"
)

var _ Handler = (*LauncherHandler)(nil)

// AppView is an app in API responses.
type AppView struct {
	models.InstalledApp
	Favorite      bool `json:"favorite"`
	Hidden        bool `json:"hidden"`
	Locked        bool `json:"locked"`
	Notifications int  `json:"notifications,omitempty"`
}

// LockView is the response for GET /lock.
type LockView struct {
	State  string   `json:"state"`
	Locked []string `json:"locked"`
}

type openRequest struct {
	Password string `json:"password"`
}

// LauncherHandler serves the launcher API.
type LauncherHandler struct {
	launcher *launcher.Launcher
	logger   *log.Logger
}

// NewLauncherHandler creates a handler over l.
func NewLauncherHandler(l *launcher.Launcher, logger *log.Logger) *LauncherHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &LauncherHandler{launcher: l, logger: shared.WithLogger(logger, "component", "api")}
}

func (h *LauncherHandler) Routes() []string {
	return []string{routeHealth, routeApps, routeFavorites, routeLock, routeOpen}
}

func (h *LauncherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeHealth:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case routeApps:
		h.apps(w, r)
	case routeFavorites:
		writeJSON(w, http.StatusOK, h.views(r, h.launcher.Favorites()))
	case routeLock:
		h.lock(w, r)
	case routeOpen:
		h.open(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *LauncherHandler) apps(w http.ResponseWriter, r *http.Request) {
	apps := h.launcher.Visible()
	if r.URL.Query().Get("all") == "true" {
		apps = h.launcher.Installed()
	}
	writeJSON(w, http.StatusOK, h.views(r, apps))
}

func (h *LauncherHandler) lock(w http.ResponseWriter, r *http.Request) {
	engine := h.launcher.Engine()
	state, err := engine.State(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	locked, err := engine.LockedView(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if locked == nil {
		locked = []string{}
	}
	writeJSON(w, http.StatusOK, LockView{State: state.String(), Locked: locked})
}

func (h *LauncherHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	pkg := r.PathValue("pkg")
	if err := h.launcher.Open(r.Context(), pkg, req.Password); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"opened": pkg})
}

// views decorates apps with favorite, hidden, locked and badge state.
func (h *LauncherHandler) views(r *http.Request, apps []models.InstalledApp) []AppView {
	locked, err := h.launcher.Engine().LockedView(r.Context())
	if err != nil {
		h.logger.Warn("failed to read locked apps", "error", err)
	}
	counts := h.launcher.NotificationCounts(r.Context())

	out := make([]AppView, 0, len(apps))
	for _, app := range apps {
		view := AppView{
			InstalledApp:  app,
			Favorite:      h.launcher.IsFavorite(app.PackageName),
			Hidden:        h.launcher.IsHidden(app.PackageName),
			Notifications: counts[app.PackageName],
		}
		for _, pkg := range locked {
			if pkg == app.PackageName {
				view.Locked = true
				break
			}
		}
		out = append(out, view)
	}
	return out
}

// fail maps launcher errors onto HTTP statuses.
func (h *LauncherHandler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrIncorrectPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
	case errors.Is(err, shared.ErrAppNotInstalled):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrUnavailableStorage), errors.Is(err, shared.ErrCapabilityUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
