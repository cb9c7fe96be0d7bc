package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/zerolauncher/internal/launcher"
	"github.com/desertthunder/zerolauncher/internal/lock"
	"github.com/desertthunder/zerolauncher/internal/repositories"
	"github.com/desertthunder/zerolauncher/internal/shared"
	tu "github.com/desertthunder/zerolauncher/internal/testing"
	"github.com/google/go-cmp/cmp"
)

type fixture struct {
	router   *BasicRouter
	launcher *launcher.Launcher
	registry *tu.MockRegistry
	store    *repositories.Store
}

func setupServer(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	store := tu.OpenStore(t)
	logger := tu.NewQuietLogger()
	registry := tu.NewMockRegistry(tu.App("com.example.mail", "Mail"), tu.App("com.example.bank", "Bank"))

	rec := launcher.NewReconciler(store, registry, &tu.MockFlag{}, launcher.ReconcilerOpts{Logger: logger})
	l := launcher.New(launcher.LauncherOpts{
		Store:      store,
		Engine:     lock.NewEngine(store, lock.EngineOpts{Logger: logger}),
		Registry:   registry,
		Counter:    tu.NewMockCounter(map[string]int{"com.example.mail": 2}),
		Reconciler: rec,
		Logger:     logger,
	})
	if err := l.Reload(ctx); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Mount(NewLauncherHandler(l, logger))

	return &fixture{router: router, launcher: l, registry: registry, store: store}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware runs in registration order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.Handle("GET /x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		if diff := cmp.Diff([]string{"first", "second", "handler"}, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle("GET /x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(tu.NewQuietLogger()))
		router.Handle("GET /boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("logging records status", func(t *testing.T) {
		var buf bytes.Buffer
		router := NewBasicRouter()
		router.Use(Logging(shared.NewLogger(&buf)))
		router.Handle("GET /teapot", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
		if !strings.Contains(buf.String(), "status=418") {
			t.Errorf("expected status in log line, got %q", buf.String())
		}
	})
}

func TestLauncherHandler(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(http.MethodGet, "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := decode[map[string]string](t, rec)["status"]; got != "ok" {
			t.Errorf("expected ok, got %q", got)
		}
	})

	t.Run("apps hides hidden unless all", func(t *testing.T) {
		f := setupServer(t)
		if err := f.launcher.HideApp(context.Background(), "com.example.bank"); err != nil {
			t.Fatalf("failed to hide: %v", err)
		}

		apps := decode[[]AppView](t, f.do(http.MethodGet, "/apps", ""))
		if len(apps) != 1 || apps[0].PackageName != "com.example.mail" {
			t.Fatalf("unexpected apps %+v", apps)
		}
		if apps[0].Notifications != 2 {
			t.Errorf("expected 2 notifications, got %d", apps[0].Notifications)
		}

		all := decode[[]AppView](t, f.do(http.MethodGet, "/apps?all=true", ""))
		if len(all) != 2 || !all[0].Hidden {
			t.Errorf("expected hidden Bank first, got %+v", all)
		}
	})

	t.Run("favorites", func(t *testing.T) {
		f := setupServer(t)
		if err := f.launcher.AddFavorite(context.Background(), "com.example.mail"); err != nil {
			t.Fatalf("failed to add favorite: %v", err)
		}

		favs := decode[[]AppView](t, f.do(http.MethodGet, "/favorites", ""))
		if len(favs) != 1 || !favs[0].Favorite {
			t.Errorf("unexpected favorites %+v", favs)
		}
	})

	t.Run("open", func(t *testing.T) {
		f := setupServer(t)

		rec := f.do(http.MethodPost, "/apps/com.example.mail/open", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if diff := cmp.Diff([]string{"com.example.mail"}, f.registry.Launched); diff != "" {
			t.Errorf("launched mismatch (-want +got):\n%s", diff)
		}

		if rec := f.do(http.MethodPost, "/apps/com.example.none/open", ""); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown app, got %d", rec.Code)
		}
		if rec := f.do(http.MethodPost, "/apps/com.example.mail/open", "{"); rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for bad body, got %d", rec.Code)
		}
	})

	t.Run("open locked app", func(t *testing.T) {
		f := setupServer(t)
		ctx := context.Background()
		engine := f.launcher.Engine()
		if err := engine.SetPassword(ctx, "1234", "1234"); err != nil {
			t.Fatalf("failed to set password: %v", err)
		}
		if _, err := engine.ToggleLock(ctx, "com.example.bank"); err != nil {
			t.Fatalf("failed to lock: %v", err)
		}

		if rec := f.do(http.MethodPost, "/apps/com.example.bank/open", `{"password":"0000"}`); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if rec := f.do(http.MethodPost, "/apps/com.example.bank/open", `{"password":"1234"}`); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		view := decode[LockView](t, f.do(http.MethodGet, "/lock", ""))
		if view.State != "enabled" {
			t.Errorf("expected enabled, got %q", view.State)
		}
		if !cmp.Equal([]string{"com.android.settings", "com.android.vending", "com.example.bank"}, view.Locked) {
			t.Errorf("unexpected locked view %v", view.Locked)
		}
	})

	t.Run("lock view when disabled", func(t *testing.T) {
		f := setupServer(t)

		view := decode[LockView](t, f.do(http.MethodGet, "/lock", ""))
		if view.State != "disabled" || view.Locked == nil || len(view.Locked) != 0 {
			t.Errorf("unexpected lock view %+v", view)
		}
	})

	t.Run("storage unavailable", func(t *testing.T) {
		f := setupServer(t)
		f.store.Close()

		rec := f.do(http.MethodGet, "/lock", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d: %s", rec.Code, rec.Body.String())
		}
		body := decode[map[string]string](t, rec)
		if !strings.Contains(body["error"], "store closed") {
			t.Errorf("unexpected error body %v", body)
		}
	})
}

func TestServeListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	go func() { done <- ServeListener(ctx, ln, handler, tu.NewQuietLogger()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
