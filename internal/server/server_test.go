package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"nutriplan/internal/config"
	"nutriplan/internal/store"
)

func newTestServer(t *testing.T, mutate func(cfg *config.AppConfig)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.DriverMemory
	if mutate != nil {
		mutate(cfg)
	}
	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/foods", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /api/foods on empty store = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/ai-feedback", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ai-feedback without key = %d, want 503", w.Code)
	}
}

func TestCORSAllowedOrigins(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.AppConfig) {
		cfg.Server.AllowedOrigins = []string{"https://clinic.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/calculate-nutrition", nil)
	req.Header.Set("Origin", "https://clinic.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://clinic.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/calculate-nutrition", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected origin allowed: %q", got)
	}
}

func TestSQLiteDriver(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, func(cfg *config.AppConfig) {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Data.DataDir = dir
	})

	if _, ok := srv.GetStore().(*store.Store); !ok {
		t.Fatalf("store = %T, want *store.Store", srv.GetStore())
	}
	if _, err := os.Stat(filepath.Join(dir, "nutriplan.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestUnknownDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = "mongo"
	if _, err := NewServer(cfg); err == nil {
		t.Fatal("unknown driver should fail")
	}

	cfg.Store.Driver = config.DriverPostgres
	cfg.Store.DatabaseURL = ""
	if _, err := NewServer(cfg); err == nil {
		t.Fatal("postgres without DATABASE_URL should fail")
	}
}
