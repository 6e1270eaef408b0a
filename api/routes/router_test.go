package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mercaly/mercaly-backend/pkg/config"
	"github.com/mercaly/mercaly-backend/pkg/logger"
)

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev

	router := NewRouter(RouterParams{
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "router-test"}),
	})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := rec.Header().Get("X-Mercaly-Env"); env != config.AppEnvDev {
		t.Fatalf("env header = %s", env)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev

	router := NewRouter(RouterParams{
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "router-test"}),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
