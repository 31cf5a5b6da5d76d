package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

func TestWireGenerator_NotConfigured(t *testing.T) {
	gen, err := wireGenerator(context.Background(), logger.Nop(), DefaultConfig())
	if err != nil {
		t.Fatalf("wireGenerator: %v", err)
	}
	if gen != nil {
		t.Fatalf("without credentials the generator should be nil, got %T", gen)
	}
}

func TestNew_WiresServer(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_PROJECT", "")
	a, err := New(context.Background(), Options{Seed: 11})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	if a.Cfg.Seed != 11 {
		t.Fatalf("seed override: want=11 got=%d", a.Cfg.Seed)
	}
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: want=200 ok got=%d %q", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dataset/download_all", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("download before run: want=404 got=%d", rec.Code)
	}
}
