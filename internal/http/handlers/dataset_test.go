package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/orchestrator"
)

func newTestRouter(t *testing.T) (*gin.Engine, *orchestrator.Runner) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	runner := orchestrator.NewRunner(orchestrator.Config{
		Seed:    7,
		MaxRows: 50,
		Now:     func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	h := NewDatasetHandlerWithDeps(DatasetHandlerDeps{Runner: runner, TempDir: t.TempDir()})
	r := gin.New()
	r.GET("/generate", h.Generate)
	r.GET("/download_all", h.DownloadAll)
	r.GET("/download_sqlite", h.DownloadSQLite)
	return r, runner
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDatasetHandler_DownloadsBeforeAnyRun(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, target := range []string{"/download_all", "/download_sqlite"} {
		rec := get(r, target)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: want=404 got=%d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"not_found"`) {
			t.Fatalf("%s: unexpected body %s", target, rec.Body.String())
		}
	}
}

func TestDatasetHandler_GenerateStreamsCheckpoints(t *testing.T) {
	r, runner := newTestRouter(t)

	rec := get(r, "/generate?n_utenti=4&n_corsi=2&n_risorse=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	// no generator: 0 15 30 45 60 90 100
	if got := strings.Count(body, "event: message\n"); got != 7 {
		t.Fatalf("events: want=7 got=%d body=%q", got, body)
	}
	for _, p := range []int{0, 15, 30, 45, 60, 90, 100} {
		if !strings.Contains(body, fmt.Sprintf(`"progress":%d,`, p)) {
			t.Fatalf("missing checkpoint %d", p)
		}
	}
	if !strings.Contains(body, `"result":{`) {
		t.Fatalf("final checkpoint should carry the result")
	}
	if _, ok := runner.Store().Latest(); !ok {
		t.Fatalf("dataset should be published")
	}

	zipRec := get(r, "/download_all")
	if zipRec.Code != http.StatusOK {
		t.Fatalf("download_all: want=200 got=%d", zipRec.Code)
	}
	if cd := zipRec.Header().Get("Content-Disposition"); !strings.Contains(cd, "dataset.zip") {
		t.Fatalf("content disposition: got=%q", cd)
	}
	zr, err := zip.NewReader(bytes.NewReader(zipRec.Body.Bytes()), int64(zipRec.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != len(dataset.TableNames) {
		t.Fatalf("zip entries: want=%d got=%d", len(dataset.TableNames), len(zr.File))
	}

	dbRec := get(r, "/download_sqlite")
	if dbRec.Code != http.StatusOK {
		t.Fatalf("download_sqlite: want=200 got=%d", dbRec.Code)
	}
	if !bytes.HasPrefix(dbRec.Body.Bytes(), []byte("SQLite format 3\x00")) {
		t.Fatalf("download_sqlite should serve a SQLite file")
	}
}

func TestDatasetHandler_RejectsBadParams(t *testing.T) {
	r, _ := newTestRouter(t)
	cases := []string{
		"/generate?n_utenti=1&n_corsi=1",
		"/generate?n_utenti=x&n_corsi=1&n_risorse=1",
		"/generate?n_utenti=-1&n_corsi=1&n_risorse=1",
		"/generate?n_utenti=51&n_corsi=1&n_risorse=1",
		"/generate?n_utenti=0&n_corsi=2&n_risorse=3",
	}
	for _, target := range cases {
		rec := get(r, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: want=400 got=%d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"invalid_params"`) {
			t.Fatalf("%s: unexpected body %s", target, rec.Body.String())
		}
	}
}

func TestDatasetHandler_OneRunAtATime(t *testing.T) {
	r, runner := newTestRouter(t)
	release, ok := runner.Store().TryBegin()
	if !ok {
		t.Fatal("expected to reserve the run slot")
	}
	rec := get(r, "/generate?n_utenti=1&n_corsi=1&n_risorse=1")
	if rec.Code != http.StatusConflict {
		t.Fatalf("busy: want=409 got=%d", rec.Code)
	}
	release()
	if rec := get(r, "/generate?n_utenti=1&n_corsi=1&n_risorse=1"); rec.Code != http.StatusOK {
		t.Fatalf("after release: want=200 got=%d", rec.Code)
	}
}

func TestRunError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("keys stage: %w", &dataset.ValidationError{Table: "user"}), 500, "validation_failed"},
		{&dataset.GenerationIntegrityError{Table: "course"}, 500, "generation_integrity"},
		{fmt.Errorf("%w: bad", orchestrator.ErrInvalidParams), 400, "invalid_params"},
		{fmt.Errorf("emit checkpoint 30: %w", context.Canceled), 503, "canceled"},
		{errors.New("boom"), 500, "generation_failed"},
	}
	for _, tc := range cases {
		got := runError(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("runError(%v): want=%d/%s got=%d/%s", tc.err, tc.status, tc.code, got.Status, got.Code)
		}
	}
}
