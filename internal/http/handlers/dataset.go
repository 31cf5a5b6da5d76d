package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/export"
	"github.com/yungbote/datasynth-backend/internal/http/response"
	"github.com/yungbote/datasynth-backend/internal/orchestrator"
	"github.com/yungbote/datasynth-backend/internal/platform/apierr"
	"github.com/yungbote/datasynth-backend/internal/platform/ctxutil"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/sse"
)

var (
	errNoDataset     = errors.New("nessun dataset generato ancora")
	errRunInProgress = errors.New("a dataset generation is already running")
)

// Failure is the terminal stream record of a run that did not complete.
type Failure struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

type DatasetHandler struct {
	Log    *logger.Logger
	Runner *orchestrator.Runner
	Hub    *sse.Hub
	// TempDir holds SQLite exports while they are served. Empty uses os.TempDir.
	TempDir string
}

type DatasetHandlerDeps struct {
	Log     *logger.Logger
	Runner  *orchestrator.Runner
	Hub     *sse.Hub
	TempDir string
}

func NewDatasetHandlerWithDeps(deps DatasetHandlerDeps) *DatasetHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	hub := deps.Hub
	if hub == nil {
		hub = sse.NewHub(log)
	}
	return &DatasetHandler{
		Log:     log.With("handler", "DatasetHandler"),
		Runner:  deps.Runner,
		Hub:     hub,
		TempDir: deps.TempDir,
	}
}

// Generate runs one generation and streams its checkpoints as SSE "message"
// events. A failed run ends the stream with a Failure record.
func (h *DatasetHandler) Generate(c *gin.Context) {
	for _, key := range []string{"n_utenti", "n_corsi", "n_risorse"} {
		if _, ok := c.GetQuery(key); !ok {
			response.RespondAPIError(c, apierr.BadRequest("invalid_params", fmt.Errorf("missing query parameter %s", key)))
			return
		}
	}
	var p orchestrator.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_params", err))
		return
	}
	if err := h.Runner.Validate(p); err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_params", err))
		return
	}
	release, ok := h.Runner.Store().TryBegin()
	if !ok {
		response.RespondAPIError(c, apierr.Conflict("run_in_progress", errRunInProgress))
		return
	}

	channel := uuid.NewString()
	client := h.Hub.NewClient(channel)
	ctx := c.Request.Context()
	log := h.Log.With(ctxutil.LogFields(ctx)...)

	go func() {
		// the slot is free again by the time the stream ends
		defer h.Hub.Close(client)
		defer release()
		_, err := h.Runner.Run(ctx, p, func(ctx context.Context, cp orchestrator.Checkpoint) error {
			return h.Hub.Publish(ctx, sse.Message{Channel: channel, Data: cp})
		})
		if err == nil {
			return
		}
		ae := runError(err)
		log.Warn("Generation run ended without a dataset", "code", ae.Code, "error", err)
		_ = h.Hub.Publish(ctx, sse.Message{Channel: channel, Data: Failure{
			Progress: -1,
			Message:  err.Error(),
			Error:    ae.Code,
		}})
	}()

	h.Hub.ServeHTTP(c.Writer, c.Request, client)
}

// DownloadAll serves the latest dataset as a zip with one CSV per table.
func (h *DatasetHandler) DownloadAll(c *gin.Context) {
	ds, ok := h.Runner.Store().Latest()
	if !ok {
		response.RespondAPIError(c, apierr.NotFound("not_found", errNoDataset))
		return
	}
	var buf bytes.Buffer
	if err := export.WriteZip(&buf, ds.Ordered()); err != nil {
		response.RespondAPIError(c, apierr.Internal("export_failed", err))
		return
	}
	c.Header("Content-Disposition", "attachment; filename=dataset.zip")
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// DownloadSQLite serves the latest dataset as a SQLite database file.
func (h *DatasetHandler) DownloadSQLite(c *gin.Context) {
	ds, ok := h.Runner.Store().Latest()
	if !ok {
		response.RespondAPIError(c, apierr.NotFound("not_found", errNoDataset))
		return
	}
	dir, err := os.MkdirTemp(h.TempDir, "datasynth-*")
	if err != nil {
		response.RespondAPIError(c, apierr.Internal("export_failed", err))
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			h.Log.Warn("Failed to remove SQLite export", "dir", dir, "error", err)
		}
	}()
	path := filepath.Join(dir, "dataset.db")
	if err := export.WriteSQLite(c.Request.Context(), h.Log, path, ds.Ordered()); err != nil {
		response.RespondAPIError(c, apierr.Internal("export_failed", err))
		return
	}
	c.FileAttachment(path, "dataset.db")
}

// runError maps a run failure onto an API error code.
func runError(err error) *apierr.Error {
	var (
		ve *dataset.ValidationError
		ge *dataset.GenerationIntegrityError
	)
	switch {
	case errors.Is(err, orchestrator.ErrInvalidParams):
		return apierr.BadRequest("invalid_params", err)
	case errors.As(err, &ve):
		return apierr.Internal("validation_failed", err)
	case errors.As(err, &ge):
		return apierr.Internal("generation_integrity", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, "canceled", err)
	default:
		return apierr.Internal("generation_failed", err)
	}
}
