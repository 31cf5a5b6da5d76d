package app

import (
	"github.com/yungbote/datasynth-backend/internal/http"
	httpH "github.com/yungbote/datasynth-backend/internal/http/handlers"
	"github.com/yungbote/datasynth-backend/internal/observability"
	"github.com/yungbote/datasynth-backend/internal/orchestrator"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/sse"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Dataset *httpH.DatasetHandler
}

func wireHandlers(log *logger.Logger, runner *orchestrator.Runner, hub *sse.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Dataset: httpH.NewDatasetHandlerWithDeps(httpH.DatasetHandlerDeps{
			Log:    log,
			Runner: runner,
			Hub:    hub,
		}),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		CORSOrigins:    cfg.CORSOrigins,
		Metrics:        metrics,
		HealthHandler:  handlers.Health,
		DatasetHandler: handlers.Dataset,
	})
}
