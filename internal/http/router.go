package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/datasynth-backend/internal/http/handlers"
	httpMW "github.com/yungbote/datasynth-backend/internal/http/middleware"
	"github.com/yungbote/datasynth-backend/internal/observability"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string
	Metrics     *observability.Metrics

	DatasetHandler *httpH.DatasetHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.DefaultServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/ping/service", cfg.HealthHandler.ServiceStatus)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		if cfg.DatasetHandler != nil {
			ds := api.Group("/dataset")
			ds.GET("/generate", cfg.DatasetHandler.Generate)
			ds.GET("/download_all", cfg.DatasetHandler.DownloadAll)
			ds.GET("/download_sqlite", cfg.DatasetHandler.DownloadSQLite)
		}
	}

	return r
}
