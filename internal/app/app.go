package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/datasynth-backend/internal/http"
	"github.com/yungbote/datasynth-backend/internal/observability"
	"github.com/yungbote/datasynth-backend/internal/orchestrator"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
	"github.com/yungbote/datasynth-backend/internal/platform/retry"
	"github.com/yungbote/datasynth-backend/internal/sse"
	"github.com/yungbote/datasynth-backend/internal/taxonomy"
)

var Version = "dev"

type Options struct {
	ConfigPath string
	// Overrides applied after config loading, typically from CLI flags.
	TagMapPath string
	Seed       uint64
}

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Runner  *orchestrator.Runner
	SSEHub  *sse.Hub
	Metrics *observability.Metrics
	Server  *http.Server

	shutdownOtel func(context.Context) error
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := LoadConfig(opts.ConfigPath, nil)
	if err != nil {
		return nil, err
	}
	if opts.TagMapPath != "" {
		cfg.TagMapPath = opts.TagMapPath
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: observability.DefaultServiceName,
		Environment: cfg.Otel.Environment,
		Version:     Version,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})
	metrics := observability.Init(cfg.MetricsEnabled)

	tagMap, err := taxonomy.LoadTagMap(cfg.TagMapPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load tag map: %w", err)
	}

	gen, err := wireGenerator(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	runner := orchestrator.NewRunner(orchestrator.Config{
		Generator:   gen,
		Log:         log,
		Retry:       retry.Fixed(cfg.Retry.MaxAttempts, cfg.RetryDelay()),
		TagMap:      tagMap,
		Seed:        cfg.Seed,
		EmailDomain: cfg.UserEmailDomain,
		MaxRows:     cfg.MaxRowsPerTable,
		Metrics:     metrics,
	})
	hub := sse.NewHub(log)
	handlers := wireHandlers(log, runner, hub)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Runner:       runner,
		SSEHub:       hub,
		Metrics:      metrics,
		Server:       wireServer(log, cfg, handlers, metrics),
		shutdownOtel: shutdownOtel,
	}, nil
}

// Serve blocks until ctx is canceled or the listener fails.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.shutdownOtel != nil {
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
