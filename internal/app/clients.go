package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/datasynth-backend/internal/generation"
	"github.com/yungbote/datasynth-backend/internal/platform/gemini"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

// wireGenerator returns nil when no Gemini credentials are configured; runs
// then skip the external columns.
func wireGenerator(ctx context.Context, log *logger.Logger, cfg Config) (generation.Generator, error) {
	log.Info("Wiring generator client...")
	client, err := gemini.NewClient(ctx, log, gemini.Config{
		APIKey:   cfg.Gemini.APIKey,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
		Model:    cfg.Gemini.Model,
		Timeout:  cfg.GeminiTimeout(),
	})
	if errors.Is(err, gemini.ErrNotConfigured) {
		log.Warn("Gemini not configured, semantic columns will stay empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	log.Info("Gemini client ready", "model", client.Model())
	return client, nil
}
