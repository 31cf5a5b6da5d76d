package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

// Request is one text-generation call. Prompts are already fully rendered.
type Request struct {
	Prompt      string
	Temperature float32
}

// Client is the handle every generation stage receives. It is built once at
// process start and passed down explicitly.
type Client interface {
	GenerateText(ctx context.Context, req Request) (string, error)
	Model() string
}

type Config struct {
	APIKey   string
	Project  string
	Location string
	Model    string
	Timeout  time.Duration
}

const DefaultModel = "gemini-2.5-flash"

var ErrNotConfigured = errors.New("gemini: neither api key nor project configured")

type client struct {
	log   *logger.Logger
	genai *genai.Client
	model string
}

// NewClient builds a Gemini API client when an API key is set, or a Vertex AI
// client when a project is set (credentials then come from
// GOOGLE_APPLICATION_CREDENTIALS).
func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	cc := &genai.ClientConfig{}
	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case strings.TrimSpace(cfg.Project) != "":
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		if cc.Location == "" {
			cc.Location = "us-central1"
		}
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, ErrNotConfigured
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info("Gemini client initialized", "model", model, "backend", backendName(cc.Backend))
	return &client{log: log.With("component", "GeminiClient"), genai: gc, model: model}, nil
}

func (c *client) Model() string { return c.model }

func (c *client) GenerateText(ctx context.Context, req Request) (string, error) {
	ctx, span := otel.Tracer("datasynth/gemini").Start(ctx, "gemini.GenerateText")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.model", c.model),
		attribute.Int("gemini.prompt_chars", len(req.Prompt)),
	)

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	})
	if err != nil {
		span.RecordError(err)
		return "", &APIError{Model: c.model, Err: err}
	}
	text := strings.TrimSpace(resp.Text())
	c.log.Debug("Gemini response received", "chars", len(text), "latency_ms", time.Since(start).Milliseconds())
	if text == "" {
		return "", &APIError{Model: c.model, Err: errors.New("empty response")}
	}
	return text, nil
}

// APIError wraps any failure talking to the service.
type APIError struct {
	Model string
	Err   error
}

func (e *APIError) Error() string {
	if e == nil || e.Err == nil {
		return "gemini error"
	}
	return fmt.Sprintf("gemini %s: %v", e.Model, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// HTTPStatusCode exposes the status of an underlying genai.APIError, 0 otherwise.
func (e *APIError) HTTPStatusCode() int {
	var ae genai.APIError
	if errors.As(e.Err, &ae) {
		return ae.Code
	}
	var aep *genai.APIError
	if errors.As(e.Err, &aep) && aep != nil {
		return aep.Code
	}
	return 0
}

func backendName(b genai.Backend) string {
	switch b {
	case genai.BackendVertexAI:
		return "vertex"
	case genai.BackendGeminiAPI:
		return "gemini-api"
	default:
		return "unspecified"
	}
}
