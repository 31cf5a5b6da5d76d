package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestNewClient_NotConfigured(t *testing.T) {
	_, err := NewClient(context.Background(), nil, Config{APIKey: "  ", Model: "m"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured got=%v", err)
	}
}

func TestAPIError(t *testing.T) {
	cause := genai.APIError{Code: 429, Message: "quota"}
	err := fmt.Errorf("batch: %w", &APIError{Model: DefaultModel, Err: cause})

	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError in chain")
	}
	if got := ae.HTTPStatusCode(); got != 429 {
		t.Fatalf("HTTPStatusCode: want=429 got=%d", got)
	}
	if !strings.HasPrefix(ae.Error(), "gemini "+DefaultModel+":") {
		t.Fatalf("Error(): got=%q", ae.Error())
	}
	plain := &APIError{Model: "m", Err: errors.New("empty response")}
	if plain.HTTPStatusCode() != 0 {
		t.Fatalf("non-genai cause should report 0")
	}
	if (&APIError{}).Error() != "gemini error" {
		t.Fatalf("zero APIError message")
	}
}

func TestBackendName(t *testing.T) {
	if backendName(genai.BackendVertexAI) != "vertex" || backendName(genai.BackendGeminiAPI) != "gemini-api" {
		t.Fatalf("backendName mismatch")
	}
}
