package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datasynth.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8000" || cfg.MaxRowsPerTable != 5000 || cfg.UserEmailDomain != "example.com" {
		t.Fatalf("defaults: got=%+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.RetryDelay() != 5*time.Second {
		t.Fatalf("retry defaults: got=%+v", cfg.Retry)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
port: "9100"
max_rows_per_table: 200
user_email_domain: scuola.example.it
cors_origins: ["https://a.example"]
gemini:
  model: gemini-2.0-flash
retry:
  max_attempts: 5
  delay_seconds: 1
`)
	t.Setenv("PORT", "9200")
	t.Setenv("GENERATION_SEED", "99")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := LoadConfig(path, nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9200" {
		t.Fatalf("env should override file: want=9200 got=%s", cfg.Port)
	}
	if cfg.MaxRowsPerTable != 200 || cfg.UserEmailDomain != "scuola.example.it" {
		t.Fatalf("file values: got=%+v", cfg)
	}
	if cfg.Seed != 99 || !cfg.Otel.Enabled {
		t.Fatalf("env values: seed=%d otel=%v", cfg.Seed, cfg.Otel.Enabled)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" || cfg.Gemini.Location != "us-central1" {
		t.Fatalf("nested gemini: got=%+v", cfg.Gemini)
	}
	if cfg.Retry.MaxAttempts != 5 || len(cfg.CORSOrigins) != 1 {
		t.Fatalf("retry/cors: got=%+v %v", cfg.Retry, cfg.CORSOrigins)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "port: [",
		"zero max rows": "max_rows_per_table: 0",
		"bad log mode":  "log_mode: loud",
		"bad ratio":     "otel:\n  sample_ratio: 2",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, body), nil); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("missing file: got=%v", err)
	}
}
