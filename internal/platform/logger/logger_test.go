package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	kv := sanitizeKVs([]interface{}{
		"GEMINI_API_KEY", "abc",
		"email", "ada@example.com",
		"row", map[string]interface{}{"password": "$2y$10$x", "city": "Roma"},
		"table", "user",
		"dangling",
	})
	if len(kv) != 9 {
		t.Fatalf("len: want=9 got=%d", len(kv))
	}
	if kv[1] != "[REDACTED]" {
		t.Fatalf("api key: want=[REDACTED] got=%v", kv[1])
	}
	if s, _ := kv[3].(string); !strings.HasPrefix(s, "hash:") || len(s) != len("hash:")+12 {
		t.Fatalf("email: want hash got=%v", kv[3])
	}
	row, _ := kv[5].(map[string]interface{})
	if row["password"] != "[REDACTED]" || row["city"] != "Roma" {
		t.Fatalf("nested row: got=%v", row)
	}
	if kv[7] != "user" || kv[8] != "dangling" {
		t.Fatalf("plain values: got=%v %v", kv[7], kv[8])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"development", "production", "prod", ""} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("component", "test").Debug("hello", "email", "x@y.z")
	}
	Nop().Info("discarded")
}
