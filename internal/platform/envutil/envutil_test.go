package envutil

import (
	"testing"
	"time"
)

func TestTypedLookups(t *testing.T) {
	t.Setenv("DS_STR", "  hello ")
	t.Setenv("DS_INT", "42")
	t.Setenv("DS_BAD_INT", "forty")
	t.Setenv("DS_SECS", "3")
	t.Setenv("DS_BOOL", "Yes")
	t.Setenv("DS_BAD_BOOL", "maybe")
	t.Setenv("DS_FLOAT", "0.25")
	t.Setenv("DS_LIST", "a, ,b,")

	if got := String("DS_STR", "x", nil); got != "hello" {
		t.Fatalf("String: want=hello got=%q", got)
	}
	if got := String("DS_UNSET", "x", nil); got != "x" {
		t.Fatalf("String default: want=x got=%q", got)
	}
	if got := Int("DS_INT", 1, nil); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	if got := Int("DS_BAD_INT", 7, nil); got != 7 {
		t.Fatalf("Int fallback: want=7 got=%d", got)
	}
	if got := Int64("DS_INT", 0, nil); got != 42 {
		t.Fatalf("Int64: want=42 got=%d", got)
	}
	if got := Seconds("DS_SECS", time.Second, nil); got != 3*time.Second {
		t.Fatalf("Seconds: want=3s got=%s", got)
	}
	if !Bool("DS_BOOL", false, nil) {
		t.Fatalf("Bool: want=true")
	}
	if !Bool("DS_BAD_BOOL", true, nil) {
		t.Fatalf("Bool fallback: want=true")
	}
	if got := Float("DS_FLOAT", 1, nil); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
	if got := List("DS_LIST", nil, nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: want=[a b] got=%v", got)
	}
}
