package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitAndLevelString(t *testing.T) {
	defer Init("info")
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARNING")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer Restore(prev)
	defer Init("info")

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg")
	Errorf("error-msg")

	out := buf.String()
	if strings.Contains(out, "debug-msg") || strings.Contains(out, "info-msg") {
		t.Fatalf("messages below warn should be suppressed: %q", out)
	}
	if !strings.Contains(out, "[WARN] warn-msg") {
		t.Fatalf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR] error-msg") {
		t.Fatalf("error message missing: %q", out)
	}
}

func TestKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer Restore(prev)

	Init("info")
	Infow("operation failed", "collection", "users", "message", "bad filter", "dangling")

	out := buf.String()
	for _, want := range []string{
		"operation failed",
		"collection=users",
		`message="bad filter"`,
		"dangling=?",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
