package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("visible", "component", "invoker")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message leaked past warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn message missing")
	}
	if !strings.Contains(out, "invoker") {
		t.Error("attribute missing from output")
	}
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("dropped") // must not panic
	if log.Enabled(nil, slog.LevelError) {
		t.Error("discard logger should report disabled")
	}
}
