package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_TextWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Prefix: "inqwheel"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("built wheels", "key", "u144856v2")

	out := buf.String()
	if !strings.Contains(out, "inqwheel") || !strings.Contains(out, "built wheels") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "u144856v2") {
		t.Errorf("expected key field in output, got: %s", out)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got: %s", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn should be written, got: %s", buf.String())
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("decoded", "skipped", 2)
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got: %s", buf.String())
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(Options{Level: "loud"}, nil); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Options{Format: "xml"}, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Options{}, &buf)
	Component(logger, "keybook").Info("saved")
	if !strings.Contains(buf.String(), "keybook") {
		t.Errorf("expected component prefix, got: %s", buf.String())
	}
}
