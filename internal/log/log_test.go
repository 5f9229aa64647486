package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	if !strings.Contains(line, "ts=") {
		t.Fatalf("expected timestamp field in log line, got %q", line)
	}
	if !strings.Contains(line, "level=info") {
		t.Fatalf("expected level field in log line, got %q", line)
	}
	if !strings.Contains(line, "msg=hello") {
		t.Fatalf("expected message field in log line, got %q", line)
	}
	if !strings.Contains(line, "user=test") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() {
		if err := SetLevel("info"); err != nil {
			t.Fatalf("failed to restore log level: %v", err)
		}
	})

	for _, level := range []string{"debug", "info", "warn", "error", "WARNING", ""} {
		if err := SetLevel(level); err != nil {
			t.Fatalf("SetLevel(%q) returned error: %v", level, err)
		}
	}

	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestWarnFilteredBelowLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		if err := SetLevel("info"); err != nil {
			t.Fatalf("failed to restore log level: %v", err)
		}
	})

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}

	Warn(context.Background(), "should be filtered")
	if strings.TrimSpace(buf.String()) != "" {
		t.Fatalf("expected warn to be filtered at error level, got %q", buf.String())
	}
}
