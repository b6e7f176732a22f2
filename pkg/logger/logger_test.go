package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", "debug", true},
		{"info logs at debug level", "debug", "info", true},
		{"debug doesn't log at info level", "info", "debug", false},
		{"warn logs at info level", "INFO", "warn", true},
		{"invalid config falls back to info", "verbose", "debug", false},
		{"error always logs", "error", "error", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.configLevel).(*implLogger)
			if got := l.shouldLog(tt.logLevel); got != tt.shouldLog {
				t.Errorf("shouldLog() = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", &buf)
	ctx := context.Background()
	l.Info(ctx, "hidden %d", 1)
	l.Warn(ctx, "halaman %d gagal", 3)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] halaman 3 gagal") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error(context.Background(), "nothing %s", "here")
}
