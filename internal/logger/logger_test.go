package logger

import (
	"bytes"
	"context"
	"fmt"
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
		{"warn logs at info level", "info", "warn", true},
		{"info doesn't log at error level", "error", "info", false},
		{"invalid level falls back to info", "invalid", "debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.configLevel).(*implLogger)
			if got := log.shouldLog(tt.logLevel); got != tt.shouldLog {
				t.Errorf("shouldLog() = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestWriterReceivesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Debug(context.Background(), "hidden %d", 1)
	log.Warn(context.Background(), "visible %s", "warning")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "[WARN] visible warning") {
		t.Errorf("missing warn line: %q", out)
	}
}

func TestBufferKeepsMostRecentLines(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(b, "line %d", i)
	}

	got := b.Lines()
	if len(got) != 3 {
		t.Fatalf("len(Lines()) = %d, want 3", len(got))
	}
	if got[0] != "line 2" || got[2] != "line 4" {
		t.Errorf("Lines() = %v, want lines 2..4", got)
	}

	got[0] = "mutated"
	if b.Lines()[0] != "line 2" {
		t.Error("Lines() must return a copy")
	}
}
