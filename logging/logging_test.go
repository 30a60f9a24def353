package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, _ := ParseFormat(""); f != FormatConsole {
		t.Errorf("default format = %q", f)
	}
	if f, _ := ParseFormat("JSON"); f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q", f)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "json", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("schema registered", zap.String("schema", "user"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "schema registered" || entry["schema"] != "user" || entry["level"] != "INFO" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("debug", "console", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	logger.Debug("loading schemas")

	if !strings.Contains(buf.String(), " | DEBUG | loading schemas") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
}
