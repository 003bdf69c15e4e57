package util

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerConfig(t *testing.T) {
	prod := loggerConfig("production", "warn", "json")
	if prod.Encoding != "json" || prod.Sampling == nil || !prod.DisableStacktrace {
		t.Fatalf("unexpected production config %+v", prod)
	}
	if prod.Level.Level() != zapcore.WarnLevel || prod.EncoderConfig.TimeKey != "timestamp" {
		t.Fatalf("unexpected production level or time key: %v %q", prod.Level.Level(), prod.EncoderConfig.TimeKey)
	}

	dev := loggerConfig("development", "debug", "console")
	if dev.Encoding != "console" || dev.Sampling != nil || dev.Level.Level() != zapcore.DebugLevel {
		t.Fatalf("unexpected development config %+v", dev)
	}
	if len(dev.OutputPaths) != 1 || dev.OutputPaths[0] != "stdout" {
		t.Fatalf("expected stdout output, got %v", dev.OutputPaths)
	}
}
