package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Presets(t *testing.T) {
	tests := []struct {
		env   string
		debug bool
	}{
		{"prod", false},
		{"local", true},
		{"dev", true},
		{"docker", true},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			l, err := NewLogger(tc.env, Options{})
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
				t.Errorf("debug enabled = %v, want %v", got, tc.debug)
			}
		})
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("local", Options{Level: "warn"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestNewLogger_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  string
		opts Options
	}{
		{"unknown env", "staging", Options{}},
		{"bad level", "prod", Options{Level: "loud"}},
		{"bad format", "prod", Options{Format: "xml"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewLogger(tc.env, tc.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewLogger_FormatOverride(t *testing.T) {
	for _, f := range []string{"json", "console"} {
		if _, err := NewLogger("prod", Options{Format: f}); err != nil {
			t.Errorf("format %s: %v", f, err)
		}
	}
}

func TestContext(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatal("From on empty context returned nil")
	}

	l := zap.NewExample()
	ctx := Into(context.Background(), l)
	if From(ctx) != l {
		t.Error("From did not return the stored logger")
	}
}
