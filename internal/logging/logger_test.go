package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astnav/internal/logging"
)

func TestLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		valid bool
		want  log.Level
	}{
		{"debug", true, log.DebugLevel},
		{"INFO", true, log.InfoLevel},
		{"warn", true, log.WarnLevel},
		{"Warning", true, log.WarnLevel},
		{"error", true, log.ErrorLevel},
		{"trace", false, log.InfoLevel},
		{"", false, log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := logging.ValidLevel(tt.name); got != tt.valid {
				t.Errorf("ValidLevel(%q) = %v, want %v", tt.name, got, tt.valid)
			}
			if got := logging.New(tt.name).GetLevel(); got != tt.want {
				t.Errorf("New(%q) level = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	// Modifies the process-wide logger.
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	if logging.Default() != original {
		t.Fatal("Default should return the same logger on every call")
	}

	replacement := logging.New("info")
	logging.SetDefault(replacement)
	if logging.Default() != replacement {
		t.Fatal("SetDefault did not replace the logger")
	}

	logging.SetLevel("error")
	if replacement.GetLevel() != log.ErrorLevel {
		t.Errorf("SetLevel(error) left level %v", replacement.GetLevel())
	}
	logging.SetLevel("bogus")
	if replacement.GetLevel() != log.InfoLevel {
		t.Errorf("an unknown level should reset to info, got %v", replacement.GetLevel())
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	if got := logging.NewInteractive().GetLevel(); got != log.InfoLevel {
		t.Errorf("expected info level, got %v", got)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	if got := logging.Discard().GetLevel(); got != log.FatalLevel {
		t.Errorf("expected fatal level, got %v", got)
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	logger := logging.New("debug")
	ctx := logging.Attach(context.Background(), logger)

	if logging.From(ctx) != logger {
		t.Error("From did not return the attached logger")
	}
	if logging.From(context.Background()) != logging.Default() {
		t.Error("From without a logger should fall back to the default")
	}
}

func TestWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	ctx := logging.With(logging.Attach(context.Background(), logger), logging.FieldPath, "main.c")

	logging.From(ctx).Info("opened")
	if !strings.Contains(buf.String(), "path=main.c") {
		t.Errorf("expected the field on every entry, got %q", buf.String())
	}
	if logging.From(ctx) == logger {
		t.Error("With should derive a new logger")
	}
}
