package configloader

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/config"
)

// ValidationError is a problem with one configuration field, or with a
// whole file when Field is empty.
type ValidationError struct {
	FilePath string
	Field    string
	Value    any
	Message  string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{e.FilePath, e.Field, e.Message} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ": ")
}

// ValidationResult holds the findings of Validate.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid reports whether no errors were found.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins the errors, or returns nil when r is valid.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i := range r.Errors {
		errs[i] = &r.Errors[i]
	}
	return errors.Join(errs...)
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

var colorModes = []string{"auto", "always", "never"}

// Validate checks a merged configuration.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if !cfg.Backend.IsValid() {
		result.fail("backend", cfg.Backend, "unknown backend %q; use clangd or treesitter", cfg.Backend)
	}
	if cfg.Backend == config.BackendClangd && strings.TrimSpace(cfg.Server.Command) == "" {
		result.fail("server.command", cfg.Server.Command, "the clangd backend needs a server command")
	}
	if cfg.QueryTimeout <= 0 {
		result.fail("query_timeout", cfg.QueryTimeout, "must be positive, got %s", cfg.QueryTimeout)
	}

	resolver := cfg.Resolver
	if resolver.Lookback < 1 {
		result.fail("resolver.lookback", resolver.Lookback, "must be at least 1, got %d", resolver.Lookback)
	}
	if resolver.Lookahead < 0 {
		result.fail("resolver.lookahead", resolver.Lookahead, "must not be negative, got %d", resolver.Lookahead)
	}
	checkKinds(result, "resolver.forward_kinds", resolver.ForwardKinds)
	checkKinds(result, "resolver.transparent_kinds", resolver.TransparentKinds)
	for _, kind := range resolver.ForwardKinds {
		if slices.Contains(resolver.TransparentKinds, kind) {
			result.warn("resolver", kind, "kind %q is listed as forward and transparent; it is treated as a wrapper", kind)
		}
	}

	if cfg.Log.Level != "" && !logging.ValidLevel(cfg.Log.Level) {
		result.fail("log.level", cfg.Log.Level, "unknown level %q; use debug, info, warn or error", cfg.Log.Level)
	}
	if cfg.Color != "" && !slices.Contains(colorModes, cfg.Color) {
		result.fail("color", cfg.Color, "unknown mode %q; use auto, always or never", cfg.Color)
	}

	return result
}

// checkKinds rejects blank kind names and warns about repeated ones.
func checkKinds(result *ValidationResult, field string, kinds []string) {
	for i, kind := range kinds {
		at := fmt.Sprintf("%s[%d]", field, i)
		switch {
		case strings.TrimSpace(kind) == "":
			result.fail(at, kind, "kind must not be empty")
		case slices.Contains(kinds[:i], kind):
			result.warn(at, kind, "duplicate kind %q", kind)
		}
	}
}
