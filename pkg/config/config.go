// Package config defines core configuration types for astnav.
// These types are pure data structures; discovery and merging live in
// internal/configloader.
package config

import (
	"slices"
	"time"
)

// Backend selects the syntax service implementation.
type Backend string

const (
	BackendClangd     Backend = "clangd"
	BackendTreeSitter Backend = "treesitter"
)

// IsValid returns true if the backend is known.
func (b Backend) IsValid() bool {
	switch b {
	case BackendClangd, BackendTreeSitter:
		return true
	default:
		return false
	}
}

// ServerConfig describes how to launch the language server.
type ServerConfig struct {
	Command string   `yaml:"command" json:"command"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty"`
}

// ResolverConfig tunes the parent resolver's scans.
type ResolverConfig struct {
	// Lookback bounds the probes of a backward scan.
	Lookback int `yaml:"lookback" json:"lookback"`

	// Lookahead bounds the probes of a forward scan.
	Lookahead int `yaml:"lookahead" json:"lookahead"`

	// ForwardKinds are node kinds whose parent may only materialize when
	// queried past the node's end.
	ForwardKinds []string `yaml:"forward_kinds" json:"forward_kinds"`

	// TransparentKinds are implicit wrapper kinds that share their child's
	// range and are skipped when resolving parents and focusing.
	TransparentKinds []string `yaml:"transparent_kinds" json:"transparent_kinds"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Config is the root configuration structure for astnav.
type Config struct {
	// Backend is "clangd" or "treesitter".
	Backend Backend `yaml:"backend" json:"backend"`

	// Server launches the language server for the clangd backend.
	Server ServerConfig `yaml:"server" json:"server"`

	// QueryTimeout bounds a single AST round trip.
	QueryTimeout time.Duration `yaml:"query_timeout" json:"query_timeout"`

	// Resolver tunes parent resolution.
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`

	// Log configures logging.
	Log LogConfig `yaml:"log" json:"log"`

	// CLI-level options (not persisted to config files).

	// Color is "auto", "always" or "never".
	Color string `yaml:"-" json:"-"`

	// Debug forces debug logging.
	Debug bool `yaml:"-" json:"-"`
}

// Default values.
const (
	DefaultLookback     = 64
	DefaultLookahead    = 64
	DefaultQueryTimeout = 2 * time.Second
	DefaultServer       = "clangd"
)

// DefaultForwardKinds lists declaration and call kinds that the service
// sometimes only relates to their parent when queried past their end.
func DefaultForwardKinds() []string {
	return []string{"Function", "CXXMethod", "Var", "Call", "DeclRef", "CXXMemberCall", "Member"}
}

// DefaultTransparentKinds lists implicit wrapper kinds clangd inserts with
// the same range as their child.
func DefaultTransparentKinds() []string {
	return []string{
		"ImplicitCast", "ExprWithCleanups", "MaterializeTemporary",
		"CXXBindTemporary", "Constant", "FullExpr",
	}
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Backend: BackendClangd,
		Server: ServerConfig{
			Command: DefaultServer,
			Args:    []string{"--log=error"},
		},
		QueryTimeout: DefaultQueryTimeout,
		Resolver: ResolverConfig{
			Lookback:         DefaultLookback,
			Lookahead:        DefaultLookahead,
			ForwardKinds:     DefaultForwardKinds(),
			TransparentKinds: DefaultTransparentKinds(),
		},
		Log:   LogConfig{Level: "info"},
		Color: "auto",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Server.Args = slices.Clone(c.Server.Args)
	clone.Resolver.ForwardKinds = slices.Clone(c.Resolver.ForwardKinds)
	clone.Resolver.TransparentKinds = slices.Clone(c.Resolver.TransparentKinds)
	return &clone
}
