// Package configloader finds, merges and validates astnav configuration:
// system, XDG user and project files, ASTNAV_* variables and flags.
package configloader

import (
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/astnav/pkg/config"
	"github.com/yaklabco/astnav/pkg/fsutil"
)

// LoadOptions controls which layers Load reads.
type LoadOptions struct {
	// WorkingDir starts the project config search. Empty means the
	// process working directory.
	WorkingDir string

	// ExplicitPath is the --config file, merged above the project file.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// CLIConfig holds flag values and is merged last.
	CLIConfig *config.Config
}

// LoadResult contains the resolved configuration and where it came from.
type LoadResult struct {
	Config *config.Config

	// Sources lists the files that were merged, lowest precedence first.
	Sources []Source

	// LoadedFrom holds the paths of Sources, in the same order.
	LoadedFrom []string

	// Warnings contains non-fatal validation findings.
	Warnings []string
}

// Load resolves the final configuration. Each layer overrides the ones
// before it: defaults, system file, user file, project file, the explicit
// file, ASTNAV_* variables and finally opts.CLIConfig.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	var skip []Scope
	if opts.IgnoreSystemConfig {
		skip = append(skip, ScopeSystem)
	}
	if opts.IgnoreUserConfig {
		skip = append(skip, ScopeUser)
	}
	if opts.IgnoreProjectConfig {
		skip = append(skip, ScopeProject)
	}
	sources, err := Discover(ctx, workDir, skip...)
	if err != nil {
		return nil, err
	}
	if opts.ExplicitPath != "" {
		sources = append(sources, Source{Scope: ScopeExplicit, Path: opts.ExplicitPath})
	}

	result := &LoadResult{}
	cfg := config.NewConfig()
	for _, src := range sources {
		layer, err := loadConfigFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", src.Scope, err)
		}
		cfg = merge(cfg, layer)
		result.Sources = append(result.Sources, src)
		result.LoadedFrom = append(result.LoadedFrom, src.Path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if err := validation.Err(); err != nil {
		return nil, err
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile reads one YAML layer. Unknown keys are an error.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg, err := config.Unmarshal(content)
	if err != nil {
		return nil, &ValidationError{FilePath: path, Message: err.Error()}
	}

	return cfg, nil
}

// WriteConfig replaces path with cfg as YAML under the default header.
func WriteConfig(ctx context.Context, cfg *config.Config, path string) error {
	content, err := config.Marshal(cfg, config.DefaultTemplateHeader())
	if err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(ctx, path, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
