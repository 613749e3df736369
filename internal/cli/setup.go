package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/astnav/internal/configloader"
	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/clangd"
	"github.com/yaklabco/astnav/pkg/config"
	"github.com/yaklabco/astnav/pkg/fsutil"
	"github.com/yaklabco/astnav/pkg/syntax"
	"github.com/yaklabco/astnav/pkg/treesitter"
)

// loadConfig resolves the configuration with the global flags on top.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	ctx := commandContext(cmd)

	cliCfg := &config.Config{Debug: flags.debug}
	if cmd.Flags().Changed("color") {
		cliCfg.Color = flags.color
	}
	if flags.backend != "" {
		cliCfg.Backend = config.Backend(flags.backend)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: flags.configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	cfg := loadResult.Config
	if !cfg.Debug {
		logging.SetLevel(cfg.Log.Level)
	}

	logger := logging.Default()
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldBackend, cfg.Backend,
		"query_timeout", cfg.QueryTimeout,
		"lookback", cfg.Resolver.Lookback,
		"lookahead", cfg.Resolver.Lookahead,
	)

	return cfg, nil
}

// backend is an open syntax service and the function that shuts it down.
type backend struct {
	service syntax.Service
	close   func(ctx context.Context) error
}

// openBackend starts the configured syntax service. rootDir is sent to
// clangd as the workspace root.
func openBackend(ctx context.Context, cfg *config.Config, rootDir string) (*backend, error) {
	logger := logging.From(ctx).With(logging.FieldBackend, cfg.Backend)
	switch cfg.Backend {
	case config.BackendTreeSitter:
		if !treesitter.Available() {
			return nil, treesitter.ErrUnavailable
		}
		return &backend{
			service: treesitter.New(treesitter.WithLogger(logger)),
			close:   func(context.Context) error { return nil },
		}, nil

	case config.BackendClangd:
		client, err := clangd.Start(ctx, cfg.Server.Command, cfg.Server.Args, clangd.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("start %s: %w", cfg.Server.Command, err)
		}
		if err := client.Initialize(ctx, fsutil.PathToURI(rootDir)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("initialize %s: %w", cfg.Server.Command, err)
		}
		logger.Debug("language server ready", logging.FieldServer, cfg.Server.Command)
		return &backend{
			service: client,
			close: func(ctx context.Context) error {
				shutdownErr := client.Shutdown(ctx)
				return errors.Join(shutdownErr, client.Close())
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// withLogger attaches the engine logger to ctx: timestamped when stderr is
// a terminal, plain otherwise. Debug output follows the configured level.
func withLogger(ctx context.Context, cfg *config.Config) context.Context {
	var logger *log.Logger
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logger = logging.NewInteractive()
	} else {
		logger = logging.New("info")
	}
	switch {
	case cfg.Debug:
		logger.SetLevel(log.DebugLevel)
	case cfg.Log.Level != "":
		if level, ok := logging.ParseLevel(cfg.Log.Level); ok {
			logger.SetLevel(level)
		}
	}
	return logging.Attach(ctx, logger)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
