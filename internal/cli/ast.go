package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/internal/ui/pretty"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/fsutil"
	"github.com/yaklabco/astnav/pkg/langdetect"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// astFlags holds the flags for the ast command.
type astFlags struct {
	rng    string
	format string
}

func newASTCommand(global *globalFlags) *cobra.Command {
	flags := &astFlags{}

	cmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "Print the syntax tree the service returns for a range",
		Long: `Send a single AST query for a range of FILE and print the reply as
returned by the backend, before normalization.

Without --range the whole file is queried.

Examples:
  astnav ast main.c
  astnav ast main.c --range 4:2-4:19
  astnav ast main.c --range 4:10 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAST(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.rng, "range", "", "range to query, as L:C-L:C or L:C")
	cmd.Flags().StringVar(&flags.format, "format", "tree", "output format: tree or json")

	return cmd
}

func runAST(cmd *cobra.Command, global *globalFlags, flags *astFlags, path string) error {
	ctx := commandContext(cmd)

	if flags.format != "tree" && flags.format != "json" {
		return fmt.Errorf("%w: format %q must be tree or json", ErrInvalidUsage, flags.format)
	}

	cfg, err := loadConfig(cmd, global)
	if err != nil {
		return err
	}
	ctx = logging.With(withLogger(ctx, cfg), logging.FieldPath, path)
	logger := logging.From(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	_, content, err := fsutil.Load(ctx, absPath)
	if err != nil {
		return err
	}

	uri := fsutil.PathToURI(absPath)
	snap := document.NewSnapshot(uri, 1, content)
	rng := snap.Full()
	if flags.rng != "" {
		if rng, err = document.ParseRange(flags.rng); err != nil {
			return fmt.Errorf("invalid --range: %w", err)
		}
		if err := snap.CheckRange(rng); err != nil {
			return fmt.Errorf("invalid --range: %w", err)
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	svc, err := openBackend(ctx, cfg, wd)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.close(ctx); err != nil {
			logger.Warn("backend shutdown failed", logging.FieldError, err)
		}
	}()

	if syncer, ok := svc.service.(syntax.DocumentSyncer); ok {
		languageID := langdetect.LanguageID(absPath, content)
		if err := syncer.DidOpen(ctx, uri, languageID, snap.Version, snap.Text()); err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = syncer.DidClose(ctx, uri) }()
	}

	logger.Debug("querying", logging.FieldURI, uri, logging.FieldRange, rng)
	reply, err := svc.service.AST(ctx, syntax.Request{URI: uri, Version: snap.Version, Range: rng})
	if err != nil {
		return fmt.Errorf("query %s: %w", rng, err)
	}

	out := cmd.OutOrStdout()
	if flags.format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reply); err != nil {
			return fmt.Errorf("encode reply: %w", err)
		}
		return nil
	}

	styles := pretty.NewStyles(pretty.IsColorEnabled(cfg.Color, out))
	if _, err := io.WriteString(out, styles.FormatTree(reply)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
