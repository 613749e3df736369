package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/configloader"
	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/config"
	"github.com/yaklabco/astnav/pkg/fsutil"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force    bool
	resolved bool
	format   string
	output   string
}

func newInitCommand(global *globalFlags) *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new astnav configuration file",
		Long: `Create a new .astnav.yml configuration file in the current directory
holding the defaults: backend, language server command, query timeout and
the parent resolver's kind tables.

Examples:
  astnav init                      Create .astnav.yml with documented defaults
  astnav init --resolved           Write the configuration currently in effect
  astnav init --format json        Create .astnav.json instead
  astnav init --output custom.yml  Write to a custom file path`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, global, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.resolved, "resolved", false,
		"Write the merged configuration from all layers instead of the template")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .astnav.yml or .astnav.json)")

	return cmd
}

func runInit(cmd *cobra.Command, global *globalFlags, flags *initFlags) error {
	logger := logging.NewInteractive()

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: format %q must be yaml or json", ErrInvalidUsage, flags.format)
	}
	if flags.resolved && flags.format != "yaml" {
		return fmt.Errorf("%w: --resolved writes yaml only", ErrInvalidUsage)
	}

	outputPath := flags.output
	if outputPath == "" {
		if flags.format == "json" {
			outputPath = ".astnav.json"
		} else {
			outputPath = ".astnav.yml"
		}
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	if flags.resolved {
		cfg, err := loadConfig(cmd, global)
		if err != nil {
			return err
		}
		if err := configloader.WriteConfig(commandContext(cmd), cfg, absPath); err != nil {
			return err
		}
		logger.Info("wrote resolved configuration", logging.FieldPath, outputPath)
		return nil
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Format: flags.format})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := fsutil.WriteAtomic(commandContext(cmd), absPath, content, fsutil.DefaultFileMode); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("run 'astnav env' to see the environment overrides")

	return nil
}
