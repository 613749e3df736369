package cli

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/treesitter"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit and build date of astnav, the Go toolchain it
was built with, and whether the tree-sitter backend is compiled in.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return err
			}

			log.NewWithOptions(cmd.OutOrStdout(), log.Options{Level: log.InfoLevel}).
				Info("astnav",
					logging.FieldVersion, info.Version,
					logging.FieldCommit, info.Commit,
					logging.FieldBuilt, info.Date,
					"go", runtime.Version(),
					"treesitter", treesitter.Available(),
				)
			return nil
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print the version number only")

	return cmd
}
