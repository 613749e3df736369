// Package cli provides the Cobra command structure for astnav.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags holds the persistent flags shared by all subcommands.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
	backend    string
}

// NewRootCommand creates the root astnav command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "astnav",
		Short: "Structural navigation and editing of C/C++ syntax trees",
		Long: `astnav moves a cursor over the syntax tree of a C or C++ file and edits
the file structurally, one node at a time.

The tree comes from clangd's textDocument/ast extension or from the built-in
tree-sitter backend. Parent links are reconstructed from range queries, so
navigation works even where the service only answers "what is under this
range". Edits keep the cursor and the text consistent.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&flags.backend, "backend", "",
		"syntax backend: clangd, treesitter (default from config)")

	// Add subcommands.
	rootCmd.AddCommand(newNavCommand(flags))
	rootCmd.AddCommand(newASTCommand(flags))
	rootCmd.AddCommand(newInitCommand(flags))
	rootCmd.AddCommand(newEnvCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	applyHelpStyles(rootCmd, &flags.color)

	return rootCmd
}
