package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/astnav/internal/configloader"
)

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables astnav reads",
		Long: `List the ASTNAV_* environment variables that override configuration
files. Environment values sit above every config file and below command-line
flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return configloader.WriteEnvUsage(cmd.OutOrStdout())
		},
	}
}
