package cmd

import (
	"github.com/spf13/cobra"

	"repwatch-console/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "repwatch-console",
		Short: "administrative console for the remote work monitoring product",
	}
	rootCmd.AddCommand(server(config))
	return rootCmd
}
