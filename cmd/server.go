package cmd

import (
	"github.com/spf13/cobra"

	"repwatch-console/config"
	httpserver "repwatch-console/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start the admin console http server",
		Run: func(cmd *cobra.Command, args []string) {
			httpserver.RunHttp(config)
		},
	}
}
