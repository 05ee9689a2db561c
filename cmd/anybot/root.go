package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"anybot/internal/version"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           version.AppName,
		Short:         "One handler for Telegram and VK bots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "anybot.yaml", "path to configuration file")

	root.AddCommand(newRunCommand(&configPath))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.AppName, version.Version)
		},
	})
	return root
}
