package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetingsview",
		Short:         "Server-rendered list of meetings from a collection endpoint",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRenderCmd())

	return rootCmd
}

// addGlobalFlags registers flags shared by every command. Flags override
// environment variables, which override the config file.
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file (env CONFIG_FILE)")
	cmd.PersistentFlags().String("meetings-url", "", "collection endpoint (env MEETINGS_URL)")
	cmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
}
