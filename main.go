// Package main implements the gns3-over-mcp command line interface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gns3-over-mcp",
		Short:        "gns3-over-mcp bridges MCP clients to a GNS3 server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUninstallCmd())
	rootCmd.AddCommand(newListCmd())

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gns3-over-mcp",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gns3-over-mcp version %s\n", Version)
			return err
		},
	}
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
