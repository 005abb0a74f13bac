// Package cmd assembles the bookline command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/bookline/bookline_backend/cmd/http"
	systemcmd "github.com/bookline/bookline_backend/cmd/system"
	"github.com/bookline/bookline_backend/pkg/constants"
)

var rootCmd = &cobra.Command{
	Use:     "bookline",
	Version: constants.ServiceVersion,
	Short:   "Bookline appointment booking platform.",
	Long: `Bookline connects clients with professionals: professionals publish their
availability, clients book appointments against it, and every change is recorded
as a notification.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Subcommands read this through cmd.Root(), so no package-level var.
	rootCmd.PersistentFlags().String("config", "config.yaml", "config file path")

	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
