package http

import "github.com/spf13/cobra"

// NewHTTPCommand groups the server subcommands.
func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "HTTP server commands",
	}
	cmd.AddCommand(NewStartCommand())
	return cmd
}
