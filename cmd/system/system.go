package system

import "github.com/spf13/cobra"

// NewSystemCommand groups the operational subcommands: migrations,
// database bootstrap, and docs generation.
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Maintenance and tooling commands",
	}
	cmd.AddCommand(NewMigrateCommand(), NewInitCommand(), NewGenDocsCommand())
	return cmd
}
