package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the storefront API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "storefront-api",
		Short:        "Storefront account and session service",
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
