// Package main provides the operator CLI for deployment and operations tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "operator",
		Short:        "chenguang operator - Deployment and operations CLI",
		SilenceUsage: true,
		Example: `  operator migrate              # Enable pgvector and migrate tables
  operator migrate --dry-run    # Show what would be migrated
  operator schema               # Execute all SQL files in migrations/
  operator schema --file 001_init.sql
  operator validate             # Check environment and database`,
	}

	rootCmd.AddCommand(newMigrateCmd(), newSchemaCmd(), newValidateCmd(), newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chenguang operator v%s\n", version)
		},
	}
}
