package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dense-analysis/pie/pkg/database"
	"github.com/dense-analysis/pie/pkg/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  `Apply every pending schema migration to the configured PostgreSQL database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		connString := cfg.Database.ConnectionString()
		if err := database.Migrate(connString, logger); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Database schema is up to date (%s)\n", green("✓"), logging.SanitizeConnectionString(connString))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
