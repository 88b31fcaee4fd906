package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bunca/bakery-service/config"
	"github.com/bunca/bakery-service/internal/database"
)

var migrateList bool

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the SQL migrations bundled with the binary that have not run yet.
Applied versions are recorded in schema_migrations, so running the command
again is a no-op.`,
	Example: `  bakery migrate
  bakery migrate --list`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "List bundled migrations without applying them")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migrateList {
		versions, err := database.Migrations()
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return nil
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	applied, err := database.Migrate(cmd.Context(), dbURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if len(applied) == 0 {
		logger.Info().Msg("Database is up to date")
		return nil
	}
	logger.Info().Strs("versions", applied).Msg("Migrations applied")
	return nil
}
