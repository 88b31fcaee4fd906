package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/jobs"
	"github.com/bunca/bakery-service/internal/storage"
)

var (
	cleanupStaleAge  time.Duration
	cleanupRetention time.Duration
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Annotations: map[string]string{dbAnnotation: dbAlways},
	Use:   "cleanup",
	Short: "Fail abandoned import runs and prune old ones",
	Long: `Run one pass of the maintenance job the server runs periodically: runs stuck
in 'running' longer than --stale-age are marked failed, finished runs older than
--retention are deleted, and archived uploads no remaining run refers to are
removed from storage. A zero duration disables that step.`,
	Example: `  bakery cleanup
  bakery cleanup --retention 720h --stale-age 0`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	defaults := jobs.DefaultCleanupConfig()
	cleanupCmd.Flags().DurationVar(&cleanupStaleAge, "stale-age", defaults.StaleRunAge, "Age after which a running import counts as abandoned")
	cleanupCmd.Flags().DurationVar(&cleanupRetention, "retention", defaults.RunRetention, "Age after which finished runs are deleted")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	var store storage.Storage
	if cfg.Storage.BasePath != "" {
		s, err := storage.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = s
	}

	cm := jobs.NewCleanupManager(jobs.CleanupConfig{
		StaleRunAge:  cleanupStaleAge,
		RunRetention: cleanupRetention,
		Enabled:      true,
	}, database.Pool(), store, logger)

	res, err := cm.RunOnce(cmd.Context())
	logger.Info().
		Int("failed_runs", res.FailedRuns).
		Int("pruned_runs", res.PrunedRuns).
		Int("deleted_files", res.DeletedFiles).
		Msg("Cleanup finished")
	return err
}
