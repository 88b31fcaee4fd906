// Package jobs runs background maintenance of the import run log.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/storage"
)

// CleanupConfig holds configuration for the cleanup job
type CleanupConfig struct {
	Interval     time.Duration // How often the job runs
	StaleRunAge  time.Duration // Runs still 'running' after this long are marked failed; 0 disables
	RunRetention time.Duration // Finished runs older than this are deleted; 0 disables
	Enabled      bool
}

// DefaultCleanupConfig returns the default cleanup configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Interval:     1 * time.Hour,
		StaleRunAge:  1 * time.Hour,
		RunRetention: 90 * 24 * time.Hour,
		Enabled:      true,
	}
}

// CleanupResult counts what one cleanup pass changed
type CleanupResult struct {
	FailedRuns   int `json:"failedRuns"`
	PrunedRuns   int `json:"prunedRuns"`
	DeletedFiles int `json:"deletedFiles"`
}

// CleanupManager periodically fails abandoned runs and prunes old ones
// together with their archived uploads.
type CleanupManager struct {
	config CleanupConfig
	db     database.DBTX
	store  storage.Storage
	logger *zerolog.Logger
	now    func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCleanupManager creates a new cleanup manager. store may be nil, in which
// case archived files are left in place.
func NewCleanupManager(config CleanupConfig, db database.DBTX, store storage.Storage, logger *zerolog.Logger) *CleanupManager {
	if config.Interval <= 0 {
		config.Interval = DefaultCleanupConfig().Interval
	}
	return &CleanupManager{
		config: config,
		db:     db,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Start launches the periodic job. It runs once immediately.
func (cm *CleanupManager) Start(ctx context.Context) {
	if !cm.config.Enabled {
		cm.logger.Info().Msg("Cleanup job is disabled, not starting")
		return
	}

	cm.logger.Info().
		Dur("interval", cm.config.Interval).
		Dur("stale_run_age", cm.config.StaleRunAge).
		Dur("run_retention", cm.config.RunRetention).
		Msg("Starting cleanup manager")

	ctx, cm.cancel = context.WithCancel(ctx)
	cm.done = make(chan struct{})
	go cm.loop(ctx)
}

// Stop cancels the job and waits briefly for a pass in progress
func (cm *CleanupManager) Stop() {
	if cm.cancel == nil {
		return
	}
	cm.cancel()

	select {
	case <-cm.done:
		cm.logger.Info().Msg("Cleanup manager stopped")
	case <-time.After(5 * time.Second):
		cm.logger.Warn().Msg("Cleanup job did not stop gracefully")
	}
}

func (cm *CleanupManager) loop(ctx context.Context) {
	defer close(cm.done)

	ticker := time.NewTicker(cm.config.Interval)
	defer ticker.Stop()

	cm.runAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cm.runAndLog(ctx)
		}
	}
}

func (cm *CleanupManager) runAndLog(ctx context.Context) {
	start := time.Now()
	res, err := cm.RunOnce(ctx)
	if err != nil {
		cm.logger.Error().Err(err).Msg("Cleanup pass failed")
		return
	}

	ev := cm.logger.Debug()
	if res.FailedRuns > 0 || res.PrunedRuns > 0 || res.DeletedFiles > 0 {
		ev = cm.logger.Info()
	}
	ev.Int("failed_runs", res.FailedRuns).
		Int("pruned_runs", res.PrunedRuns).
		Int("deleted_files", res.DeletedFiles).
		Dur("duration", time.Since(start)).
		Msg("Cleanup pass finished")
}

// RunOnce performs a single cleanup pass
func (cm *CleanupManager) RunOnce(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult
	now := cm.now()

	if cm.config.StaleRunAge > 0 {
		n, err := database.FailStaleRuns(ctx, cm.db, now.Add(-cm.config.StaleRunAge))
		if err != nil {
			return res, err
		}
		res.FailedRuns = n
		cleanedTotal.WithLabelValues("failed").Add(float64(n))
	}

	if cm.config.RunRetention <= 0 {
		return res, nil
	}

	n, keys, err := database.PruneRuns(ctx, cm.db, now.Add(-cm.config.RunRetention))
	if err != nil {
		return res, err
	}
	res.PrunedRuns = n
	cleanedTotal.WithLabelValues("pruned").Add(float64(n))

	if cm.store == nil {
		return res, nil
	}
	var failed int
	for _, key := range keys {
		if err := cm.store.Delete(ctx, key); err != nil {
			cm.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete archived upload")
			failed++
			continue
		}
		res.DeletedFiles++
	}
	cleanedTotal.WithLabelValues("files").Add(float64(res.DeletedFiles))
	if failed > 0 {
		return res, fmt.Errorf("failed to delete %d of %d archived uploads", failed, len(keys))
	}
	return res, nil
}
