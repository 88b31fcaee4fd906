package database

import (
	"context"
	"fmt"
	"time"
)

// FailStaleRuns marks runs still 'running' that started before cutoff as
// failed. Such runs belong to a process that died mid-import.
func FailStaleRuns(ctx context.Context, db DBTX, cutoff time.Time) (int, error) {
	tag, err := db.Exec(ctx, `
		UPDATE import_runs
		SET status = $2,
			error_message = 'run did not finish',
			completed_at = NOW()
		WHERE status = $3
		  AND started_at < $1
	`, cutoff, RunStatusFailed, RunStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to fail stale import runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// PruneRuns deletes finished runs that started before cutoff. It returns the
// storage keys that no remaining run references, so their archived files can
// be removed as well.
func PruneRuns(ctx context.Context, db DBTX, cutoff time.Time) (deleted int, orphanedKeys []string, err error) {
	rows, err := db.Query(ctx, `
		WITH pruned AS (
			DELETE FROM import_runs
			WHERE status <> $2
			  AND started_at < $1
			RETURNING storage_key
		)
		SELECT storage_key, COUNT(*) OVER ()
		FROM pruned
	`, cutoff, RunStatusRunning)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to prune import runs: %w", err)
	}

	candidates := make(map[string]bool)
	for rows.Next() {
		var key *string
		var total int
		if err := rows.Scan(&key, &total); err != nil {
			rows.Close()
			return 0, nil, fmt.Errorf("failed to scan pruned run: %w", err)
		}
		deleted = total
		if key != nil {
			candidates[*key] = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to prune import runs: %w", err)
	}
	if len(candidates) == 0 {
		return deleted, nil, nil
	}

	keys := make([]string, 0, len(candidates))
	for k := range candidates {
		keys = append(keys, k)
	}

	// identical uploads share one archived file
	rows, err = db.Query(ctx, `
		SELECT k
		FROM unnest($1::text[]) AS k
		WHERE NOT EXISTS (SELECT 1 FROM import_runs WHERE storage_key = k)
		ORDER BY k
	`, keys)
	if err != nil {
		return deleted, nil, fmt.Errorf("failed to find orphaned archives: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return deleted, nil, fmt.Errorf("failed to scan orphaned archive: %w", err)
		}
		orphanedKeys = append(orphanedKeys, k)
	}
	return deleted, orphanedKeys, rows.Err()
}
