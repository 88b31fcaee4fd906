package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRunNotFound is returned when no import run has the requested id
var ErrRunNotFound = errors.New("import run not found")

const runColumns = `
	id, filename, checksum, storage_key, file_type, status, applied,
	counts, errors, issue_count, error_message, started_at, completed_at
`

// CreateRun inserts a run in status 'running' and returns its id
func CreateRun(ctx context.Context, db DBTX, filename, checksum, storageKey, fileType string) (string, error) {
	id := uuid.New().String()

	_, err := db.Exec(ctx, `
		INSERT INTO import_runs (id, filename, checksum, storage_key, file_type, status, started_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NOW())
	`, id, filename, checksum, storageKey, fileType, RunStatusRunning)
	if err != nil {
		return "", fmt.Errorf("failed to create import run: %w", err)
	}
	return id, nil
}

// RunOutcome is what FinishRun stores on a run
type RunOutcome struct {
	Status       RunStatus
	Applied      bool
	Counts       map[string]int
	Errors       []string
	IssueCount   int
	ErrorMessage string
}

// FinishRun stores the outcome of a run and stamps its completion time
func FinishRun(ctx context.Context, db DBTX, id string, out RunOutcome) error {
	counts := out.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	errs := out.Errors
	if errs == nil {
		errs = []string{}
	}

	tag, err := db.Exec(ctx, `
		UPDATE import_runs
		SET status = $2,
			applied = $3,
			counts = $4,
			errors = $5,
			issue_count = $6,
			error_message = NULLIF($7, ''),
			completed_at = NOW()
		WHERE id = $1
	`, id, out.Status, out.Applied, counts, errs, out.IssueCount, out.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun returns one run by id
func GetRun(ctx context.Context, db DBTX, id string) (*ImportRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRunNotFound
	}

	row := db.QueryRow(ctx, `SELECT `+runColumns+` FROM import_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first along with the total number of runs
func ListRuns(ctx context.Context, db DBTX, limit, offset int) ([]ImportRun, int, error) {
	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM import_runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count import runs: %w", err)
	}

	rows, err := db.Query(ctx, `
		SELECT `+runColumns+`
		FROM import_runs
		ORDER BY started_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]ImportRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, total, rows.Err()
}

// FindRunByChecksum returns the latest completed run of an identical upload, or nil
func FindRunByChecksum(ctx context.Context, db DBTX, checksum string) (*ImportRun, error) {
	row := db.QueryRow(ctx, `
		SELECT `+runColumns+`
		FROM import_runs
		WHERE checksum = $1 AND status = $2
		ORDER BY started_at DESC
		LIMIT 1
	`, checksum, RunStatusCompleted)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up import run: %w", err)
	}
	return run, nil
}

func scanRun(row pgx.Row) (*ImportRun, error) {
	var run ImportRun
	err := row.Scan(
		&run.ID, &run.Filename, &run.Checksum, &run.StorageKey, &run.FileType,
		&run.Status, &run.Applied, &run.Counts, &run.Errors, &run.IssueCount,
		&run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
