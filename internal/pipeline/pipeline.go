// Package pipeline turns an uploaded workbook into stored master data:
// archive, load, import, validate and (optionally) apply.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/importer"
	"github.com/bunca/bakery-service/internal/parsers"
	"github.com/bunca/bakery-service/internal/storage"
	"github.com/bunca/bakery-service/internal/types"
)

var (
	// ErrValidationFailed is returned when an apply run is rejected because
	// extracted records failed validation. Nothing is written.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNoDatabase is returned when an apply run has no database to write to
	ErrNoDatabase = errors.New("database not configured")
)

// Deps are the collaborators of a run. Storage and DB are optional: without
// storage the upload is not archived, without a database the run is not
// recorded and cannot be applied.
type Deps struct {
	Importer    *importer.Importer
	Storage     storage.Storage
	DB          database.DB
	LoadOptions parsers.Options
}

// Upload is one workbook handed to the pipeline
type Upload struct {
	Filename   string
	Content    []byte
	UploadedBy string
}

// Options control a run
type Options struct {
	// Apply writes the validated records to the database
	Apply bool
}

// RunResult reports everything a run did
type RunResult struct {
	RunID         string                   `json:"runId,omitempty"`
	Filename      string                   `json:"filename"`
	Checksum      string                   `json:"checksum"`
	StorageKey    string                   `json:"storageKey,omitempty"`
	FileType      types.FileType           `json:"fileType,omitempty"`
	Duplicate     bool                     `json:"duplicate"`
	PreviousRunID string                   `json:"previousRunId,omitempty"`
	Status        database.RunStatus       `json:"status"`
	Applied       bool                     `json:"applied"`
	Counts        map[types.RecordType]int `json:"counts"`
	Import        *types.ImportResult      `json:"import,omitempty"`
	Issues        []Issue                  `json:"issues"`
	Stats         *database.ApplyStats     `json:"stats,omitempty"`
}

// Run executes the pipeline for one upload.
//
// Loader failures wrap parsers.ErrUnsupportedFormat or
// parsers.ErrUnreadableWorkbook. A rejected apply returns the result together
// with ErrValidationFailed.
func Run(ctx context.Context, deps Deps, upload Upload, opts Options) (result *RunResult, err error) {
	start := time.Now()
	ctx, span := otel.Tracer("github.com/bunca/bakery-service/internal/pipeline").Start(ctx, "pipeline.Run")
	defer span.End()

	if deps.Importer == nil {
		deps.Importer = importer.New(nil)
	}
	if opts.Apply && deps.DB == nil {
		return nil, ErrNoDatabase
	}
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", parsers.ErrUnreadableWorkbook, upload.Filename)
	}

	result = &RunResult{
		Filename: upload.Filename,
		Checksum: storage.ComputeChecksum(upload.Content),
		Status:   database.RunStatusRunning,
		Counts:   make(map[types.RecordType]int),
		Issues:   make([]Issue, 0),
	}
	span.SetAttributes(
		attribute.String("upload.filename", upload.Filename),
		attribute.Bool("run.apply", opts.Apply),
	)

	defer func() {
		if err != nil && result != nil && result.Status == database.RunStatusRunning {
			result.Status = database.RunStatusFailed
		}
		status := string(database.RunStatusFailed)
		if result != nil {
			status = string(result.Status)
		}
		runsTotal.WithLabelValues(status).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	// Phase 1: archive
	if err := archive(ctx, deps.Storage, upload, result); err != nil {
		return result, err
	}

	if fileType, err := parsers.DetectFileType(upload.Content, upload.Filename); err == nil {
		result.FileType = fileType
	}

	if deps.DB != nil {
		if prev, err := database.FindRunByChecksum(ctx, deps.DB, result.Checksum); err != nil {
			log.Warn().Err(err).Str("checksum", result.Checksum).Msg("Failed to look up previous runs")
		} else if prev != nil {
			result.Duplicate = true
			result.PreviousRunID = prev.ID
		}

		result.RunID, err = database.CreateRun(ctx, deps.DB, upload.Filename, result.Checksum, result.StorageKey, string(result.FileType))
		if err != nil {
			return result, err
		}
		// err is the named result, so the outcome of the whole run is recorded
		defer func() { finishRun(ctx, deps.DB, result, err) }()
	}

	log.Info().
		Str("run_id", result.RunID).
		Str("filename", upload.Filename).
		Bool("apply", opts.Apply).
		Msg("Starting import run")

	// Phase 2: load
	wb, err := parsers.LoadWithOptions(upload.Content, upload.Filename, deps.LoadOptions)
	if err != nil {
		return result, err
	}

	// Phase 3: import
	result.Import = deps.Importer.Import(ctx, wb)
	for _, rt := range types.RecordTypes {
		result.Counts[rt] = len(result.Import.Records(rt))
	}

	// Phase 4: validate
	batch, issues := Validate(result.Import)
	result.Issues = issues

	if !opts.Apply {
		result.Status = database.RunStatusCompleted
		logRunFinished(result, start)
		return result, nil
	}

	if len(issues) > 0 {
		result.Status = database.RunStatusRejected
		logRunFinished(result, start)
		return result, fmt.Errorf("%w: %d issue(s)", ErrValidationFailed, len(issues))
	}

	// Phase 5: apply
	stats, err := apply(ctx, deps.DB, batch)
	if err != nil {
		return result, err
	}
	result.Stats = stats
	result.Applied = true
	result.Status = database.RunStatusCompleted
	logRunFinished(result, start)
	return result, nil
}

func archive(ctx context.Context, store storage.Storage, upload Upload, result *RunResult) error {
	if store == nil {
		return nil
	}

	key := storage.BuildUploadKey(result.Checksum, upload.Filename)
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check archive: %w", err)
	}
	result.StorageKey = key
	if exists {
		result.Duplicate = true
		log.Debug().Str("key", key).Msg("Upload already archived")
		return nil
	}

	err = store.Put(ctx, key, upload.Content, &storage.Metadata{
		OriginalName: upload.Filename,
		UploadedAt:   time.Now(),
		UploadedBy:   upload.UploadedBy,
	})
	if err != nil {
		return fmt.Errorf("failed to archive upload: %w", err)
	}
	return nil
}

func apply(ctx context.Context, db database.DB, batch *database.Batch) (*database.ApplyStats, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stats, err := database.ApplyBatch(ctx, tx, batch)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return stats, nil
}

func finishRun(ctx context.Context, db database.DBTX, result *RunResult, runErr error) {
	out := database.RunOutcome{
		Status:     result.Status,
		Applied:    result.Applied,
		Counts:     make(map[string]int, len(result.Counts)),
		IssueCount: len(result.Issues),
	}
	if runErr != nil && !errors.Is(runErr, ErrValidationFailed) {
		out.Status = database.RunStatusFailed
		out.ErrorMessage = runErr.Error()
	}
	for rt, n := range result.Counts {
		out.Counts[string(rt)] = n
	}
	if result.Import != nil {
		out.Errors = result.Import.Errors
	}

	// the request context may already be cancelled
	ctx = context.WithoutCancel(ctx)
	if err := database.FinishRun(ctx, db, result.RunID, out); err != nil {
		log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to record run outcome")
	}
}

func logRunFinished(result *RunResult, start time.Time) {
	log.Info().
		Str("run_id", result.RunID).
		Str("filename", result.Filename).
		Str("status", string(result.Status)).
		Int("records", result.Import.Total()).
		Int("issues", len(result.Issues)).
		Bool("applied", result.Applied).
		Dur("duration", time.Since(start)).
		Msg("Import run finished")
}
