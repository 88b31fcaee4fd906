// Package importer extracts bakery records from loosely structured workbooks.
//
// Sheet names and layout are not known in advance. For every sheet the
// importer looks for a header row (or header column) whose labels match the
// synonym tables of a record type, then reads the rows below it.
package importer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/bunca/bakery-service/internal/types"
)

// ErrNoTables is the workbook-level diagnostic added when nothing was extracted
const ErrNoTables = "no recognizable tables found in workbook"

const tracerName = "github.com/bunca/bakery-service/internal/importer"

// Importer classifies workbook sheets and extracts their records.
// It holds no per-import state and is safe for concurrent use.
type Importer struct {
	schemas  Schemas
	scanRows int
	workers  int
	tracer   trace.Tracer
}

// Option configures an Importer
type Option func(*Importer)

// WithHeaderScanRows limits how many leading rows are tried as header rows
func WithHeaderScanRows(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.scanRows = n
		}
	}
}

// WithWorkers bounds how many sheets are classified in parallel
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// New creates an importer. Empty schemas fall back to DefaultSchemas.
func New(schemas Schemas, opts ...Option) *Importer {
	if len(schemas) == 0 {
		schemas = DefaultSchemas()
	}
	im := &Importer{
		schemas:  schemas,
		scanRows: DefaultHeaderScanRows,
		workers:  runtime.GOMAXPROCS(0),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Schemas returns the active synonym tables
func (im *Importer) Schemas() Schemas {
	return im.schemas
}

type sheetResult struct {
	report  types.SheetReport
	records map[types.RecordType][]types.Record
}

// Import extracts every recognisable table of the workbook. Malformed or
// unrecognised content only reduces what is extracted; problems are reported
// in ImportResult.Errors and Import never fails.
func (im *Importer) Import(ctx context.Context, wb *types.Workbook) *types.ImportResult {
	start := time.Now()
	defer func() { importDuration.Observe(time.Since(start).Seconds()) }()

	ctx, span := im.tracer.Start(ctx, "importer.Import")
	defer span.End()

	result := types.NewImportResult()
	if wb == nil || len(wb.Sheets) == 0 {
		result.Errors = append(result.Errors, ErrNoTables)
		return result
	}
	span.SetAttributes(attribute.Int("workbook.sheets", len(wb.Sheets)))

	// each sheet writes only its own slot; merging happens afterwards in sheet order
	sheets := make([]sheetResult, len(wb.Sheets))
	var g errgroup.Group
	g.SetLimit(im.workers)
	for i := range wb.Sheets {
		g.Go(func() error {
			sheets[i] = im.importSheet(ctx, wb.Sheets[i])
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[types.RecordType][]types.Record, len(types.RecordTypes))
	for _, sr := range sheets {
		result.Sheets = append(result.Sheets, sr.report)
		sheetsTotal.WithLabelValues(string(sr.report.Outcome)).Inc()

		if sr.report.Outcome == types.SheetUnmatched {
			result.Errors = append(result.Errors, fmt.Sprintf("sheet %q: no recognizable table", sr.report.Sheet))
		}
		for _, rt := range types.RecordTypes {
			merged[rt] = append(merged[rt], sr.records[rt]...)
		}
	}

	for _, schema := range im.schemas {
		kept, dropped := Finalize(merged[schema.Type], schema.DedupKey)
		result.SetRecords(schema.Type, kept)

		recordsTotal.WithLabelValues(string(schema.Type)).Add(float64(len(kept)))
		if dropped > 0 {
			duplicatesDropped.WithLabelValues(string(schema.Type)).Add(float64(dropped))
			log.Debug().
				Str("record_type", string(schema.Type)).
				Int("dropped", dropped).
				Msg("Dropped duplicate records")
		}
	}

	if result.Total() == 0 {
		result.Errors = append(result.Errors, ErrNoTables)
	}

	span.SetAttributes(attribute.Int("import.records", result.Total()))
	log.Debug().
		Int("sheets", len(wb.Sheets)).
		Int("records", result.Total()).
		Int("errors", len(result.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Workbook imported")

	return result
}

func (im *Importer) importSheet(ctx context.Context, sheet types.Sheet) sheetResult {
	_, span := im.tracer.Start(ctx, "importer.Sheet",
		trace.WithAttributes(attribute.String("sheet.name", sheet.Name)))
	defer span.End()

	sr := sheetResult{
		report: types.SheetReport{Sheet: sheet.Name, Rows: len(sheet.Rows)},
	}

	c := ClassifySheet(sheet.Rows, im.schemas, im.scanRows)
	sr.report.Outcome = c.Outcome
	sr.report.Matches = c.Matches
	sr.report.Emitted = c.Emitted()
	span.SetAttributes(attribute.String("sheet.outcome", string(c.Outcome)))

	if len(c.Tables) == 0 {
		log.Debug().Str("sheet", sheet.Name).Str("outcome", string(c.Outcome)).Msg("Sheet skipped")
		return sr
	}

	sr.records = make(map[types.RecordType][]types.Record, len(c.Tables))
	for _, t := range c.Tables {
		sr.records[t.Type] = RowsToObjects(t.Resolution.Rows, t.Resolution.Mapping)
		log.Debug().
			Str("sheet", sheet.Name).
			Str("record_type", string(t.Type)).
			Str("orientation", string(t.Resolution.Orientation)).
			Int("header_row", t.Resolution.HeaderRow).
			Int("hits", t.Resolution.Hits).
			Int("rows", len(t.Resolution.Rows)).
			Msg("Table recognized")
	}
	return sr
}
