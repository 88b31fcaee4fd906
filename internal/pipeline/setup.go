package pipeline

import (
	"fmt"

	"github.com/bunca/bakery-service/config"
	"github.com/bunca/bakery-service/internal/importer"
	"github.com/bunca/bakery-service/internal/parsers"
	"github.com/bunca/bakery-service/internal/parsers/charset"
)

// NewImporter builds the importer described by the importer config section.
// A configured schema file replaces the built-in synonym tables.
func NewImporter(cfg config.ImporterConfig) (*importer.Importer, error) {
	var schemas importer.Schemas
	if cfg.SchemaFile != "" {
		loaded, err := importer.LoadSchemaFile(cfg.SchemaFile)
		if err != nil {
			return nil, err
		}
		schemas = loaded
	}
	return importer.New(schemas,
		importer.WithHeaderScanRows(cfg.HeaderScanRows),
		importer.WithWorkers(cfg.Workers),
	), nil
}

// NewLoadOptions builds the workbook reader options from the importer config
func NewLoadOptions(cfg config.ImporterConfig) (parsers.Options, error) {
	opts := parsers.DefaultOptions()

	enc, err := charset.ParseEncoding(cfg.CSVEncoding)
	if err != nil {
		return opts, fmt.Errorf("importer.csv_encoding: %w", err)
	}
	opts.CSV.Encoding = enc
	opts.XLSCharset = cfg.XLSCharset
	return opts, nil
}
