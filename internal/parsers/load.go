// Package parsers turns uploaded spreadsheet files into workbooks.
package parsers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/bunca/bakery-service/internal/parsers/csv"
	"github.com/bunca/bakery-service/internal/parsers/xls"
	"github.com/bunca/bakery-service/internal/parsers/xlsx"
	"github.com/bunca/bakery-service/internal/types"
)

var (
	// ErrUnsupportedFormat means the file is not a spreadsheet format we read
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUnreadableWorkbook means the file claims a supported format but cannot be decoded
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeZip  = "application/zip"
	mimeOLE  = "application/x-ole-storage"
	mimeText = "text/plain"
)

// Options configures the per-format readers
type Options struct {
	CSV        csv.Options
	XLSX       xlsx.Options
	XLSCharset string
}

// DefaultOptions returns options that detect everything
func DefaultOptions() Options {
	return Options{CSV: csv.DefaultOptions(), XLSX: xlsx.DefaultOptions()}
}

// DetectFileType sniffs the content and falls back to the file extension
func DetectFileType(content []byte, filename string) (types.FileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mtype := mimetype.Detect(content)

	switch {
	case mtype.Is(mimeXLSX):
		return types.FileTypeXLSX, nil
	case mtype.Is(mimeXLS):
		return types.FileTypeXLS, nil
	case mtype.Is(mimeZip) && (ext == ".xlsx" || ext == ".xlsm"):
		return types.FileTypeXLSX, nil
	case mtype.Is(mimeOLE) && ext == ".xls":
		return types.FileTypeXLS, nil
	case isText(mtype):
		return types.FileTypeCSV, nil
	}

	switch ext {
	case ".xlsx", ".xlsm":
		return types.FileTypeXLSX, nil
	case ".xls":
		return types.FileTypeXLS, nil
	case ".csv", ".txt", ".tsv":
		return types.FileTypeCSV, nil
	}

	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, filename, mtype.String())
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(mimeText) {
			return true
		}
	}
	return false
}

// Load reads all sheets of an uploaded file with default options
func Load(content []byte, filename string) (*types.Workbook, error) {
	return LoadWithOptions(content, filename, DefaultOptions())
}

// LoadWithOptions reads all sheets of an uploaded file. Failures wrap
// ErrUnsupportedFormat or ErrUnreadableWorkbook.
func LoadWithOptions(content []byte, filename string, opts Options) (*types.Workbook, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnreadableWorkbook, filename)
	}

	fileType, err := DetectFileType(content, filename)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("filename", filename).
		Str("type", string(fileType)).
		Int("bytes", len(content)).
		Msg("Loading workbook")

	var wb *types.Workbook
	switch fileType {
	case types.FileTypeXLSX:
		wb, err = xlsx.NewParser(opts.XLSX).Parse(content)
	case types.FileTypeXLS:
		wb, err = xls.NewParser(opts.XLSCharset).Parse(content)
	case types.FileTypeCSV:
		var grid types.Grid
		grid, err = csv.NewParser(opts.CSV).Parse(content)
		if err == nil {
			wb = &types.Workbook{
				Type:   types.FileTypeCSV,
				Sheets: []types.Sheet{{Name: sheetNameFromFile(filename), Rows: grid}},
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableWorkbook, filename, err)
	}
	return wb, nil
}

func sheetNameFromFile(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "Sheet1"
	}
	return name
}
