// Package xlsx reads Office Open XML workbooks (.xlsx, .xlsm) with excelize.
package xlsx

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/bunca/bakery-service/internal/types"
)

// Parser is an XLSX workbook reader
type Parser struct {
	options Options
}

// NewParser creates a new XLSX parser
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// Parse reads every sheet of the workbook in tab order. Each sheet's rows are
// returned as-is with no header inference; empty cells read as "".
func (p *Parser) Parse(content []byte) (*types.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	wb := &types.Workbook{Type: types.FileTypeXLSX, Sheets: make([]types.Sheet, 0, len(sheetList))}
	for _, name := range sheetList {
		if len(p.options.Sheets) > 0 && !slices.Contains(p.options.Sheets, name) {
			continue
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: !p.options.FormattedValues})
		if err != nil {
			return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
		}

		log.Debug().Str("sheet", name).Int("rows", len(rows)).Msg("Read worksheet")
		wb.Sheets = append(wb.Sheets, types.Sheet{Name: name, Rows: types.Grid(rows)})
	}

	return wb, nil
}
