// Package xls reads legacy BIFF8 Excel workbooks (.xls).
package xls

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
	"github.com/rs/zerolog/log"

	"github.com/bunca/bakery-service/internal/types"
)

// DefaultCharset is used for byte strings in pre-Unicode workbooks
const DefaultCharset = "windows-1252"

// Parser is a legacy XLS workbook reader
type Parser struct {
	charset string
}

// NewParser creates a new XLS parser. An empty charset uses DefaultCharset.
func NewParser(charset string) *Parser {
	if charset == "" {
		charset = DefaultCharset
	}
	return &Parser{charset: charset}
}

// Parse reads every sheet of the workbook in tab order. Row positions are
// kept, so rows missing from the file come back empty.
func (p *Parser) Parse(content []byte) (wb *types.Workbook, err error) {
	// the BIFF decoder panics on some truncated files
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("corrupt xls workbook: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(content), p.charset)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	n := book.NumSheets()
	if n == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	wb = &types.Workbook{Type: types.FileTypeXLS, Sheets: make([]types.Sheet, 0, n)}
	for i := 0; i < n; i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		rows := readSheet(sheet)
		log.Debug().Str("sheet", sheet.Name).Int("rows", len(rows)).Msg("Read worksheet")
		wb.Sheets = append(wb.Sheets, types.Sheet{Name: sheet.Name, Rows: rows})
	}
	return wb, nil
}

func readSheet(sheet *xls.WorkSheet) types.Grid {
	// MaxRow is 0 for both an empty sheet and a single-row sheet
	if sheet.MaxRow == 0 && sheet.Row(0) == nil {
		return types.Grid{}
	}

	rows := make(types.Grid, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		cols := make([]string, row.LastCol())
		for j := range cols {
			cols[j] = row.Col(j)
		}
		rows = append(rows, cols)
	}

	for len(rows) > 0 && types.IsBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}
