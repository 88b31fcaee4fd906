package types

import "strings"

// FileType represents supported workbook formats
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLS  FileType = "xls"
	FileTypeXLSX FileType = "xlsx"
)

// Grid is the raw cell matrix of one sheet, indexed by (row, column).
// Rows may have different lengths; missing trailing cells read as "".
type Grid [][]string

// Width returns the number of columns, i.e. the longest row length
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Cell returns the value at (row, col), or "" when out of range
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// IsBlankRow reports whether every cell of the row is empty or whitespace
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Sheet is one named tab of a workbook
type Sheet struct {
	Name string `json:"name"`
	Rows Grid   `json:"rows"`
}

// Workbook is an ordered list of sheets as they appear in the source file
type Workbook struct {
	Type   FileType `json:"type"`
	Sheets []Sheet  `json:"sheets"`
}

// SheetNames returns the sheet names in workbook order
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}
