package importer

import "github.com/bunca/bakery-service/internal/types"

// minOrientationHits is the fewest matched fields a table needs before any of
// its rows are extracted, regardless of record type.
const minOrientationHits = 2

// Resolution is the outcome of resolving one record type against one sheet
type Resolution struct {
	Orientation types.Orientation
	HeaderRow   int
	Hits        int
	Mapping     map[string]int
	// Rows are the non-blank data rows after the header, in the winning
	// orientation's coordinates. Empty when Hits < minOrientationHits.
	Rows types.Grid
}

// Transpose swaps rows and columns. Ragged rows are padded with "".
func Transpose(grid types.Grid) types.Grid {
	width := grid.Width()
	out := make(types.Grid, width)
	for c := 0; c < width; c++ {
		out[c] = make([]string, len(grid))
		for r := range grid {
			out[c][r] = grid.Cell(r, c)
		}
	}
	return out
}

// ResolveOrientation matches a schema against the grid and its transpose and
// keeps the stronger one. Rows are preferred on a tie.
func ResolveOrientation(grid types.Grid, schema *Schema, scanRows int) Resolution {
	return resolveOrientation(grid, Transpose(grid), schema, scanRows)
}

// resolveOrientation takes the transpose precomputed so a sheet is transposed
// once for all schemas.
func resolveOrientation(grid, transposed types.Grid, schema *Schema, scanRows int) Resolution {
	orientation := types.OrientationRows
	space := grid
	match := BestHeaderRow(grid, schema, scanRows)

	if colMatch := BestHeaderRow(transposed, schema, scanRows); colMatch.Hits > match.Hits {
		orientation = types.OrientationCols
		space = transposed
		match = colMatch
	}

	res := Resolution{
		Orientation: orientation,
		HeaderRow:   match.RowIndex,
		Hits:        match.Hits,
		Mapping:     match.Mapping,
		Rows:        types.Grid{},
	}
	if match.Hits < minOrientationHits {
		return res
	}

	for _, row := range space[match.RowIndex+1:] {
		if !types.IsBlankRow(row) {
			res.Rows = append(res.Rows, row)
		}
	}
	return res
}
