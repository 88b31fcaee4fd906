package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunca/bakery-service/internal/types"
)

func matchFor(t *testing.T, c Classification, rt types.RecordType) types.TypeMatch {
	t.Helper()
	for _, m := range c.Matches {
		if m.Type == rt {
			return m
		}
	}
	t.Fatalf("no match reported for %s", rt)
	return types.TypeMatch{}
}

func TestClassifySheet(t *testing.T) {
	schemas := DefaultSchemas()

	tests := []struct {
		name        string
		grid        types.Grid
		outcome     types.SheetOutcome
		emitted     []types.RecordType
		orientation types.Orientation
	}{
		{"Raw materials", rohwarenGrid(), types.SheetSingle, []types.RecordType{types.RecordProducts}, types.OrientationRows},
		{"Recipes list", artikelGrid(), types.SheetSingle, []types.RecordType{types.RecordItems}, types.OrientationRows},
		{"Bill of materials", rezepteGrid(), types.SheetSingle, []types.RecordType{types.RecordBOM}, types.OrientationRows},
		{"Production ties with allocations", produktionGrid(), types.SheetSingle, []types.RecordType{types.RecordProduction}, types.OrientationRows},
		{"Transposed allocations", lieferungenGrid(), types.SheetSingle, []types.RecordType{types.RecordAllocations}, types.OrientationCols},
		{"Stacked tables", stackedGrid(), types.SheetMultiTable, []types.RecordType{types.RecordProducts, types.RecordAllocations}, types.OrientationRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifySheet(tt.grid, schemas, DefaultHeaderScanRows)
			assert.Equal(t, tt.outcome, c.Outcome)
			assert.Equal(t, tt.emitted, c.Emitted())
			assert.Len(t, c.Matches, len(types.RecordTypes))
			require.NotEmpty(t, c.Tables)
			assert.Equal(t, tt.orientation, c.Tables[0].Resolution.Orientation)
		})
	}
}

func TestClassifySheetThresholdGating(t *testing.T) {
	c := ClassifySheet(notizenGrid(), DefaultSchemas(), DefaultHeaderScanRows)

	assert.Equal(t, types.SheetUnmatched, c.Outcome)
	assert.Empty(t, c.Tables)
	for _, m := range c.Matches {
		assert.Less(t, m.Hits, m.Threshold, string(m.Type))
	}
}

func TestClassifySheetScoresBelowThreshold(t *testing.T) {
	c := ClassifySheet(rohwarenGrid(), DefaultSchemas(), DefaultHeaderScanRows)

	products := matchFor(t, c, types.RecordProducts)
	assert.Equal(t, 5, products.Hits)
	assert.Equal(t, 1, products.HeaderRow)
	assert.Equal(t, 3, products.DataRows)

	for _, rt := range []types.RecordType{types.RecordItems, types.RecordBOM, types.RecordProduction, types.RecordAllocations} {
		m := matchFor(t, c, rt)
		assert.Less(t, m.Hits, m.Threshold, string(rt))
	}
}

func TestClassifySheetStackedTables(t *testing.T) {
	c := ClassifySheet(stackedGrid(), DefaultSchemas(), DefaultHeaderScanRows)
	require.Len(t, c.Tables, 2)

	products, allocations := c.Tables[0], c.Tables[1]
	assert.Equal(t, 4, products.Resolution.Hits)
	assert.Equal(t, 0, products.Resolution.HeaderRow)
	assert.Equal(t, 2, allocations.Resolution.Hits)
	assert.Equal(t, 4, allocations.Resolution.HeaderRow)

	// the products range runs to the end of the sheet and overlaps the allocations table
	assert.Len(t, products.Resolution.Rows, 5)
	assert.Len(t, allocations.Resolution.Rows, 2)
}

func TestClassifySheetEmpty(t *testing.T) {
	for name, grid := range map[string]types.Grid{
		"nil":   nil,
		"empty": {},
		"blank": {{"", " "}, {}},
	} {
		t.Run(name, func(t *testing.T) {
			c := ClassifySheet(grid, DefaultSchemas(), DefaultHeaderScanRows)
			assert.Equal(t, types.SheetEmpty, c.Outcome)
			assert.Empty(t, c.Tables)
			assert.Empty(t, c.Emitted())
		})
	}
}

func TestClassifySheetSameTablePrefersMoreHits(t *testing.T) {
	// products and items both qualify on this header; products matches more columns
	grid := types.Grid{
		{"Code", "Bezeichnung", "Kategorie", "Einheit", "Preis"},
		{"MEHL550", "Weizenmehl", "Mehl", "kg", "0,89"},
	}
	c := ClassifySheet(grid, DefaultSchemas(), DefaultHeaderScanRows)
	assert.Equal(t, types.SheetSingle, c.Outcome)
	assert.Equal(t, []types.RecordType{types.RecordProducts}, c.Emitted())
	assert.Equal(t, 3, matchFor(t, c, types.RecordItems).Hits)
}

func TestClassifySheetIgnoresCrossOrientationTable(t *testing.T) {
	// a label/value block above a products table reads as allocations column-wise
	grid := types.Grid{
		{"Datum", "2024-03-01"},
		{"Filiale", "F01"},
		{"Code", "Bezeichnung", "Einheit", "Grundeinheit", "Preis"},
		{"MEHL550", "Weizenmehl Type 550", "kg", "kg", "0,89"},
		{"BUTTER", "Süßrahmbutter", "kg", "kg", "6,20"},
	}

	c := ClassifySheet(grid, DefaultSchemas(), DefaultHeaderScanRows)
	assert.Equal(t, types.SheetSingle, c.Outcome)
	assert.Equal(t, []types.RecordType{types.RecordProducts}, c.Emitted())
	assert.Equal(t, types.OrientationRows, c.Tables[0].Resolution.Orientation)
}

func TestResolveOrientationWithSharedTranspose(t *testing.T) {
	grid := lieferungenGrid()
	allocations := DefaultSchemas().Get(types.RecordAllocations)

	assert.Equal(t,
		ResolveOrientation(grid, allocations, DefaultHeaderScanRows),
		resolveOrientation(grid, Transpose(grid), allocations, DefaultHeaderScanRows))
}
