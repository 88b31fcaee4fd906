package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunca/bakery-service/internal/types"
)

func TestTranspose(t *testing.T) {
	grid := types.Grid{
		{"a", "b", "c"},
		{"d", "e", "f"},
	}
	assert.Equal(t, types.Grid{{"a", "d"}, {"b", "e"}, {"c", "f"}}, Transpose(grid))
	assert.Equal(t, grid, Transpose(Transpose(grid)))

	t.Run("Ragged rows are padded", func(t *testing.T) {
		ragged := types.Grid{{"a", "b"}, {"c"}}
		assert.Equal(t, types.Grid{{"a", "c"}, {"b", ""}}, Transpose(ragged))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, Transpose(types.Grid{}))
	})
}

func TestResolveOrientation(t *testing.T) {
	schemas := DefaultSchemas()
	allocations := schemas.Get(types.RecordAllocations)

	t.Run("Header column selects cols", func(t *testing.T) {
		res := ResolveOrientation(lieferungenGrid(), allocations, DefaultHeaderScanRows)
		assert.Equal(t, types.OrientationCols, res.Orientation)
		assert.Equal(t, 0, res.HeaderRow)
		assert.Equal(t, 4, res.Hits)
		require.Len(t, res.Rows, 2)
		assert.Equal(t, []string{"2024-03-01", "F01", "BRZ", "120"}, res.Rows[0])
		assert.Equal(t, []string{"2024-03-01", "F02", "SEM", "80"}, res.Rows[1])
	})

	t.Run("Header row selects rows", func(t *testing.T) {
		res := ResolveOrientation(Transpose(lieferungenGrid()), allocations, DefaultHeaderScanRows)
		assert.Equal(t, types.OrientationRows, res.Orientation)
		assert.Equal(t, 4, res.Hits)
		assert.Len(t, res.Rows, 2)
	})

	t.Run("Tie prefers rows", func(t *testing.T) {
		grid := types.Grid{
			{"Datum", "Filiale"},
			{"Filiale", "F01"},
		}
		res := ResolveOrientation(grid, allocations, DefaultHeaderScanRows)
		assert.Equal(t, types.OrientationRows, res.Orientation)
		assert.Equal(t, 2, res.Hits)
	})

	t.Run("Fewer than two hits yields no rows", func(t *testing.T) {
		grid := types.Grid{
			{"Filiale"},
			{"F01"},
			{"F02"},
		}
		res := ResolveOrientation(grid, allocations, DefaultHeaderScanRows)
		assert.Equal(t, 1, res.Hits)
		assert.Empty(t, res.Rows)
	})

	t.Run("Blank data rows are skipped in both orientations", func(t *testing.T) {
		rows := types.Grid{
			{"Datum", "Filiale", "Artikel", "Menge"},
			{"", "  ", "\t", ""},
			{"2024-03-01", "F01", "BRZ", "10"},
			{},
		}
		res := ResolveOrientation(rows, allocations, DefaultHeaderScanRows)
		assert.Equal(t, types.OrientationRows, res.Orientation)
		assert.Len(t, res.Rows, 1)

		cols := Transpose(types.Grid{
			{"Datum", "Filiale", "Artikel", "Menge"},
			{"", " ", "", "  "},
			{"2024-03-01", "F01", "BRZ", "10"},
		})
		res = ResolveOrientation(cols, allocations, DefaultHeaderScanRows)
		assert.Equal(t, types.OrientationCols, res.Orientation)
		assert.Len(t, res.Rows, 1)
	})
}
