package importer

import (
	"sort"

	"github.com/bunca/bakery-service/internal/types"
)

// Table is one record type selected for extraction from a sheet
type Table struct {
	Type       types.RecordType
	Resolution Resolution
}

// Classification is the verdict on one sheet
type Classification struct {
	Outcome types.SheetOutcome
	// Matches holds the best match of every record type, qualifying or not
	Matches []types.TypeMatch
	// Tables are the record types to extract, in priority order
	Tables []Table
}

// Emitted returns the record types selected for extraction
func (c Classification) Emitted() []types.RecordType {
	out := make([]types.RecordType, len(c.Tables))
	for i, t := range c.Tables {
		out[i] = t.Type
	}
	return out
}

type tableLocation struct {
	orientation types.Orientation
	headerRow   int
}

// ClassifySheet decides which record types a sheet holds.
//
// Every schema is resolved against the grid. A type qualifies when its hits
// reach the schema's MinHits. Qualifying types found at the same header
// (orientation and row) compete for that table: most hits wins, then schema
// order. The strongest table fixes the sheet's orientation; further tables
// stacked in that orientation each contribute their winner. A qualifying
// table read the other way round crosses the strong table's header and is
// dropped.
func ClassifySheet(grid types.Grid, schemas Schemas, scanRows int) Classification {
	if isBlankGrid(grid) {
		return Classification{Outcome: types.SheetEmpty}
	}

	c := Classification{Matches: make([]types.TypeMatch, 0, len(schemas))}

	var order []tableLocation
	winners := make(map[tableLocation]Table)

	transposed := Transpose(grid)
	for _, schema := range schemas {
		res := resolveOrientation(grid, transposed, schema, scanRows)
		c.Matches = append(c.Matches, types.TypeMatch{
			Type:        schema.Type,
			Orientation: res.Orientation,
			HeaderRow:   res.HeaderRow,
			Hits:        res.Hits,
			Threshold:   schema.MinHits,
			DataRows:    len(res.Rows),
		})

		if res.Hits < schema.MinHits || len(res.Mapping) == 0 {
			continue
		}

		loc := tableLocation{orientation: res.Orientation, headerRow: res.HeaderRow}
		current, taken := winners[loc]
		if !taken {
			order = append(order, loc)
		}
		// schemas arrive in priority order, so only a strictly better match displaces
		if !taken || res.Hits > current.Resolution.Hits {
			winners[loc] = Table{Type: schema.Type, Resolution: res}
		}
	}

	var strongest *Table
	for _, loc := range order {
		t := winners[loc]
		if strongest == nil || t.Resolution.Hits > strongest.Resolution.Hits ||
			(t.Resolution.Hits == strongest.Resolution.Hits && priority(t.Type) < priority(strongest.Type)) {
			strongest = &t
		}
	}
	for _, loc := range order {
		if loc.orientation == strongest.Resolution.Orientation {
			c.Tables = append(c.Tables, winners[loc])
		}
	}
	sortTablesByPriority(c.Tables)

	switch len(c.Tables) {
	case 0:
		c.Outcome = types.SheetUnmatched
	case 1:
		c.Outcome = types.SheetSingle
	default:
		c.Outcome = types.SheetMultiTable
	}
	return c
}

func sortTablesByPriority(tables []Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		return priority(tables[i].Type) < priority(tables[j].Type)
	})
}

func isBlankGrid(grid types.Grid) bool {
	for _, row := range grid {
		if !types.IsBlankRow(row) {
			return false
		}
	}
	return true
}
