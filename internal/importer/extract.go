package importer

import (
	"strings"

	"github.com/bunca/bakery-service/internal/types"
)

// RowsToObjects turns data rows into records keyed by field name. Only mapped
// fields are present; a mapped column beyond the row's end reads as "".
func RowsToObjects(rows types.Grid, mapping map[string]int) []types.Record {
	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(types.Record, len(mapping))
		for field, col := range mapping {
			value := ""
			if col >= 0 && col < len(row) {
				value = strings.TrimSpace(row[col])
			}
			rec[field] = value
		}
		records = append(records, rec)
	}
	return records
}
