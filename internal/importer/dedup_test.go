package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bunca/bakery-service/internal/types"
)

var bomKey = []string{"item_code", "product_code", "qty", "unit"}

func TestFinalizeCollapsesDuplicates(t *testing.T) {
	records := []types.Record{
		{"item_code": "BREAD", "product_code": "FLOUR", "qty": "500", "unit": "g"},
		{"item_code": "BREAD", "product_code": "SALT", "qty": "10", "unit": "g"},
		{"item_code": "bread", "product_code": " Flour ", "qty": "500", "unit": "G"},
	}

	kept, dropped := Finalize(records, bomKey)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, records[:2], kept)
}

func TestFinalizeKeepsUnkeyable(t *testing.T) {
	records := []types.Record{
		{"item_code": "BREAD", "product_code": "FLOUR", "qty": "", "unit": "g"},
		{"item_code": "BREAD", "product_code": "FLOUR", "qty": "", "unit": "g"},
		{"item_code": "BREAD", "product_code": "FLOUR", "unit": "g"},
	}

	kept, dropped := Finalize(records, bomKey)
	assert.Zero(t, dropped)
	assert.Len(t, kept, 3)
}

func TestFinalizeDropsBlankRecords(t *testing.T) {
	records := []types.Record{
		{"code": " ", "name": ""},
		{"code": "MEHL", "name": "Mehl"},
		{},
	}

	kept, dropped := Finalize(records, []string{"code", "name"})
	assert.Zero(t, dropped, "blank records are not counted as duplicates")
	assert.Equal(t, []types.Record{{"code": "MEHL", "name": "Mehl"}}, kept)
}

func TestFinalizeFirstOccurrenceWins(t *testing.T) {
	records := []types.Record{
		{"code": "A", "name": "Alpha", "unit": "kg"},
		{"code": "B", "name": "Beta"},
		{"code": "a", "name": "ALPHA", "unit": "g"},
		{"code": "C", "name": "Gamma"},
	}

	kept, _ := Finalize(records, []string{"code", "name"})
	assert.Equal(t, []types.Record{records[0], records[1], records[3]}, kept)
	assert.Equal(t, "kg", kept[0]["unit"])
}

func TestFinalizeKeySeparator(t *testing.T) {
	// joined with a space both keys would read "a b c"
	records := []types.Record{
		{"code": "a", "name": "b c"},
		{"code": "a b", "name": "c"},
	}

	kept, dropped := Finalize(records, []string{"code", "name"})
	assert.Zero(t, dropped)
	assert.Len(t, kept, 2)
}
