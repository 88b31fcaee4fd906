package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunca/bakery-service/internal/types"
)

func TestValidateConvertsRecords(t *testing.T) {
	result := types.NewImportResult()
	result.Products = []types.Record{
		{"code": "MEHL550", "name": "Weizenmehl Type 550", "unit": "kg", "unit_cost": "0,89", "waste_pct": "2 %"},
		{"code": "BUTTER", "name": "Süßrahmbutter"},
	}
	result.Items = []types.Record{{"code": "BR01", "name": "Bauernbrot", "yield_qty": "12"}}
	result.BOM = []types.Record{{"item_code": "BR01", "product_code": "MEHL550", "qty": "0,75", "unit": "kg"}}
	result.Production = []types.Record{{"date": "01.03.2024", "item_code": "BR01", "total_qty": "120"}}
	result.Allocations = []types.Record{{"date": "2024-03-01", "item_code": "BR01", "shop_code": "F01", "qty": "40"}}

	batch, issues := Validate(result)

	assert.Empty(t, issues)
	require.Len(t, batch.Products, 2)
	assert.Equal(t, "0.89", batch.Products[0].UnitCost.Decimal.String())
	assert.Equal(t, "2", batch.Products[0].WastePct.Decimal.String())
	assert.False(t, batch.Products[1].UnitCost.Valid)
	assert.Nil(t, batch.Products[1].Unit)

	require.Len(t, batch.Items, 1)
	assert.Equal(t, "12", batch.Items[0].YieldQty.Decimal.String())

	require.Len(t, batch.BOM, 1)
	assert.Equal(t, "0.75", batch.BOM[0].Qty.String())

	march1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.Len(t, batch.Production, 1)
	assert.True(t, march1.Equal(batch.Production[0].Date))
	require.Len(t, batch.Allocations, 1)
	assert.Equal(t, "F01", batch.Allocations[0].ShopCode)
	assert.Equal(t, 7, batch.Len())
}

func TestValidateReportsIssues(t *testing.T) {
	result := types.NewImportResult()
	result.Products = []types.Record{
		{"code": "MEHL550", "name": "Weizenmehl"},
		{"name": "ohne Code"},
		{"code": "SALZ", "name": "Salz", "unit_cost": "billig"},
	}
	result.Production = []types.Record{
		{"date": "irgendwann", "item_code": "BR01", "total_qty": "10"},
	}
	result.Allocations = []types.Record{
		{"date": "01.03.2024", "item_code": "BR01", "qty": "5"},
	}

	batch, issues := Validate(result)

	require.Len(t, batch.Products, 1)
	assert.Equal(t, "MEHL550", batch.Products[0].Code)
	assert.Empty(t, batch.Production)
	assert.Empty(t, batch.Allocations)

	require.Len(t, issues, 4)
	assert.Equal(t, Issue{Type: types.RecordProducts, Index: 1, Field: "code", Message: "required field is missing"}, issues[0])
	assert.Equal(t, types.RecordProducts, issues[1].Type)
	assert.Equal(t, 2, issues[1].Index)
	assert.Equal(t, "unit_cost", issues[1].Field)
	assert.Equal(t, "billig", issues[1].Value)
	assert.Equal(t, "date", issues[2].Field)
	assert.Equal(t, types.RecordProduction, issues[2].Type)
	assert.Equal(t, Issue{Type: types.RecordAllocations, Index: 0, Field: "shop_code", Message: "required field is missing"}, issues[3])

	assert.Equal(t, "products[1].code: required field is missing", issues[0].String())
}

func TestValidateEmptyResult(t *testing.T) {
	batch, issues := Validate(types.NewImportResult())
	assert.Empty(t, issues)
	assert.Zero(t, batch.Len())
}
