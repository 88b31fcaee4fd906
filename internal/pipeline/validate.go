package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/types"
)

// Issue is a row-level problem found while validating extracted records
type Issue struct {
	Type    types.RecordType `json:"type"`
	Index   int              `json:"index"` // position in the record collection
	Field   string           `json:"field"`
	Value   string           `json:"value,omitempty"`
	Message string           `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%d].%s: %s", i.Type, i.Index, i.Field, i.Message)
}

// RequiredFields lists the fields a record needs before it can be stored
var RequiredFields = map[types.RecordType][]string{
	types.RecordProducts:    {"code", "name"},
	types.RecordItems:       {"code", "name"},
	types.RecordBOM:         {"item_code", "product_code", "qty"},
	types.RecordProduction:  {"date", "item_code", "total_qty"},
	types.RecordAllocations: {"date", "item_code", "shop_code", "qty"},
}

// recordReader reads typed values out of one record and collects issues
type recordReader struct {
	rt     types.RecordType
	index  int
	rec    types.Record
	issues *[]Issue
}

func (r recordReader) fail(field, value, msg string) {
	*r.issues = append(*r.issues, Issue{Type: r.rt, Index: r.index, Field: field, Value: value, Message: msg})
}

func (r recordReader) text(field string) string {
	return strings.TrimSpace(r.rec[field])
}

func (r recordReader) optional(field string) *string {
	if v := r.text(field); v != "" {
		return &v
	}
	return nil
}

func (r recordReader) number(field string) decimal.Decimal {
	v := r.text(field)
	if v == "" {
		return decimal.Zero
	}
	d, err := ParseDecimal(v)
	if err != nil {
		r.fail(field, v, err.Error())
	}
	return d
}

func (r recordReader) optionalNumber(field string) decimal.NullDecimal {
	if r.text(field) == "" {
		return decimal.NullDecimal{}
	}
	d, err := ParseDecimal(r.text(field))
	if err != nil {
		r.fail(field, r.text(field), err.Error())
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (r recordReader) date(field string) time.Time {
	v := r.text(field)
	d, err := ParseDate(v)
	if err != nil {
		r.fail(field, v, err.Error())
	}
	return d
}

func (r recordReader) required() bool {
	ok := true
	for _, f := range RequiredFields[r.rt] {
		if r.text(f) == "" {
			r.fail(f, "", "required field is missing")
			ok = false
		}
	}
	return ok
}

// collect builds one row per record of a type. Records missing a required
// field or holding an unparsable value are skipped.
func collect[T any](result *types.ImportResult, rt types.RecordType, issues *[]Issue, build func(r recordReader) T) []T {
	var out []T
	for i, rec := range result.Records(rt) {
		r := recordReader{rt: rt, index: i, rec: rec, issues: issues}
		if !r.required() {
			continue
		}
		before := len(*issues)
		row := build(r)
		if len(*issues) == before {
			out = append(out, row)
		}
	}
	return out
}

// Validate converts extracted records into rows ready for the database.
// Records with problems are left out of the batch and reported as issues.
func Validate(result *types.ImportResult) (*database.Batch, []Issue) {
	issues := make([]Issue, 0)
	batch := &database.Batch{}

	batch.Products = collect(result, types.RecordProducts, &issues, func(r recordReader) database.Product {
		return database.Product{
			Code:     r.text("code"),
			Name:     r.text("name"),
			Unit:     r.optional("unit"),
			BaseUnit: r.optional("base_unit"),
			UnitCost: r.optionalNumber("unit_cost"),
			PackSize: r.optionalNumber("pack_size"),
			PackUnit: r.optional("pack_unit"),
			WastePct: r.optionalNumber("waste_pct"),
			Supplier: r.optional("supplier"),
			Category: r.optional("category"),
		}
	})

	batch.Items = collect(result, types.RecordItems, &issues, func(r recordReader) database.Item {
		return database.Item{
			Code:     r.text("code"),
			Name:     r.text("name"),
			Category: r.optional("category"),
			YieldQty: r.optionalNumber("yield_qty"),
			Notes:    r.optional("notes"),
		}
	})

	batch.BOM = collect(result, types.RecordBOM, &issues, func(r recordReader) database.BOMLine {
		return database.BOMLine{
			ItemCode:    r.text("item_code"),
			ProductCode: r.text("product_code"),
			Qty:         r.number("qty"),
			Unit:        r.optional("unit"),
		}
	})

	batch.Production = collect(result, types.RecordProduction, &issues, func(r recordReader) database.ProductionEntry {
		return database.ProductionEntry{
			Date:     r.date("date"),
			ItemCode: r.text("item_code"),
			TotalQty: r.number("total_qty"),
			Note:     r.optional("note"),
		}
	})

	batch.Allocations = collect(result, types.RecordAllocations, &issues, func(r recordReader) database.Allocation {
		return database.Allocation{
			Date:     r.date("date"),
			ItemCode: r.text("item_code"),
			ShopCode: r.text("shop_code"),
			Qty:      r.number("qty"),
		}
	})

	return batch, issues
}
