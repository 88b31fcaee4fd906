package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a raw material bought from a supplier (flour, butter, ...)
type Product struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Unit      *string             `json:"unit"`      // unit the cost refers to: kg, l, Stk
	BaseUnit  *string             `json:"base_unit"` // unit recipes are written in
	UnitCost  decimal.NullDecimal `json:"unit_cost"`
	PackSize  decimal.NullDecimal `json:"pack_size"`
	PackUnit  *string             `json:"pack_unit"`
	WastePct  decimal.NullDecimal `json:"waste_pct"`
	Supplier  *string             `json:"supplier"`
	Category  *string             `json:"category"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Item is a finished good sold in the shops
type Item struct {
	Code      string              `json:"code"`
	Name      string              `json:"name"`
	Category  *string             `json:"category"`
	YieldQty  decimal.NullDecimal `json:"yield_qty"` // pieces per batch
	Notes     *string             `json:"notes"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// BOMLine is one ingredient line of an item's recipe
type BOMLine struct {
	ItemCode    string          `json:"item_code"`
	ProductCode string          `json:"product_code"`
	Qty         decimal.Decimal `json:"qty"`
	Unit        *string         `json:"unit"`
}

// ProductionEntry is the planned output of one item on one day
type ProductionEntry struct {
	Date     time.Time       `json:"date"`
	ItemCode string          `json:"item_code"`
	TotalQty decimal.Decimal `json:"total_qty"`
	Note     *string         `json:"note"`
}

// Shop is a branch receiving deliveries. Shops first seen in an allocation
// sheet are registered with status 'pending'.
type Shop struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // 'active' | 'pending'
	CreatedAt time.Time `json:"created_at"`
}

// Allocation is the quantity of an item delivered to a shop on one day
type Allocation struct {
	Date     time.Time       `json:"date"`
	ItemCode string          `json:"item_code"`
	ShopCode string          `json:"shop_code"`
	Qty      decimal.Decimal `json:"qty"`
}

// Batch groups everything written by one applied import
type Batch struct {
	Products    []Product
	Items       []Item
	BOM         []BOMLine
	Production  []ProductionEntry
	Allocations []Allocation
}

// Len returns the number of rows in the batch
func (b *Batch) Len() int {
	return len(b.Products) + len(b.Items) + len(b.BOM) + len(b.Production) + len(b.Allocations)
}

// RunStatus is the lifecycle state of an import run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusRejected  RunStatus = "rejected" // validation issues, nothing written
	RunStatusFailed    RunStatus = "failed"
)

// ImportRun records one uploaded workbook and what was done with it
type ImportRun struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	Checksum     string         `json:"checksum"`
	StorageKey   *string        `json:"storage_key"`
	FileType     *string        `json:"file_type"`
	Status       RunStatus      `json:"status"`
	Applied      bool           `json:"applied"`
	Counts       map[string]int `json:"counts"` // records per record type
	Errors       []string       `json:"errors"` // importer diagnostics
	IssueCount   int            `json:"issue_count"`
	ErrorMessage *string        `json:"error_message"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at"`
}
