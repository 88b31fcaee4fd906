package types

import "fmt"

// RecordType identifies one of the importable record collections.
// The declaration order below is the tie-break priority used by the classifier.
type RecordType string

const (
	RecordProducts    RecordType = "products"
	RecordItems       RecordType = "items"
	RecordBOM         RecordType = "bom"
	RecordProduction  RecordType = "production"
	RecordAllocations RecordType = "allocations"
)

// RecordTypes lists every record type in priority order
var RecordTypes = []RecordType{
	RecordProducts,
	RecordItems,
	RecordBOM,
	RecordProduction,
	RecordAllocations,
}

// ParseRecordType validates a record type name
func ParseRecordType(s string) (RecordType, error) {
	for _, rt := range RecordTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// Record is one extracted row keyed by canonical field name.
// A field is present only when its column was matched.
type Record map[string]string

// Orientation says whether headers run across a row or down a column
type Orientation string

const (
	OrientationRows Orientation = "rows"
	OrientationCols Orientation = "cols"
)

// SheetOutcome summarises what a sheet contributed to an import
type SheetOutcome string

const (
	SheetEmpty      SheetOutcome = "empty"
	SheetUnmatched  SheetOutcome = "unmatched"
	SheetSingle     SheetOutcome = "single"
	SheetMultiTable SheetOutcome = "multi_table"
)

// TypeMatch is the best header match of one record type on one sheet
type TypeMatch struct {
	Type        RecordType  `json:"type"`
	Orientation Orientation `json:"orientation,omitempty"`
	HeaderRow   int         `json:"headerRow"`
	Hits        int         `json:"hits"`
	Threshold   int         `json:"threshold"`
	DataRows    int         `json:"dataRows"`
}

// SheetReport describes how a sheet was classified
type SheetReport struct {
	Sheet   string       `json:"sheet"`
	Rows    int          `json:"rows"`
	Outcome SheetOutcome `json:"outcome"`
	Matches []TypeMatch  `json:"matches,omitempty"`
	Emitted []RecordType `json:"emitted,omitempty"`
}

// ImportResult is the output of one workbook import
type ImportResult struct {
	Products    []Record      `json:"products"`
	Items       []Record      `json:"items"`
	BOM         []Record      `json:"bom"`
	Production  []Record      `json:"production"`
	Allocations []Record      `json:"allocations"`
	Errors      []string      `json:"errors"`
	Sheets      []SheetReport `json:"sheets,omitempty"`
}

// NewImportResult returns a result with all collections initialised to empty slices
func NewImportResult() *ImportResult {
	return &ImportResult{
		Products:    make([]Record, 0),
		Items:       make([]Record, 0),
		BOM:         make([]Record, 0),
		Production:  make([]Record, 0),
		Allocations: make([]Record, 0),
		Errors:      make([]string, 0),
	}
}

// Records returns the collection for a record type
func (r *ImportResult) Records(rt RecordType) []Record {
	switch rt {
	case RecordProducts:
		return r.Products
	case RecordItems:
		return r.Items
	case RecordBOM:
		return r.BOM
	case RecordProduction:
		return r.Production
	case RecordAllocations:
		return r.Allocations
	}
	return nil
}

// SetRecords replaces the collection for a record type
func (r *ImportResult) SetRecords(rt RecordType, records []Record) {
	switch rt {
	case RecordProducts:
		r.Products = records
	case RecordItems:
		r.Items = records
	case RecordBOM:
		r.BOM = records
	case RecordProduction:
		r.Production = records
	case RecordAllocations:
		r.Allocations = records
	}
}

// Total returns the number of records across all collections
func (r *ImportResult) Total() int {
	total := 0
	for _, rt := range RecordTypes {
		total += len(r.Records(rt))
	}
	return total
}
