package xlsx

// Options controls how workbook cells are read
type Options struct {
	// FormattedValues returns cells as Excel displays them (number formats
	// applied). By default raw values are returned, so dates arrive as
	// serial numbers and amounts without thousands separators.
	FormattedValues bool `json:"formattedValues,omitempty"`
	// Sheets restricts reading to the named sheets. Empty reads all sheets.
	Sheets []string `json:"sheets,omitempty"`
}

// DefaultOptions returns options that read every sheet with raw values
func DefaultOptions() Options {
	return Options{}
}
