package csv

import "github.com/bunca/bakery-service/internal/parsers/charset"

// Delimiter represents supported CSV delimiters
type Delimiter string

const (
	DelimiterComma     Delimiter = ","
	DelimiterSemicolon Delimiter = ";"
	DelimiterTab       Delimiter = "\t"
	DelimiterPipe      Delimiter = "|"
)

// Options controls how CSV content is read. Zero values are detected.
type Options struct {
	Delimiter Delimiter        `json:"delimiter,omitempty"`
	Encoding  charset.Encoding `json:"encoding,omitempty"`
	QuoteChar rune             `json:"quoteChar,omitempty"`
}

// DefaultOptions returns options that detect delimiter and encoding
func DefaultOptions() Options {
	return Options{QuoteChar: '"'}
}
