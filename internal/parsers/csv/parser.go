// Package csv reads delimited text exports into a single-sheet grid.
package csv

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bunca/bakery-service/internal/parsers/charset"
	"github.com/bunca/bakery-service/internal/types"
)

// Parser reads CSV content with encoding and delimiter detection
type Parser struct {
	options Options
}

// NewParser creates a new CSV parser with the given options
func NewParser(options Options) *Parser {
	if options.QuoteChar == 0 {
		options.QuoteChar = '"'
	}
	return &Parser{options: options}
}

// Parse decodes content and splits it into a grid. Cells keep their text
// exactly, row positions are preserved and trailing blank lines are dropped.
func (p *Parser) Parse(content []byte) (types.Grid, error) {
	opts := p.options

	if opts.Encoding == "" {
		opts.Encoding = charset.DetectEncoding(content)
	}

	decoded, err := charset.Decode(content, opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	if opts.Delimiter == "" {
		opts.Delimiter = DetectDelimiter(decoded)
	}

	log.Debug().
		Str("encoding", string(opts.Encoding)).
		Str("delimiter", string(opts.Delimiter)).
		Msg("Parsing CSV")

	delim := []rune(string(opts.Delimiter))[0]
	decoded = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(decoded)

	grid := types.Grid(scan(decoded, delim, opts.QuoteChar, true))
	for i, row := range grid {
		if len(row) == 1 && row[0] == "" {
			grid[i] = []string{}
		}
	}

	for len(grid) > 0 && types.IsBlankRow(grid[len(grid)-1]) {
		grid = grid[:len(grid)-1]
	}
	return grid, nil
}

// scan splits content into rows of fields. A quote opens a quoted field only
// at the start of a field and is literal anywhere else, so `12" rund` stays
// one cell. Inside a quoted field delimiters, line breaks and doubled quotes
// are content. A quote that is never closed is rescanned as a literal.
// Without multiline the result is a single row.
func scan(content string, delim, quote rune, multiline bool) [][]string {
	runes := []rune(content)
	literal := make(map[int]bool)
	for {
		rows, openAt := scanOnce(runes, delim, quote, multiline, literal)
		if openAt < 0 {
			return rows
		}
		literal[openAt] = true
	}
}

// scanOnce returns the index of the opening quote when a quoted field runs
// to the end of input.
func scanOnce(runes []rune, delim, quote rune, multiline bool, literal map[int]bool) ([][]string, int) {
	var (
		rows       [][]string
		fields     []string
		current    strings.Builder
		inQuotes   bool
		fieldStart = true
		openAt     = -1
	)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if inQuotes {
			if r != quote {
				current.WriteRune(r)
				continue
			}
			if i+1 < len(runes) && runes[i+1] == quote {
				current.WriteRune(quote)
				i++
				continue
			}
			inQuotes = false
			continue
		}

		switch {
		case r == quote && fieldStart && !literal[i]:
			inQuotes, openAt, fieldStart = true, i, false
		case r == delim:
			fields = append(fields, current.String())
			current.Reset()
			fieldStart = true
		case r == '\n' && multiline:
			rows = append(rows, append(fields, current.String()))
			fields = nil
			current.Reset()
			fieldStart = true
		default:
			current.WriteRune(r)
			fieldStart = false
		}
	}

	if inQuotes {
		return nil, openAt
	}
	return append(rows, append(fields, current.String())), -1
}
