package importer

import (
	"strings"

	"github.com/bunca/bakery-service/internal/types"
)

// DefaultHeaderScanRows is how many leading rows are tried as a header row
const DefaultHeaderScanRows = 25

// Match scores
const (
	ScoreNone     = 0.0
	ScorePartial  = 1.5 // synonym contains the header
	ScoreContains = 2.0 // header contains the synonym
	ScoreExact    = 3.0
)

// HeaderMatch is the result of matching one candidate header row
type HeaderMatch struct {
	RowIndex int            `json:"rowIndex"`
	Hits     int            `json:"hits"`
	Mapping  map[string]int `json:"mapping"`
}

func noHeaderMatch() HeaderMatch {
	return HeaderMatch{RowIndex: -1, Mapping: map[string]int{}}
}

// Score compares a normalized header against a normalized synonym
func Score(header, synonym string) float64 {
	if header == "" || synonym == "" {
		return ScoreNone
	}
	switch {
	case header == synonym:
		return ScoreExact
	case strings.Contains(header, synonym):
		return ScoreContains
	case len(header) >= 3 && strings.Contains(synonym, header):
		return ScorePartial
	}
	return ScoreNone
}

// MatchHeaders maps schema fields to column indexes of a candidate header row.
// Fields are assigned greedily in declared order; each column goes to at most
// one field, and the leftmost column wins equal scores.
func MatchHeaders(cells []string, schema *Schema) map[string]int {
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = Normalize(c)
	}

	mapping := make(map[string]int)
	claimed := make([]bool, len(headers))

	for fi, field := range schema.Fields {
		synonyms := schema.synonyms(fi)
		bestCol, bestScore := -1, ScoreNone

		for col, h := range headers {
			if claimed[col] || h == "" {
				continue
			}
			score := ScoreNone
			for _, syn := range synonyms {
				if s := Score(h, syn); s > score {
					score = s
					if score == ScoreExact {
						break
					}
				}
			}
			if score > bestScore {
				bestCol, bestScore = col, score
			}
		}

		if bestCol >= 0 {
			mapping[field.Name] = bestCol
			claimed[bestCol] = true
		}
	}
	return mapping
}

// BestHeaderRow tries the first scanRows rows as header rows and keeps the one
// with the most matched fields. Earlier rows win ties. RowIndex is -1 when no
// row matches anything.
func BestHeaderRow(grid types.Grid, schema *Schema, scanRows int) HeaderMatch {
	if scanRows <= 0 {
		scanRows = DefaultHeaderScanRows
	}

	best := noHeaderMatch()
	for i := 0; i < len(grid) && i < scanRows; i++ {
		mapping := MatchHeaders(grid[i], schema)
		if len(mapping) > best.Hits {
			best = HeaderMatch{RowIndex: i, Hits: len(mapping), Mapping: mapping}
		}
	}
	return best
}
