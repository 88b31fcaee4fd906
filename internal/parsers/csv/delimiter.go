package csv

import (
	"strings"
)

const delimiterSampleLines = 5

// DetectDelimiter picks the candidate that splits the first non-empty lines
// into the same number of fields as the header does, counting only
// delimiters outside quotes. Ties go to the candidate yielding more fields,
// then to candidate order. Comma is the fallback.
func DetectDelimiter(content string) Delimiter {
	sample := sampleLines(content, delimiterSampleLines)
	if len(sample) == 0 {
		return DelimiterComma
	}

	best, bestAgree, bestFields := DelimiterComma, 0, 0
	for _, delim := range candidateDelimiters {
		r := []rune(string(delim))[0]
		header := len(SplitRecord(sample[0], r, '"'))
		if header < 2 {
			continue
		}

		agree := 0
		for _, line := range sample {
			if len(SplitRecord(line, r, '"')) == header {
				agree++
			}
		}
		if agree > bestAgree || (agree == bestAgree && header > bestFields) {
			best, bestAgree, bestFields = delim, agree, header
		}
	}
	return best
}

var candidateDelimiters = []Delimiter{DelimiterSemicolon, DelimiterComma, DelimiterTab, DelimiterPipe}

func sampleLines(content string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

// SplitRecord splits one CSV record handling quoted fields and doubled quotes.
// Line breaks in record are ordinary characters.
func SplitRecord(record string, delimiter rune, quoteChar rune) []string {
	return scan(record, delimiter, quoteChar, false)[0]
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}
