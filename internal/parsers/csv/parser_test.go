package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunca/bakery-service/internal/types"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Delimiter
	}{
		{"Comma", "code,name,unit\nA,Alpha,kg\n", DelimiterComma},
		{"Semicolon with decimal commas", "Code;Bezeichnung;Preis\nMEHL;Mehl;0,89\nZUCKER;Zucker;1,10\n", DelimiterSemicolon},
		{"Tab", "Code\tName\nA\tAlpha\n", DelimiterTab},
		{"Pipe", "Code|Name\nA|Alpha\n", DelimiterPipe},
		{"Quoted commas", "Code;Bezeichnung\nBROT;\"Brot, hell, 500g\"\n", DelimiterSemicolon},
		{"Single column", "Code\nA\n", DelimiterComma},
		{"Empty", "", DelimiterComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter(tt.content))
		})
	}
}

func TestSplitRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   string
		expected []string
	}{
		{"Plain", "a;b;c", []string{"a", "b", "c"}},
		{"Quoted delimiter", `"Brot; hell";2`, []string{"Brot; hell", "2"}},
		{"Doubled quote", `"12"" Pizza";1`, []string{`12" Pizza`, "1"}},
		{"Empty fields", ";;", []string{"", "", ""}},
		{"Umlauts", "Größe;Stück", []string{"Größe", "Stück"}},
		{"Inch mark mid field", `A1;Blech 12" rund;Stk`, []string{"A1", `Blech 12" rund`, "Stk"}},
		{"Unclosed opening quote", `"Blech;Stk`, []string{`"Blech`, "Stk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitRecord(tt.record, ';', '"'))
		})
	}
}

func TestParse(t *testing.T) {
	content := "Rohwaren;;\r\nCode;Bezeichnung;Preis\r\nMEHL550;\"Weizenmehl\nType 550\";0,89\r\n\r\nBUTTER;Butter;6,20\r\n\r\n"

	grid, err := NewParser(DefaultOptions()).Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, types.Grid{
		{"Rohwaren", "", ""},
		{"Code", "Bezeichnung", "Preis"},
		{"MEHL550", "Weizenmehl\nType 550", "0,89"},
		{},
		{"BUTTER", "Butter", "6,20"},
	}, grid)
}

func TestParseBareQuotes(t *testing.T) {
	content := "Code;Bezeichnung;Einheit\nA1;Blech 12\" rund;Stk\nA2;Mehl;kg\nA3;\"Zucker\nfein;kg\n"

	grid, err := NewParser(DefaultOptions()).Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, types.Grid{
		{"Code", "Bezeichnung", "Einheit"},
		{"A1", `Blech 12" rund`, "Stk"},
		{"A2", "Mehl", "kg"},
		{"A3", `"Zucker`},
		{"fein", "kg"},
	}, grid)
}

func TestParseWindows1252(t *testing.T) {
	content := []byte("Code;Bezeichnung\nBUTTER;S\xfc\xdfrahmbutter\n")

	grid, err := NewParser(DefaultOptions()).Parse(content)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "Süßrahmbutter", grid[1][1])
}

func TestParseExplicitOptions(t *testing.T) {
	opts := Options{Delimiter: DelimiterComma}

	grid, err := NewParser(opts).Parse([]byte("a;b,c\n"))
	require.NoError(t, err)
	assert.Equal(t, types.Grid{{"a;b", "c"}}, grid)
}

func TestParseEmpty(t *testing.T) {
	grid, err := NewParser(DefaultOptions()).Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, grid)
}
