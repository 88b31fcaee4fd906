package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bunca/bakery-service/internal/types"
)

func xlsxBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Rohwaren"))
	require.NoError(t, f.SetSheetRow("Rohwaren", "A1", &[]interface{}{"Code", "Bezeichnung"}))
	require.NoError(t, f.SetSheetRow("Rohwaren", "A2", &[]interface{}{"MEHL550", "Weizenmehl"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDetectFileType(t *testing.T) {
	book := xlsxBytes(t)

	tests := []struct {
		name     string
		content  []byte
		filename string
		expected types.FileType
	}{
		{"XLSX upper-case extension", book, "ROHWAREN.XLSX", types.FileTypeXLSX},
		{"XLSX by extension", book, "rohwaren.xlsx", types.FileTypeXLSX},
		{"CSV", []byte("Code;Bezeichnung\nMEHL;Mehl\n"), "rohwaren.csv", types.FileTypeCSV},
		{"CSV without extension", []byte("Code,Name\nA,B\n"), "export", types.FileTypeCSV},
		{"Windows-1252 text", []byte("Code;Bezeichnung\nBUTTER;S\xfc\xdfrahmbutter\n"), "alt.csv", types.FileTypeCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFileType(tt.content, tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectFileTypeUnsupported(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

	_, err := DetectFileType(png, "bild.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadXLSX(t *testing.T) {
	wb, err := Load(xlsxBytes(t), "rohwaren.xlsx")
	require.NoError(t, err)

	assert.Equal(t, types.FileTypeXLSX, wb.Type)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Rohwaren", wb.Sheets[0].Name)
	assert.Equal(t, types.Grid{{"Code", "Bezeichnung"}, {"MEHL550", "Weizenmehl"}}, wb.Sheets[0].Rows)
}

func TestLoadCSVNamesSheetAfterFile(t *testing.T) {
	wb, err := Load([]byte("Code;Bezeichnung\nMEHL;Mehl\n"), "/tmp/uploads/Rohwaren März.csv")
	require.NoError(t, err)

	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Rohwaren März", wb.Sheets[0].Name)
	assert.Len(t, wb.Sheets[0].Rows, 2)
}

func TestLoadErrors(t *testing.T) {
	t.Run("Empty content", func(t *testing.T) {
		_, err := Load(nil, "leer.xlsx")
		assert.ErrorIs(t, err, ErrUnreadableWorkbook)
	})

	t.Run("Corrupt xlsx", func(t *testing.T) {
		book := xlsxBytes(t)
		_, err := Load(book[:len(book)/2], "kaputt.xlsx")
		assert.ErrorIs(t, err, ErrUnreadableWorkbook)
		assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := Load([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "bild.png")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
