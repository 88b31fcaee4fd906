package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected Encoding
	}{
		{"ASCII", []byte("Code;Name\n"), EncodingUTF8},
		{"UTF-8 umlauts", []byte("Bezeichnung;Größe\n"), EncodingUTF8},
		{"UTF-8 BOM", append([]byte{0xEF, 0xBB, 0xBF}, "Code"...), EncodingUTF8},
		{"Windows-1252 umlauts", []byte{'G', 'r', 0xF6, 0xDF, 'e'}, EncodingWindows1252},
		{"Empty", nil, EncodingUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.input))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		enc      Encoding
		expected string
	}{
		{"UTF-8 passthrough", []byte("Süßrahmbutter"), EncodingUTF8, "Süßrahmbutter"},
		{"BOM stripped", append([]byte{0xEF, 0xBB, 0xBF}, "Code"...), EncodingUTF8, "Code"},
		{"Windows-1252", []byte{'G', 'r', 0xF6, 0xDF, 'e'}, EncodingWindows1252, "Größe"},
		{"Windows-1252 euro sign", []byte{'5', ' ', 0x80}, EncodingWindows1252, "5 €"},
		{"ISO-8859-15 euro sign", []byte{'5', ' ', 0xA4}, EncodingISO885915, "5 €"},
		{"Invalid UTF-8 labelled UTF-8", []byte{'M', 0xFC, 'h', 'l', 'e'}, EncodingUTF8, "Mühle"},
		{"UTF-8 labelled legacy", []byte("Mühle"), EncodingWindows1252, "Mühle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("iso-8859-15")
	require.NoError(t, err)
	assert.Equal(t, EncodingISO885915, enc)

	_, err = ParseEncoding("ebcdic")
	assert.Error(t, err)
}
