// Package charset detects and decodes the legacy encodings German spreadsheet
// exports still arrive in.
package charset

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingISO885915   Encoding = "iso-8859-15"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseEncoding validates an encoding name from configuration or a request
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case EncodingUTF8, EncodingWindows1252, EncodingISO885915:
		return Encoding(s), nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unsupported encoding %q", s)
}

// DetectEncoding guesses the encoding of a byte buffer.
// A BOM or valid UTF-8 means UTF-8; anything else is treated as Windows-1252,
// which is what Excel on a German Windows writes for "CSV (Trennzeichen-getrennt)".
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1252
}

// Decode converts a byte buffer from the given encoding to a UTF-8 string.
// A leading UTF-8 BOM is dropped. Valid UTF-8 input is returned as is even
// when a legacy encoding was requested, so mislabelled files are not decoded twice.
func Decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), nil
	}

	switch enc {
	case EncodingISO885915:
		return decodeWith(charmap.ISO8859_15, data)
	case EncodingWindows1252, EncodingUTF8, "":
		return decodeWith(charmap.Windows1252, data)
	}
	return "", fmt.Errorf("unsupported encoding %q", enc)
}

func decodeWith(e encoding.Encoding, data []byte) (string, error) {
	out, err := e.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", e, err)
	}
	return string(out), nil
}
