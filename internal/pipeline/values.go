package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	numberNoise = regexp.MustCompile(`[€$£%\s\x{00A0}\x{202F}]|(?i)eur`)
	isoDate     = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[ T].*)?$`)
	euDate      = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4}|\d{2})$`)
)

// maxExcelSerial is 9999-12-31
const maxExcelSerial = 2958465

// ParseDecimal parses a number written either way round:
// "12.99", "12,99", "1.299,00", "1,299.00". Currency signs, percent signs
// and spaces are ignored.
func ParseDecimal(value string) (decimal.Decimal, error) {
	cleaned := numberNoise.ReplaceAllString(value, "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	dots := strings.Count(cleaned, ".")
	commas := strings.Count(cleaned, ",")

	switch {
	case commas > 1 && dots == 0:
		// 1,234,567
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case dots > 1 && commas == 0:
		// 1.234.567
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case lastComma > lastDot:
		// European format: 1.234,56 -> comma is decimal
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot > lastComma:
		// US format: 1,234.56 -> just remove commas
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", value)
	}
	return d, nil
}

// ParseDate parses YYYY-MM-DD, DD.MM.YYYY, DD/MM/YYYY (two-digit years
// allowed) and Excel serial dates. The result is midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := isoDate.FindStringSubmatch(value); m != nil {
		return buildDate(value, m[1], m[2], m[3])
	}
	if m := euDate.FindStringSubmatch(value); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return buildDate(value, year, m[2], m[1])
	}

	// Excel serial date
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid Excel date %q: %w", value, err)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func buildDate(raw, y, m, d string) (time.Time, error) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31.02. into March
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return date, nil
}
