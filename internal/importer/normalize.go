package importer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	disallowedRe = regexp.MustCompile(`[^\w\s%/.\-]`)
	slashRe      = regexp.MustCompile(`\s*/\s*`)
	spaceRe      = regexp.MustCompile(`\s+`)

	// letters that do not decompose under NFD
	foldReplacer = strings.NewReplacer("ß", "ss", "ẞ", "ss")
)

// Normalize folds a header label or key value for comparison.
// It lower-cases, strips diacritics ("Prödukt" -> "produkt"), drops everything
// except word characters, whitespace and % / . -, tightens spaces around "/"
// and collapses whitespace runs. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(foldSpace, s)
	s = foldReplacer.Replace(s)
	s = removeDiacritics(s)
	s = disallowedRe.ReplaceAllString(s, "")
	s = slashRe.ReplaceAllString(s, "/")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// foldSpace maps every Unicode space to ' ', since \s only matches ASCII
func foldSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
