package importer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeKey builds the comparison key for a name: upper-cased, trimmed,
// inner whitespace collapsed. Reference matching and dedup both key on this.
func NormalizeKey(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return whitespaceRe.ReplaceAllString(s, " ")
}

// FoldHeader normalizes a spreadsheet column name for lookup: lower-cased,
// trimmed, diacritics stripped, spaces and underscores removed, so that
// "Função", "funcao" and "FUNCAO " all resolve to the same column.
func FoldHeader(s string) string {
	s = stripDiacritics(strings.ToLower(strings.TrimSpace(s)))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

// stripDiacritics decomposes to NFD and drops combining marks.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// digitsOf returns only the decimal digits of s.
func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PadDocument left-pads a digit string with zeros to the 11-character
// storage width. Values already at or above 11 digits are returned as-is;
// there is no truncation.
func PadDocument(digits string) string {
	if len(digits) >= documentWidth {
		return digits
	}
	return strings.Repeat("0", documentWidth-len(digits)) + digits
}
