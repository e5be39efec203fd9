package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks covers the Combining Diacritical Marks block (U+0300–U+036F).
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

var (
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
	// đ/Đ has no NFD decomposition
	dStroke = strings.NewReplacer("đ", "d", "Đ", "d")
)

// NormalizeText lower-cases s, strips diacritics and collapses every run of
// characters outside [a-z0-9] into a single space.
// e.g. "Điện thoại  iPhone-15" -> "dien thoai iphone 15"
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = dStroke.Replace(strings.ToLower(s))

	// transformer state is not safe for concurrent use, build one per call
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	if folded, _, err := transform.String(stripper, s); err == nil {
		s = folded
	}

	s = nonAlnumRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CompactText is NormalizeText with all whitespace removed ("Apple Watch" -> "applewatch").
func CompactText(s string) string {
	return strings.ReplaceAll(NormalizeText(s), " ", "")
}
