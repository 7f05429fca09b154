package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChemicalLen bounds chemical names; longer names are cut to this many characters.
const MaxChemicalLen = 100

// ordinalPrefixRe matches the "NN. " column ordinal the TRI download prepends
// to every header, e.g. "48. 5.1 - FUGITIVE AIR".
var ordinalPrefixRe = regexp.MustCompile(`^\d+\.\s+`)

// NormalizeHeader strips the ordinal prefix and surrounding whitespace from a
// column header. Headers without a prefix are returned trimmed.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	return strings.TrimSpace(ordinalPrefixRe.ReplaceAllString(h, ""))
}

// NormalizeHeaders applies NormalizeHeader to every header.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// TruncateChemical cuts a chemical name to MaxChemicalLen characters.
func TruncateChemical(name string) string {
	return truncateRunes(strings.TrimSpace(name), MaxChemicalLen)
}

// NormalizeCounty upper-cases and trims a county name so it can be used as a join key.
func NormalizeCounty(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// NormalizeCAS removes separator hyphens and whitespace from a CAS registry number.
func NormalizeCAS(cas string) string {
	return strings.ReplaceAll(strings.TrimSpace(cas), "-", "")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
