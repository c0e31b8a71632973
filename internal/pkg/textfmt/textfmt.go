// Package textfmt is the deterministic local text cleanup applied when a
// caller gets no AI enhancement: basic capitalization, whitespace and
// punctuation normalization. The output for a given input never changes.
package textfmt

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	loneI       = regexp.MustCompile(`\bi\b`)
	multiSpace  = regexp.MustCompile(`\s+`)
	periodGap   = regexp.MustCompile(`(\w)\s*\.\s*(\w)`)
	commaGap    = regexp.MustCompile(`(\w)\s*,\s*(\w)`)
	afterPeriod = regexp.MustCompile(`\.\s*([a-z])`)
)

// Clean normalizes a raw transcript: lowercases then recapitalizes sentence
// starts and the pronoun "I", collapses whitespace, fixes spacing around
// periods and commas, and guarantees a terminal punctuation mark.
func Clean(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return s
	}

	s = strings.ToLower(s)
	s = multiSpace.ReplaceAllString(s, " ")
	s = periodGap.ReplaceAllString(s, "$1. $2")
	s = commaGap.ReplaceAllString(s, "$1, $2")
	s = loneI.ReplaceAllString(s, "I")
	s = afterPeriod.ReplaceAllStringFunc(s, func(m string) string {
		i := strings.LastIndexFunc(m, unicode.IsLower)
		return ". " + strings.ToUpper(m[i:])
	})

	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	s = strings.TrimSpace(string(r))

	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
