package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var foldCaser = cases.Fold()

// Name canonicalizes a display name into a comparison key: trim, collapse
// internal whitespace, Unicode NFKC, case-fold. The display value itself is
// never modified by callers; the key exists only for matching. Returns false
// when nothing but whitespace or punctuation remains.
func Name(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	s = strings.Join(strings.Fields(s), " ")
	s = foldCaser.String(norm.NFKC.String(s))

	hasLetterOrDigit := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hasLetterOrDigit = true
			break
		}
	}
	if !hasLetterOrDigit {
		return "", false
	}
	return s, true
}

// TitleCase renders a corrected name suggestion in "First Last" casing.
// Used when presenting reconstructed names, never for matching keys.
func TitleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.ToLower(strings.TrimSpace(s)))
}
