// Package normalize canonicalizes identity-bearing contact fields (phone,
// email, name) into comparison keys. All functions are pure and total:
// malformed input yields ("", false), never an error — a missing key means
// "no key contributed", not a failure.
package normalize

import "strings"

// minPhoneDigits is the minimum number of significant digits for a phone
// number to serve as a reliable identity key.
const minPhoneDigits = 7

// countryCodes maps an ISO 3166-1 alpha-2 region to its E.164 country code.
// Covers the regions the consolidated address books actually come from;
// unknown regions fall through to digits-as-given.
var countryCodes = map[string]string{
	"AT": "43",
	"DE": "49",
	"CH": "41",
	"US": "1",
	"GB": "44",
	"FR": "33",
	"IT": "39",
	"NL": "31",
	"ES": "34",
}

// Phone canonicalizes a raw phone number into an E.164-like "+"-prefixed
// digit string. A leading "00" international prefix becomes "+"; a leading
// national trunk "0" is replaced by the default region's country code; a bare
// national number is prefixed with it. Returns false when fewer than
// minPhoneDigits significant digits remain.
func Phone(raw, defaultRegion string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "", false
	}

	cc := countryCodes[strings.ToUpper(defaultRegion)]
	switch {
	case strings.HasPrefix(s, "+"):
		// Already international.
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "0") && cc != "":
		s = "+" + cc + s[1:]
	case cc != "":
		s = "+" + cc + s
	default:
		s = "+" + s
	}

	if len(strings.TrimLeft(s, "+")) < minPhoneDigits {
		return "", false
	}
	return s, true
}
