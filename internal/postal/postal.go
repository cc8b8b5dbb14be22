package postal

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidFormat  = errors.New("invalid postal code format")
	ErrUnknownCountry = errors.New("unknown country code")
)

// Validation patterns are applied to the uppercased, space-stripped input.
// Canadian codes may be a bare FSA (first three characters) or a full
// postcode; the FSA is all the prefix resolver needs.
var patterns = map[string]*regexp.Regexp{
	"US": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"DE": regexp.MustCompile(`^\d{5}$`),
	"FR": regexp.MustCompile(`^\d{5}$`),
	"CA": regexp.MustCompile(`^[ABCEGHJ-NPRSTVXY]\d[A-Z](\d[A-Z]\d)?$`),
	"GB": regexp.MustCompile(`^[A-Z]{1,2}\d[A-Z0-9]?\d[A-Z]{2}$`),
}

// Known reports whether a validation pattern exists for the country.
func Known(countryCode string) bool {
	_, ok := patterns[strings.ToUpper(countryCode)]
	return ok
}

// Normalize canonicalizes a raw postal code for the given country:
// uppercase, all whitespace stripped, ZIP+4 reduced to the 5-digit ZIP.
// Every resolver and every builder goes through this, so a code always
// hits the same table key regardless of how the user typed it.
func Normalize(countryCode, raw string) (string, error) {
	cc := strings.ToUpper(strings.TrimSpace(countryCode))
	re, ok := patterns[cc]
	if !ok {
		return "", ErrUnknownCountry
	}

	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)

	if !re.MatchString(code) {
		return "", ErrInvalidFormat
	}

	if cc == "US" {
		// ZIP+4 carries no district information beyond the ZIP5.
		if i := strings.IndexByte(code, '-'); i > 0 {
			code = code[:i]
		}
	}

	return code, nil
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes a display name for exact-match joins: lowercase,
// diacritics stripped, whitespace collapsed. Constituency names drift in
// casing and accents between sources; anything that still differs after
// folding is treated as a genuine mismatch, never fuzzy-matched.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}
