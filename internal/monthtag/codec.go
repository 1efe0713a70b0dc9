// Package monthtag normalizes calendar-cycle identifiers between the
// canonical "YYYY-MM" form and the legacy three-letter form ("JAN26").
//
// Normalization is total and idempotent: any string that matches neither form
// passes through unchanged and is treated as an opaque bucket. Normalized
// tags must never be compared lexicographically against dates; use Parse or
// Compare, which order by the (year, month) pair.
package monthtag

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Untagged is the bucket for transactions whose tag is empty after trimming.
const Untagged = "Untagged"

var canonicalPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

var legacyPattern = regexp.MustCompile(`^(?i)(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)(\d{2})$`)

var monthByAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

var abbrevByMonth = map[time.Month]string{
	time.January: "JAN", time.February: "FEB", time.March: "MAR",
	time.April: "APR", time.May: "MAY", time.June: "JUN",
	time.July: "JUL", time.August: "AUG", time.September: "SEP",
	time.October: "OCT", time.November: "NOV", time.December: "DEC",
}

// Normalize converts a tag to the canonical "YYYY-MM" form. Canonical tags
// pass through unchanged; legacy "MMMYY" tags are converted with the year
// read as 2000+YY; anything else is returned as-is.
func Normalize(tag string) string {
	tag = strings.TrimSpace(tag)
	if canonicalPattern.MatchString(tag) {
		return tag
	}

	m := legacyPattern.FindStringSubmatch(tag)
	if m == nil {
		return tag
	}

	month := monthByAbbrev[strings.ToUpper(m[1])]
	year := 2000
	// Two digits, guaranteed by the pattern.
	year += int(m[2][0]-'0')*10 + int(m[2][1]-'0')

	return Key(year, month)
}

// ToLegacy converts a canonical "YYYY-MM" tag to the legacy "MMMYY" form.
// It reports false for anything that is not a valid canonical tag or whose
// year falls outside the two-digit legacy range.
func ToLegacy(tag string) (string, bool) {
	year, month, ok := Parse(tag)
	if !ok {
		return "", false
	}
	if year < 2000 || year > 2099 {
		return "", false
	}
	return fmt.Sprintf("%s%02d", abbrevByMonth[month], year-2000), true
}

// Parse extracts the (year, month) pair from a tag, normalizing first. It
// reports false for opaque tags, including Untagged.
func Parse(tag string) (int, time.Month, bool) {
	normalized := Normalize(tag)
	if !canonicalPattern.MatchString(normalized) {
		return 0, 0, false
	}

	year := 0
	for _, r := range normalized[:4] {
		year = year*10 + int(r-'0')
	}
	month := time.Month(int(normalized[5]-'0')*10 + int(normalized[6]-'0'))

	return year, month, true
}

// Key builds the canonical tag for a (year, month) pair.
func Key(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// Compare orders two tags by their (year, month) pair, earlier first.
// Tags without a resolvable pair sort after every dated tag; two opaque tags
// fall back to string comparison so the order stays deterministic.
func Compare(a, b string) int {
	ay, am, aok := Parse(a)
	by, bm, bok := Parse(b)

	switch {
	case aok && bok:
		if ay != by {
			return ay - by
		}
		return int(am) - int(bm)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// BucketFor resolves the grouping key for a raw transaction tag: the
// normalized tag when resolvable, the trimmed literal otherwise, and the
// Untagged bucket when the tag is empty.
func BucketFor(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return Untagged
	}
	return Normalize(trimmed)
}
