package authorfeed

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Shared pattern fragments for bylines, dates and reading-time markers.
const (
	monthPattern       = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`
	datePattern        = monthPattern + `\.?[ \t]+\d{1,2}(?:st|nd|rd|th)?,?[ \t]+\d{4}`
	isoDatePattern     = `\d{4}-\d{2}-\d{2}`
	readingTimePattern = `\d+[ \t]*mins?(?:[ \t]+read)?\b`
	nameWordPattern    = `\p{Lu}[\p{L}'’.-]*`
	namePattern        = nameWordPattern + `(?:[ \t]+` + nameWordPattern + `){1,2}`
	separatorChars     = `|•·:,;–—-`
)

var (
	// DateRE matches a human-readable month-name, day and year date.
	DateRE = regexp.MustCompile(`\b` + datePattern)

	monthWordRE = regexp.MustCompile(`^` + monthPattern + `\.?$`)
)

// NormalizeSpace collapses runs of whitespace into single spaces and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max characters. Truncated text is cut at a
// word boundary when one is close to the limit and ends with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}

	runes := []rune(s)
	cut := string(runes[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 && utf8.RuneCountInString(cut[:i]) >= (max-1)*4/5 {
		cut = cut[:i]
	}
	cut = strings.TrimRight(cut, " "+separatorChars+".")
	return cut + "…"
}
