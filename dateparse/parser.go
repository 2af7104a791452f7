// Package dateparse implements authorfeed.DateParser on top of
// github.com/araddon/dateparse.
package dateparse

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/smach/authorfeed"
)

// Ensure Parser implements authorfeed.DateParser at compile time.
var _ authorfeed.DateParser = (*Parser)(nil)

// Parser parses publication dates in machine formats (RFC 3339, ISO 8601)
// and human formats ("Oct 3, 2024", "October 3rd, 2024").
type Parser struct {
	loc *time.Location
}

// Option configures a Parser.
type Option func(*Parser)

// WithLocation sets the location used for dates without a zone.
// Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		p.loc = loc
	}
}

// NewParser creates a new Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{loc: time.UTC}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDate returns the parsed date. Ordinal suffixes are removed first
// because the underlying parser rejects them.
func (p *Parser) ParseDate(s string) (time.Time, error) {
	s = authorfeed.NormalizeSpace(s)
	if s == "" {
		return time.Time{}, authorfeed.Errorf(authorfeed.EINVALID, "empty date")
	}
	s = stripOrdinal(s)

	t, err := dateparse.ParseIn(s, p.loc)
	if err != nil {
		return time.Time{}, authorfeed.Errorf(authorfeed.EINVALID, "unrecognized date %q", s)
	}
	return t, nil
}

// stripOrdinal turns "3rd," into "3," in day tokens.
func stripOrdinal(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		trimmed := strings.TrimRight(f, ",")
		for _, suffix := range []string{"st", "nd", "rd", "th"} {
			day := strings.TrimSuffix(trimmed, suffix)
			if day != trimmed && day != "" && isDigits(day) {
				fields[i] = day + f[len(trimmed):]
				break
			}
		}
	}
	return strings.Join(fields, " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
