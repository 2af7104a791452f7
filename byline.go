package authorfeed

import (
	"regexp"
	"strings"
)

var (
	bylineRE = regexp.MustCompile(`(?i:\bby|\bauthor:)[ \t]+(` + namePattern + `)`)
	fromRE   = regexp.MustCompile(`(?m)^[ \t]*(?i:from)[ \t]+(` + namePattern + `)`)

	embeddedBylineRE = regexp.MustCompile(`[ \t]+(?i:by)[ \t]+(` + namePattern + `)`)
	leadMetadataRE   = regexp.MustCompile(`^[ \t` + separatorChars + `]*(?:` + datePattern + `|` + isoDatePattern + `|` + readingTimePattern + `)`)
)

// DefaultSectionMarkers are labels of page sections that never hold the
// author's own listing.
var DefaultSectionMarkers = []string{
	"trending",
	"more from",
	"related articles",
	"related stories",
	"related content",
	"sponsored",
	"you might also like",
	"recommended for you",
	"recommended",
	"popular",
	"most popular",
	"editor's picks",
	"editors' picks",
	"partner content",
}

// maxMarkerLine bounds the length of a line considered a section label.
const maxMarkerLine = 60

// BylineNames returns the author names named by byline patterns in text, in
// order of appearance. Month abbreviations trailing a name are dropped.
func BylineNames(text string) []string {
	var names []string
	for _, re := range []*regexp.Regexp{bylineRE, fromRE} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name := trimNameTail(m[1]); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// trimNameTail removes trailing month tokens swallowed by the name pattern,
// as in "Jane Doe Oct 3, 2024".
func trimNameTail(name string) string {
	words := strings.Fields(name)
	for len(words) > 0 && monthWordRE.MatchString(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

var (
	authorPrefixRE = regexp.MustCompile(`^(?i:by|author:|written by|posted by)(?:[ \t]+|$)`)
	authorCutRE    = regexp.MustCompile(`[|•·,\n\d]`)
)

// CleanAuthorName reduces the text of a byline element to the author's name,
// e.g. "By Sharon Machlis, Oct 3" becomes "Sharon Machlis".
func CleanAuthorName(s string) string {
	s = authorPrefixRE.ReplaceAllString(strings.TrimSpace(s), "")
	if loc := authorCutRE.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return trimNameTail(NormalizeSpace(s))
}

// SameAuthor reports whether two author names refer to the same person.
// Matching is case-insensitive, whitespace-normalized, and accepts either
// name containing the other so "Sharon Machlis R" still matches.
func SameAuthor(a, b string) bool {
	a = strings.ToLower(NormalizeSpace(a))
	b = strings.ToLower(NormalizeSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// AttributedTo reports whether text may belong to author. It returns false
// only when a byline in text names someone else and the author's name
// appears nowhere in text, so "By Jane Doe and Sharon Machlis" is kept.
// Text without any byline is attributed to the author.
func AttributedTo(text, author string) bool {
	names := BylineNames(text)
	if len(names) == 0 {
		return true
	}
	for _, name := range names {
		if SameAuthor(name, author) {
			return true
		}
	}
	author = strings.ToLower(NormalizeSpace(author))
	return author != "" && strings.Contains(strings.ToLower(NormalizeSpace(text)), author)
}

// HasSectionMarker reports whether any short line of text begins with one of
// the section marker phrases. Matching is case-insensitive.
func HasSectionMarker(text string, markers []string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToLower(NormalizeSpace(line))
		if line == "" || len(line) > maxMarkerLine {
			continue
		}
		line = strings.ReplaceAll(line, "’", "'")
		for _, marker := range markers {
			if strings.HasPrefix(line, marker) {
				return true
			}
		}
	}
	return false
}

// TitleSplitter separates a title from metadata concatenated after it.
type TitleSplitter interface {
	// Name identifies the splitter in logs and tests.
	Name() string

	// Split returns the title portion of s. The boolean is false when no
	// boundary was found, in which case s is returned unchanged.
	Split(s string) (string, bool)
}

// BylineSplitter cuts at an embedded "By Firstname Lastname" boundary when a
// date or reading-time marker directly follows the name and at least two
// words precede it, so "Stand By Me Oct 3, 2024" stays whole.
type BylineSplitter struct{}

// Ensure BylineSplitter implements TitleSplitter at compile time.
var _ TitleSplitter = BylineSplitter{}

func (BylineSplitter) Name() string { return "byline" }

func (BylineSplitter) Split(s string) (string, bool) {
	for _, m := range embeddedBylineRE.FindAllStringSubmatchIndex(s, -1) {
		title := strings.TrimSpace(s[:m[0]])
		if len(strings.Fields(title)) < 2 {
			continue
		}
		name := strings.Fields(trimNameTail(s[m[2]:m[3]]))
		if len(name) < 2 {
			continue
		}
		rest := s[m[2]:]
		for _, w := range name {
			rest = strings.TrimLeft(strings.TrimPrefix(strings.TrimLeft(rest, " \t"), w), " \t")
		}
		if leadMetadataRE.MatchString(rest) {
			return title, true
		}
	}
	return s, false
}

// PhraseSplitter cuts at the first case-insensitive occurrence of any fixed phrase.
type PhraseSplitter struct {
	phrases []*regexp.Regexp
}

// Ensure PhraseSplitter implements TitleSplitter at compile time.
var _ TitleSplitter = (*PhraseSplitter)(nil)

// NewPhraseSplitter returns a splitter that cuts at any of the given phrases.
func NewPhraseSplitter(phrases ...string) *PhraseSplitter {
	p := &PhraseSplitter{}
	for _, phrase := range phrases {
		phrase = NormalizeSpace(phrase)
		if phrase == "" {
			continue
		}
		p.phrases = append(p.phrases, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(phrase)))
	}
	return p
}

// NewAuthorSplitter returns a splitter that cuts at the author's byline.
func NewAuthorSplitter(author string) *PhraseSplitter {
	return NewPhraseSplitter("By " + NormalizeSpace(author))
}

func (p *PhraseSplitter) Name() string { return "phrase" }

func (p *PhraseSplitter) Split(s string) (string, bool) {
	cut := -1
	for _, re := range p.phrases {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			if loc[0] > 0 && (cut < 0 || loc[0] < cut) {
				cut = loc[0]
				break
			}
		}
	}
	if cut < 0 {
		return s, false
	}
	return strings.TrimSpace(s[:cut]), true
}

// DefaultTitleSplitters returns the splitters applied when none are configured.
func DefaultTitleSplitters(author string) []TitleSplitter {
	return []TitleSplitter{BylineSplitter{}, NewAuthorSplitter(author)}
}
