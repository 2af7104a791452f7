package authorfeed

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTitleLength is the shortest cleaned title kept before falling back to Untitled.
const MinTitleLength = 5

// MinDescriptionLength is the shortest cleaned description kept.
const MinDescriptionLength = 20

// Rule is a single text rewrite in a cleanup chain.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// ApplyRules applies rules left to right and repeats the pass until the text
// stops changing.
func ApplyRules(s string, rules []Rule) string {
	for i := 0; i < 10; i++ {
		before := s
		for _, r := range rules {
			s = r.Pattern.ReplaceAllString(s, r.Replacement)
		}
		if s == before {
			break
		}
	}
	return s
}

// DefaultCategories is the topic vocabulary stripped from the end of titles.
var DefaultCategories = []string{
	"Analytics",
	"Artificial Intelligence",
	"Cloud Computing",
	"Data Science",
	"Data Visualization",
	"Development Tools",
	"Generative AI",
	"JavaScript",
	"Machine Learning",
	"Open Source",
	"Programming Languages",
	"Python",
	"R Language",
	"Software Development",
}

// TitleRules returns the title cleanup chain for a category vocabulary.
func TitleRules(categories []string) []Rule {
	rules := []Rule{
		{
			Name:    "leading-byline",
			Pattern: regexp.MustCompile(`^(?i:by)[ \t]+` + namePattern + `[ \t]*[|•·:–—-][ \t]*`),
		},
		{
			Name:    "trailing-topic",
			Pattern: regexp.MustCompile(`[ \t]*` + readingTimePattern + `(?:[ \t]+\p{Lu}[\p{L}\p{N}&+#.-]*){0,4}[ \t]*$`),
		},
		{
			Name:    "trailing-reading-time",
			Pattern: regexp.MustCompile(`[ \t|•·,-]*` + readingTimePattern + `[ \t]*$`),
		},
		{
			Name:    "trailing-date",
			Pattern: regexp.MustCompile(`[ \t|•·,–—-]*(?:\b` + datePattern + `|\b` + isoDatePattern + `)[ \t]*$`),
		},
		{
			Name:    "trailing-read-more",
			Pattern: regexp.MustCompile(`(?i)[ \t]*(?:[|•·:–—-]+[ \t]*)?(?:read more|continue reading|read the (?:full )?(?:article|story)|read now)[ \t]*[»›→.…]*[ \t]*$`),
		},
	}
	if alt := categoryAlternation(categories); alt != "" {
		rules = append(rules, Rule{
			Name:    "trailing-category",
			Pattern: regexp.MustCompile(`[ \t]*(?:[|•·]|\b` + datePattern + `)[ \t]*(?:` + alt + `)[ \t]*$`),
		})
	}
	return append(rules,
		Rule{Name: "collapse-space", Pattern: regexp.MustCompile(`\s+`), Replacement: " "},
		Rule{Name: "trim-separators", Pattern: regexp.MustCompile(`^[\s` + separatorChars + `]+|[\s` + separatorChars + `]+$`)},
	)
}

func categoryAlternation(categories []string) string {
	quoted := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = NormalizeSpace(c); c != "" {
			quoted = append(quoted, regexp.QuoteMeta(c))
		}
	}
	return strings.Join(quoted, "|")
}

// DescriptionRules is the description cleanup chain.
var DescriptionRules = []Rule{
	{
		Name:    "leading-byline-date",
		Pattern: regexp.MustCompile(`^(?i:by)[ \t]+` + nameWordPattern + `(?:[ \t]+` + nameWordPattern + `){0,2}?[ \t]*[,|•·]?[ \t]*` + datePattern + `[ \t|•·,–—-]*`),
	},
	{
		Name:    "leading-byline",
		Pattern: regexp.MustCompile(`^(?i:by)[ \t]+` + namePattern + `[ \t]*[,|•·:–—-][ \t]*`),
	},
	{
		Name:    "leading-date",
		Pattern: regexp.MustCompile(`^(?:` + datePattern + `|` + isoDatePattern + `)[ \t|•·,–—-]*`),
	},
	{
		Name:    "leading-reading-time",
		Pattern: regexp.MustCompile(`^` + readingTimePattern + `[ \t|•·,–—-]*`),
	},
	{
		Name:    "trailing-read-more",
		Pattern: regexp.MustCompile(`(?i)[ \t]*(?:[|•·:–—-]+[ \t]*)?(?:read more|continue reading)[ \t]*[»›→.…]*[ \t]*$`),
	},
	{Name: "collapse-space", Pattern: regexp.MustCompile(`\s+`), Replacement: " "},
	{Name: "trim-space", Pattern: regexp.MustCompile(`^\s+|\s+$`)},
}

var (
	leadingBylineRE    = regexp.MustCompile(`^(?i:by)[ \t]+` + namePattern)
	leadingBylineSepRE = regexp.MustCompile(`^(?i:by)[ \t]+` + namePattern + `[ \t]*[|•·:–—-][ \t]*`)

	metadataShapes = []*regexp.Regexp{
		regexp.MustCompile(`^[\d\s.,:/-]+$`),
		regexp.MustCompile(`^` + monthPattern + `\.?$`),
		regexp.MustCompile(`^(?i:by)(?:[ \t]+` + namePattern + `)?$`),
		regexp.MustCompile(`^` + readingTimePattern + `$`),
		regexp.MustCompile(`^(?:` + datePattern + `|` + isoDatePattern + `)$`),
	}

	placeholderRE = regexp.MustCompile(`(?i)^(?:click|tap)?\s*(?:here\s+)?(?:to\s+)?(?:read more|continue reading|read the full (?:article|story)|learn more|read article)\W*$`)

	numericRE = regexp.MustCompile(`^\d+$`)
)

// IsMetadataBlob reports whether s opens with a byline, meaning it is an
// author, date and category concatenation rather than a title.
func IsMetadataBlob(s string) bool {
	return leadingBylineRE.MatchString(NormalizeSpace(s))
}

// IsMetadataShape reports whether s is nothing but a number, month name,
// bare byline, reading time or date.
func IsMetadataShape(s string) bool {
	s = NormalizeSpace(s)
	for _, re := range metadataShapes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// TitleFromURL derives a title from the last non-numeric path segment of a
// URL, e.g. "/article/123/fixing-common-bugs.html" becomes "Fixing Common Bugs".
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSuffix(segments[i], path.Ext(segments[i]))
		seg, _ = url.PathUnescape(seg)
		if seg == "" || numericRE.MatchString(seg) {
			continue
		}

		words := strings.FieldsFunc(seg, func(r rune) bool {
			return r == '-' || r == '_' || r == '+' || unicode.IsSpace(r)
		})
		for len(words) > 1 && numericRE.MatchString(words[len(words)-1]) {
			words = words[:len(words)-1]
		}
		for j, w := range words {
			words[j] = titleWord(w)
		}
		return strings.Join(words, " ")
	}
	return ""
}

func titleWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

// TitleCleaner turns raw link or heading text into a clean article title.
type TitleCleaner struct {
	Splitters []TitleSplitter
	Rules     []Rule
}

// NewTitleCleaner returns a TitleCleaner with the default splitters for
// author and the default category vocabulary.
func NewTitleCleaner(author string) *TitleCleaner {
	return &TitleCleaner{
		Splitters: DefaultTitleSplitters(author),
		Rules:     TitleRules(DefaultCategories),
	}
}

// Clean returns a title that is never empty, never a metadata blob, and at
// most MaxTitleLength characters. rawURL supplies the slug fallback.
func (c *TitleCleaner) Clean(raw, rawURL string) string {
	s := leadingBylineSepRE.ReplaceAllString(NormalizeSpace(raw), "")

	if s != "" && !IsMetadataBlob(s) {
		for _, sp := range c.Splitters {
			if t, ok := sp.Split(s); ok {
				s = t
				break
			}
		}
		s = ApplyRules(s, c.Rules)
	}

	if s == "" || IsMetadataBlob(s) {
		s = TitleFromURL(rawURL)
	}

	if utf8.RuneCountInString(s) < MinTitleLength || IsMetadataShape(s) {
		return Untitled
	}
	return Truncate(s, MaxTitleLength)
}

// CleanDescription strips byline and date prefixes from raw summary text.
// It returns an empty string when nothing reliable is left.
func CleanDescription(raw, title string) string {
	s := ApplyRules(NormalizeSpace(raw), DescriptionRules)
	if utf8.RuneCountInString(s) < MinDescriptionLength {
		return ""
	}
	if placeholderRE.MatchString(s) || strings.EqualFold(s, NormalizeSpace(title)) {
		return ""
	}
	return Truncate(s, MaxDescriptionLength)
}
