package authorfeed

import (
	"time"
	"unicode/utf8"
)

// Field limits for extracted articles, measured in characters.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 500
)

// Untitled is the title given to an article when no usable title survives cleanup.
const Untitled = "Untitled"

// Candidate is a discovered link that might represent an article, before filtering.
type Candidate struct {
	// AnchorText is the raw text content of the link. Never empty once accepted.
	AnchorText string

	// URL is the absolute link target with the fragment stripped.
	URL string

	// ContainerText is the text of the smallest enclosing container.
	// It is only used for author and section checks.
	ContainerText string

	// Strategy names the discovery strategy that produced the candidate.
	Strategy string
}

// Article is a filtered, field-extracted, deduplicated article listing entry.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	PublishedAt time.Time `json:"publishedAt"`
}

// HasDate reports whether a real publication date was recovered for the article.
func (a *Article) HasDate() bool {
	return !a.PublishedAt.IsZero()
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.URL == "" {
		return Errorf(EINVALID, "article URL required")
	}
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	if utf8.RuneCountInString(a.Title) > MaxTitleLength {
		return Errorf(EINVALID, "article title exceeds %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(a.Description) > MaxDescriptionLength {
		return Errorf(EINVALID, "article description exceeds %d characters", MaxDescriptionLength)
	}
	return nil
}

// Merge fills empty fields of a with the values from other.
// Articles are merged only when they share a URL.
func (a *Article) Merge(other *Article) {
	if a.URL != other.URL {
		return
	}
	if a.Description == "" {
		a.Description = other.Description
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = other.PublishedAt
	}
	if a.Title == Untitled && other.Title != "" {
		a.Title = other.Title
	}
}

// ArticleExtractor extracts an author's article listing from a rendered page.
type ArticleExtractor interface {
	// Extract parses rendered HTML and returns the articles in discovery order.
	// Zero articles is not an error.
	Extract(html string) ([]*Article, error)
}

// DateParser parses human and machine readable publication dates.
type DateParser interface {
	// ParseDate returns the parsed time or an error if s is not a recognizable date.
	ParseDate(s string) (time.Time, error)
}
