package authorfeed

import (
	"context"
	"fmt"
	"time"
)

// DefaultDateInterval spaces synthetic dates assigned to undated articles.
const DefaultDateInterval = 24 * time.Hour

// DefaultGenerator identifies this program in generated feeds.
const DefaultGenerator = "authorfeed"

// DefaultTTL is the refresh hint, in minutes, advertised to feed readers.
const DefaultTTL = 360

// Channel describes the feed as a whole.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
	Author      string
	Generator   string
	SelfURL     string
	TTL         int
}

// Item is one feed entry.
type Item struct {
	Title       string
	Link        string
	Description string
	Creator     string
	GUID        string
	PubDate     time.Time

	// Synthetic is true when PubDate was assigned from the item's position.
	Synthetic bool
}

// Feed is a single-channel syndication document ready for encoding.
type Feed struct {
	Channel       Channel
	LastBuildDate time.Time
	Items         []*Item
}

// SyntheticDate returns the stand-in publication date for the article at
// index: buildTime minus index intervals, so earlier articles are newer.
func SyntheticDate(buildTime time.Time, index int, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = DefaultDateInterval
	}
	return buildTime.Add(-time.Duration(index) * interval)
}

// NewFeed builds a feed from articles in discovery order. Undated articles
// get synthetic dates. An empty article list yields a single notice item.
func NewFeed(ch Channel, articles []*Article, buildTime time.Time, interval time.Duration) *Feed {
	f := &Feed{Channel: ch, LastBuildDate: buildTime}

	if len(articles) == 0 {
		f.Items = []*Item{{
			Title:       "No articles found",
			Link:        ch.Link,
			Description: fmt.Sprintf("No articles were found on %s at %s. The feed will refresh on the next run.", ch.Link, buildTime.UTC().Format(time.RFC1123Z)),
			Creator:     ch.Author,
			GUID:        ch.Link,
			PubDate:     buildTime,
		}}
		return f
	}

	f.Items = make([]*Item, 0, len(articles))
	for i, a := range articles {
		item := &Item{
			Title:       a.Title,
			Link:        a.URL,
			Description: a.Description,
			Creator:     a.Author,
			GUID:        a.URL,
			PubDate:     a.PublishedAt,
		}
		if !a.HasDate() {
			item.PubDate = SyntheticDate(buildTime, i, interval)
			item.Synthetic = true
		}
		f.Items = append(f.Items, item)
	}
	return f
}

// ErrorFeed builds a degraded feed with one item describing cause, so a
// failed run still leaves a parseable document behind.
func ErrorFeed(ch Channel, cause error, buildTime time.Time) *Feed {
	return &Feed{
		Channel:       ch,
		LastBuildDate: buildTime,
		Items: []*Item{{
			Title:       "Feed generation failed",
			Link:        ch.Link,
			Description: fmt.Sprintf("The article listing at %s could not be read: %s", ch.Link, ErrorMessageOrText(cause)),
			Creator:     ch.Author,
			GUID:        ch.Link,
			PubDate:     buildTime,
		}},
	}
}

// ErrorMessageOrText returns the application message for err, or the error
// text for errors that do not carry one.
func ErrorMessageOrText(err error) string {
	if err == nil {
		return ""
	}
	if ErrorCode(err) == EINTERNAL {
		return err.Error()
	}
	return ErrorMessage(err)
}

// FeedEncoder serializes a feed document.
type FeedEncoder interface {
	Encode(f *Feed) ([]byte, error)
}

// WriteResult describes a written feed file.
type WriteResult struct {
	Path     string
	Bytes    int
	Checksum string
}

// FeedWriter persists encoded feed documents.
type FeedWriter interface {
	// WriteFeed replaces the file at path with body. Readers never observe a
	// partially written file.
	WriteFeed(ctx context.Context, path string, body []byte) (*WriteResult, error)
}
