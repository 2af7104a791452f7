package slog

import (
	"log/slog"
	"time"

	"github.com/smach/authorfeed"
)

// Ensure LoggingExtractor implements authorfeed.ArticleExtractor.
var _ authorfeed.ArticleExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an ArticleExtractor with logging.
type LoggingExtractor struct {
	next   authorfeed.ArticleExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next authorfeed.ArticleExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract logs the article count and how many lack a publication date.
func (e *LoggingExtractor) Extract(html string) (articles []*authorfeed.Article, err error) {
	defer func(begin time.Time) {
		undated := 0
		for _, a := range articles {
			if !a.HasDate() {
				undated++
			}
		}
		e.logger.Info("extract",
			"bytes", len(html),
			"articles", len(articles),
			"undated", undated,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
