package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/smach/authorfeed"
)

// Ensure LoggingWriter implements authorfeed.FeedWriter.
var _ authorfeed.FeedWriter = (*LoggingWriter)(nil)

// LoggingWriter wraps a FeedWriter with logging.
type LoggingWriter struct {
	next   authorfeed.FeedWriter
	logger *slog.Logger
}

// NewLoggingWriter creates a new LoggingWriter.
func NewLoggingWriter(next authorfeed.FeedWriter, logger *slog.Logger) *LoggingWriter {
	return &LoggingWriter{next: next, logger: logger}
}

// WriteFeed delegates to the wrapped writer and logs the result.
func (w *LoggingWriter) WriteFeed(ctx context.Context, path string, body []byte) (result *authorfeed.WriteResult, err error) {
	defer func(begin time.Time) {
		args := []any{
			"path", path,
			"bytes", len(body),
			"duration", time.Since(begin),
			"err", err,
		}
		if result != nil {
			args = append(args, "checksum", result.Checksum)
		}
		w.logger.Info("write feed", args...)
	}(time.Now())
	return w.next.WriteFeed(ctx, path, body)
}
