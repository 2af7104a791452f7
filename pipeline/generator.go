// Package pipeline runs the render, extract, encode and write steps that turn
// an author's profile page into a feed file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smach/authorfeed"
	"golang.org/x/sync/errgroup"
)

// ExtractorFactory builds the extractor for one feed.
type ExtractorFactory func(fc authorfeed.FeedConfig) (authorfeed.ArticleExtractor, error)

// Generator turns feed configurations into feed files.
type Generator struct {
	Renderer    authorfeed.Renderer
	Extractors  ExtractorFactory
	Encoder     authorfeed.FeedEncoder
	Writer      authorfeed.FeedWriter
	RateLimiter *DomainLimiter
	Concurrency int
	RetryDelays []time.Duration
	Logger      *slog.Logger

	// Now returns the build time. Defaults to time.Now.
	Now func() time.Time
}

// Result holds the outcome of generating one feed.
type Result struct {
	Output   string
	Articles []*authorfeed.Article
	Write    *authorfeed.WriteResult

	// Degraded is true when the page could not be rendered or parsed and an
	// error notice feed was written instead.
	Degraded bool

	// Err is the render or extraction failure behind a degraded feed.
	Err error
}

// ProgressEvent reports progress while generating several feeds.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Output    string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
)

// ProgressFunc is a callback for reporting generation progress.
type ProgressFunc func(event ProgressEvent)

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.Logger
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Preview renders the profile page and extracts its articles without
// writing anything. Render and extraction errors are returned.
func (g *Generator) Preview(ctx context.Context, fc authorfeed.FeedConfig) ([]*authorfeed.Article, error) {
	extractor, err := g.Extractors(fc)
	if err != nil {
		return nil, err
	}
	return g.extract(ctx, extractor, fc.ProfileURL)
}

// Generate renders, extracts, encodes and writes one feed. When the page
// cannot be rendered or parsed, an error notice feed is written and the
// Result is marked Degraded; only configuration, encoding, write and
// cancellation errors are returned.
func (g *Generator) Generate(ctx context.Context, fc authorfeed.FeedConfig) (*Result, error) {
	extractor, err := g.Extractors(fc)
	if err != nil {
		return nil, err
	}

	result := &Result{Output: fc.Output}
	buildTime := g.now()
	ch := fc.Channel()

	var feed *authorfeed.Feed
	articles, err := g.extract(ctx, extractor, fc.ProfileURL)
	switch {
	case err == nil:
		result.Articles = articles
		feed = authorfeed.NewFeed(ch, articles, buildTime, fc.DateInterval)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		g.logger().Error("feed degraded", "output", fc.Output, "url", fc.ProfileURL, "err", err)
		result.Degraded = true
		result.Err = err
		feed = authorfeed.ErrorFeed(ch, err, buildTime)
	}

	body, err := g.Encoder.Encode(feed)
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}

	wr, err := g.Writer.WriteFeed(ctx, fc.Output, body)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", fc.Output, err)
	}
	result.Write = wr
	return result, nil
}

func (g *Generator) extract(ctx context.Context, extractor authorfeed.ArticleExtractor, url string) ([]*authorfeed.Article, error) {
	html, err := g.render(ctx, url)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(html)
}

func (g *Generator) render(ctx context.Context, url string) (string, error) {
	if g.RateLimiter != nil {
		if err := g.RateLimiter.WaitURL(ctx, url); err != nil {
			return "", err
		}
	}
	delays := g.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return RenderWithRetry(ctx, url, g.Renderer.Render, g.logger(), delays)
}

// GenerateAll generates every feed with at most Concurrency feeds in flight.
// A failing feed does not stop the others. Results are returned in input
// order; a failed feed's entry is nil and its error is joined into the
// returned error.
func (g *Generator) GenerateAll(ctx context.Context, feeds []authorfeed.FeedConfig, progress ProgressFunc) ([]*Result, error) {
	concurrency := g.Concurrency
	if concurrency <= 0 {
		concurrency = authorfeed.DefaultConcurrency
	}

	results := make([]*Result, len(feeds))
	errs := make([]error, len(feeds))
	events := make(chan ProgressEvent, len(feeds))

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(feeds)})
	}

	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for i, fc := range feeds {
		eg.Go(func() error {
			r, err := g.Generate(ctx, fc)
			results[i], errs[i] = r, err
			ev := ProgressEvent{Type: ProgressCompleted, Total: len(feeds), Output: fc.Output}
			if err != nil {
				ev.Type = ProgressFailed
				ev.Error = fmt.Errorf("%s: %w", fc.Output, err)
				errs[i] = ev.Error
			}
			events <- ev
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		completed := 0
		for ev := range events {
			completed++
			ev.Completed = completed
			if progress != nil {
				progress(ev)
			}
		}
		close(done)
	}()

	_ = eg.Wait()
	close(events)
	<-done

	return results, errors.Join(errs...)
}
