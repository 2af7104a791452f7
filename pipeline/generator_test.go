package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smach/authorfeed"
	"github.com/smach/authorfeed/mock"
	"github.com/smach/authorfeed/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildTime = time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)

func feedConfig(output string) authorfeed.FeedConfig {
	fc := authorfeed.FeedConfig{
		Author:     "Sharon Machlis",
		ProfileURL: "https://www.infoworld.com/profile/sharon-machlis/",
		Output:     output,
		SiteName:   "InfoWorld",
	}
	fc.SetDefaults()
	return fc
}

// fixture wires a Generator with mocks that capture the encoded feed and
// the written path.
type fixture struct {
	gen *pipeline.Generator

	mu      sync.Mutex
	feeds   []*authorfeed.Feed
	written []string
}

func newFixture(render func(ctx context.Context, url string) (string, error), articles []*authorfeed.Article) *fixture {
	f := &fixture{}
	f.gen = &pipeline.Generator{
		Renderer: &mock.Renderer{RenderFn: render},
		Extractors: func(fc authorfeed.FeedConfig) (authorfeed.ArticleExtractor, error) {
			return &mock.ArticleExtractor{
				ExtractFn: func(html string) ([]*authorfeed.Article, error) {
					return articles, nil
				},
			}, nil
		},
		Encoder: &mock.FeedEncoder{
			EncodeFn: func(feed *authorfeed.Feed) ([]byte, error) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.feeds = append(f.feeds, feed)
				return []byte("<rss/>"), nil
			},
		},
		Writer: &mock.FeedWriter{
			WriteFeedFn: func(ctx context.Context, path string, body []byte) (*authorfeed.WriteResult, error) {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.written = append(f.written, path)
				return &authorfeed.WriteResult{Path: path, Bytes: len(body)}, nil
			},
		},
		RetryDelays: []time.Duration{time.Millisecond, time.Millisecond},
		Now:         func() time.Time { return buildTime },
	}
	return f
}

func okRender(ctx context.Context, url string) (string, error) {
	return "<html></html>", nil
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("writes feed with extracted articles", func(t *testing.T) {
		t.Parallel()

		articles := []*authorfeed.Article{
			{Title: "How to Use Widgets", URL: "https://www.infoworld.com/article/1/widgets.html", Author: "Sharon Machlis"},
		}
		f := newFixture(okRender, articles)

		result, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		require.NoError(t, err)
		assert.False(t, result.Degraded)
		assert.Equal(t, articles, result.Articles)
		assert.Equal(t, "feed.xml", result.Write.Path)
		require.Len(t, f.feeds, 1)
		assert.Equal(t, "Sharon Machlis at InfoWorld", f.feeds[0].Channel.Title)
		assert.Equal(t, buildTime, f.feeds[0].LastBuildDate)
		require.Len(t, f.feeds[0].Items, 1)
		assert.Equal(t, "How to Use Widgets", f.feeds[0].Items[0].Title)
		assert.Equal(t, []string{"feed.xml"}, f.written)
	})

	t.Run("writes placeholder feed when no articles are found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(okRender, nil)

		result, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		require.NoError(t, err)
		assert.False(t, result.Degraded)
		require.Len(t, f.feeds, 1)
		require.Len(t, f.feeds[0].Items, 1)
		assert.Equal(t, "https://www.infoworld.com/profile/sharon-machlis/", f.feeds[0].Items[0].Link)
	})

	t.Run("retries transient render failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		f := newFixture(func(ctx context.Context, url string) (string, error) {
			if calls.Add(1) < 3 {
				return "", authorfeed.Errorf(authorfeed.ERENDER, "navigation timeout")
			}
			return "<html></html>", nil
		}, nil)

		result, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		require.NoError(t, err)
		assert.False(t, result.Degraded)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("writes error feed when rendering keeps failing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(func(ctx context.Context, url string) (string, error) {
			return "", authorfeed.Errorf(authorfeed.ERENDER, "browser crashed")
		}, nil)

		result, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		require.NoError(t, err)
		assert.True(t, result.Degraded)
		assert.Equal(t, authorfeed.ERENDER, authorfeed.ErrorCode(result.Err))
		require.Len(t, f.feeds, 1)
		require.Len(t, f.feeds[0].Items, 1)
		assert.Equal(t, "Feed generation failed", f.feeds[0].Items[0].Title)
		assert.Contains(t, f.feeds[0].Items[0].Description, "browser crashed")
		assert.Equal(t, []string{"feed.xml"}, f.written)
	})

	t.Run("writes error feed when extraction fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture(okRender, nil)
		f.gen.Extractors = func(fc authorfeed.FeedConfig) (authorfeed.ArticleExtractor, error) {
			return &mock.ArticleExtractor{
				ExtractFn: func(html string) ([]*authorfeed.Article, error) {
					return nil, authorfeed.Errorf(authorfeed.EINVALID, "failed to parse HTML")
				},
			}, nil
		}

		result, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		require.NoError(t, err)
		assert.True(t, result.Degraded)
	})

	t.Run("returns extractor configuration errors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(okRender, nil)
		f.gen.Extractors = func(fc authorfeed.FeedConfig) (authorfeed.ArticleExtractor, error) {
			return nil, authorfeed.Errorf(authorfeed.EINVALID, "invalid article pattern")
		}

		_, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		assert.Equal(t, authorfeed.EINVALID, authorfeed.ErrorCode(err))
		assert.Empty(t, f.written)
	})

	t.Run("returns write errors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(okRender, nil)
		f.gen.Writer = &mock.FeedWriter{
			WriteFeedFn: func(ctx context.Context, path string, body []byte) (*authorfeed.WriteResult, error) {
				return nil, errors.New("disk full")
			},
		}

		_, err := f.gen.Generate(context.Background(), feedConfig("feed.xml"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("returns context error instead of degrading", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		f := newFixture(func(ctx context.Context, url string) (string, error) {
			cancel()
			return "", ctx.Err()
		}, nil)

		_, err := f.gen.Generate(ctx, feedConfig("feed.xml"))

		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, f.written)
	})
}

func TestGenerator_Preview(t *testing.T) {
	t.Parallel()

	t.Run("returns articles without writing", func(t *testing.T) {
		t.Parallel()

		articles := []*authorfeed.Article{{Title: "One", URL: "https://example.com/article/1"}}
		f := newFixture(okRender, articles)

		got, err := f.gen.Preview(context.Background(), feedConfig("feed.xml"))

		require.NoError(t, err)
		assert.Equal(t, articles, got)
		assert.Empty(t, f.written)
		assert.Empty(t, f.feeds)
	})

	t.Run("returns render errors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(func(ctx context.Context, url string) (string, error) {
			return "", authorfeed.Errorf(authorfeed.ERENDER, "browser crashed")
		}, nil)

		_, err := f.gen.Preview(context.Background(), feedConfig("feed.xml"))

		assert.Equal(t, authorfeed.ERENDER, authorfeed.ErrorCode(err))
	})
}

func TestGenerator_GenerateAll(t *testing.T) {
	t.Parallel()

	t.Run("generates every feed in input order", func(t *testing.T) {
		t.Parallel()

		f := newFixture(okRender, nil)
		feeds := []authorfeed.FeedConfig{feedConfig("a.xml"), feedConfig("b.xml"), feedConfig("c.xml")}

		var events []pipeline.ProgressEvent
		results, err := f.gen.GenerateAll(context.Background(), feeds, func(ev pipeline.ProgressEvent) {
			events = append(events, ev)
		})

		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "a.xml", results[0].Output)
		assert.Equal(t, "b.xml", results[1].Output)
		assert.Equal(t, "c.xml", results[2].Output)
		assert.ElementsMatch(t, []string{"a.xml", "b.xml", "c.xml"}, f.written)

		require.Len(t, events, 4)
		assert.Equal(t, pipeline.ProgressStarted, events[0].Type)
		assert.Equal(t, 3, events[0].Total)
		assert.Equal(t, 3, events[3].Completed)
	})

	t.Run("continues past a failing feed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(okRender, nil)
		f.gen.Writer = &mock.FeedWriter{
			WriteFeedFn: func(ctx context.Context, path string, body []byte) (*authorfeed.WriteResult, error) {
				if path == "bad.xml" {
					return nil, errors.New("permission denied")
				}
				return &authorfeed.WriteResult{Path: path}, nil
			},
		}
		feeds := []authorfeed.FeedConfig{feedConfig("good.xml"), feedConfig("bad.xml")}

		var failed atomic.Int32
		results, err := f.gen.GenerateAll(context.Background(), feeds, func(ev pipeline.ProgressEvent) {
			if ev.Type == pipeline.ProgressFailed {
				failed.Add(1)
			}
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.xml")
		assert.Contains(t, err.Error(), "permission denied")
		require.Len(t, results, 2)
		assert.NotNil(t, results[0])
		assert.Nil(t, results[1])
		assert.Equal(t, int32(1), failed.Load())
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		f := newFixture(func(ctx context.Context, url string) (string, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inFlight.Add(-1)
			return "<html></html>", nil
		}, nil)
		f.gen.Concurrency = 2
		feeds := []authorfeed.FeedConfig{feedConfig("1.xml"), feedConfig("2.xml"), feedConfig("3.xml"), feedConfig("4.xml")}

		_, err := f.gen.GenerateAll(context.Background(), feeds, nil)

		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})
}
