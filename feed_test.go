package authorfeed_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smach/authorfeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var buildTime = time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)

func testChannel() authorfeed.Channel {
	return authorfeed.Channel{
		Title:     "Sharon Machlis at InfoWorld",
		Link:      "https://www.infoworld.com/profile/sharon-machlis/",
		Author:    "Sharon Machlis",
		Generator: authorfeed.DefaultGenerator,
		Language:  "en-us",
	}
}

func TestSyntheticDate(t *testing.T) {
	t.Parallel()

	t.Run("index two with one day interval is two days before build", func(t *testing.T) {
		t.Parallel()

		got := authorfeed.SyntheticDate(buildTime, 2, 24*time.Hour)

		assert.Equal(t, buildTime.Add(-48*time.Hour), got)
	})

	t.Run("zero interval uses default", func(t *testing.T) {
		t.Parallel()

		got := authorfeed.SyntheticDate(buildTime, 1, 0)

		assert.Equal(t, buildTime.Add(-authorfeed.DefaultDateInterval), got)
	})
}

func TestNewFeed(t *testing.T) {
	t.Parallel()

	t.Run("assigns synthetic dates only to undated articles", func(t *testing.T) {
		t.Parallel()

		published := time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC)
		articles := []*authorfeed.Article{
			{Title: "First", URL: "https://example.com/article/1", Author: "Sharon Machlis", PublishedAt: published},
			{Title: "Second", URL: "https://example.com/article/2", Author: "Sharon Machlis"},
			{Title: "Third", URL: "https://example.com/article/3", Author: "Sharon Machlis"},
		}

		feed := authorfeed.NewFeed(testChannel(), articles, buildTime, 24*time.Hour)

		require.Len(t, feed.Items, 3)
		assert.Equal(t, published, feed.Items[0].PubDate)
		assert.False(t, feed.Items[0].Synthetic)
		assert.Equal(t, buildTime.Add(-24*time.Hour), feed.Items[1].PubDate)
		assert.Equal(t, buildTime.Add(-48*time.Hour), feed.Items[2].PubDate)
		assert.True(t, feed.Items[2].Synthetic)
	})

	t.Run("maps article fields to items", func(t *testing.T) {
		t.Parallel()

		articles := []*authorfeed.Article{
			{Title: "First", URL: "https://example.com/article/1", Description: "Summary", Author: "Sharon Machlis"},
		}

		feed := authorfeed.NewFeed(testChannel(), articles, buildTime, 0)

		item := feed.Items[0]
		assert.Equal(t, "First", item.Title)
		assert.Equal(t, "https://example.com/article/1", item.Link)
		assert.Equal(t, "https://example.com/article/1", item.GUID)
		assert.Equal(t, "Summary", item.Description)
		assert.Equal(t, "Sharon Machlis", item.Creator)
		assert.Equal(t, buildTime, feed.LastBuildDate)
	})

	t.Run("empty input yields one placeholder item", func(t *testing.T) {
		t.Parallel()

		feed := authorfeed.NewFeed(testChannel(), nil, buildTime, 0)

		require.Len(t, feed.Items, 1)
		assert.Equal(t, "No articles found", feed.Items[0].Title)
		assert.Equal(t, testChannel().Link, feed.Items[0].GUID)
		assert.Equal(t, buildTime, feed.Items[0].PubDate)
	})
}

func TestErrorFeed(t *testing.T) {
	t.Parallel()

	t.Run("describes application error", func(t *testing.T) {
		t.Parallel()

		feed := authorfeed.ErrorFeed(testChannel(), authorfeed.Errorf(authorfeed.ERENDER, "navigation timed out"), buildTime)

		require.Len(t, feed.Items, 1)
		assert.Equal(t, "Feed generation failed", feed.Items[0].Title)
		assert.Contains(t, feed.Items[0].Description, "navigation timed out")
	})

	t.Run("describes plain error", func(t *testing.T) {
		t.Parallel()

		feed := authorfeed.ErrorFeed(testChannel(), errors.New("chrome not found"), buildTime)

		assert.Contains(t, feed.Items[0].Description, "chrome not found")
	})
}
