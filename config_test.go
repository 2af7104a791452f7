package authorfeed_test

import (
	"testing"
	"time"

	"github.com/smach/authorfeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFeed() authorfeed.FeedConfig {
	return authorfeed.FeedConfig{
		Author:     "Sharon Machlis",
		ProfileURL: "https://www.infoworld.com/profile/sharon-machlis/",
		Output:     "sharon.xml",
	}
}

func TestFeedConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	f := validFeed()
	f.SetDefaults()

	assert.Equal(t, authorfeed.DefaultMaxArticles, f.MaxArticles)
	assert.Equal(t, authorfeed.DefaultArticlePattern, f.ArticlePattern)
	assert.Equal(t, "en-us", f.Language)
	assert.Equal(t, f.ProfileURL, f.SelfURL)
	assert.Equal(t, authorfeed.DefaultTTL, f.TTL)
	assert.Equal(t, 24*time.Hour, f.DateInterval)
	assert.NotEmpty(t, f.Categories)
}

func TestFeedConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(f *authorfeed.FeedConfig)
		want   string
	}{
		{name: "missing author", modify: func(f *authorfeed.FeedConfig) { f.Author = "" }, want: "author required"},
		{name: "missing profile URL", modify: func(f *authorfeed.FeedConfig) { f.ProfileURL = "" }, want: "profile URL required"},
		{name: "relative profile URL", modify: func(f *authorfeed.FeedConfig) { f.ProfileURL = "/profile/x" }, want: "must be an absolute http(s) URL"},
		{name: "missing output", modify: func(f *authorfeed.FeedConfig) { f.Output = "" }, want: "output path required"},
		{name: "bad pattern", modify: func(f *authorfeed.FeedConfig) { f.ArticlePattern = "(" }, want: "invalid article pattern"},
		{name: "unknown cascade", modify: func(f *authorfeed.FeedConfig) { f.Cascade = "unoin" }, want: "unknown cascade policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := validFeed()
			f.SetDefaults()
			tt.modify(&f)

			err := f.Validate()

			require.Error(t, err)
			assert.Equal(t, authorfeed.EINVALID, authorfeed.ErrorCode(err))
			assert.Contains(t, authorfeed.ErrorMessage(err), tt.want)
		})
	}

	t.Run("accepts valid feed", func(t *testing.T) {
		t.Parallel()

		f := validFeed()
		f.SetDefaults()

		assert.NoError(t, f.Validate())
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires at least one feed", func(t *testing.T) {
		t.Parallel()

		cfg := &authorfeed.Config{}

		err := cfg.Validate()

		assert.Equal(t, authorfeed.EINVALID, authorfeed.ErrorCode(err))
	})

	t.Run("rejects duplicate outputs", func(t *testing.T) {
		t.Parallel()

		cfg := &authorfeed.Config{Feeds: []authorfeed.FeedConfig{validFeed(), validFeed()}}
		cfg.SetDefaults()

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, authorfeed.ErrorMessage(err), "already used")
	})

	t.Run("prefixes feed index", func(t *testing.T) {
		t.Parallel()

		bad := validFeed()
		bad.Author = ""
		cfg := &authorfeed.Config{Feeds: []authorfeed.FeedConfig{bad}}

		err := cfg.Validate()

		assert.Equal(t, "feeds[0]: author required", authorfeed.ErrorMessage(err))
	})
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	cfg := &authorfeed.Config{Feeds: []authorfeed.FeedConfig{validFeed()}}
	cfg.SetDefaults()

	assert.Equal(t, authorfeed.DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, authorfeed.DefaultRenderTimeout, cfg.Render.Timeout)
	assert.Equal(t, authorfeed.DefaultScrollDelay, cfg.Render.ScrollDelay)
	assert.Equal(t, authorfeed.DefaultMaxArticles, cfg.Feeds[0].MaxArticles)
}

func TestFeedConfig_Channel(t *testing.T) {
	t.Parallel()

	t.Run("derives title and description from author and site", func(t *testing.T) {
		t.Parallel()

		f := validFeed()
		f.SiteName = "InfoWorld"
		f.SetDefaults()

		ch := f.Channel()

		assert.Equal(t, "Sharon Machlis at InfoWorld", ch.Title)
		assert.Equal(t, "Latest articles by Sharon Machlis on InfoWorld", ch.Description)
		assert.Equal(t, f.ProfileURL, ch.Link)
		assert.Equal(t, f.ProfileURL, ch.SelfURL)
		assert.Equal(t, "Sharon Machlis", ch.Author)
		assert.Equal(t, authorfeed.DefaultGenerator, ch.Generator)
	})

	t.Run("keeps explicit title", func(t *testing.T) {
		t.Parallel()

		f := validFeed()
		f.Title = "Custom"

		assert.Equal(t, "Custom", f.Channel().Title)
	})
}
