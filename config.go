package authorfeed

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Configuration defaults.
const (
	DefaultMaxArticles    = 20
	DefaultArticlePattern = `/article/`
	DefaultLanguage       = "en-us"
	DefaultConcurrency    = 2
	DefaultRenderTimeout  = 60 * time.Second
	DefaultScrolls        = 3
	DefaultScrollDelay    = 2 * time.Second
	DefaultRequestsPerSec = 0.5
)

// Cascade policy names accepted in FeedConfig.Cascade. Empty means
// CascadeFirstMatch.
const (
	CascadeFirstMatch = "first-match"
	CascadeUnion      = "union"
)

// Config is the static configuration for a run, read once at startup.
type Config struct {
	Debug       bool         `yaml:"debug"`
	LogFile     string       `yaml:"log_file"`
	Concurrency int          `yaml:"concurrency"`
	Render      RenderConfig `yaml:"render"`
	Feeds       []FeedConfig `yaml:"feeds"`
}

// RenderConfig controls the browser render step.
type RenderConfig struct {
	Timeout           time.Duration   `yaml:"timeout"`
	Scrolls           int             `yaml:"scrolls"`
	ScrollDelay       time.Duration   `yaml:"scroll_delay"`
	WaitSelector      string          `yaml:"wait_selector"`
	BrowserPath       string          `yaml:"browser_path"`
	RetryDelays       []time.Duration `yaml:"retry_delays,omitempty"`
	RequestsPerSecond float64         `yaml:"requests_per_second"`
}

// FeedConfig describes one author feed.
type FeedConfig struct {
	Author         string        `yaml:"author"`
	ProfileURL     string        `yaml:"profile_url"`
	Output         string        `yaml:"output"`
	MaxArticles    int           `yaml:"max_articles"`
	ArticlePattern string        `yaml:"article_pattern"`
	SiteName       string        `yaml:"site_name"`
	Title          string        `yaml:"title"`
	Description    string        `yaml:"description"`
	Language       string        `yaml:"language"`
	SelfURL        string        `yaml:"self_url"`
	TTL            int           `yaml:"ttl"`
	DateInterval   time.Duration `yaml:"date_interval"`
	Categories     []string      `yaml:"categories"`
	Cascade        string        `yaml:"cascade,omitempty"`
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Render.Timeout <= 0 {
		c.Render.Timeout = DefaultRenderTimeout
	}
	if c.Render.Scrolls < 0 {
		c.Render.Scrolls = 0
	}
	if c.Render.ScrollDelay <= 0 {
		c.Render.ScrollDelay = DefaultScrollDelay
	}
	if c.Render.RequestsPerSecond <= 0 {
		c.Render.RequestsPerSecond = DefaultRequestsPerSec
	}
	for i := range c.Feeds {
		c.Feeds[i].SetDefaults()
	}
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if len(c.Feeds) == 0 {
		return Errorf(EINVALID, "at least one feed required")
	}
	outputs := make(map[string]int, len(c.Feeds))
	for i := range c.Feeds {
		if err := c.Feeds[i].Validate(); err != nil {
			return Errorf(EINVALID, "feeds[%d]: %s", i, ErrorMessage(err))
		}
		if j, ok := outputs[c.Feeds[i].Output]; ok {
			return Errorf(EINVALID, "feeds[%d]: output %q already used by feeds[%d]", i, c.Feeds[i].Output, j)
		}
		outputs[c.Feeds[i].Output] = i
	}
	return nil
}

// SetDefaults fills zero values with defaults.
func (f *FeedConfig) SetDefaults() {
	if f.MaxArticles <= 0 {
		f.MaxArticles = DefaultMaxArticles
	}
	if f.ArticlePattern == "" {
		f.ArticlePattern = DefaultArticlePattern
	}
	if f.Language == "" {
		f.Language = DefaultLanguage
	}
	if f.SelfURL == "" {
		f.SelfURL = f.ProfileURL
	}
	if f.TTL <= 0 {
		f.TTL = DefaultTTL
	}
	if f.DateInterval <= 0 {
		f.DateInterval = DefaultDateInterval
	}
	if len(f.Categories) == 0 {
		f.Categories = DefaultCategories
	}
}

// Validate returns an error if the feed configuration contains invalid fields.
func (f *FeedConfig) Validate() error {
	if f.Author == "" {
		return Errorf(EINVALID, "author required")
	}
	if f.ProfileURL == "" {
		return Errorf(EINVALID, "profile URL required")
	}
	u, err := url.Parse(f.ProfileURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(EINVALID, "profile URL %q must be an absolute http(s) URL", f.ProfileURL)
	}
	if f.Output == "" {
		return Errorf(EINVALID, "output path required")
	}
	if f.MaxArticles < 0 {
		return Errorf(EINVALID, "max articles must be positive")
	}
	if _, err := regexp.Compile(f.ArticlePattern); err != nil {
		return Errorf(EINVALID, "invalid article pattern %q: %v", f.ArticlePattern, err)
	}
	switch strings.ToLower(strings.TrimSpace(f.Cascade)) {
	case "", CascadeFirstMatch, CascadeUnion:
	default:
		return Errorf(EINVALID, "unknown cascade policy %q (want %s or %s)", f.Cascade, CascadeFirstMatch, CascadeUnion)
	}
	return nil
}

// Channel returns the feed channel metadata for the configuration.
func (f *FeedConfig) Channel() Channel {
	title := f.Title
	if title == "" {
		title = f.Author
		if f.SiteName != "" {
			title = fmt.Sprintf("%s at %s", f.Author, f.SiteName)
		}
	}
	description := f.Description
	if description == "" {
		description = fmt.Sprintf("Latest articles by %s", f.Author)
		if f.SiteName != "" {
			description += " on " + f.SiteName
		}
	}
	return Channel{
		Title:       title,
		Link:        f.ProfileURL,
		Description: description,
		Language:    f.Language,
		Author:      f.Author,
		Generator:   DefaultGenerator,
		SelfURL:     f.SelfURL,
		TTL:         f.TTL,
	}
}
