// Package goquery extracts an author's article listing from rendered HTML
// using github.com/PuerkitoBio/goquery.
package goquery

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/smach/authorfeed"
	"github.com/smach/authorfeed/dateparse"
	"golang.org/x/net/html"
)

// Ensure Extractor implements authorfeed.ArticleExtractor at compile time.
var _ authorfeed.ArticleExtractor = (*Extractor)(nil)

// Extractor finds the target author's articles on a profile page. It runs a
// cascade of discovery strategies, drops links in non-primary regions or
// attributed to other authors, recovers clean fields, deduplicates by URL
// and keeps the first MaxArticles records.
//
// Extractor holds no per-call state and is safe for concurrent use.
type Extractor struct {
	author      string
	base        *url.URL
	pattern     *regexp.Regexp
	maxArticles int
	strategies  []Strategy
	policy      Policy
	markers     []string
	titles      *authorfeed.TitleCleaner
	dates       authorfeed.DateParser
	logger      *slog.Logger
}

// settings collects options before the extractor is built.
type settings struct {
	maxArticles    int
	articlePattern string
	strategies     []Strategy
	policy         Policy
	markers        []string
	siteName       string
	splitters      []authorfeed.TitleSplitter
	categories     []string
	dates          authorfeed.DateParser
	logger         *slog.Logger
}

// Option configures an Extractor.
type Option func(*settings)

// WithMaxArticles sets the maximum number of articles returned.
// Defaults to authorfeed.DefaultMaxArticles.
func WithMaxArticles(n int) Option {
	return func(s *settings) {
		s.maxArticles = n
	}
}

// WithArticlePattern sets the regular expression article URLs must match.
// Defaults to authorfeed.DefaultArticlePattern.
func WithArticlePattern(pattern string) Option {
	return func(s *settings) {
		s.articlePattern = pattern
	}
}

// WithStrategies replaces the discovery cascade.
func WithStrategies(strategies []Strategy) Option {
	return func(s *settings) {
		s.strategies = strategies
	}
}

// WithCascadePolicy sets how strategy results are combined.
// Defaults to FirstMatch.
func WithCascadePolicy(p Policy) Option {
	return func(s *settings) {
		s.policy = p
	}
}

// WithSectionMarkers replaces the section marker phrases.
func WithSectionMarkers(markers []string) Option {
	return func(s *settings) {
		s.markers = markers
	}
}

// WithSiteName adds a "more from <site>" section marker.
func WithSiteName(name string) Option {
	return func(s *settings) {
		s.siteName = name
	}
}

// WithTitleSplitters replaces the ordered title splitters.
func WithTitleSplitters(splitters ...authorfeed.TitleSplitter) Option {
	return func(s *settings) {
		s.splitters = splitters
	}
}

// WithCategories replaces the category vocabulary stripped from titles.
func WithCategories(categories []string) Option {
	return func(s *settings) {
		s.categories = categories
	}
}

// WithDateParser sets the parser for publication dates.
// Defaults to dateparse.NewParser().
func WithDateParser(p authorfeed.DateParser) Option {
	return func(s *settings) {
		s.dates = p
	}
}

// WithLogger sets the logger for per-candidate debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// NewExtractor creates an Extractor for the author's profile page.
// Returns EINVALID if the profile URL or article pattern is malformed.
func NewExtractor(author, profileURL string, opts ...Option) (*Extractor, error) {
	s := settings{
		maxArticles:    authorfeed.DefaultMaxArticles,
		articlePattern: authorfeed.DefaultArticlePattern,
		strategies:     DefaultStrategies,
		markers:        authorfeed.DefaultSectionMarkers,
		categories:     authorfeed.DefaultCategories,
		dates:          dateparse.NewParser(),
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&s)
	}

	author = authorfeed.NormalizeSpace(author)
	if author == "" {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "author required")
	}
	base, err := url.Parse(profileURL)
	if err != nil || base.Host == "" {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "invalid profile URL %q", profileURL)
	}
	pattern, err := regexp.Compile(s.articlePattern)
	if err != nil {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "invalid article pattern: %v", err)
	}
	if len(s.strategies) == 0 {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "at least one strategy required")
	}
	if s.splitters == nil {
		s.splitters = authorfeed.DefaultTitleSplitters(author)
	}
	markers := s.markers
	if s.siteName != "" {
		markers = append(append([]string(nil), markers...), "more from "+strings.ToLower(s.siteName))
	}

	return &Extractor{
		author:      author,
		base:        base,
		pattern:     pattern,
		maxArticles: s.maxArticles,
		strategies:  s.strategies,
		policy:      s.policy,
		markers:     markers,
		titles: &authorfeed.TitleCleaner{
			Splitters: s.splitters,
			Rules:     authorfeed.TitleRules(s.categories),
		},
		dates:  s.dates,
		logger: s.logger,
	}, nil
}

// Extract parses rendered HTML and returns the author's articles in
// discovery order.
func (e *Extractor) Extract(rawHTML string) ([]*authorfeed.Article, error) {
	candidates, err := e.candidates(rawHTML)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	var articles []*authorfeed.Article
	for _, c := range candidates {
		if ok, reason := e.filter(c); !ok {
			e.logger.Debug("candidate rejected", "url", c.URL, "strategy", c.Strategy, "reason", reason)
			continue
		}

		a, err := e.article(c)
		if err != nil {
			e.logger.Debug("candidate skipped", "url", c.URL, "err", err)
			continue
		}

		if idx, ok := seen[a.URL]; ok {
			articles[idx].Merge(a)
			continue
		}
		seen[a.URL] = len(articles)
		articles = append(articles, a)
	}

	if e.maxArticles > 0 && len(articles) > e.maxArticles {
		e.logger.Debug("articles truncated", "found", len(articles), "max", e.maxArticles)
		articles = articles[:e.maxArticles]
	}
	return articles, nil
}

// Discover returns the candidates chosen by the discovery cascade before
// author and section filtering.
func (e *Extractor) Discover(rawHTML string) ([]authorfeed.Candidate, error) {
	candidates, err := e.candidates(rawHTML)
	if err != nil {
		return nil, err
	}
	out := make([]authorfeed.Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = c.Candidate
	}
	return out, nil
}

func (e *Extractor) candidates(rawHTML string) ([]*candidate, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "failed to parse HTML: %v", err)
	}
	doc := goquery.NewDocumentFromNode(root)
	excluded := excludedLinks(doc)

	var out []*candidate
	seen := make(map[*html.Node]struct{})
	for _, s := range e.strategies {
		// A strategy that ignores exclusion is a last resort, even under Union.
		if !s.ExcludeRegions && len(out) > 0 {
			continue
		}
		found := e.discover(doc, s, excluded)
		e.logger.Debug("strategy", "name", s.Name, "candidates", len(found), "excluded", len(excluded))
		for _, c := range found {
			node := c.link.Get(0)
			if _, ok := seen[node]; ok {
				continue
			}
			seen[node] = struct{}{}
			out = append(out, c)
		}
		if len(out) > 0 && e.policy == FirstMatch {
			break
		}
	}
	return out, nil
}
