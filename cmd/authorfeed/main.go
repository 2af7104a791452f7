package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/smach/authorfeed"
	"github.com/smach/authorfeed/dateparse"
	"github.com/smach/authorfeed/etree"
	"github.com/smach/authorfeed/fs"
	"github.com/smach/authorfeed/goquery"
	"github.com/smach/authorfeed/pipeline"
	"github.com/smach/authorfeed/rod"
	afslog "github.com/smach/authorfeed/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", authorfeed.ErrorMessageOrText(err))
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Renderer replaces the headless browser. Set before calling Run().
	Renderer authorfeed.Renderer

	// Now returns the feed build time. Defaults to time.Now.
	Now func() time.Time

	// RetryDelays overrides the configured render retry delays.
	RetryDelays []time.Duration
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Now: time.Now}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("authorfeed"),
		kong.Description("Build an RSS feed from an author's profile page"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'authorfeed --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	deps.Config = cfg

	logger, closeLog := newLogger(stderr, cfg.Debug, cfg.LogFile)
	defer func() { _ = closeLog() }()
	deps.Logger = logger

	if kongCtx.Command() != "check" {
		renderer, err := m.renderer(cfg.Render, logger)
		if err != nil {
			// Every feed still gets an error notice feed.
			fmt.Fprintf(stderr, "warning: failed to start browser: %v\n", err)
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or set render.browser_path")
			renderer = afslog.NewLoggingRenderer(&unavailableRenderer{err: err}, logger)
		}
		defer renderer.Close()

		retryDelays := cfg.Render.RetryDelays
		if m.RetryDelays != nil {
			retryDelays = m.RetryDelays
		}

		deps.Generator = &pipeline.Generator{
			Renderer:    renderer,
			Extractors:  extractorFactory(logger),
			Encoder:     etree.NewEncoder(),
			Writer:      afslog.NewLoggingWriter(fs.NewWriter(), logger),
			RateLimiter: pipeline.NewDomainLimiter(cfg.Render.RequestsPerSecond),
			Concurrency: cfg.Concurrency,
			RetryDelays: retryDelays,
			Logger:      logger,
			Now:         m.Now,
		}
	}

	return kongCtx.Run(deps)
}

// renderer returns the injected renderer or launches headless Chrome.
func (m *Main) renderer(rc authorfeed.RenderConfig, logger *slog.Logger) (authorfeed.Renderer, error) {
	if m.Renderer != nil {
		return afslog.NewLoggingRenderer(m.Renderer, logger), nil
	}

	chrome, err := rod.LaunchChrome(rod.WithBrowserPath(rc.BrowserPath))
	if err != nil {
		return nil, err
	}
	r := rod.NewRenderer(chrome,
		rod.WithTimeout(rc.Timeout),
		rod.WithScrolls(rc.Scrolls),
		rod.WithScrollDelay(rc.ScrollDelay),
		rod.WithWaitSelector(rc.WaitSelector),
		rod.WithLogger(logger),
	)
	return afslog.NewLoggingRenderer(r, logger), nil
}

// unavailableRenderer fails every render with the browser launch error.
type unavailableRenderer struct {
	err error
}

func (r *unavailableRenderer) Render(ctx context.Context, url string) (string, error) {
	return "", authorfeed.Errorf(authorfeed.ERENDER, "browser unavailable: %v", r.err)
}

func (r *unavailableRenderer) Close() error { return nil }

// extractorFactory builds the goquery extractor for each feed.
func extractorFactory(logger *slog.Logger) pipeline.ExtractorFactory {
	dates := dateparse.NewParser()
	return func(fc authorfeed.FeedConfig) (authorfeed.ArticleExtractor, error) {
		e, err := newExtractor(fc, dates, logger.With("feed", fc.Output))
		if err != nil {
			return nil, err
		}
		return afslog.NewLoggingExtractor(e, logger.With("feed", fc.Output)), nil
	}
}

func newExtractor(fc authorfeed.FeedConfig, dates authorfeed.DateParser, logger *slog.Logger) (*goquery.Extractor, error) {
	policy, err := goquery.ParsePolicy(fc.Cascade)
	if err != nil {
		return nil, err
	}
	return goquery.NewExtractor(fc.Author, fc.ProfileURL,
		goquery.WithMaxArticles(fc.MaxArticles),
		goquery.WithArticlePattern(fc.ArticlePattern),
		goquery.WithSiteName(fc.SiteName),
		goquery.WithCategories(fc.Categories),
		goquery.WithCascadePolicy(policy),
		goquery.WithDateParser(dates),
		goquery.WithLogger(logger),
	)
}
