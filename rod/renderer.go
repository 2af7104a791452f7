// Package rod renders JavaScript-driven pages with headless Chrome using
// github.com/go-rod/rod.
package rod

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/smach/authorfeed"
)

// Ensure Renderer implements authorfeed.Renderer at compile time.
var _ authorfeed.Renderer = (*Renderer)(nil)

const (
	// DefaultSelectorTimeout bounds the wait for the optional content selector.
	DefaultSelectorTimeout = 20 * time.Second

	// DefaultStableTimeout bounds the wait for the DOM to stop changing.
	DefaultStableTimeout = 10 * time.Second

	// htmlTimeout bounds reading the final document after the render
	// deadline may already have passed.
	htmlTimeout = 10 * time.Second

	scrollScript = `() => window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`
)

// Renderer loads a page in headless Chrome, waits for client-side rendering,
// scrolls to trigger lazy loading and returns the resulting markup.
//
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	chrome          *Chrome
	timeout         time.Duration
	selectorTimeout time.Duration
	stableTimeout   time.Duration
	waitSelector    string
	scrolls         int
	scrollDelay     time.Duration
	logger          *slog.Logger
	closed          atomic.Bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithTimeout sets the overall render deadline.
// Defaults to authorfeed.DefaultRenderTimeout.
func WithTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithWaitSelector waits for a CSS selector to appear before scrolling.
// A selector that never appears is logged and rendering continues.
func WithWaitSelector(selector string) RendererOption {
	return func(r *Renderer) {
		r.waitSelector = selector
	}
}

// WithSelectorTimeout sets how long to wait for the wait selector.
func WithSelectorTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.selectorTimeout = d
	}
}

// WithStableTimeout sets how long to wait for the DOM to settle.
// Zero disables the wait.
func WithStableTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.stableTimeout = d
	}
}

// WithScrolls sets the number of scroll-to-bottom passes.
// Defaults to authorfeed.DefaultScrolls.
func WithScrolls(n int) RendererOption {
	return func(r *Renderer) {
		r.scrolls = n
	}
}

// WithScrollDelay sets the pause after each scroll pass.
// Defaults to authorfeed.DefaultScrollDelay.
func WithScrollDelay(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.scrollDelay = d
	}
}

// WithLogger sets the logger for tolerated wait failures.
func WithLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer backed by chrome. The Renderer takes
// ownership of chrome and closes it on Close.
func NewRenderer(chrome *Chrome, opts ...RendererOption) *Renderer {
	r := &Renderer{
		chrome:          chrome,
		timeout:         authorfeed.DefaultRenderTimeout,
		selectorTimeout: DefaultSelectorTimeout,
		stableTimeout:   DefaultStableTimeout,
		scrolls:         authorfeed.DefaultScrolls,
		scrollDelay:     authorfeed.DefaultScrollDelay,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render navigates to url and returns the rendered HTML. Load, selector and
// stability waits that time out are logged and the best available document
// is returned. Failing to navigate or to read the document is an ERENDER error.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if r.closed.Load() {
		return "", authorfeed.Errorf(authorfeed.EINVALID, "renderer is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	page, err := r.chrome.NewPage()
	if err != nil {
		if authorfeed.ErrorCode(err) == authorfeed.EINVALID {
			return "", err
		}
		return "", authorfeed.Errorf(authorfeed.ERENDER, "opening page: %v", err)
	}
	defer func() { _ = page.Close() }()

	p := page.Context(renderCtx)
	if err := p.Navigate(url); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", authorfeed.Errorf(authorfeed.ERENDER, "navigating to %s: %v", url, err)
	}

	if err := p.WaitLoad(); err != nil {
		r.logger.Warn("page load wait failed, continuing", "url", url, "err", err)
	}
	if r.waitSelector != "" {
		if _, err := p.Timeout(r.selectorTimeout).Element(r.waitSelector); err != nil {
			r.logger.Warn("selector wait failed, continuing", "url", url, "selector", r.waitSelector, "err", err)
		}
	}
	r.scroll(renderCtx, p, url)
	if r.stableTimeout > 0 {
		if err := p.Timeout(r.stableTimeout).WaitDOMStable(time.Second, 0); err != nil {
			r.logger.Warn("dom stable wait failed, continuing", "url", url, "err", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The render deadline may have passed; read whatever the page holds now.
	htmlCtx, htmlCancel := context.WithTimeout(context.WithoutCancel(ctx), htmlTimeout)
	defer htmlCancel()
	html, err := page.Context(htmlCtx).HTML()
	if err != nil {
		return "", authorfeed.Errorf(authorfeed.ERENDER, "reading document of %s: %v", url, err)
	}
	return html, nil
}

// scroll runs the lazy-load scroll passes, stopping early when the render
// deadline passes.
func (r *Renderer) scroll(ctx context.Context, p pageEvaluator, url string) {
	for i := 0; i < r.scrolls; i++ {
		if _, err := p.Eval(scrollScript); err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				r.logger.Warn("scroll failed", "url", url, "pass", i+1, "err", err)
			}
			return
		}

		timer := time.NewTimer(r.scrollDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// pageEvaluator is the part of *rod.Page used for scrolling.
type pageEvaluator interface {
	Eval(js string, args ...interface{}) (*proto.RuntimeRemoteObject, error)
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if r.chrome == nil {
		return nil
	}
	return r.chrome.Close()
}
