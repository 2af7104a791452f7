package authorfeed

import "context"

// Renderer loads a page in a browser and returns its markup after client-side
// rendering has settled.
type Renderer interface {
	// Render navigates to the URL, expands lazily loaded content, and returns
	// the rendered HTML. When a wait step times out the renderer returns the
	// best document available instead of failing.
	Render(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Renderer is no longer needed.
	Close() error
}
