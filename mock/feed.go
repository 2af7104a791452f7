package mock

import (
	"context"

	"github.com/smach/authorfeed"
)

var _ authorfeed.FeedEncoder = (*FeedEncoder)(nil)

type FeedEncoder struct {
	EncodeFn func(f *authorfeed.Feed) ([]byte, error)
}

func (e *FeedEncoder) Encode(f *authorfeed.Feed) ([]byte, error) {
	return e.EncodeFn(f)
}

var _ authorfeed.FeedWriter = (*FeedWriter)(nil)

// FeedWriter is a mock implementation of authorfeed.FeedWriter.
type FeedWriter struct {
	WriteFeedFn func(ctx context.Context, path string, body []byte) (*authorfeed.WriteResult, error)
}

func (w *FeedWriter) WriteFeed(ctx context.Context, path string, body []byte) (*authorfeed.WriteResult, error) {
	return w.WriteFeedFn(ctx, path, body)
}
