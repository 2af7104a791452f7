package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/smach/authorfeed/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter(t *testing.T) {
	t.Parallel()

	t.Run("first request is immediate", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewDomainLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "example.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces requests to the same host", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewDomainLimiter(10)
		require.NoError(t, limiter.WaitURL(context.Background(), "https://example.com/a"))

		start := time.Now()
		err := limiter.WaitURL(context.Background(), "https://example.com/b")

		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("hosts are independent", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewDomainLimiter(1)
		require.NoError(t, limiter.WaitURL(context.Background(), "https://a.example.com/"))

		start := time.Now()
		err := limiter.WaitURL(context.Background(), "https://b.example.com/")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewDomainLimiter(0)

		start := time.Now()
		for i := 0; i < 5; i++ {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("returns error when context is canceled", func(t *testing.T) {
		t.Parallel()

		limiter := pipeline.NewDomainLimiter(0.1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := limiter.Wait(ctx, "example.com")

		require.Error(t, err)
	})
}
