package authorfeed_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/smach/authorfeed"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := authorfeed.Errorf(authorfeed.ENOTFOUND, "feed %q not found", "sharon")

	assert.Equal(t, authorfeed.ENOTFOUND, authorfeed.ErrorCode(err))
	assert.Equal(t, "feed \"sharon\" not found", authorfeed.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("rendering profile: %w", authorfeed.Errorf(authorfeed.ERENDER, "navigation failed"))

	assert.Equal(t, authorfeed.ERENDER, authorfeed.ErrorCode(err))
	assert.Equal(t, "navigation failed", authorfeed.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, authorfeed.EINTERNAL, authorfeed.ErrorCode(err))
	assert.Equal(t, "Internal error", authorfeed.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, authorfeed.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, authorfeed.ErrorMessage(nil))
}
