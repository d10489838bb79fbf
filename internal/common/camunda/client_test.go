package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"elevate-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRetry = &RetryConfig{
	MaxRetries: 2,
	BaseDelay:  time.Millisecond,
	MaxDelay:   5 * time.Millisecond,
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(stderrors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(stderrors.New("NOT_FOUND: job 12 not found")))
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0

	result, err := ExecuteWithRetry(context.Background(), testRetry, "complete-job", func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, stderrors.New("connection reset by peer")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestExecuteWithRetry_MapsPermanentError(t *testing.T) {
	calls := 0

	_, err := ExecuteWithRetry(context.Background(), testRetry, "complete-job", func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("job 7 not found")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeResourceNotFound, stdErr.Code)
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0

	_, err := ExecuteWithRetry(context.Background(), testRetry, "topology", func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, stderrors.New("gateway unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeExternalService, stdErr.Code)
}

func TestExecuteWithRetry_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := ExecuteWithRetry(ctx, &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second}, "complete-job",
		func(ctx context.Context) (interface{}, error) {
			calls++
			cancel()
			return nil, stderrors.New("deadline exceeded")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeTimeout, stdErr.Code)
}
