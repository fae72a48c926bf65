package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_PassesResultThrough(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-pass"))

	got, err := Do(context.Background(), w, func(ctx context.Context) (string, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, gobreaker.StateClosed, w.State())
}

func TestDo_OpensAfterFailures(t *testing.T) {
	w := NewWrapper(Config{Name: "test-open", Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5})
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := Do(context.Background(), w, func(ctx context.Context) (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	calls := 0
	_, err := Do(context.Background(), w, func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})
	assert.True(t, IsOpenError(err))
	assert.Zero(t, calls)
	assert.True(t, w.IsOpen())
}

func TestDo_CancelledContextSkipsCall(t *testing.T) {
	w := NewWrapper(DefaultConfig("test-cancel"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, w, func(ctx context.Context) (int, error) {
		t.Fatal("must not be called")
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
