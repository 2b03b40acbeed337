package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_CompletesOnce(t *testing.T) {
	f := NewFuture[int]()

	assert.True(t, f.Resolve(1))
	assert.False(t, f.Resolve(2))
	assert.False(t, f.Reject(errors.New("late")))

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_Reject(t *testing.T) {
	f := NewFuture[string]()
	boom := errors.New("boom")

	f.Reject(boom)

	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFuture_ResultBeforeAndAfter(t *testing.T) {
	f := NewFuture[int]()

	_, _, ok := f.Result()
	assert.False(t, ok)

	f.Resolve(7)
	v, err, ok := f.Result()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	f := NewFuture[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
