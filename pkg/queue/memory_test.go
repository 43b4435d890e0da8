package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue_fifo(t *testing.T) {
	q := NewInMemoryQueue(3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))
	assert.Equal(t, 3, q.Size())

	err := q.Enqueue(4)
	assert.True(t, errors.Is(err, ErrQueueFull))

	for want := 1; want <= 3; want++ {
		item, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, item)
	}
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_dequeueWaits(t *testing.T) {
	q := NewInMemoryQueue(1)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Enqueue("late")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	item, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", item)
}

func TestInMemoryQueue_dequeueCancelled(t *testing.T) {
	q := NewInMemoryQueue(0)
	assert.Equal(t, 0, q.Size())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
