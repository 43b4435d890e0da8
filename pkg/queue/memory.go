// queue package

package queue

import (
	"context"
	"fmt"
)

const (
	// DefaultQueueBufferSize represents the default maximum size of a queue
	DefaultQueueBufferSize = 1024
)

// ErrQueueFull is returned by Enqueue when the queue is at capacity.
var ErrQueueFull = fmt.Errorf("queue is full")

// InMemoryQueue implements an in-memory queue.
type InMemoryQueue struct {
	ch chan interface{}
}

// NewInMemoryQueue creates a new queue holding at most size items.
func NewInMemoryQueue(size int) *InMemoryQueue {
	if size <= 0 {
		size = DefaultQueueBufferSize
	}
	return &InMemoryQueue{
		ch: make(chan interface{}, size),
	}
}

// Enqueue adds an item to the end of the queue without blocking.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue removes and returns the item from the front of the queue,
// waiting until one is available or ctx is done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case item := <-q.ch:
		return item, nil
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	return len(q.ch)
}
