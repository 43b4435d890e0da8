package queue

import "context"

// Queue represents a bounded FIFO queue.
type Queue interface {
	Enqueue(item interface{}) error
	Dequeue(ctx context.Context) (interface{}, error)
	Size() int
}
