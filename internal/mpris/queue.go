package mpris

import "sync"

// commandQueue is an unbounded FIFO with many producers and one consumer.
// Producers never block on the consumer; the consumer takes everything that
// is pending at once.
type commandQueue struct {
	mu     sync.Mutex
	items  []command
	closed bool
	wake   chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{wake: make(chan struct{}, 1)}
}

func (q *commandQueue) push(cmd command) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrWorkerGone
	}
	q.items = append(q.items, cmd)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// drain removes and returns every pending command in enqueue order.
func (q *commandQueue) drain() []command {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// ready fires after at least one push since the last receive.
func (q *commandQueue) ready() <-chan struct{} {
	return q.wake
}

// close makes later pushes fail. Pending commands are dropped.
func (q *commandQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.items = nil
}
