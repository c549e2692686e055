// Package pipeline implements C7: the bounded unmatched-line queue on
// the ingest side, and the background collector/dispatcher/validator/
// installer chain that turns unmatched lines into new templates.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/moolen/templatematch/internal/logging"
)

// UnmatchedQueue buffers lines the matcher could not classify. Enqueue
// never blocks: when the buffer is full the incoming line is dropped
// and droppedCount is incremented, trading a sampling loss for ingest
// throughput (§4.6, §5).
type UnmatchedQueue struct {
	queue         chan UnmatchedLine
	logger        *logging.Logger
	wg            sync.WaitGroup
	maxSize       int
	droppedCount  atomic.Int64
	processFunc   func(UnmatchedLine)
}

// NewUnmatchedQueue creates a queue with room for maxSize lines.
// processFunc is invoked by the single consumer goroutine started by
// Start for every dequeued line.
func NewUnmatchedQueue(maxSize int, processFunc func(UnmatchedLine)) *UnmatchedQueue {
	return &UnmatchedQueue{
		queue:       make(chan UnmatchedLine, maxSize),
		logger:      logging.GetLogger("pipeline.queue"),
		maxSize:     maxSize,
		processFunc: processFunc,
	}
}

// Enqueue attempts to add line to the queue. Returns false if the queue
// was full and the line was dropped.
func (q *UnmatchedQueue) Enqueue(line UnmatchedLine) bool {
	select {
	case q.queue <- line:
		return true
	default:
		q.droppedCount.Add(1)
		q.logger.Warn("unmatched queue full, dropping line")
		return false
	}
}

// Start launches the single consumer goroutine. It runs until ctx is
// cancelled or Stop closes the queue.
func (q *UnmatchedQueue) Start(ctx context.Context) {
	q.logger.Info("starting unmatched line consumer")

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case line, ok := <-q.queue:
				if !ok {
					return
				}
				q.processFunc(line)
			case <-ctx.Done():
				q.logger.Info("unmatched line consumer stopped")
				return
			}
		}
	}()
}

// Stop closes the queue and waits for the consumer goroutine to drain
// and exit.
func (q *UnmatchedQueue) Stop() {
	close(q.queue)
	q.wg.Wait()
}

// Size returns the number of lines currently buffered.
func (q *UnmatchedQueue) Size() int {
	return len(q.queue)
}

// Capacity returns the configured maximum size.
func (q *UnmatchedQueue) Capacity() int {
	return q.maxSize
}

// DroppedCount returns the cumulative number of lines dropped due to a
// full queue.
func (q *UnmatchedQueue) DroppedCount() int64 {
	return q.droppedCount.Load()
}
