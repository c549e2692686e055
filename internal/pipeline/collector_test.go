package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Seed scenario 5: 15 identical lines with gen_batch_size=10 yields a
// batch of 10, then a batch of 5 after the timeout.
func TestCollector_FlushesOnSizeThenOnTimeout(t *testing.T) {
	in := make(chan UnmatchedLine)
	var mu sync.Mutex
	var batches [][]UnmatchedLine

	c := NewCollector(in, CollectorConfig{BatchSize: 10, BatchTimeout: 50 * time.Millisecond}, func(b []UnmatchedLine) {
		mu.Lock()
		cp := append([]UnmatchedLine(nil), b...)
		batches = append(batches, cp)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	for i := 0; i < 15; i++ {
		in <- UnmatchedLine{Line: []byte("line")}
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) >= 2
	}, time.Second, 10*time.Millisecond)

	cancel()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 5)
}

func TestCollector_FlushesPartialBatchOnClose(t *testing.T) {
	in := make(chan UnmatchedLine)
	var mu sync.Mutex
	var batches [][]UnmatchedLine

	c := NewCollector(in, CollectorConfig{BatchSize: 10, BatchTimeout: time.Hour}, func(b []UnmatchedLine) {
		mu.Lock()
		batches = append(batches, b)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(done)
	}()

	in <- UnmatchedLine{Line: []byte("only one")}
	close(in)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 1)
}
