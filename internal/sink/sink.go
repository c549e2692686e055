// Package sink implements the buffered sink (C8, §4.8): a size/time
// triggered in-memory buffer that bulk-writes ingested records to the
// external columnar store, at-least-once.
package sink

import (
	"context"
	"sync"
	"time"

	"github.com/moolen/templatematch/internal/logging"
	"github.com/moolen/templatematch/internal/store"
)

// Config mirrors §6's buffer_size/flush_interval options.
type Config struct {
	BufferSize    int
	FlushInterval time.Duration
	MaxRetries    int
}

// DefaultConfig returns the documented defaults (buffer_size=1000,
// flush_interval=5s).
func DefaultConfig() Config {
	return Config{BufferSize: 1000, FlushInterval: 5 * time.Second, MaxRetries: 3}
}

// Writer is the external store write contract the sink flushes to.
// internal/store.Client satisfies it; tests substitute a fake.
type Writer interface {
	WriteBatch(ctx context.Context, records []store.Record) error
}

// Sink buffers records in memory and flushes them to a Writer whenever
// BufferSize records accumulate or Run's ticker fires every
// FlushInterval, whichever comes first (§4.8). A size-triggered flush
// does not reset the ticker, so the next timed flush can follow it by
// less than FlushInterval. Safe for concurrent Append calls from
// multiple ingest goroutines.
type Sink struct {
	writer Writer
	cfg    Config
	logger *logging.Logger

	mu          sync.Mutex
	buffer      []store.Record
	droppedRows int
}

// New builds a Sink flushing to writer.
func New(writer Writer, cfg Config) *Sink {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	return &Sink{
		writer: writer,
		cfg:    cfg,
		logger: logging.GetLogger("sink"),
		buffer: make([]store.Record, 0, cfg.BufferSize),
	}
}

// Append adds a record to the buffer, flushing synchronously if the
// buffer has reached BufferSize.
func (s *Sink) Append(ctx context.Context, rec store.Record) {
	s.mu.Lock()
	s.buffer = append(s.buffer, rec)
	full := len(s.buffer) >= s.cfg.BufferSize
	s.mu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

// Run starts the time-triggered flush loop. Blocks until ctx is
// cancelled, attempting one final flush before returning (§4.8: "on
// shutdown, a final flush is attempted").
func (s *Sink) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush(ctx)
		case <-ctx.Done():
			s.Flush(context.Background())
			return
		}
	}
}

// Flush writes the current buffer to the store, retrying the whole
// batch up to MaxRetries times before dropping it with a counter
// increment (§7 StoreWriteFailure). Retains nothing across a dropped
// batch: a dropped batch is gone, per "at-least-once... if flush fails
// after partial commit the sink may retransmit the entire batch".
func (s *Sink) Flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]store.Record, 0, s.cfg.BufferSize)
	s.mu.Unlock()

	var err error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		err = s.writer.WriteBatch(ctx, batch)
		if err == nil {
			return
		}
		s.logger.WarnWithFields("store flush failed, retrying",
			logging.Field("attempt", attempt+1), logging.Field("batch_size", len(batch)))
	}

	s.mu.Lock()
	s.droppedRows += len(batch)
	s.mu.Unlock()
	s.logger.WithField("batch_size", len(batch)).ErrorWithErr("store flush exhausted retries, dropping batch", err)
}

// DroppedRows returns the cumulative number of records dropped after
// exhausting retries.
func (s *Sink) DroppedRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.droppedRows
}

// BufferedCount returns the number of records currently buffered,
// useful for tests and health checks.
func (s *Sink) BufferedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffer)
}
