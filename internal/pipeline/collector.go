package pipeline

import (
	"context"
	"time"

	"github.com/moolen/templatematch/internal/logging"
)

// CollectorConfig controls batching of unmatched lines before dispatch
// (§4.7 Collector, §6 gen_batch_size/gen_batch_timeout).
type CollectorConfig struct {
	BatchSize    int
	BatchTimeout time.Duration
}

// DefaultCollectorConfig returns the documented defaults.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{BatchSize: 10, BatchTimeout: 2 * time.Second}
}

// Collector reads individual unmatched lines off a channel and groups
// them into batches, flushing whenever the batch reaches BatchSize or
// BatchTimeout elapses since the first line of the current batch.
type Collector struct {
	in     <-chan UnmatchedLine
	cfg    CollectorConfig
	onFlush func([]UnmatchedLine)
	logger *logging.Logger
}

// NewCollector builds a Collector reading from in, calling onFlush with
// each completed batch.
func NewCollector(in <-chan UnmatchedLine, cfg CollectorConfig, onFlush func([]UnmatchedLine)) *Collector {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultCollectorConfig().BatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultCollectorConfig().BatchTimeout
	}
	return &Collector{in: in, cfg: cfg, onFlush: onFlush, logger: logging.GetLogger("pipeline.collector")}
}

// Run blocks, collecting and flushing batches, until ctx is cancelled or
// in is closed. A non-empty partial batch is flushed before returning.
func (c *Collector) Run(ctx context.Context) {
	var batch []UnmatchedLine
	timer := time.NewTimer(c.cfg.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.onFlush(batch)
		batch = nil
	}

	for {
		select {
		case line, ok := <-c.in:
			if !ok {
				flush()
				return
			}
			if len(batch) == 0 {
				if !timer.Stop() {
					drainTimer(timer)
				}
				timer.Reset(c.cfg.BatchTimeout)
			}
			batch = append(batch, line)
			if len(batch) >= c.cfg.BatchSize {
				flush()
				if !timer.Stop() {
					drainTimer(timer)
				}
				timer.Reset(c.cfg.BatchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(c.cfg.BatchTimeout)

		case <-ctx.Done():
			flush()
			return
		}
	}
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
