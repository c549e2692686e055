package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/moolen/templatematch/internal/logging"
)

// Generator is the external template-generation RPC contract (§6). A
// non-nil error and a reply whose template count differs from the
// request's line count are both retried per §4.7; the dispatcher
// detects the count mismatch itself and does not otherwise tell
// malformed replies apart from transport failures.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResponse, error)
}

// DispatcherConfig mirrors §6's gen_* and retry options.
type DispatcherConfig struct {
	MaxConcurrent     int
	MaxRetries        uint64
	InitialBackoff    time.Duration
	Instructions      string
}

// DefaultDispatcherConfig returns the documented defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		MaxConcurrent:  5,
		MaxRetries:     3,
		InitialBackoff: time.Second,
		Instructions:   "derive a log template from these representative lines",
	}
}

// Dispatcher sends collected batches to a Generator, bounded to
// MaxConcurrent in-flight requests, retrying each request with
// exponential backoff and jitter (§4.7 Retries). Successful replies are
// handed to onResult for validation and install.
type Dispatcher struct {
	gen     Generator
	cfg     DispatcherConfig
	sem     chan struct{}
	logger  *logging.Logger
	onResult func(batch []UnmatchedLine, resp GenerationResponse)
	wg      sync.WaitGroup
}

// NewDispatcher builds a Dispatcher bounded by cfg.MaxConcurrent.
func NewDispatcher(gen Generator, cfg DispatcherConfig, onResult func(batch []UnmatchedLine, resp GenerationResponse)) *Dispatcher {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultDispatcherConfig().MaxConcurrent
	}
	return &Dispatcher{
		gen:      gen,
		cfg:      cfg,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
		logger:   logging.GetLogger("pipeline.dispatcher"),
		onResult: onResult,
	}
}

// Dispatch sends one batch asynchronously, blocking only long enough to
// acquire a concurrency slot. The caller should call Wait before
// shutdown to let in-flight dispatches finish.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []UnmatchedLine) {
	d.sem <- struct{}{}
	d.wg.Add(1)
	go func() {
		defer func() {
			<-d.sem
			d.wg.Done()
		}()
		d.send(ctx, batch)
	}()
}

// Wait blocks until every in-flight Dispatch call has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, batch []UnmatchedLine) {
	req := GenerationRequest{
		Instructions: d.cfg.Instructions,
		LogLines:     linesOf(batch),
	}

	backoff, err := retry.NewExponential(d.cfg.InitialBackoff)
	if err != nil {
		d.logger.ErrorWithErr("invalid backoff configuration, discarding batch", err)
		return
	}
	backoff = retry.WithJitterPercent(10, backoff)
	backoff = retry.WithMaxRetries(d.cfg.MaxRetries, backoff)

	var resp GenerationResponse
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := d.gen.Generate(ctx, req)
		if err != nil {
			d.logger.WarnWithFields("generator request failed, retrying",
				logging.Field("error", err.Error()), logging.Field("batch_size", len(batch)))
			return retry.RetryableError(err)
		}
		if len(r.Templates) != len(req.LogLines) {
			err := fmt.Errorf("generator returned %d templates for %d lines", len(r.Templates), len(req.LogLines))
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})

	if err != nil {
		d.logger.WithField("batch_size", len(batch)).ErrorWithErr("generation batch exhausted retries, discarding", err)
		return
	}

	d.onResult(batch, resp)
}

func linesOf(batch []UnmatchedLine) []string {
	out := make([]string, len(batch))
	for i, l := range batch {
		out[i] = string(l.Line)
	}
	return out
}
