package matcher

import (
	"golang.org/x/sync/errgroup"
)

// parallelBatchThreshold is the line count above which MatchBatchParallel
// is expected to pay off (§4.5: "suitable for batches above roughly
// 1,000 lines... the choice is the caller's" — we don't enforce it, just
// document it).
const parallelBatchThreshold = 1000

// MatchBatch loads the live snapshot exactly once and matches every
// line against it, preserving input order. Amortising the snapshot load
// over the whole batch is the point: no per-line atomic read.
func (m *Matcher) MatchBatch(lines [][]byte) []Result {
	snap := m.store.Load()
	results := make([]Result, len(lines))
	if snap == nil {
		return results
	}
	for i, line := range lines {
		id, ok := matchAgainstThreshold(snap, line, m.threshold)
		results[i] = Result{TemplateID: id, Matched: ok}
	}
	return results
}

// Result is one line's outcome from a batch call.
type Result struct {
	TemplateID uint64
	Matched    bool
}

// MatchBatchParallel partitions lines across workerCount goroutines,
// each loading the snapshot pointer once, and returns results in input
// order (T5: deterministic with MatchBatch up to tie-breaking, which is
// itself deterministic here). A workerCount <= 0 defaults to 1.
func (m *Matcher) MatchBatchParallel(lines [][]byte, workerCount int) []Result {
	if workerCount <= 0 {
		workerCount = 1
	}
	if len(lines) == 0 {
		return nil
	}
	if workerCount > len(lines) {
		workerCount = len(lines)
	}

	snap := m.store.Load()
	results := make([]Result, len(lines))
	if snap == nil {
		return results
	}

	chunk := (len(lines) + workerCount - 1) / workerCount

	var g errgroup.Group
	for start := 0; start < len(lines); start += chunk {
		start := start
		end := start + chunk
		if end > len(lines) {
			end = len(lines)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				id, ok := matchAgainstThreshold(snap, lines[i], m.threshold)
				results[i] = Result{TemplateID: id, Matched: ok}
			}
			return nil
		})
	}
	_ = g.Wait() // worker funcs never return an error

	return results
}
