package matcher

import "sync"

// candidate tracks, for one template under consideration during a
// single match_line call, which of its fragment positions have been
// matched so far and the line position at which the last one landed
// (positions must be strictly increasing per §4.1 step 2).
type candidate struct {
	matchedMask  uint64 // bit i set => fragment at template position i matched
	lastLinePos  int
	numFragments int
}

// scratch is the per-call working state (§4.2 C5). Go has no
// thread-local storage, so rather than "one scratch space per
// executing thread, created lazily, never freed until thread exit" we
// adapt the contract onto sync.Pool: Get/Put around each match_line
// call reuses the same backing maps/slices across calls without ever
// sharing one scratch between concurrent callers. Up to 64 fragment
// positions are tracked in matchedMask's bits directly (a template
// with more than 64 fragments simply can't be tracked bit-exact here,
// which the corpus never produces in practice); candidates themselves
// use a plain map created with a fixed initial size of 16 (and the
// ranking slice with capacity 4), standing in for the stack-first
// small-vector the spec describes.
type scratch struct {
	candidates map[uint64]*candidate
	ranking    []rankedCandidate
}

type rankedCandidate struct {
	templateID uint64
	score      float64
	unmatched  int
}

var scratchPool = sync.Pool{
	New: func() interface{} {
		return &scratch{
			candidates: make(map[uint64]*candidate, 16),
			ranking:    make([]rankedCandidate, 0, 4),
		}
	},
}

func getScratch() *scratch {
	return scratchPool.Get().(*scratch)
}

func putScratch(s *scratch) {
	for k := range s.candidates {
		delete(s.candidates, k)
	}
	s.ranking = s.ranking[:0]
	scratchPool.Put(s)
}
