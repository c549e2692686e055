package pipeline

import (
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultDedupeCacheSize bounds the number of distinct unmatched lines
// a Deduper remembers.
const DefaultDedupeCacheSize = 4096

// Deduper suppresses repeat generation dispatches for unmatched lines
// that are byte-identical to one already seen (§4.6: a noisy line
// recurring thousands of times before a template exists for it would
// otherwise enqueue one generation candidate per occurrence). It is
// capacity-bounded rather than time-windowed: the LRU's own eviction
// keeps memory flat without a background sweep, at the cost of
// eventually forgetting a line under sustained load from many other
// distinct unmatched lines.
type Deduper struct {
	cache *lru.Cache[uint64, time.Time]
}

// NewDeduper builds a Deduper retaining up to size distinct line
// hashes. A non-positive size falls back to DefaultDedupeCacheSize.
func NewDeduper(size int) *Deduper {
	if size <= 0 {
		size = DefaultDedupeCacheSize
	}
	cache, _ := lru.New[uint64, time.Time](size)
	return &Deduper{cache: cache}
}

// Seen reports whether line was already observed, and records it as
// seen (refreshing its recency) regardless of the outcome.
func (d *Deduper) Seen(line []byte) bool {
	h := xxhash.Sum64(line)
	_, ok := d.cache.Get(h)
	d.cache.Add(h, time.Now())
	return ok
}

// Len returns the number of distinct line hashes currently retained.
func (d *Deduper) Len() int {
	return d.cache.Len()
}
