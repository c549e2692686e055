// Package catalog holds the template catalog: the set of known log
// templates, their fragment decompositions, and the invariants that
// govern how they may grow over time. The catalog is mutated only by
// the installer (internal/pipeline) and at startup load; matching reads
// go through an immutable snapshot built from it (internal/snapshot).
package catalog

import (
	"sync"

	"github.com/moolen/templatematch/internal/logging"
)

// DefaultMinFragmentLength is applied when a Catalog is constructed
// without an explicit override (§6 min_fragment_length, default 1).
const DefaultMinFragmentLength = 1

// Catalog holds the authoritative set of templates. It is safe for
// concurrent use: readers (the snapshot builder) take an RLock,
// mutators (Install) take a Lock. The catalog itself is never consulted
// on the matcher hot path — only the Snapshot built from it is.
type Catalog struct {
	mu                sync.RWMutex
	templates         map[uint64]*Template
	byPattern         map[string]uint64
	nextID            uint64
	minFragmentLength int
	logger            *logging.Logger
}

// New creates an empty catalog. minFragmentLength <= 0 falls back to
// DefaultMinFragmentLength.
func New(minFragmentLength int) *Catalog {
	if minFragmentLength <= 0 {
		minFragmentLength = DefaultMinFragmentLength
	}
	return &Catalog{
		templates:         make(map[uint64]*Template),
		byPattern:         make(map[string]uint64),
		nextID:            1,
		minFragmentLength: minFragmentLength,
		logger:            logging.GetLogger("catalog"),
	}
}

// MinFragmentLength returns the configured minimum fragment length (I2).
func (c *Catalog) MinFragmentLength() int {
	return c.minFragmentLength
}

// qualifies reports whether a template has at least one fragment at or
// above the minimum length, per I2.
func (c *Catalog) qualifies(fragments []string) bool {
	for _, f := range fragments {
		if len(f) >= c.minFragmentLength {
			return true
		}
	}
	return false
}

// Install assigns a fresh monotonic id (I6) and adds the template to the
// catalog. Deduplicates by canonical pattern: if pattern is already
// present, the existing id is returned and no new id is consumed.
// Rejects templates with no qualifying fragment (I2) via
// ErrNoQualifyingFragment.
func (c *Catalog) Install(pattern string, fragments []string, example string, variables []string) (uint64, error) {
	if !c.qualifies(fragments) {
		return 0, ErrNoQualifyingFragment
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.byPattern[pattern]; ok {
		return id, nil
	}

	id := c.nextID
	c.nextID++

	t := &Template{
		ID:        id,
		Pattern:   pattern,
		Fragments: append([]string(nil), fragments...),
		Example:   example,
		Variables: append([]string(nil), variables...),
	}
	c.templates[id] = t
	c.byPattern[pattern] = id

	c.logger.InfoWithFields("installed template", logging.Field("template_id", id), logging.Field("pattern", pattern))
	return id, nil
}

// installLoaded restores a template from a persisted record, preserving
// its original id, without running deduplication. nextID is advanced to
// stay above any restored id so I6 holds across restarts.
func (c *Catalog) installLoaded(t *Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := t.Clone()
	c.templates[cp.ID] = cp
	c.byPattern[cp.Pattern] = cp.ID
	if cp.ID >= c.nextID {
		c.nextID = cp.ID + 1
	}
}

// HasPattern reports whether pattern is already installed, for callers
// that need to deduplicate before attempting Install (§4.7 Validation
// step d runs this check ahead of assigning fragments).
func (c *Catalog) HasPattern(pattern string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byPattern[pattern]
	return ok
}

// Get returns a copy of the template with the given id.
func (c *Catalog) Get(id uint64) (*Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return t.Clone(), nil
}

// RecordMatch updates Count/LastSeen bookkeeping for a template that
// just matched a line. FirstSeen is set on first observation. now is a
// unix timestamp supplied by the caller so the catalog itself never
// reads the wall clock.
func (c *Catalog) RecordMatch(id uint64, now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.templates[id]
	if !ok {
		return
	}
	t.Count++
	if t.FirstSeen == 0 {
		t.FirstSeen = now
	}
	t.LastSeen = now
}

// All returns a snapshot-safe copy of every template currently in the
// catalog, ordered by id ascending (matching Snapshot's ordering
// requirement in §3).
func (c *Catalog) All() []*Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t.Clone())
	}
	sortByID(out)
	return out
}

// Len returns the number of templates currently installed.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// remove deletes a template by id. Used only by the optional retention
// pass (retention.go); never called from the matching hot path.
func (c *Catalog) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.templates[id]
	if !ok {
		return
	}
	delete(c.templates, id)
	delete(c.byPattern, t.Pattern)
}

func sortByID(ts []*Template) {
	// insertion sort: catalogs are expected in the thousands at most and
	// this keeps the package free of a sort.Slice closure allocation on
	// every snapshot build.
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j-1].ID > ts[j].ID; j-- {
			ts[j-1], ts[j] = ts[j], ts[j-1]
		}
	}
}
