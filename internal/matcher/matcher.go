// Package matcher implements the matching hot path (C4/C5/C6): given a
// line and a live snapshot, it returns the best-matching template id or
// none. The hot path never blocks and never touches a lock — see §5 and
// §9. Candidate bookkeeping reuses pooled scratch maps and slices
// (scratch.go), though each candidate entry is still allocated per
// call; the automaton scan also converts the line to a string at the
// internal/fragment boundary (see Index.FindAll's doc comment).
package matcher

import (
	"math/bits"

	"github.com/moolen/templatematch/internal/snapshot"
)

// DefaultFragmentMatchThreshold is applied when a Matcher is
// constructed with a non-positive threshold (§6, default 0.3).
const DefaultFragmentMatchThreshold = 0.3

// Config holds the matcher's tunable parameters. Unlike the catalog's
// min_fragment_length (enforced at install time), the threshold here
// is consulted on every match_line call.
type Config struct {
	FragmentMatchThreshold float64
}

// DefaultConfig returns the documented defaults from §6.
func DefaultConfig() Config {
	return Config{FragmentMatchThreshold: DefaultFragmentMatchThreshold}
}

// Matcher is a pure function of a live snapshot and an input line: it
// holds no mutable state of its own beyond the snapshot pointer and the
// scratch pool. A zero-value Matcher is not usable; construct with New.
type Matcher struct {
	store     *snapshot.Store
	threshold float64
}

// New builds a Matcher reading snapshots from store.
func New(store *snapshot.Store, cfg Config) *Matcher {
	threshold := cfg.FragmentMatchThreshold
	if threshold <= 0 {
		threshold = DefaultFragmentMatchThreshold
	}
	return &Matcher{store: store, threshold: threshold}
}

// MatchLine implements §4.1's algorithm. It returns (templateID, true)
// on a match, or (0, false) if no template survives scoring — including
// the case of an empty line or no live snapshot yet installed.
func (m *Matcher) MatchLine(line []byte) (uint64, bool) {
	snap := m.store.Load()
	if snap == nil || len(line) == 0 {
		return 0, false
	}
	return m.matchAgainst(snap, line)
}

// matchAgainst runs the algorithm against an explicitly supplied
// snapshot, letting batch callers (C6) load the pointer once and reuse
// it across many lines.
func (m *Matcher) matchAgainst(snap *snapshot.Snapshot, line []byte) (uint64, bool) {
	return matchAgainstThreshold(snap, line, m.threshold)
}

func matchAgainstThreshold(snap *snapshot.Snapshot, line []byte, threshold float64) (uint64, bool) {
	if len(line) == 0 || len(snap.Templates) == 0 {
		return 0, false
	}

	occs := snap.Index.FindAll(line)
	if len(occs) == 0 {
		return 0, false
	}

	s := getScratch()
	defer putScratch(s)

	// Step 1 + 2: build candidates and enforce the ordered-subsequence
	// property in the same pass. Occurrences arrive in non-decreasing
	// line position because the automaton scans left to right, so a
	// simple "strictly greater than last accepted" check per candidate
	// is sufficient and avoids a second pass over the occurrences.
	for _, occ := range occs {
		entries := snap.ReverseIndex[occ.FragmentID]
		for _, e := range entries {
			entry, ok := snap.TemplateByID[e.TemplateID]
			if !ok {
				continue
			}
			c, ok := s.candidates[e.TemplateID]
			if !ok {
				c = &candidate{lastLinePos: -1, numFragments: len(entry.FragmentIDs)}
				s.candidates[e.TemplateID] = c
			}
			lastFragmentPos := popHighestBit(c.matchedMask)
			if e.Position <= lastFragmentPos {
				continue
			}
			if occ.Position <= c.lastLinePos {
				continue
			}
			if e.Position >= 64 {
				// Beyond the inline bitmask width; skip rather than
				// corrupt the mask. Templates with >=64 fragments are
				// outside anything the corpus produces.
				continue
			}
			c.matchedMask |= 1 << uint(e.Position)
			c.lastLinePos = occ.Position
		}
	}

	// Step 3 + 4: score and threshold.
	s.ranking = s.ranking[:0]
	for templateID, c := range s.candidates {
		entry := snap.TemplateByID[templateID]
		if entry.TotalWeight <= 0 {
			continue
		}
		var matchedWeight float64
		matchedCount := 0
		for pos, fragID := range entry.FragmentIDs {
			if c.matchedMask&(1<<uint(pos)) != 0 {
				matchedWeight += snap.Weights[fragID]
				matchedCount++
			}
		}
		score := matchedWeight / entry.TotalWeight
		if score < threshold {
			continue
		}
		s.ranking = append(s.ranking, rankedCandidate{
			templateID: templateID,
			score:      score,
			unmatched:  len(entry.FragmentIDs) - matchedCount,
		})
	}

	if len(s.ranking) == 0 {
		return 0, false
	}

	// Step 5: highest score; ties by fewer unmatched, then lowest id.
	best := s.ranking[0]
	for _, r := range s.ranking[1:] {
		if betterCandidate(r, best) {
			best = r
		}
	}
	return best.templateID, true
}

func betterCandidate(a, b rankedCandidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.unmatched != b.unmatched {
		return a.unmatched < b.unmatched
	}
	return a.templateID < b.templateID
}

// popHighestBit returns the index of the highest set bit in mask, or -1
// if mask is zero.
func popHighestBit(mask uint64) int {
	if mask == 0 {
		return -1
	}
	return bits.Len64(mask) - 1
}
