// Package fragment builds and queries the Aho–Corasick automaton over a
// catalog's deduplicated fragment literals (§4.3). The index is built
// once per snapshot and is safe for unlimited concurrent reads; it never
// mutates after Build returns.
package fragment

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Occurrence is a single automaton hit: fragment id and the byte
// position in the scanned line where the fragment's match begins.
type Occurrence struct {
	FragmentID uint32
	Position   int
}

// Index wraps a compiled automaton over a fixed, ordered set of
// fragment literals. Literal i corresponds to fragment id i (dense ids
// per I1), so no separate id-to-pattern-index table is needed.
type Index struct {
	automaton ahocorasick.AhoCorasick
	count     int
}

// Build compiles an automaton over literals, indexed by dense fragment
// id (literals[i] is the literal for fragment id i). Leftmost-first
// match semantics give "earliest occurrence wins on overlap" exactly as
// §4.1 step 1 requires.
func Build(literals []string) *Index {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.LeftMostFirstMatch,
	})
	ac := builder.Build(literals)
	return &Index{automaton: ac, count: len(literals)}
}

// FindAll scans line in a single left-to-right pass and returns every
// occurrence in position order. An empty line yields no occurrences.
//
// petar-dambovaliev/aho-corasick's AhoCorasick.FindAll takes a string,
// not a []byte, so one string conversion (and its allocation) happens
// here per call, on top of whatever scratch reuse the caller does —
// see internal/matcher's package doc.
func (idx *Index) FindAll(line []byte) []Occurrence {
	if len(line) == 0 || idx.count == 0 {
		return nil
	}

	matches := idx.automaton.FindAll(string(line))
	if len(matches) == 0 {
		return nil
	}

	out := make([]Occurrence, len(matches))
	for i := range matches {
		out[i] = Occurrence{
			FragmentID: uint32(matches[i].Pattern()),
			Position:   matches[i].Start(),
		}
	}
	return out
}

// PatternCount returns the number of fragment literals the index was
// built over.
func (idx *Index) PatternCount() int {
	return idx.count
}
