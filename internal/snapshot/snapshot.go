// Package snapshot builds the immutable {catalog, index, scoring
// tables} bundle that the matcher reads, and provides the lock-free
// pointer through which new snapshots are installed (§3, §4.4, §9).
package snapshot

import (
	"sort"

	"github.com/moolen/templatematch/internal/catalog"
	"github.com/moolen/templatematch/internal/fragment"
)

// maxDocFrequencyDiscount caps the weight discount so a fragment shared
// by nearly every template still contributes a small amount (§3:
// weight = 1 − min(0.9, df/F)).
const maxDocFrequencyDiscount = 0.9

// TemplateEntry is the per-template data a built snapshot caches:
// its fragment id sequence in template order and the summed weight of
// those fragments (I3).
type TemplateEntry struct {
	Template    *catalog.Template
	FragmentIDs []uint32
	TotalWeight float64
}

// ReverseEntry is one row of the reverse index: which template a
// fragment belongs to, and at what position in that template's
// fragment sequence (I4: reverse_index is sorted and deduplicated).
type ReverseEntry struct {
	TemplateID uint64
	Position   int
}

// Snapshot is the immutable bundle installed as live matcher state. It
// is never mutated after Build returns; replacing it is always done by
// building a new one and swapping the Store's pointer (§4.4, I5).
type Snapshot struct {
	Templates    []TemplateEntry
	Fragments    []string // fragment id -> literal
	Weights      []float64
	TemplateByID map[uint64]*TemplateEntry
	ReverseIndex map[uint32][]ReverseEntry
	Index        *fragment.Index
}

// Build assembles a Snapshot from cat following the five steps of
// §4.4: assign dense fragment ids, compute weights, build the reverse
// index and per-template fragment lists, compile the automaton, wrap
// the immutable value. Templates already rejected by Catalog.Install
// (I2) never reach here, so Build does not re-validate fragment length.
func Build(cat *catalog.Catalog) *Snapshot {
	templates := cat.All()

	// Step 1: assign dense fragment ids over the deduplicated literal set.
	fragmentID := make(map[string]uint32)
	var literals []string
	for _, t := range templates {
		for _, f := range t.Fragments {
			if _, ok := fragmentID[f]; !ok {
				fragmentID[f] = uint32(len(literals))
				literals = append(literals, f)
			}
		}
	}

	// Step 2: document frequency per fragment, then weight.
	df := make([]int, len(literals))
	for _, t := range templates {
		seen := make(map[uint32]bool, len(t.Fragments))
		for _, f := range t.Fragments {
			id := fragmentID[f]
			if !seen[id] {
				seen[id] = true
				df[id]++
			}
		}
	}

	weights := make([]float64, len(literals))
	totalTemplates := float64(len(templates))
	for id := range literals {
		var discount float64
		if totalTemplates > 0 {
			discount = float64(df[id]) / totalTemplates
			if discount > maxDocFrequencyDiscount {
				discount = maxDocFrequencyDiscount
			}
		}
		weights[id] = 1 - discount
	}

	// Step 3: reverse index and per-template fragment-id lists with
	// cached total weight (I3).
	entries := make([]TemplateEntry, len(templates))
	byID := make(map[uint64]*TemplateEntry, len(templates))
	reverse := make(map[uint32][]ReverseEntry)

	for i, t := range templates {
		ids := make([]uint32, len(t.Fragments))
		var total float64
		for pos, f := range t.Fragments {
			id := fragmentID[f]
			ids[pos] = id
			total += weights[id]
			reverse[id] = append(reverse[id], ReverseEntry{TemplateID: t.ID, Position: pos})
		}
		entries[i] = TemplateEntry{Template: t, FragmentIDs: ids, TotalWeight: total}
		byID[t.ID] = &entries[i]
	}

	for id := range reverse {
		entries := reverse[id]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].TemplateID != entries[j].TemplateID {
				return entries[i].TemplateID < entries[j].TemplateID
			}
			return entries[i].Position < entries[j].Position
		})
	}

	// Step 4: compile the automaton over the dense literal set.
	idx := fragment.Build(literals)

	// Step 5: wrap into the immutable value.
	return &Snapshot{
		Templates:    entries,
		Fragments:    literals,
		Weights:      weights,
		TemplateByID: byID,
		ReverseIndex: reverse,
		Index:        idx,
	}
}

// TemplateIDs returns the set of template ids present in the snapshot,
// used by T3 to assert monotonic growth across successive snapshots.
func (s *Snapshot) TemplateIDs() map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(s.Templates))
	for _, e := range s.Templates {
		out[e.Template.ID] = struct{}{}
	}
	return out
}
