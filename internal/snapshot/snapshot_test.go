package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/templatematch/internal/catalog"
)

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New(1)
	_, err := c.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "", nil)
	require.NoError(t, err)
	_, err = c.Install("cpu_usage: <*>%", []string{"cpu_usage: ", "%"}, "", nil)
	require.NoError(t, err)
	return c
}

func TestBuild_TotalWeightMatchesSumOfFragmentWeights(t *testing.T) {
	c := buildCatalog(t)
	snap := Build(c)

	for _, entry := range snap.Templates {
		var sum float64
		for _, fid := range entry.FragmentIDs {
			sum += snap.Weights[fid]
		}
		assert.InDelta(t, sum, entry.TotalWeight, 1e-9)
	}
}

func TestBuild_SharedFragmentGetsDiscountedWeight(t *testing.T) {
	c := catalog.New(1)
	_, err := c.Install("a <*> shared", []string{"shared"}, "", nil)
	require.NoError(t, err)
	_, err = c.Install("b <*> shared", []string{"shared"}, "", nil)
	require.NoError(t, err)
	_, err = c.Install("c <*> unique", []string{"unique"}, "", nil)
	require.NoError(t, err)

	snap := Build(c)

	var sharedWeight, uniqueWeight float64
	for id, literal := range snap.Fragments {
		if literal == "shared" {
			sharedWeight = snap.Weights[id]
		}
		if literal == "unique" {
			uniqueWeight = snap.Weights[id]
		}
	}

	assert.Less(t, sharedWeight, uniqueWeight)
}

// I4: reverse_index entries are sorted by (template_id, position). In
// this fixture no template repeats a literal at two positions, so this
// also incidentally checks there are no same-template duplicates; the
// repeated-literal case is covered separately below.
func TestBuild_ReverseIndexSortedByTemplateThenPosition(t *testing.T) {
	c := buildCatalog(t)
	snap := Build(c)

	for _, entries := range snap.ReverseIndex {
		for i := 1; i < len(entries); i++ {
			prev, cur := entries[i-1], entries[i]
			assert.LessOrEqual(t, prev.TemplateID, cur.TemplateID)
			if prev.TemplateID == cur.TemplateID {
				assert.Less(t, prev.Position, cur.Position)
			}
		}
	}
}

// I4: a template that uses the same literal fragment at two distinct
// positions produces two reverse-index entries for that template (one
// per position), ordered by position — sort.Slice is not stable, so
// this regresses a comparator that keys on template_id alone and lets
// equal-template-id rows reorder nondeterministically.
func TestBuild_ReverseIndexOrdersRepeatedFragmentWithinOneTemplate(t *testing.T) {
	c := catalog.New(1)
	_, err := c.Install("retry <*> after <*> retry", []string{"retry ", " after ", "retry "}, "", nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		snap := Build(c)

		var fragID uint32
		for id, literal := range snap.Fragments {
			if literal == "retry " {
				fragID = uint32(id)
				break
			}
		}

		entries := snap.ReverseIndex[fragID]
		require.Len(t, entries, 2, "literal \"retry \" used at two positions in one template")
		assert.Equal(t, entries[0].TemplateID, entries[1].TemplateID)
		assert.Less(t, entries[0].Position, entries[1].Position)
	}
}

func TestStore_InstallReplacesAtomically(t *testing.T) {
	c := buildCatalog(t)
	s := NewStore(nil)
	assert.Nil(t, s.Load())

	snap1 := Build(c)
	s.Install(snap1)
	assert.Same(t, snap1, s.Load())

	_, err := c.Install("new pattern <*>", []string{"new pattern "}, "", nil)
	require.NoError(t, err)
	snap2 := Build(c)
	s.Install(snap2)

	assert.Same(t, snap2, s.Load())
	assert.NotSame(t, snap1, s.Load())
}
