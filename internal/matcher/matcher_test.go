package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/templatematch/internal/catalog"
	"github.com/moolen/templatematch/internal/snapshot"
)

func newMatcher(t *testing.T, install func(c *catalog.Catalog)) *Matcher {
	t.Helper()
	c := catalog.New(1)
	install(c)
	store := snapshot.NewStore(snapshot.Build(c))
	return New(store, DefaultConfig())
}

// Seed scenario 1.
func TestMatchLine_BasicOrderedMatch(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {
		_, err := c.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "", nil)
		require.NoError(t, err)
	})

	id, ok := m.MatchLine([]byte("ERROR: task-42 failed"))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), id)
}

// Seed scenario 2: both fragments are present in the line, but in
// reverse order. The ordered-subsequence rule lets only one of them
// count towards the candidate (matching " failed" before "ERROR " in
// scan order forecloses "ERROR " from counting, since its template
// position is lower than one already accepted) — so only one
// fragment's weight (0.5 of the total, for this equal-weight,
// two-fragment template) ever contributes. A strict threshold above
// that single-fragment score is required to observe the rejection:
// the package default of 0.3 is cleared by a single matched fragment
// out of two, so it would accept this line despite the order
// violation.
func TestMatchLine_OutOfOrderFragmentsDoNotMatch(t *testing.T) {
	c := catalog.New(1)
	_, err := c.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "", nil)
	require.NoError(t, err)
	store := snapshot.NewStore(snapshot.Build(c))
	m := New(store, Config{FragmentMatchThreshold: 0.6})

	_, ok := m.MatchLine([]byte("things failed then ERROR happened"))
	assert.False(t, ok)
}

// Seed scenario 3: both templates match every fragment (score 1.0, no
// unmatched fragments), so the tie falls through to the lowest id.
func TestMatchLine_TieBreakPrefersLowestTemplateID(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {
		_, err := c.Install("cpu_usage: <*>%", []string{"cpu_usage: ", "%"}, "", nil)
		require.NoError(t, err)
		_, err = c.Install("cpu_usage: <*> load <*>", []string{"cpu_usage: ", " load "}, "", nil)
		require.NoError(t, err)
	})

	id, ok := m.MatchLine([]byte("cpu_usage: 67.8% high load normal"))
	assert.True(t, ok)
	assert.Equal(t, uint64(1), id)
}

func TestMatchLine_EmptyLineNeverMatches(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {
		_, err := c.Install("ERROR <*>", []string{"ERROR "}, "", nil)
		require.NoError(t, err)
	})

	_, ok := m.MatchLine(nil)
	assert.False(t, ok)
	_, ok = m.MatchLine([]byte{})
	assert.False(t, ok)
}

func TestMatchLine_EmptyCatalogNeverMatches(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {})

	_, ok := m.MatchLine([]byte("anything at all"))
	assert.False(t, ok)
}

func TestMatchLine_BelowThresholdRejected(t *testing.T) {
	c := catalog.New(1)
	_, err := c.Install("a <*> b <*> c <*> d", []string{"a ", " b ", " c ", " d"}, "", nil)
	require.NoError(t, err)
	store := snapshot.NewStore(snapshot.Build(c))
	m := New(store, Config{FragmentMatchThreshold: 0.9})

	// Only "a " matches; far below 0.9 of total weight.
	_, ok := m.MatchLine([]byte("a only, nothing else"))
	assert.False(t, ok)
}

// T4: match_batch agrees with match_line under the same snapshot.
func TestMatchBatch_AgreesWithMatchLine(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {
		_, err := c.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "", nil)
		require.NoError(t, err)
	})

	lines := [][]byte{
		[]byte("ERROR: task-42 failed"),
		[]byte("all good here"),
		[]byte("ERROR: task-7 failed"),
	}

	batch := m.MatchBatch(lines)
	for i, line := range lines {
		id, ok := m.MatchLine(line)
		assert.Equal(t, ok, batch[i].Matched)
		if ok {
			assert.Equal(t, id, batch[i].TemplateID)
		}
	}
}

// Seed scenario 4: 1,000 copies under match_batch_parallel.
func TestMatchBatchParallel_MatchesDeterministicallyInOrder(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {
		_, err := c.Install("ERROR <*> failed", []string{"ERROR ", " failed"}, "", nil)
		require.NoError(t, err)
	})

	lines := make([][]byte, 1000)
	for i := range lines {
		lines[i] = []byte("ERROR: task-42 failed")
	}

	seq := m.MatchBatch(lines)
	par := m.MatchBatchParallel(lines, 8)

	require.Len(t, par, 1000)
	for i := range lines {
		assert.Equal(t, seq[i], par[i])
		assert.True(t, par[i].Matched)
		assert.Equal(t, uint64(1), par[i].TemplateID)
	}
}

func TestMatchBatchParallel_EmptyInput(t *testing.T) {
	m := newMatcher(t, func(c *catalog.Catalog) {})
	assert.Empty(t, m.MatchBatchParallel(nil, 4))
}
