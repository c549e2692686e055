package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAll_ReportsOrderedOccurrences(t *testing.T) {
	idx := Build([]string{"ERROR ", " failed"})

	occs := idx.FindAll([]byte("ERROR task-42 failed"))

	assert.Len(t, occs, 2)
	assert.Equal(t, uint32(0), occs[0].FragmentID)
	assert.Equal(t, 0, occs[0].Position)
	assert.Equal(t, uint32(1), occs[1].FragmentID)
	assert.Greater(t, occs[1].Position, occs[0].Position)
}

func TestFindAll_EmptyLineYieldsNone(t *testing.T) {
	idx := Build([]string{"ERROR "})
	assert.Empty(t, idx.FindAll(nil))
	assert.Empty(t, idx.FindAll([]byte{}))
}

func TestFindAll_NoMatch(t *testing.T) {
	idx := Build([]string{"ERROR "})
	assert.Empty(t, idx.FindAll([]byte("all fine here")))
}
