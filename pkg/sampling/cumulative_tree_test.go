package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCumulativeTree_Root(t *testing.T) {
	tree := NewCumulativeTree([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, 15.0, tree.Root())
	assert.Equal(t, 5, tree.Len())
}

func TestCumulativeTree_Search(t *testing.T) {
	tree := NewCumulativeTree([]float64{1, 2, 3, 4})

	tests := []struct {
		x    float64
		want int
	}{
		{0.5, 0},
		{1, 0},
		{1.5, 1},
		{3, 1},
		{3.01, 2},
		{6, 2},
		{9.5, 3},
		{10, 3},
		{10.5, NotFound},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tree.Search(tt.x), "Search(%v)", tt.x)
	}
}

func TestCumulativeTree_SearchSkipsZeroWeights(t *testing.T) {
	tree := NewCumulativeTree([]float64{0, 0, 2, 0, 1})
	assert.Equal(t, 2, tree.Search(0.1))
	assert.Equal(t, 2, tree.Search(2))
	assert.Equal(t, 4, tree.Search(2.5))
}

func TestCumulativeTree_Update(t *testing.T) {
	tree := NewCumulativeTree([]float64{1, 1, 1})
	require.NoError(t, tree.Update(1, 5))

	assert.Equal(t, 7.0, tree.Root())
	assert.Equal(t, 5.0, tree.Query(1))
	assert.Equal(t, 1, tree.Search(2))
	assert.Equal(t, 2, tree.Search(6.5))

	require.NoError(t, tree.Update(1, 0))
	assert.Equal(t, 2, tree.Search(1.5))
}

func TestCumulativeTree_UpdateErrors(t *testing.T) {
	tree := NewCumulativeTree([]float64{1, 1})
	assert.ErrorIs(t, tree.Update(2, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, tree.Update(-1, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, tree.Update(0, -1), ErrNegativeWeight)
}

func TestCumulativeTree_Empty(t *testing.T) {
	tree := NewCumulativeTree(nil)
	assert.Equal(t, 0.0, tree.Root())
	assert.Equal(t, NotFound, tree.Search(0))
}

func TestCumulativeTree_SingleLeaf(t *testing.T) {
	tree := NewCumulativeTree([]float64{3})
	assert.Equal(t, 0, tree.Search(3))
	assert.Equal(t, NotFound, tree.Search(3.5))
}
