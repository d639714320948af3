package terrain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	g := Default()
	a := g.Generate(3, -5)
	b := g.Generate(3, -5)

	require.Len(t, a.Voxels, VoxelCount)
	require.Equal(t, a.Voxels, b.Voxels, "identical coords must produce identical terrain")
}

func TestGenerateIndexOrder(t *testing.T) {
	g := Default()
	c := g.Generate(0, 0)
	for i, v := range c.Voxels {
		require.Equal(t, i, int(v.Index), "voxel at position %d carries wrong index", i)
	}
}

func TestGenerateDifferentCoordsDiffer(t *testing.T) {
	g := Default()
	a := g.Generate(0, 0)
	b := g.Generate(1, 0)
	require.NotEqual(t, a.Voxels, b.Voxels, "adjacent chunks produced identical terrain")
}

func TestHeightWithinBounds(t *testing.T) {
	g := Default()
	for x := int32(0); x < 8; x++ {
		for z := int32(0); z < 8; z++ {
			h := g.heightAt(x, z)
			require.GreaterOrEqual(t, h, uint32(MinFloor))
			require.Less(t, h, uint32(ChunkHeight))
		}
	}
}

func TestIndexStride(t *testing.T) {
	require.Equal(t, 0, index(0, 0, 0))
	require.Equal(t, 1, index(0, 0, 1))
	require.Equal(t, ChunkSize, index(0, 1, 0))
	require.Equal(t, ChunkSize*ChunkSize, index(1, 0, 0))
}
