package terrain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := Default()
	c := g.Generate(2, 2)

	encoded := EncodeRLE(c.Voxels)
	decoded := DecodeRLE(encoded)

	require.Len(t, decoded, len(c.Voxels))
	for i := range c.Voxels {
		require.Equal(t, c.Voxels[i].ID, decoded[i].ID, "voxel %d", i)
	}
}

func TestEncodeRLELongRunSplitsAt255(t *testing.T) {
	voxels := make([]Voxel, 300)
	for i := range voxels {
		voxels[i] = Voxel{Index: uint32(i), ID: VoxelSolid}
	}

	out := EncodeRLE(voxels)
	require.Len(t, out, 4, "want two count/id pairs")
	require.Equal(t, []byte{255, VoxelSolid, 45, VoxelSolid}, out)
}

func TestEncodeRLEFinalRunAlwaysEmitted(t *testing.T) {
	voxels := []Voxel{
		{Index: 0, ID: VoxelAir},
		{Index: 1, ID: VoxelAir},
		{Index: 2, ID: VoxelSolid},
	}

	out := EncodeRLE(voxels)
	require.Equal(t, []byte{2, VoxelAir, 1, VoxelSolid}, out, "final run was dropped")
}

func TestEncodeRLEEmpty(t *testing.T) {
	require.Nil(t, EncodeRLE(nil))
}

func TestChunkToBytesRLEHeader(t *testing.T) {
	g := Default()
	c := g.Generate(-1, 7)
	out := ChunkToBytesRLE(c)

	require.GreaterOrEqual(t, len(out), 8)
	x := int32(uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24)
	z := int32(uint32(out[4]) | uint32(out[5])<<8 | uint32(out[6])<<16 | uint32(out[7])<<24)
	require.Equal(t, c.Coord.X, x)
	require.Equal(t, c.Coord.Z, z)
}
