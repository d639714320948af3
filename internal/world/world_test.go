package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/voxelserver/internal/terrain"
)

func TestNewDerivesSpawn(t *testing.T) {
	w := New(terrain.Default())
	s := w.Spawn()
	require.GreaterOrEqual(t, s.Y, int32(terrain.MinFloor))
	require.Less(t, s.Y, int32(terrain.ChunkHeight))
	require.True(t, w.Contains(0, 0), "origin chunk was not installed during construction")
}

func TestInsertIdempotent(t *testing.T) {
	gen := terrain.Default()
	w := New(gen)

	other := gen.Generate(5, 5)
	w.Insert(other)
	require.True(t, w.Contains(5, 5))

	// Insert again with a different chunk object at the same coord; the
	// first one must win.
	replacement := gen.Generate(5, 5)
	replacement.Voxels[0].ID = 255
	w.Insert(replacement)

	require.NotSame(t, replacement, w.Get(5, 5), "second insert overwrote the first chunk at the same key")
}

func TestCoordsReflectsInstalledChunks(t *testing.T) {
	gen := terrain.Default()
	w := New(gen) // installs (0,0) as the spawn chunk
	w.Insert(gen.Generate(4, 4))

	require.ElementsMatch(t, []terrain.Coord{{X: 0, Z: 0}, {X: 4, Z: 4}}, w.Coords())
}

func TestChunkBytesRLEMissing(t *testing.T) {
	w := New(terrain.Default())
	_, err := w.ChunkBytesRLE(99, 99)
	require.Error(t, err)
}

func TestPlayerLifecycle(t *testing.T) {
	w := New(terrain.Default())
	w.AddPlayer(&Player{ID: 1, Position: [3]float32{0, 102, 0}})

	require.NotNil(t, w.GetPlayer(1))

	w.RemovePlayer(1)
	require.Nil(t, w.GetPlayer(1))
}
