package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Generator produces deterministic terrain chunks from a seeded noise
// function. It has no mutable state beyond the noise source itself, which
// is read-only after construction, so a single Generator is safe for
// concurrent use by the scheduler.
type Generator struct {
	noise opensimplex.Noise
}

// NewGenerator builds a generator seeded exactly as spec §4.1 requires.
func NewGenerator(seed int64) *Generator {
	return &Generator{noise: opensimplex.NewNormalized(seed)}
}

// Default is the generator wired to the fixed world seed.
func Default() *Generator {
	return NewGenerator(WorldSeed)
}

const (
	octaves       = 2
	baseFrequency = 0.007
	baseAmplitude = 0.1
)

// heightAt computes the terrain floor height for one heightmap cell using
// the octave sum described in spec §4.1 step 1.
func (g *Generator) heightAt(worldX, worldZ int32) uint32 {
	freq := baseFrequency
	amp := baseAmplitude
	sum := 0.0
	for i := 0; i < octaves; i++ {
		// The normalized noise's Eval2 returns [0, 1]; remap it to
		// [-1, 1] to match the raw simplex range the heightmap
		// normalization formula expects.
		n := g.noise.Eval2(float64(worldX)*freq, float64(worldZ)*freq)*2 - 1
		sum += n * amp
		freq *= 2.0
		amp *= 0.5
	}

	h := ((sum + 1) * 0.5) * float64(ChunkHeight-MinFloor)
	h += float64(MinFloor)
	return uint32(math.Trunc(h))
}

// Generate produces the chunk at (cx, cz). Pure and deterministic: calling
// it twice for the same coordinates and the same Generator yields
// bit-identical voxel sequences.
func (g *Generator) Generate(cx, cz int32) *Chunk {
	var heightmap [ChunkSize][ChunkSize]uint32
	for ix := 0; ix < ChunkSize; ix++ {
		for iz := 0; iz < ChunkSize; iz++ {
			// Note the swap of ix/iz into world_x/world_z: preserved
			// verbatim from the original generator for wire
			// compatibility (spec §4.1 step 1, §9).
			worldX := cx*ChunkSize + int32(iz)
			worldZ := cz*ChunkSize + int32(ix)
			heightmap[ix][iz] = g.heightAt(worldX, worldZ)
		}
	}

	voxels := make([]Voxel, VoxelCount)
	var idx uint32
	for y := 0; y < ChunkHeight; y++ {
		for x := 0; x < ChunkSize; x++ {
			for z := 0; z < ChunkSize; z++ {
				id := VoxelAir
				if uint32(y) <= heightmap[x][z] {
					id = VoxelSolid
				}
				voxels[idx] = Voxel{Index: idx, ID: id}
				idx++
			}
		}
	}

	return &Chunk{Coord: Coord{X: cx, Z: cz}, Voxels: voxels}
}
