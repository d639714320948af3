// Package world implements the shared world state described in spec §4.2:
// the chunk map, the player registry, and spawn-point derivation. It is a
// singleton shared across every session and the generation scheduler,
// guarded by a single reader/writer lock per spec §5.
package world

import (
	"fmt"
	"sync"

	"github.com/VoidMesh/voxelserver/internal/terrain"
)

// Player mirrors a connected client into the world for snapshot purposes
// (spec §3 "Player").
type Player struct {
	ID       uint32
	Position [3]float32
	State    uint32
}

// Spawn is the world's single spawn point, derived once at construction.
type Spawn struct {
	X, Y, Z int32
}

// World holds the chunk map and player registry behind one RWMutex, per
// spec §5 ("World and ClientRegistry are wrapped in a multi-reader /
// single-writer shared lock").
type World struct {
	mu      sync.RWMutex
	chunks  map[terrain.Coord]*terrain.Chunk
	players map[uint32]*Player
	spawn   Spawn
}

// New builds a world holding only chunk (0,0), generated with gen, and
// derives its spawn point by scanning that chunk's middle column, per spec §3.
func New(gen *terrain.Generator) *World {
	w := &World{
		chunks:  make(map[terrain.Coord]*terrain.Chunk),
		players: make(map[uint32]*Player),
	}

	origin := gen.Generate(0, 0)
	w.chunks[terrain.Coord{X: 0, Z: 0}] = origin
	w.spawn = deriveSpawn(origin)
	return w
}

// deriveSpawn scans the middle column (x=32, z=32) of chunk (0,0) upward
// until two consecutive air voxels are found, and returns the lower of the
// two as the spawn height, per spec §3.
func deriveSpawn(c *terrain.Chunk) Spawn {
	const mid = terrain.ChunkSize / 2

	prevAir := false
	for y := 0; y < terrain.ChunkHeight; y++ {
		idx := y*terrain.ChunkSize*terrain.ChunkSize + mid*terrain.ChunkSize + mid
		isAir := c.Voxels[idx].ID == terrain.VoxelAir
		if isAir && prevAir {
			return Spawn{X: 0, Y: int32(y - 1), Z: 0}
		}
		prevAir = isAir
	}

	// Every column has air above MinFloor, so this is unreachable for the
	// spec's fixed dimensions; fall back to the top of the chunk.
	return Spawn{X: 0, Y: terrain.ChunkHeight - 1, Z: 0}
}

// Spawn returns the world's spawn point.
func (w *World) Spawn() Spawn {
	return w.spawn
}

// Insert installs a generated chunk. Idempotent w.r.t. key; the scheduler
// guarantees no concurrent inserter for the same coordinates (spec §4.2).
func (w *World) Insert(c *terrain.Chunk) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.chunks[c.Coord]; !exists {
		w.chunks[c.Coord] = c
	}
}

// Coords returns the coordinates of every chunk currently installed, for
// seeding a generation scheduler's dedup set at startup.
func (w *World) Coords() []terrain.Coord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]terrain.Coord, 0, len(w.chunks))
	for c := range w.chunks {
		out = append(out, c)
	}
	return out
}

// Contains reports whether a chunk at (cx,cz) has been generated.
func (w *World) Contains(cx, cz int32) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.chunks[terrain.Coord{X: cx, Z: cz}]
	return ok
}

// Get returns the chunk at (cx,cz), or nil if it hasn't been generated yet.
func (w *World) Get(cx, cz int32) *terrain.Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunks[terrain.Coord{X: cx, Z: cz}]
}

// ChunkBytesRLE returns the RLE wire payload for the stored chunk at
// (cx,cz), per spec §4.2. Fails if the chunk is absent.
func (w *World) ChunkBytesRLE(cx, cz int32) ([]byte, error) {
	w.mu.RLock()
	c, ok := w.chunks[terrain.Coord{X: cx, Z: cz}]
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("world: chunk (%d,%d) not generated", cx, cz)
	}
	return terrain.ChunkToBytesRLE(c), nil
}

// AddPlayer mirrors a client into the world's player map (spec §3).
func (w *World) AddPlayer(p *Player) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.players[p.ID] = p
}

// GetPlayer returns the player with the given id, or nil if absent.
func (w *World) GetPlayer(id uint32) *Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.players[id]
}

// RemovePlayer deletes a player from the world. The original source never
// calls an equivalent of this at disconnect; removing here keeps the
// player map from growing unbounded on a long-running server.
func (w *World) RemovePlayer(id uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.players, id)
}
