package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/voxelserver/internal/metrics"
	"github.com/VoidMesh/voxelserver/internal/registry"
	"github.com/VoidMesh/voxelserver/internal/terrain"
	"github.com/VoidMesh/voxelserver/internal/world"
)

func TestTickGeneratesDemandedChunks(t *testing.T) {
	reg := registry.New()
	gen := terrain.Default()
	w := world.New(gen)
	s := New(reg, w, gen, metrics.Noop(), 0)

	c := registry.NewClient(1, 0, 0, 0)
	c.ApplyClientData([3]float32{}, [2]float32{}, 0, []registry.Demand{
		{CX: 3, CZ: 3, Distance: 0},
	})
	reg.Add(c)

	s.tick()

	require.True(t, w.Contains(3, 3), "chunk (3,3) was not generated after tick")
}

func TestTickSkipsWhenNoClients(t *testing.T) {
	reg := registry.New()
	gen := terrain.Default()
	w := world.New(gen)
	s := New(reg, w, gen, metrics.Noop(), 0)

	s.tick()
	require.False(t, w.Contains(1, 1), "generated a chunk with no connected clients")
}

func TestTickDedupesAcrossIterations(t *testing.T) {
	reg := registry.New()
	gen := terrain.Default()
	w := world.New(gen)
	s := New(reg, w, gen, metrics.Noop(), 0)

	c := registry.NewClient(1, 0, 0, 0)
	c.ApplyClientData([3]float32{}, [2]float32{}, 0, []registry.Demand{
		{CX: 2, CZ: 2, Distance: 0},
	})
	reg.Add(c)

	s.tick()
	_, ok := s.generated[terrain.Coord{X: 2, Z: 2}]
	require.True(t, ok, "(2,2) not recorded in local generated set")

	before := w.Get(2, 2)
	s.tick()
	after := w.Get(2, 2)
	require.Same(t, before, after, "second tick regenerated an already-generated chunk")
}

func TestNewSeedsGeneratedFromExistingWorldChunks(t *testing.T) {
	reg := registry.New()
	gen := terrain.Default()
	w := world.New(gen) // installs chunk (0,0) as the spawn chunk
	sinks := metrics.Noop()
	s := New(reg, w, gen, sinks, 0)

	_, ok := s.generated[terrain.Coord{X: 0, Z: 0}]
	require.True(t, ok, "New must seed generated from the world's existing chunks")

	c := registry.NewClient(1, 0, 0, 0)
	c.ApplyClientData([3]float32{}, [2]float32{}, 0, []registry.Demand{
		{CX: 0, CZ: 0, Distance: 0},
	})
	reg.Add(c)

	before := w.Get(0, 0)
	s.tick()
	after := w.Get(0, 0)
	require.Same(t, before, after, "spawn chunk was regenerated after scheduler start")
}

func TestRunStopsOnSignal(t *testing.T) {
	reg := registry.New()
	gen := terrain.Default()
	w := world.New(gen)
	s := New(reg, w, gen, metrics.Noop(), 0)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(stop)
		close(done)
	}()

	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after signal")
	}
}
