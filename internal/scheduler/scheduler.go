// Package scheduler implements the generation scheduler of spec §4.5: a
// single long-running loop that aggregates client demand, generates
// missing chunks, and installs them into the world store.
package scheduler

import (
	"time"

	"github.com/VoidMesh/voxelserver/internal/logging"
	"github.com/VoidMesh/voxelserver/internal/metrics"
	"github.com/VoidMesh/voxelserver/internal/registry"
	"github.com/VoidMesh/voxelserver/internal/terrain"
	"github.com/VoidMesh/voxelserver/internal/world"
)

// defaultTickInterval is the scheduler's loop period when the caller
// doesn't override it, per spec §4.5 steps 2 and 4.
const defaultTickInterval = 100 * time.Millisecond

// Scheduler owns the local generated set that dedupes generation work
// across iterations, redundant with but required to agree with the world
// store's membership (spec §4.5).
type Scheduler struct {
	registry     *registry.Registry
	world        *world.World
	generator    *terrain.Generator
	sinks        *metrics.Sinks
	tickInterval time.Duration
	log          interface {
		Debug(msg interface{}, keyvals ...interface{})
	}

	generated map[terrain.Coord]struct{}
}

// New builds a scheduler over the given registry, world and generator. The
// generated set is seeded from the world's existing chunk coordinates so
// membership agrees with the World Store from the first tick (spec §4.5);
// otherwise a chunk installed before the scheduler starts, such as the
// spawn chunk (0,0) from world.New, would be regenerated and double-counted
// the first time a client demands it. tickInterval <= 0 falls back to
// defaultTickInterval.
func New(reg *registry.Registry, w *world.World, gen *terrain.Generator, sinks *metrics.Sinks, tickInterval time.Duration) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}

	generated := make(map[terrain.Coord]struct{})
	for _, coord := range w.Coords() {
		generated[coord] = struct{}{}
	}

	return &Scheduler{
		registry:     reg,
		world:        w,
		generator:    gen,
		sinks:        sinks,
		tickInterval: tickInterval,
		log:          logging.WithComponent("scheduler"),
		generated:    generated,
	}
}

// Run drives the scheduler loop until stop is closed, per spec §4.5.
func (s *Scheduler) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	if s.registry.Count() == 0 {
		return
	}

	demand := s.registry.AggregateDemand()
	for _, d := range demand {
		coord := terrain.Coord{X: d.CX, Z: d.CZ}
		if _, done := s.generated[coord]; done {
			continue
		}
		if s.world.Contains(d.CX, d.CZ) {
			s.generated[coord] = struct{}{}
			continue
		}

		start := time.Now()
		chunk := s.generator.Generate(d.CX, d.CZ)
		s.sinks.ChunkGenerationTime.Observe(time.Since(start).Seconds())

		s.world.Insert(chunk)
		s.generated[coord] = struct{}{}
		s.sinks.ChunkGenerated.Inc()
		s.log.Debug("generated chunk", "cx", d.CX, "cz", d.CZ)
	}
}
