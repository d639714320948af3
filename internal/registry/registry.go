// Package registry implements the client registry described in spec §4.3:
// keyed client storage plus demand aggregation (dedup by nearest distance,
// sorted by distance ascending).
package registry

import (
	"sort"
	"sync"
)

// Demand is a single requested chunk coordinate with its proximity score.
type Demand struct {
	CX, CZ   int32
	Distance int32
}

// Client is one connected session's mutable state (spec §3). It carries its
// own RWMutex: writers are that client's ingress task (position, rotation,
// state, demand, packet counter) and its own egress task (demand
// consumption); readers are the scheduler (demand) and the egress snapshot.
type Client struct {
	ID uint32

	mu            sync.RWMutex
	position      [3]float32
	rotation      [2]float32
	state         uint32
	chunkDemand   []Demand
	packetCountRx uint64
}

// NewClient constructs a client record at the given id, positioned at the
// world's spawn point.
func NewClient(id uint32, spawnX, spawnY, spawnZ float32) *Client {
	return &Client{
		ID:       id,
		position: [3]float32{spawnX, spawnY, spawnZ},
	}
}

// Position returns the client's last-known position.
func (c *Client) Position() [3]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

// State returns the client's last-known state value.
func (c *Client) State() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// ApplyClientData updates position, rotation, state and chunk_demand from
// an ingress ClientData message and increments packet_count_rx, per
// spec §4.4 step 3 (id=1).
func (c *Client) ApplyClientData(position [3]float32, rotation [2]float32, state uint32, demand []Demand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.rotation = rotation
	c.state = state
	c.chunkDemand = demand
	c.packetCountRx++
}

// DemandSnapshot returns a copy of the client's current chunk demand, for
// the registry's aggregation pass and the egress drain loop.
func (c *Client) DemandSnapshot() []Demand {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Demand, len(c.chunkDemand))
	copy(out, c.chunkDemand)
	return out
}

// SetDemand replaces the client's chunk demand, used by the egress loop to
// retain only the entries not yet fulfilled (spec §4.4 step 3).
func (c *Client) SetDemand(demand []Demand) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunkDemand = demand
}

// Registry is the process-wide client map plus the last-aggregated demand
// view, guarded by one RWMutex per spec §5.
type Registry struct {
	mu             sync.RWMutex
	clients        map[uint32]*Client
	demandedChunks []Demand
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{clients: make(map[uint32]*Client)}
}

// NextID returns the id to assign the next connecting client: the current
// registry size plus one, per spec §3.
func (r *Registry) NextID() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint32(len(r.clients)) + 1
}

// Add inserts a client under its own id; the caller supplies the id
// (spec §4.3: "the caller supplies the id, scheduler-free").
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Remove deregisters a client by id. Safe to call more than once; the
// session's terminal step is responsible for calling this exactly once
// (spec §4.4 state machine).
func (r *Registry) Remove(id uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

// Get returns the client with the given id, or nil if absent.
func (r *Registry) Get(id uint32) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[id]
}

// Count returns the number of connected clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// AggregateDemand unions every client's chunk_demand, keeping the smallest
// distance per (cx,cz) key, sorts ascending by distance, stores the result
// as demanded_chunks and returns a copy, per spec §4.3.
func (r *Registry) AggregateDemand() []Demand {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	type key struct{ x, z int32 }
	best := make(map[key]int32)
	for _, c := range clients {
		for _, d := range c.DemandSnapshot() {
			k := key{d.CX, d.CZ}
			if prev, ok := best[k]; !ok || d.Distance < prev {
				best[k] = d.Distance
			}
		}
	}

	out := make([]Demand, 0, len(best))
	for k, dist := range best {
		out = append(out, Demand{CX: k.x, CZ: k.z, Distance: dist})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})

	r.mu.Lock()
	r.demandedChunks = out
	r.mu.Unlock()

	result := make([]Demand, len(out))
	copy(result, out)
	return result
}

// DemandedChunks returns a copy of the last-aggregated demand view.
func (r *Registry) DemandedChunks() []Demand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Demand, len(r.demandedChunks))
	copy(out, r.demandedChunks)
	return out
}
