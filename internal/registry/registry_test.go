package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextIDIncreasesWithRegistrySize(t *testing.T) {
	r := New()
	require.Equal(t, uint32(1), r.NextID())

	r.Add(NewClient(1, 0, 102, 0))
	require.Equal(t, uint32(2), r.NextID())
}

func TestAddGetRemove(t *testing.T) {
	r := New()
	c := NewClient(1, 0, 0, 0)
	r.Add(c)

	require.Same(t, c, r.Get(1))

	r.Remove(1)
	require.Nil(t, r.Get(1))
}

func TestApplyClientDataUpdatesState(t *testing.T) {
	c := NewClient(1, 0, 0, 0)
	demand := []Demand{{CX: 0, CZ: 0, Distance: 5}}
	c.ApplyClientData([3]float32{1, 2, 3}, [2]float32{0.5, 0.25}, 7, demand)

	require.Equal(t, [3]float32{1, 2, 3}, c.Position())
	require.Equal(t, uint32(7), c.State())
	require.Equal(t, demand, c.DemandSnapshot())
}

func TestAggregateDemandDedupAndSort(t *testing.T) {
	r := New()

	a := NewClient(1, 0, 0, 0)
	a.ApplyClientData([3]float32{}, [2]float32{}, 0, []Demand{
		{CX: 0, CZ: 0, Distance: 10},
		{CX: 1, CZ: 0, Distance: 3},
	})
	r.Add(a)

	b := NewClient(2, 0, 0, 0)
	b.ApplyClientData([3]float32{}, [2]float32{}, 0, []Demand{
		{CX: 0, CZ: 0, Distance: 2},
	})
	r.Add(b)

	got := r.AggregateDemand()
	require.Len(t, got, 2)
	require.Equal(t, Demand{CX: 0, CZ: 0, Distance: 2}, got[0], "smallest distance must win")
	require.Equal(t, Demand{CX: 1, CZ: 0, Distance: 3}, got[1])

	require.Len(t, r.DemandedChunks(), 2)
}

func TestAggregateDemandNoClients(t *testing.T) {
	r := New()
	require.Empty(t, r.AggregateDemand())
}
