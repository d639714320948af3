package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDefaultSinksDriveThePrometheusRegistry(t *testing.T) {
	sinks := Default()

	before := testutil.ToFloat64(ChunkGeneratedTotal)
	sinks.ChunkGenerated.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(ChunkGeneratedTotal))

	sinks.ClientCount.Inc()
	sinks.ClientCount.Inc()
	sinks.ClientCount.Dec()
	require.Equal(t, float64(1), testutil.ToFloat64(ClientCount))
}

func TestNoopSinksDiscardObservations(t *testing.T) {
	sinks := Noop()

	require.NotPanics(t, func() {
		sinks.ClientCount.Inc()
		sinks.ClientCount.Dec()
		sinks.ClientCount.Set(5)
		sinks.ChunkGenerated.Inc()
		sinks.ChunkGenerated.IncBy(3)
		sinks.ChunkGenerationTime.Observe(0.1)
		sinks.Disconnects.Inc()
		sinks.MalformedPackets.Inc()
	})
}

func TestRecordIngressEgressAccumulate(t *testing.T) {
	before := ingressTotal.Load()
	RecordIngress(10)
	RecordIngress(5)
	require.Equal(t, before+15, ingressTotal.Load())

	beforeEgress := egressTotal.Load()
	RecordEgress(7)
	require.Equal(t, beforeEgress+7, egressTotal.Load())
}
