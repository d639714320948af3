// Package metrics exposes the process-wide counters, gauges and histograms
// described in spec §2 ("Metrics hooks") and §9 ("Global mutable metrics").
// Core components receive their counters, gauges and histograms through the
// Sinks bundle of small interfaces below, so they stay testable without a
// live Prometheus registry; socket byte totals are recorded through the
// package-level RecordIngress/RecordEgress functions.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter is a monotonic sink: Inc/IncBy only.
type Counter interface {
	Inc()
	IncBy(n float64)
}

// Gauge can move in either direction and be set to an absolute value.
type Gauge interface {
	Inc()
	Dec()
	Set(v float64)
}

// Histogram records individual observations (e.g. generation latency).
type Histogram interface {
	Observe(v float64)
}

var (
	ServerUptimeSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "server_uptime_seconds_total",
		Help: "Seconds the server process has been running.",
	})

	ClientCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "client_count",
		Help: "Number of currently connected clients.",
	})

	ChunkGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chunk_generated_total",
		Help: "Chunks generated since process start.",
	})

	ChunkGenerationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chunk_generation_seconds",
		Help:    "Time spent generating a single chunk.",
		Buckets: prometheus.DefBuckets,
	})

	NetworkBytesEgressTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "network_bytes_egress_total",
		Help: "Total bytes written to client sockets.",
	})

	NetworkBytesIngressTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "network_bytes_ingress_total",
		Help: "Total bytes read from client sockets.",
	})

	NetworkBytesEgressPerSecond = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "network_bytes_egress_per_second",
		Help: "Egress byte rate sampled once per second.",
	})

	NetworkBytesIngressPerSecond = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "network_bytes_ingress_per_second",
		Help: "Ingress byte rate sampled once per second.",
	})

	DisconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "client_disconnects_total",
		Help: "Client sessions that terminated via peer close or read error.",
	})

	MalformedPacketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "malformed_packets_total",
		Help: "Packets dropped for an unknown id or a truncated fixed prefix.",
	})
)

// counterAdapter satisfies Counter on top of a prometheus.Counter, whose
// native method is Add, not IncBy.
type counterAdapter struct{ c prometheus.Counter }

func (a counterAdapter) Inc()            { a.c.Inc() }
func (a counterAdapter) IncBy(n float64) { a.c.Add(n) }

type gaugeAdapter struct{ g prometheus.Gauge }

func (a gaugeAdapter) Inc()        { a.g.Inc() }
func (a gaugeAdapter) Dec()        { a.g.Dec() }
func (a gaugeAdapter) Set(v float64) { a.g.Set(v) }

type histogramAdapter struct{ h prometheus.Histogram }

func (a histogramAdapter) Observe(v float64) { a.h.Observe(v) }

// Sinks bundles the metrics a core component needs, injected rather than
// read off the package globals directly (spec §9 "inject the interface").
type Sinks struct {
	ClientCount         Gauge
	ChunkGenerated      Counter
	ChunkGenerationTime Histogram
	Disconnects         Counter
	MalformedPackets    Counter
}

// Default returns Sinks wired to the process-wide Prometheus registry.
func Default() *Sinks {
	return &Sinks{
		ClientCount:         gaugeAdapter{ClientCount},
		ChunkGenerated:      counterAdapter{ChunkGeneratedTotal},
		ChunkGenerationTime: histogramAdapter{ChunkGenerationSeconds},
		Disconnects:         counterAdapter{DisconnectsTotal},
		MalformedPackets:    counterAdapter{MalformedPacketsTotal},
	}
}

// Noop returns Sinks that discard every observation, for unit tests that
// don't care about metrics wiring.
func Noop() *Sinks {
	return &Sinks{
		ClientCount:         noopGauge{},
		ChunkGenerated:      noopCounter{},
		ChunkGenerationTime: noopHistogram{},
		Disconnects:         noopCounter{},
		MalformedPackets:    noopCounter{},
	}
}

type noopCounter struct{}

func (noopCounter) Inc()            {}
func (noopCounter) IncBy(n float64) {}

type noopGauge struct{}

func (noopGauge) Inc()          {}
func (noopGauge) Dec()          {}
func (noopGauge) Set(v float64) {}

type noopHistogram struct{}

func (noopHistogram) Observe(v float64) {}

var (
	ingressTotal atomic.Uint64
	egressTotal  atomic.Uint64
)

// RecordIngress accounts n bytes read from a client socket.
func RecordIngress(n int) {
	NetworkBytesIngressTotal.Add(float64(n))
	ingressTotal.Add(uint64(n))
}

// RecordEgress accounts n bytes written to a client socket.
func RecordEgress(n int) {
	NetworkBytesEgressTotal.Add(float64(n))
	egressTotal.Add(uint64(n))
}

// Handler returns the /metrics HTTP handler; every other path the caller
// routes to it must answer 404, per spec §6.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SampleByteRates turns the cumulative ingress/egress counters into
// per-second gauges, the way original_source's track_bytes_per_second did,
// and ticks the uptime counter once a second. It blocks until stop is
// closed.
func SampleByteRates(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastIngress, lastEgress uint64
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ServerUptimeSeconds.Inc()

			curIngress := ingressTotal.Load()
			curEgress := egressTotal.Load()
			NetworkBytesIngressPerSecond.Set(float64(curIngress - lastIngress))
			NetworkBytesEgressPerSecond.Set(float64(curEgress - lastEgress))
			lastIngress, lastEgress = curIngress, curEgress
		}
	}
}
