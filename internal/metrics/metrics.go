// Package metrics exports Prometheus counters/gauges/histograms for
// frame throughput, LAN link health, and spectrum reassembly (C10).
// Collector construction follows the teacher's prometheus.go layout
// (one promauto-style call per metric, grouped by subsystem); unlike
// the teacher, which registers against the global default registerer,
// each Metrics value owns a private *prometheus.Registry so multiple
// independent sessions can run in one process (and one test binary)
// without colliding on metric names.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LinkState mirrors the LAN controller's state machine as a small
// integer suitable for a gauge.
type LinkState int

const (
	LinkDisconnected LinkState = iota
	LinkAreYouThere
	LinkAreYouReady
	LinkLogin
	LinkTokenRequest
	LinkTokenRenew
	LinkConnected
	LinkRequestStream
	LinkStreaming
)

// Metrics holds every collector exported at /metrics, each registered
// against its own private registry.
type Metrics struct {
	registry *prometheus.Registry

	FramesDecodedTotal *prometheus.CounterVec
	FramesEncodedTotal prometheus.Counter

	LANLinkState          prometheus.Gauge
	LANRetransmitsTotal   prometheus.Counter
	LANKeepaliveMissTotal prometheus.Counter

	ReconcilerCycleSeconds prometheus.Histogram

	SpectrumLinesAssembledTotal prometheus.Counter
	SpectrumLinesDiscardedTotal prometheus.Counter
}

// New builds a Metrics value with a fresh, unshared registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		FramesDecodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "civ_frames_decoded_total",
			Help: "CI-V frames decoded, labeled by outcome.",
		}, []string{"result"}),
		FramesEncodedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "civ_frames_encoded_total",
			Help: "CI-V frames encoded for transmission.",
		}),
		LANLinkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lan_link_state",
			Help: "Current LAN control-channel state machine state, numerically encoded.",
		}),
		LANRetransmitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lan_retransmits_total",
			Help: "Outgoing LAN packets retransmitted after a missing ack.",
		}),
		LANKeepaliveMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lan_keepalive_misses_total",
			Help: "Missed keep-alive pongs on the LAN control channel.",
		}),
		ReconcilerCycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconciler_cycle_seconds",
			Help:    "Time to write-then-confirm one reconciler cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		SpectrumLinesAssembledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spectrum_lines_assembled_total",
			Help: "Spectrum sweeps fully reassembled from their fragments.",
		}),
		SpectrumLinesDiscardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spectrum_lines_discarded_total",
			Help: "Spectrum sweeps discarded due to out-of-order or missing fragments.",
		}),
	}

	reg.MustRegister(
		m.FramesDecodedTotal,
		m.FramesEncodedTotal,
		m.LANLinkState,
		m.LANRetransmitsTotal,
		m.LANKeepaliveMissTotal,
		m.ReconcilerCycleSeconds,
		m.SpectrumLinesAssembledTotal,
		m.SpectrumLinesDiscardedTotal,
	)
	return m
}

// Handler returns the /metrics HTTP handler serving this registry's
// exposition text.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetLinkState records the LAN controller's current state.
func (m *Metrics) SetLinkState(s LinkState) {
	m.LANLinkState.Set(float64(s))
}
