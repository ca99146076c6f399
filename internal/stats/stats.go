// Package stats exports per-frame timings and world counters to Prometheus.
package stats

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frame phases timed by World.Update.
const (
	PhaseLoad       = "load"
	PhasePhysics    = "physics"
	PhaseCollisions = "collisions"
	PhaseLines      = "lines"
	PhaseTick       = "tick"
	PhaseTransforms = "transforms"
)

// FrameStats holds the frame metrics on a private registry so several worlds
// (or tests) never collide on the global one. A nil *FrameStats is valid and
// records nothing.
type FrameStats struct {
	registry *prometheus.Registry

	phase     *prometheus.HistogramVec
	frames    prometheus.Counter
	manifolds prometheus.Gauge
	overlaps  prometheus.Gauge
	nodes     prometheus.Gauge
	bodies    prometheus.Gauge
}

func NewFrameStats() *FrameStats {
	fs := &FrameStats{
		registry: prometheus.NewRegistry(),
		phase: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mirgo",
			Subsystem: "frame",
			Name:      "phase_seconds",
			Help:      "Time spent in each phase of World.Update.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
		}, []string{"phase"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mirgo",
			Subsystem: "frame",
			Name:      "total",
			Help:      "Number of frames simulated.",
		}),
		manifolds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mirgo",
			Subsystem: "physics",
			Name:      "manifolds",
			Help:      "Contact manifolds produced by the last step.",
		}),
		overlaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mirgo",
			Subsystem: "world",
			Name:      "overlap_pairs",
			Help:      "Directional overlap entries currently active.",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mirgo",
			Subsystem: "world",
			Name:      "nodes",
			Help:      "Nodes registered with the world.",
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mirgo",
			Subsystem: "physics",
			Name:      "bodies",
			Help:      "Bodies in the simulation.",
		}),
	}
	fs.registry.MustRegister(fs.phase, fs.frames, fs.manifolds, fs.overlaps, fs.nodes, fs.bodies)
	return fs
}

// Time starts timing phase and returns the func that stops it:
//
//	defer fs.Time(stats.PhasePhysics)()
func (fs *FrameStats) Time(phase string) func() {
	if fs == nil {
		return func() {}
	}
	start := time.Now()
	obs := fs.phase.WithLabelValues(phase)
	return func() {
		obs.Observe(time.Since(start).Seconds())
	}
}

func (fs *FrameStats) FrameDone() {
	if fs == nil {
		return
	}
	fs.frames.Inc()
}

func (fs *FrameStats) SetManifolds(n int) {
	if fs == nil {
		return
	}
	fs.manifolds.Set(float64(n))
}

func (fs *FrameStats) SetOverlaps(n int) {
	if fs == nil {
		return
	}
	fs.overlaps.Set(float64(n))
}

func (fs *FrameStats) SetNodes(n int) {
	if fs == nil {
		return
	}
	fs.nodes.Set(float64(n))
}

func (fs *FrameStats) SetBodies(n int) {
	if fs == nil {
		return
	}
	fs.bodies.Set(float64(n))
}

// Registry exposes the private registry, mostly for tests.
func (fs *FrameStats) Registry() *prometheus.Registry {
	return fs.registry
}

// Handler serves the metrics in the Prometheus text format.
func (fs *FrameStats) Handler() http.Handler {
	return promhttp.HandlerFor(fs.registry, promhttp.HandlerOpts{})
}
