package composer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics counts editor activity on a Prometheus registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	framesRendered  prometheus.Counter
	framesCancelled prometheus.Counter
	frameSeconds    prometheus.Histogram
	assetLoads      *prometheus.CounterVec
	layers          prometheus.Gauge
}

// NewMetrics creates the editor collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		framesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "composer",
			Name:      "frames_rendered_total",
			Help:      "Frames drawn by the scheduler.",
		}),
		framesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "composer",
			Name:      "frame_requests_cancelled_total",
			Help:      "Pending frame requests replaced before they fired.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "composer",
			Name:      "frame_duration_seconds",
			Help:      "Time spent issuing drawing calls for one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		assetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "composer",
			Name:      "asset_loads_total",
			Help:      "Settled asset decodes by result.",
		}, []string{"result"}),
		layers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "composer",
			Name:      "layers",
			Help:      "Layers in the open project.",
		}),
	}
	for _, c := range []prometheus.Collector{m.framesRendered, m.framesCancelled, m.frameSeconds, m.assetLoads, m.layers} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("composer: register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) frameRendered() {
	if m == nil {
		return
	}
	m.framesRendered.Inc()
}

func (m *Metrics) frameCancelled() {
	if m == nil {
		return
	}
	m.framesCancelled.Inc()
}

func (m *Metrics) observeFrame(stats FrameStats) {
	if m == nil {
		return
	}
	m.frameSeconds.Observe(stats.Duration.Seconds())
}

func (m *Metrics) assetLoaded(ok bool) {
	if m == nil {
		return
	}
	result := "ready"
	if !ok {
		result = "failed"
	}
	m.assetLoads.WithLabelValues(result).Inc()
}

func (m *Metrics) setLayers(n int) {
	if m == nil {
		return
	}
	m.layers.Set(float64(n))
}

// WriteMetrics writes every family gathered from g in the Prometheus text
// format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("composer: gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("composer: encode metrics: %w", err)
		}
	}
	return nil
}

// WriteMetricsFile is WriteMetrics into a file at path.
func WriteMetricsFile(path string, g prometheus.Gatherer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("composer: create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return WriteMetrics(f, g)
}
