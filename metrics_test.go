package composer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.frameRendered()
	m.frameCancelled()
	m.observeFrame(FrameStats{})
	m.assetLoaded(true)
	m.setLayers(3)
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	m.frameRendered()
	m.assetLoaded(false)
	m.setLayers(7)

	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, reg))
	out := buf.String()
	assert.Contains(t, out, "composer_frames_rendered_total 1")
	assert.Contains(t, out, `composer_asset_loads_total{result="failed"} 1`)
	assert.Contains(t, out, "composer_layers 7")

	assert.Equal(t, 7.0, testutil.ToFloat64(m.layers))
}

func TestWriteMetricsFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	m.frameCancelled()

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, WriteMetricsFile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "composer_frame_requests_cancelled_total 1")

	assert.Error(t, WriteMetricsFile(filepath.Join(t.TempDir(), "missing", "m.prom"), reg))
}
