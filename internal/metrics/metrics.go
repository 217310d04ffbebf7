// Package metrics records Prometheus counters for a copy run.
//
// Each run gets its own registry so runs (and tests) never share counters.
// The command writes the registry in the node_exporter textfile format when
// metrics.textfile is configured.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "readpack"

// CopyMetrics tracks the progress of one copy. A nil *CopyMetrics is valid and
// records nothing.
type CopyMetrics struct {
	registry *prometheus.Registry

	batches   prometheus.Counter
	rows      prometheus.Counter
	samples   prometheus.Counter
	runInfos  prometheus.Counter
	errors    *prometheus.CounterVec
	poreTypes prometheus.Gauge
}

// New creates the copy metrics and registers them on a fresh registry.
func New() *CopyMetrics {
	m := &CopyMetrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "copy",
			Name:      "batches_total",
			Help:      "Batches appended to the destination",
		}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "copy",
			Name:      "rows_total",
			Help:      "Reads appended to the destination",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "copy",
			Name:      "samples_total",
			Help:      "Signal samples appended to the destination",
		}),
		runInfos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "copy",
			Name:      "run_infos_total",
			Help:      "Run info entries copied",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "copy",
			Name:      "errors_total",
			Help:      "Errors logged during the copy, by stage",
		}, []string{"stage"}),
		poreTypes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "copy",
			Name:      "pore_types",
			Help:      "Distinct pore types in the destination dictionary",
		}),
	}

	m.registry.MustRegister(m.batches, m.rows, m.samples, m.runInfos, m.errors, m.poreTypes)

	return m
}

// Registry returns the registry holding the copy metrics.
func (m *CopyMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// BatchAppended records one appended batch.
func (m *CopyMetrics) BatchAppended(rows int, samples uint64) {
	if m == nil {
		return
	}

	m.batches.Inc()
	m.rows.Add(float64(rows))
	m.samples.Add(float64(samples))
}

// RunInfoCopied records one copied run info.
func (m *CopyMetrics) RunInfoCopied() {
	if m == nil {
		return
	}

	m.runInfos.Inc()
}

// Error records a logged error in stage.
func (m *CopyMetrics) Error(stage string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(stage).Inc()
}

// SetPoreTypes records the size of the destination pore dictionary.
func (m *CopyMetrics) SetPoreTypes(n int) {
	if m == nil {
		return
	}

	m.poreTypes.Set(float64(n))
}

// WriteTextfile writes the metrics to path in the Prometheus text format.
func (m *CopyMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
