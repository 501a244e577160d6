package pipeline

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects per-run counters on a private registry so that a run
// can be exported as a node-exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	calls    *prometheus.CounterVec
	removed  *prometheus.CounterVec
	duration *prometheus.GaugeVec
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panguess",
			Name:      "calls_total",
			Help:      "Gene calls produced by each stage, by prediction method.",
		}, []string{"stage", "method"}),
		removed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panguess",
			Name:      "merge_removed_total",
			Help:      "Gene calls dropped as overlapping, by merge.",
		}, []string{"merge"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "panguess",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each stage.",
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.calls, m.removed, m.duration)
	return m
}

func (m *Metrics) addCalls(stage, method string, n int) {
	m.calls.WithLabelValues(stage, method).Add(float64(n))
}

func (m *Metrics) addRemoved(merge string, n int) {
	m.removed.WithLabelValues(merge).Add(float64(n))
}

// timeStage records the time since start under stage.
func (m *Metrics) timeStage(stage string, start time.Time) {
	m.duration.WithLabelValues(stage).Set(time.Since(start).Seconds())
}

// WriteFile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
