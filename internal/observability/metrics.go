// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "doi_metadata"

// Metrics holds the counters and histograms for a resolution run. They are
// registered on a private registry so a one-shot CLI can dump them to a
// node_exporter textfile without serving HTTP.
type Metrics struct {
	Registry *prometheus.Registry

	// SourceAttempts counts adapter calls, labeled by source and outcome.
	SourceAttempts *prometheus.CounterVec

	// SourceDuration observes adapter call duration in seconds, labeled by source.
	SourceDuration *prometheus.HistogramVec

	// Resolutions counts runs, labeled by outcome (succeeded, malformed, exhausted).
	Resolutions *prometheus.CounterVec

	// IDLookups counts ID converter lookups, labeled by which IDs came back.
	IDLookups *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		SourceAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Adapter calls by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Adapter call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolution runs by outcome.",
		}, []string{"outcome"}),
		IDLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idconv_lookups_total",
			Help:      "ID converter lookups by result (pmid, pmcid_only, none).",
		}, []string{"result"}),
	}
}

// ObserveAttempt records one adapter call. Safe on a nil receiver.
func (m *Metrics) ObserveAttempt(source, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SourceAttempts.WithLabelValues(source, outcome).Inc()
	m.SourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveResolution records the end state of a run. Safe on a nil receiver.
func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// ObserveIDs records what the ID converter returned. Safe on a nil receiver.
func (m *Metrics) ObserveIDs(pmid, pmcid string) {
	if m == nil {
		return
	}
	switch {
	case pmid != "":
		m.IDLookups.WithLabelValues("pmid").Inc()
	case pmcid != "":
		m.IDLookups.WithLabelValues("pmcid_only").Inc()
	default:
		m.IDLookups.WithLabelValues("none").Inc()
	}
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
