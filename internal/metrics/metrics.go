// Package metrics exports the tallies of reconciliation runs as Prometheus
// metrics. Batch runs write them to a node_exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/candimap/pkg/errors"
	"github.com/agentstation/candimap/pkg/reconciler"
)

const namespace = "candimap"

// Metrics holds the collectors for reconciliation runs.
type Metrics struct {
	registry *prometheus.Registry

	// Record flow
	InputRecords     prometheus.Counter
	RejectedRecords  *prometheus.CounterVec // reason
	SplitNames       prometheus.Counter
	SplitsSkipped    prometheus.Counter
	DuplicateRecords *prometheus.CounterVec // strategy
	MergeDecisions   *prometheus.CounterVec // rule

	// Last run
	Survivors      prometheus.Gauge
	ConfigWarnings prometheus.Gauge
	LastRun        prometheus.Gauge

	RunDuration prometheus.Histogram
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		InputRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_records_total",
			Help:      "Raw records handed to the pipeline",
		}),
		RejectedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_records_total",
			Help:      "Records dropped by the name validator by reason code",
		}, []string{"reason"}),
		SplitNames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_names_total",
			Help:      "Names separated from a concatenated reading",
		}),
		SplitsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_skipped_total",
			Help:      "Concatenated names kept whole because the split name failed validation",
		}),
		DuplicateRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_records_total",
			Help:      "Records discarded as duplicates by detecting strategy",
		}, []string{"strategy"}),
		MergeDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_decisions_total",
			Help:      "Discarded records by the selection rule that decided their group",
		}, []string{"rule"}),

		Survivors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "survivors",
			Help:      "Records in the canonical dataset of the last run",
		}),
		ConfigWarnings: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "config_warnings",
			Help:      "Configuration warnings raised by the rule set of the last run",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full reconciliation run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one reconciliation result. Merge decisions are only
// available when the run kept its audit trail.
func (m *Metrics) Observe(res *reconciler.Result) {
	if m == nil || res == nil {
		return
	}
	s := res.Metadata.Stats

	m.InputRecords.Add(float64(s.Input))
	for reason, n := range s.RejectedByReason {
		m.RejectedRecords.WithLabelValues(reason.String()).Add(float64(n))
	}
	m.SplitNames.Add(float64(s.Split))
	m.SplitsSkipped.Add(float64(s.SplitsSkipped))
	for strategy, n := range s.RemovedByStrategy {
		m.DuplicateRecords.WithLabelValues(strategy.String()).Add(float64(n))
	}
	for rule, n := range res.Report().MergeRules {
		m.MergeDecisions.WithLabelValues(rule).Add(float64(n))
	}

	m.Survivors.Set(float64(s.Survivors))
	m.ConfigWarnings.Set(float64(len(res.Warnings)))
	m.LastRun.Set(float64(res.Metadata.EndTime.Unix()))
	m.RunDuration.Observe(res.Metadata.Duration.Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
