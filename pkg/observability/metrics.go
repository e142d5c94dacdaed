package observability

import (
	"context"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by build hooks.
type Metrics struct {
	Entities      *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	Builds        *prometheus.CounterVec
	BuildDuration prometheus.Histogram
	Sources       prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchtree_entities_visited_total",
				Help: "Total number of launch entities visited by the builder.",
			},
			[]string{"family", "behavior"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchtree_entity_failures_total",
				Help: "Total number of entities whose subtree was dropped after an error.",
			},
			[]string{"family"},
		),
		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchtree_builds_total",
				Help: "Total number of finished builds.",
			},
			[]string{"outcome"},
		),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "launchtree_build_duration_seconds",
			Help:    "Duration of tree builds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		Sources: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "launchtree_build_sources",
			Help:    "Number of launch fragments read per build.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Entities, m.Failures, m.Builds, m.BuildDuration, m.Sources)
	}
	return m
}

// Hooks returns the build hooks that record into m.
func (m *Metrics) Hooks() domain.BuildHooks {
	return domain.BuildHooks{
		OnEntityEnter: func(_ context.Context, e *domain.EntityEvent) {
			m.Entities.WithLabelValues(familyLabel(e.Family), e.Behavior.String()).Inc()
		},
		OnEntityFailed: func(_ context.Context, e *domain.EntityEvent) {
			m.Failures.WithLabelValues(familyLabel(e.Family)).Inc()
		},
		OnBuildDone: func(_ context.Context, e *domain.BuildEvent) {
			outcome := "complete"
			switch {
			case e.Interrupted:
				outcome = "interrupted"
			case e.Failed > 0:
				outcome = "partial"
			}
			m.Builds.WithLabelValues(outcome).Inc()
			m.BuildDuration.Observe(e.Duration.Seconds())
			m.Sources.Observe(float64(e.Sources))
		},
	}
}

// familyLabel folds unrecognized families into one label value to bound cardinality.
func familyLabel(f domain.Family) string {
	if len(f) > 8 && f[:8] == "Unknown:" {
		return "Unknown"
	}
	return string(f)
}
