package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tour counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	viewChanges        *prometheus.CounterVec
	stepsAdded         *prometheus.CounterVec
	stepsDeleted       prometheus.Counter
	stepsReordered     prometheus.Counter
	validationFailures *prometheus.CounterVec
	commits            prometheus.Counter
}

// NewMetrics creates and registers the collectors, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		viewChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_view_changes_total",
			Help: "Committed view transitions.",
		}, []string{"from", "to"}),
		stepsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_steps_added_total",
			Help: "Steps created through the editor.",
		}, []string{"category"}),
		stepsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_steps_deleted_total",
			Help: "Steps removed from a tour.",
		}),
		stepsReordered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_steps_reordered_total",
			Help: "Reorder operations that moved a step.",
		}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_validation_failures_total",
			Help: "Rejected submissions, by missing field.",
		}, []string{"field"}),
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waypoint_state_commits_total",
			Help: "Committed state revisions across all sessions.",
		}),
	}
	m.registry.MustRegister(
		m.viewChanges,
		m.stepsAdded,
		m.stepsDeleted,
		m.stepsReordered,
		m.validationFailures,
		m.commits,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry, e.g. to add transport collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnViewChange: func(_ context.Context, e *domain.ViewEvent) {
			m.viewChanges.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnStepAdded: func(_ context.Context, e *domain.StepEvent) {
			m.stepsAdded.WithLabelValues(string(e.Step.Category)).Inc()
		},
		OnStepDeleted: func(context.Context, *domain.StepEvent) {
			m.stepsDeleted.Inc()
		},
		OnStepsReordered: func(context.Context, *domain.StepEvent) {
			m.stepsReordered.Inc()
		},
		OnValidationFailed: func(_ context.Context, e *domain.ValidationEvent) {
			for _, f := range e.Fields {
				m.validationFailures.WithLabelValues(f).Inc()
			}
		},
		OnChange: func(context.Context, *domain.Snapshot) {
			m.commits.Inc()
		},
	}
}
