// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ExpressionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eligibility_expression_failures_total",
			Help: "Evaluations of conditions that could not be fully parsed",
		},
	)

	NavigationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_navigation_transitions_total",
			Help: "Interview transitions by outcome",
		},
		[]string{"outcome"},
	)

	RulesFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_rules_fired_total",
			Help: "Fired eligibility rules by category",
		},
		[]string{"category"},
	)

	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_catalog_loads_total",
			Help: "Questionnaire loads by source and result",
		},
		[]string{"source", "result"},
	)
)

// RecordExpressionFailure matches expression.FailureHook.
func RecordExpressionFailure(_ string, _ error) {
	ExpressionFailures.Inc()
}

// RecordTransition matches navigator.TransitionHook.
func RecordTransition(outcome string) {
	NavigationTransitions.WithLabelValues(outcome).Inc()
}
