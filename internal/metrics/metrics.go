// Package metrics exposes Prometheus counters and histograms for the
// cron, workflow, and heartbeat services, plus the HTTP handler that
// serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry wraps the collectors this module exposes. A nil *Registry is
// safe to call methods on — every method is a no-op, so wiring metrics
// is optional.
type Registry struct {
	workflowRuns       *prometheus.CounterVec
	workflowDuration   *prometheus.HistogramVec
	cronJobRuns        *prometheus.CounterVec
	heartbeatTicks     *prometheus.CounterVec
	shellCommandChecks *prometheus.CounterVec
}

// New registers all collectors against reg and returns the Registry.
func New(reg *prometheus.Registry) *Registry {
	m := &Registry{
		workflowRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grip",
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total workflow runs by final status.",
		}, []string{"status"}),
		workflowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grip",
			Subsystem: "workflow",
			Name:      "run_duration_seconds",
			Help:      "Workflow run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		cronJobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grip",
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Total cron job executions by result.",
		}, []string{"result"}),
		heartbeatTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grip",
			Subsystem: "heartbeat",
			Name:      "ticks_total",
			Help:      "Total heartbeat ticks by outcome.",
		}, []string{"outcome"}),
		shellCommandChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grip",
			Subsystem: "shellsafety",
			Name:      "checks_total",
			Help:      "Total shell command safety checks by verdict.",
		}, []string{"verdict"}),
	}
	reg.MustRegister(m.workflowRuns, m.workflowDuration, m.cronJobRuns, m.heartbeatTicks, m.shellCommandChecks)
	return m
}

// Handler returns an http.Handler serving reg in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveWorkflowRun implements workflow.Recorder.
func (m *Registry) ObserveWorkflowRun(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.workflowRuns.WithLabelValues(status).Inc()
	m.workflowDuration.WithLabelValues(status).Observe(durationSeconds)
}

// ObserveCronJobRun records a completed cron job execution.
func (m *Registry) ObserveCronJobRun(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.cronJobRuns.WithLabelValues(result).Inc()
}

// ObserveHeartbeatTick records a heartbeat tick outcome: "skipped",
// "ok", or "error".
func (m *Registry) ObserveHeartbeatTick(outcome string) {
	if m == nil {
		return
	}
	m.heartbeatTicks.WithLabelValues(outcome).Inc()
}

// ObserveShellCommandCheck records a shell-safety verdict: "allowed" or "blocked".
func (m *Registry) ObserveShellCommandCheck(blocked bool) {
	if m == nil {
		return
	}
	verdict := "allowed"
	if blocked {
		verdict = "blocked"
	}
	m.shellCommandChecks.WithLabelValues(verdict).Inc()
}
