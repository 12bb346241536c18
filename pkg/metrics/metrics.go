// Package metrics collects Prometheus metrics for coverage runs.
//
// The CLI is short-lived, so metrics are written to a node_exporter textfile after each
// command rather than served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jakechorley/staff-cover/pkg/core/coverage"
)

// Outcome label values besides the absence statuses
const (
	OutcomeNotSchoolDay = "not_school_day"
	OutcomeError        = "error"
)

// Collector holds the coverage metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	runs                *prometheus.CounterVec
	periods             *prometheus.CounterVec
	assignments         *prometheus.CounterVec
	skipped             *prometheus.CounterVec
	collapsed           prometheus.Counter
	approvals           prometheus.Counter
	runDuration         prometheus.Histogram
	candidatesEvaluated prometheus.Histogram
}

// NewCollector creates a collector with every metric registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffcover_runs_total",
			Help: "Coverage runs by outcome",
		}, []string{"outcome"}),
		periods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffcover_periods_total",
			Help: "Requested periods by result",
		}, []string{"result"}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffcover_assignments_total",
			Help: "Periods assigned by assignee role",
		}, []string{"role"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "staffcover_candidates_skipped_total",
			Help: "Malformed candidate records skipped by role",
		}, []string{"role"}),
		collapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staffcover_collapsed_total",
			Help: "Runs collapsed to a single substitute record",
		}),
		approvals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "staffcover_approvals_required_total",
			Help: "Assigned periods flagged for manual approval",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "staffcover_run_duration_seconds",
			Help:    "Coverage run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		candidatesEvaluated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "staffcover_candidates_evaluated",
			Help:    "Candidates scored per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	c.registry.MustRegister(
		c.runs,
		c.periods,
		c.assignments,
		c.skipped,
		c.collapsed,
		c.approvals,
		c.runDuration,
		c.candidatesEvaluated,
	)

	return c
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records a completed run
func (c *Collector) RecordRun(outcome *coverage.Outcome, duration time.Duration) {
	c.runDuration.Observe(duration.Seconds())

	if outcome.NotSchoolDay {
		c.runs.WithLabelValues(OutcomeNotSchoolDay).Inc()
		return
	}

	c.runs.WithLabelValues(string(outcome.Status)).Inc()
	c.candidatesEvaluated.Observe(float64(outcome.CandidatesEvaluated))
	if outcome.Collapsed {
		c.collapsed.Inc()
	}

	for _, r := range outcome.Results {
		if !r.IsAssigned() {
			c.periods.WithLabelValues("uncovered").Inc()
			continue
		}
		c.periods.WithLabelValues("assigned").Inc()
		c.assignments.WithLabelValues(string(r.AssignedRole)).Inc()
		if r.RequiresApproval {
			c.approvals.Inc()
		}
	}

	for _, tier := range outcome.Tiers {
		if tier.Skipped > 0 {
			c.skipped.WithLabelValues(string(tier.Role)).Add(float64(tier.Skipped))
		}
	}
}

// RecordError records a run that failed before producing an outcome
func (c *Collector) RecordError(duration time.Duration) {
	c.runDuration.Observe(duration.Seconds())
	c.runs.WithLabelValues(OutcomeError).Inc()
}

// WriteTextfile writes every metric in the Prometheus text format for the node_exporter
// textfile collector
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
