// Package metrics provides observability for the matching module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the matching module. A nil *Metrics is
// safe to call; all recorders no-op.
type Metrics struct {
	// Assignment outcomes by operation and result
	AssignmentOutcome *prometheus.CounterVec

	// Validation verdicts by result
	ValidationOutcome *prometheus.CounterVec

	// Bulk batch item terminal states
	BulkItems *prometheus.CounterVec

	// Bulk batch sizes
	BulkBatchSize prometheus.Histogram

	// Single assignment end-to-end latency
	AssignLatency prometheus.Histogram

	// Priority cache hits and misses
	PriorityCache *prometheus.CounterVec
}

// New creates a Metrics instance with all matching module metrics registered.
func New() *Metrics {
	return &Metrics{
		AssignmentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_matching_assignments_total",
			Help: "Total assignment attempts by operation and result",
		}, []string{"operation", "result"}), // operation: "single", "bulk", "reassignment", "deactivate"

		ValidationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_matching_validations_total",
			Help: "Total match validations by verdict",
		}, []string{"verdict"}), // verdict: "valid", "rejected", "overridden"

		BulkItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_matching_bulk_items_total",
			Help: "Total bulk batch items by terminal state",
		}, []string{"state"}), // state: "committed", "skipped", "failed"

		BulkBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carebridge_matching_bulk_batch_size",
			Help:    "Number of families per bulk batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),

		AssignLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "carebridge_matching_assign_duration_seconds",
			Help:    "Duration of single assignment including validation and commit",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		PriorityCache: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "carebridge_matching_priority_cache_total",
			Help: "Priority score cache lookups by outcome",
		}, []string{"outcome"}), // outcome: "hit", "miss"
	}
}

// IncrementAssignment records an assignment attempt outcome.
func (m *Metrics) IncrementAssignment(operation, result string) {
	if m != nil {
		m.AssignmentOutcome.WithLabelValues(operation, result).Inc()
	}
}

// IncrementValidation records a validation verdict.
func (m *Metrics) IncrementValidation(verdict string) {
	if m != nil {
		m.ValidationOutcome.WithLabelValues(verdict).Inc()
	}
}

// IncrementBulkItem records a bulk item terminal state.
func (m *Metrics) IncrementBulkItem(state string) {
	if m != nil {
		m.BulkItems.WithLabelValues(state).Inc()
	}
}

// ObserveBulkBatchSize records the family count of a bulk batch.
func (m *Metrics) ObserveBulkBatchSize(size int) {
	if m != nil {
		m.BulkBatchSize.Observe(float64(size))
	}
}

// ObserveAssignLatency records a single assignment duration.
func (m *Metrics) ObserveAssignLatency(d time.Duration) {
	if m != nil {
		m.AssignLatency.Observe(d.Seconds())
	}
}

// IncrementPriorityCache records a priority cache lookup outcome.
func (m *Metrics) IncrementPriorityCache(outcome string) {
	if m != nil {
		m.PriorityCache.WithLabelValues(outcome).Inc()
	}
}
