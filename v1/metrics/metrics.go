package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// OperationCounter tracks the number of guarded operations started.
	OperationCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finalguard_operations_total",
		Help: "Total number of guarded operations started",
	})
	// CleanupCounter tracks the number of cleanup tasks run to completion.
	CleanupCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finalguard_cleanups_total",
		Help: "Total number of cleanup tasks run to completion",
	})
	// ReaperTaskCounter tracks the number of tasks handed to the reaper.
	ReaperTaskCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finalguard_reaper_tasks_total",
		Help: "Total number of cleanup tasks submitted to the reaper",
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterGuardMetrics registers finalguard metrics on the provided registry.
func RegisterGuardMetrics(reg prometheus.Registerer) {
	reg.MustRegister(OperationCounter, CleanupCounter, ReaperTaskCounter)
}
