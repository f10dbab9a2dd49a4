package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cluster metrics
	GroupsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mastermind_groups_total",
			Help: "Total number of groups by status",
		},
		[]string{"status"},
	)

	CouplesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mastermind_couples_total",
			Help: "Total number of couples by status",
		},
		[]string{"status"},
	)

	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mastermind_nodes_total",
			Help: "Total number of storage nodes by status",
		},
		[]string{"status"},
	)

	// Leader election metrics
	RaftLeader = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mastermind_raft_is_leader",
			Help: "Whether this coordinator instance holds the election leadership (1 = leader, 0 = follower)",
		},
	)

	RaftPeers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mastermind_raft_peers_total",
			Help: "Total number of Raft peers in the leader-election cluster",
		},
	)

	// Handler (RPC envelope) metrics
	HandlerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastermind_handler_requests_total",
			Help: "Total number of coordinator handler invocations by name and outcome",
		},
		[]string{"handler", "outcome"},
	)

	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mastermind_handler_duration_seconds",
			Help:    "Handler invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mastermind_reconciliation_duration_seconds",
			Help:    "Time taken for a reconciliation cycle in seconds, by phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	ReconciliationCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastermind_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles completed, by phase and outcome",
		},
		[]string{"phase", "outcome"},
	)

	NodesReachedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastermind_nodes_reached_total",
			Help: "Total number of successful per-node statistics reads",
		},
	)

	NodesTimedOutTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastermind_nodes_timed_out_total",
			Help: "Total number of per-node statistics reads that timed out or errored",
		},
	)

	// Scheduler metrics
	ScheduledTasksTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mastermind_scheduled_tasks_total",
			Help: "Number of tasks currently pending in the timed task queue",
		},
	)

	TasksExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mastermind_tasks_executed_total",
			Help: "Total number of scheduled tasks executed, by outcome",
		},
		[]string{"outcome"},
	)

	// Balancer metrics
	GroupsRepairedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastermind_groups_repaired_total",
			Help: "Total number of groups successfully repaired into a couple",
		},
	)

	CouplesBrokenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mastermind_couples_broken_total",
			Help: "Total number of couples broken via break_couple",
		},
	)
)

func init() {
	prometheus.MustRegister(GroupsTotal)
	prometheus.MustRegister(CouplesTotal)
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(RaftLeader)
	prometheus.MustRegister(RaftPeers)
	prometheus.MustRegister(HandlerRequestsTotal)
	prometheus.MustRegister(HandlerDuration)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(NodesReachedTotal)
	prometheus.MustRegister(NodesTimedOutTotal)
	prometheus.MustRegister(ScheduledTasksTotal)
	prometheus.MustRegister(TasksExecutedTotal)
	prometheus.MustRegister(GroupsRepairedTotal)
	prometheus.MustRegister(CouplesBrokenTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
