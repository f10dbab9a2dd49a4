/*
Package metrics exposes the coordinator's Prometheus instrumentation
and health/readiness endpoints.

# Layout

	┌──────────────────── METRICS ──────────────────────┐
	│                                                      │
	│  Cluster state gauges                               │
	│    groups/couples/nodes total, by status            │
	│  Leader election gauges                             │
	│    raft_is_leader, raft_peers_total                 │
	│  Handler (RPC envelope) metrics                      │
	│    requests_total{handler,outcome}, duration         │
	│  Reconciler metrics                                  │
	│    reconciliation_duration{phase}, cycles_total,     │
	│    nodes_reached_total, nodes_timed_out_total        │
	│  Scheduler metrics                                   │
	│    scheduled_tasks_total, tasks_executed_total       │
	│  Balancer metrics                                    │
	│    groups_repaired_total, couples_broken_total       │
	│                     │                                │
	│              Collector (periodic snapshot)           │
	│    walks topology.State and sets the gauges above    │
	│                     │                                │
	│              promhttp.Handler (/metrics)             │
	└──────────────────────────────────────────────────────┘

Health checks are kept separate from metrics: RegisterComponent /
UpdateComponent track named subsystems (reconciler, leader election,
storage session) and feed the /healthz, /readyz and /livez handlers,
independent of whatever a given subsystem reports to Prometheus.
*/
package metrics
