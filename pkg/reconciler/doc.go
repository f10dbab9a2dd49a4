/*
Package reconciler keeps the in-memory topology model in sync with
what the storage fleet actually reports, on three independently-timed
loops sharing one scheduler.Scheduler:

	┌──────────────────── RECONCILER ──────────────────────┐
	│                                                         │
	│  load_nodes (every NodesReloadPeriod)                  │
	│    - polls per-node statistics, feeds pkg/stats.Ingest │
	│    - refreshes mastermind:max_group                    │
	│    - reschedules itself, then kicks off:               │
	│                     │                                   │
	│  symm_group_sweep (every SymmGroupReadGap)             │
	│    - discovery-ordered parallel read of each group's   │
	│      symmetric-groups meta                              │
	│    - materializes and queues newly-discovered peers    │
	│    - forms a couple from the first meta naming it       │
	│                     │                                   │
	│  couple_sweep (every CoupleReadGap)                    │
	│    - parallel read of each couple's frozen flag         │
	│                     │                                   │
	│              topology.State.UpdateStatuses              │
	└─────────────────────────────────────────────────────────┘

The reconciler's own mutations of the shared topology.State happen on
the scheduler's single goroutine; the parallel reads above only return
bytes, they never touch the model directly. Operator handlers in
pkg/coordinator mutate the same State from their own goroutines; the
only locking between the two is the per-repository and per-entity
locks in pkg/topology, so a handler can interleave with a sweep.

ForceNodesUpdate lets an operator-facing handler interrupt the normal
period and run load_nodes immediately.
*/
package reconciler
