/*
Package scheduler implements a timed task queue used to drive periodic
and delayed coordinator work: the full nodes reload (which also
refreshes max_group), the group-meta sweep and the couple-meta sweep
each run as a task rescheduled by id rather than a fixed ticker.

# Architecture

A single worker goroutine drains a container/heap-ordered priority
queue of (dueAt, id, fn) entries, re-arming a time.Timer to the next
due task after each run. AddTaskIn both schedules a new task and
reschedules an existing one under the same id — exactly one task per
id is ever pending. Hurry moves a pending task's due time to now,
letting a caller (e.g. force_nodes_update) collapse the wait on a
task that is about to run anyway rather than scheduling a second,
redundant one.

	AddTaskIn("symm_group_sweep", gap, sweepGroupMeta)
	...
	Hurry("symm_group_sweep") // run now instead of waiting out gap

# See Also

  - pkg/reconciler - schedules its sweeps through this queue
  - original_source/node_info_updater.py - the TimedQueue this is ported from
*/
package scheduler
