// Package stats ingests raw per-node statistics rows into a
// topology.State, creating hosts/groups/nodes on first sight and
// rejecting rows whose group id disagrees with a node's prior
// assignment (ported from original_source/storage.py's module-level
// update_statistics).
package stats

import (
	"fmt"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// Row is one raw counter reading tagged with the address and group it
// was reported against.
type Row struct {
	HostAddr string
	Port     int
	GroupID  int
	Raw      topology.RawStat
}

// ErrGroupMismatch is returned when a row reports a group id that
// disagrees with the group a known node already belongs to.
type ErrGroupMismatch struct {
	Addr          string
	ExpectedGroup int
	GotGroup      int
}

func (e *ErrGroupMismatch) Error() string {
	return fmt.Sprintf("stats: node %s reported group %d, expected %d", e.Addr, e.GotGroup, e.ExpectedGroup)
}

// Ingest applies rows to state: idempotently creating the host, group
// and node for each row's address, then recording its statistics and
// recomputing the owning group's status (spec.md §4.6: "call
// node.update_statistics(row) then group.update_status()" — the node's
// own status is derived as part of that group evaluation, not ahead of
// it, so a freshly-bootstrapped group with no meta yet stays INIT
// rather than jumping its node straight to OK). A row whose group id
// disagrees with an already-known node is skipped and its mismatch
// collected rather than aborting the whole batch, so one bad report
// doesn't block updates for the rest of the fleet.
func Ingest(state *topology.State, rows []Row, now time.Time) []error {
	var errs []error

	for _, row := range rows {
		host := state.Host(row.HostAddr)
		addr := fmt.Sprintf("%s:%d", row.HostAddr, row.Port)

		if existing, ok := state.Nodes.Get(addr); ok {
			if g := existing.Group(); g != nil && g.ID != row.GroupID {
				errs = append(errs, &ErrGroupMismatch{Addr: addr, ExpectedGroup: g.ID, GotGroup: row.GroupID})
				continue
			}
			existing.UpdateStatistics(row.Raw, now)
			if g := existing.Group(); g != nil {
				g.UpdateStatus(now)
			}
			continue
		}

		group := state.Group(row.GroupID)
		node := state.Node(host, row.Port, group)
		node.UpdateStatistics(row.Raw, now)
		group.UpdateStatus(now)
	}

	return errs
}
