package balancer

import (
	"fmt"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// GroupDetachNode removes addr from group's node list and refreshes the
// group's and its couple's derived status (spec.md §4.7
// "group_detach_node"). The detached node is destroyed, which unlinks
// it from its host as well, but it stays in state.Nodes.
func GroupDetachNode(state *topology.State, groupID int, addr string, now time.Time) error {
	g, ok := state.Groups.Get(groupID)
	if !ok {
		return fmt.Errorf("group %d not found", groupID)
	}
	if !g.DetachNode(addr, now) {
		return fmt.Errorf("node %s not found in group %d", addr, groupID)
	}
	g.UpdateStatus(now)
	if c := g.Couple(); c != nil {
		c.UpdateStatus(now)
	}
	return nil
}
