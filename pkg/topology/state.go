package topology

import (
	"fmt"
	"time"
)

// State is the coordinator's entire in-memory view of the cluster: the
// four repositories of hosts, nodes, groups and couples. It has no
// owner other than whatever constructs it — tests build a fresh State
// per case, the coordinator builds exactly one for the process
// lifetime (spec.md §9, "Global mutable repositories").
type State struct {
	Hosts   *Repository[string, *Host]
	Nodes   *Repository[string, *Node]
	Groups  *Repository[int, *Group]
	Couples *Repository[string, *Couple]
}

// NewState constructs an empty State.
func NewState() *State {
	return &State{
		Hosts:   NewRepository[string, *Host](),
		Nodes:   NewRepository[string, *Node](),
		Groups:  NewRepository[int, *Group](),
		Couples: NewRepository[string, *Couple](),
	}
}

// Host returns the host at addr, creating it if absent.
func (s *State) Host(addr string) *Host {
	return s.Hosts.Add(addr, NewHost(addr))
}

// Group returns the group with id, creating it if absent.
func (s *State) Group(id int) *Group {
	return s.Groups.Add(id, NewGroup(id))
}

// Node returns the node at host:port in group, creating and
// registering it if no node is known at that address yet. Idempotent:
// a second call with the same address returns the original node.
func (s *State) Node(host *Host, port int, group *Group) *Node {
	addr := fmt.Sprintf("%s:%d", host.Addr, port)
	if existing, ok := s.Nodes.Get(addr); ok {
		return existing
	}
	n := NewNode(host, port, group)
	return s.Nodes.Add(addr, n)
}

// UpdateStatuses recomputes status for every group then every couple
// in the state, at the given instant. Node status is recomputed as a
// side effect of Group.UpdateStatus.
func (s *State) UpdateStatuses(now time.Time) {
	for _, g := range s.Groups.All() {
		g.UpdateStatus(now)
	}
	for _, c := range s.Couples.All() {
		c.UpdateStatus(now)
	}
}
