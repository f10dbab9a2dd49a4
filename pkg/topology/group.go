package topology

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// Group is a single storage group: a set of nodes holding identical
// data, plus the symmetric-groups meta that ties it to its couple.
type Group struct {
	mu sync.RWMutex

	ID int

	nodes []*Node

	meta    *wire.GroupMeta
	metaRaw []byte

	couple *Couple

	status    Status
	statusMsg string

	history []DetachEvent
}

// DetachEvent records one group_detach_node call, for get_group_history.
type DetachEvent struct {
	At   time.Time
	Addr string
}

const maxHistoryEvents = 64

// NewGroup constructs an empty group. Nodes are attached via NewNode.
func NewGroup(id int) *Group {
	return &Group{ID: id, status: StatusInit, statusMsg: "group not yet initialized"}
}

func (g *Group) String() string { return fmt.Sprintf("%d", g.ID) }

func (g *Group) addNode(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, n)
}

func (g *Group) removeNode(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, x := range g.nodes {
		if x == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the nodes currently in the group.
func (g *Group) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// HasNode reports whether addr belongs to this group.
func (g *Group) HasNode(addr string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, n := range g.nodes {
		if a, err := n.Addr(); err == nil && a == addr {
			return true
		}
	}
	return false
}

// DetachNode removes a node by address, recording a history event.
// Returns false if no such node was present.
func (g *Group) DetachNode(addr string, now time.Time) bool {
	g.mu.Lock()
	var found *Node
	for _, n := range g.nodes {
		if a, err := n.Addr(); err == nil && a == addr {
			found = n
			break
		}
	}
	if found == nil {
		g.mu.Unlock()
		return false
	}
	g.history = append(g.history, DetachEvent{At: now, Addr: addr})
	if len(g.history) > maxHistoryEvents {
		g.history = g.history[len(g.history)-maxHistoryEvents:]
	}
	g.mu.Unlock()

	found.Destroy()
	return true
}

// History returns the recorded detach events, oldest first.
func (g *Group) History() []DetachEvent {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]DetachEvent, len(g.history))
	copy(out, g.history)
	return out
}

// Meta returns the parsed symmetric-groups meta, or nil if none has
// been read yet.
func (g *Group) Meta() *wire.GroupMeta {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.meta
}

// ParseMeta decodes and stores blob as this group's meta.
func (g *Group) ParseMeta(blob []byte) error {
	meta, err := wire.ParseGroupMeta(blob)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.meta = meta
	g.metaRaw = blob
	g.mu.Unlock()
	return nil
}

// ClearMeta discards a previously parsed meta, e.g. after a failed or
// timed-out read from the storage fleet.
func (g *Group) ClearMeta() {
	g.mu.Lock()
	g.meta = nil
	g.metaRaw = nil
	g.mu.Unlock()
}

// Couple returns the couple this group currently belongs to, if any.
func (g *Group) Couple() *Couple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.couple
}

func (g *Group) setCouple(c *Couple) {
	g.mu.Lock()
	g.couple = c
	g.mu.Unlock()
}

// AggregateStat sums (Add) the stats of every node in the group: the
// group's space and throughput are the totals over its nodes.
func (g *Group) AggregateStat() *NodeStat {
	nodes := g.Nodes()
	stats := make([]*NodeStat, 0, len(nodes))
	for _, n := range nodes {
		if s := n.Stat(); s != nil {
			stats = append(stats, s)
		}
	}
	return SumStats(stats)
}

// Status returns the last computed status.
func (g *Group) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

// StatusMessage explains the last computed status.
func (g *Group) StatusMessage() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.statusMsg
}

// UpdateStatus is the ordered, first-match-wins group status chain
// from spec.md §4.3:
//  1. no nodes                                   → INIT
//  2. no meta, or meta.couple empty              → INIT
//  3. any node RO                                → RO
//  4. not every node OK                           → BAD
//  5. couple back-reference missing              → BAD
//  6. couple.check_groups(meta.couple) fails     → BAD
//  7. empty namespace                            → BAD
//  8. namespace disagrees with couple's namespace → BAD
//  9. otherwise                                  → COUPLED
func (g *Group) UpdateStatus(now time.Time) Status {
	g.mu.Lock()
	nodes := make([]*Node, len(g.nodes))
	copy(nodes, g.nodes)
	meta := g.meta
	couple := g.couple
	g.mu.Unlock()

	set := func(s Status, msg string) Status {
		g.mu.Lock()
		g.status = s
		g.statusMsg = msg
		g.mu.Unlock()
		return s
	}

	if len(nodes) == 0 {
		return set(StatusInit, "group has no nodes")
	}

	if meta == nil || len(meta.Couple) == 0 {
		return set(StatusInit, "no symmetric-groups meta")
	}

	nodeStatuses := make([]Status, len(nodes))
	for i, n := range nodes {
		nodeStatuses[i] = n.UpdateStatus(now)
	}

	for i, s := range nodeStatuses {
		if s == StatusRO {
			return set(StatusRO, fmt.Sprintf("node %s is read-only", nodes[i]))
		}
	}

	for i, s := range nodeStatuses {
		if s != StatusOK {
			return set(StatusBad, fmt.Sprintf("node %s is %s", nodes[i], s))
		}
	}

	if couple == nil {
		return set(StatusBad, "couple back-reference missing")
	}

	if !couple.CheckGroups() {
		return set(StatusBad, "couple members disagree on meta")
	}

	if meta.Namespace == "" {
		return set(StatusBad, "empty namespace")
	}

	if meta.Namespace != couple.Namespace() {
		return set(StatusBad, fmt.Sprintf("namespace %q disagrees with couple namespace %q", meta.Namespace, couple.Namespace()))
	}

	return set(StatusCoupled, "group is coupled")
}

// SortedGroupIDs returns ids sorted ascending, used for couple id
// construction.
func SortedGroupIDs(groups []*Group) []int {
	ids := make([]int, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	sort.Ints(ids)
	return ids
}
