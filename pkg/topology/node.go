package topology

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// StalledAfter is the age beyond which a node's last reported stat is
// considered too old to trust (spec.md §4.2).
const StalledAfter = 120 * time.Second

// ErrNodeDestroyed is returned by Addr for a destroyed node.
var ErrNodeDestroyed = errors.New("topology: node is destroyed")

// Node is a single storage daemon instance, identified by host:port.
type Node struct {
	mu sync.RWMutex

	host  *Host
	port  int
	group *Group

	stat      *NodeStat
	status    Status
	statusMsg string
	readOnly  bool
	destroyed bool
}

// NewNode attaches a new node to host and group, registering the
// back-references on both.
func NewNode(host *Host, port int, group *Group) *Node {
	n := &Node{
		host:      host,
		port:      port,
		group:     group,
		status:    StatusInit,
		statusMsg: "node not yet initialized",
	}
	host.addNode(n)
	group.addNode(n)
	return n
}

// Addr returns "host:port", or an error if the node has been
// destroyed — a destroyed node has no meaningful address.
func (n *Node) Addr() (string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.destroyed {
		return "", ErrNodeDestroyed
	}
	return fmt.Sprintf("%s:%d", n.host.Addr, n.port), nil
}

// String never panics (loggers call it freely); it returns a sentinel
// for a destroyed node instead of the original's raising behavior.
func (n *Node) String() string {
	addr, err := n.Addr()
	if err != nil {
		return "<destroyed>"
	}
	return addr
}

// Host returns the owning host, or nil if destroyed.
func (n *Node) Host() *Host {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.host
}

// Group returns the owning group, or nil if destroyed.
func (n *Node) Group() *Group {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.group
}

// Stat returns the current statistics snapshot, or nil if none has
// been recorded yet.
func (n *Node) Stat() *NodeStat {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stat
}

// Status returns the last computed status.
func (n *Node) Status() Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

// SetReadOnly flags the node read-only (or clears the flag).
func (n *Node) SetReadOnly(ro bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.readOnly = ro
}

// ReadOnly reports the read-only flag.
func (n *Node) ReadOnly() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.readOnly
}

// Destroyed reports whether Destroy has been called.
func (n *Node) Destroyed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.destroyed
}

// Destroy unlinks the node from its host and group, retaining the
// destroyed flag.
func (n *Node) Destroy() {
	n.mu.Lock()
	host, group := n.host, n.group
	n.destroyed = true
	n.host = nil
	n.group = nil
	n.mu.Unlock()

	if host != nil {
		host.removeNode(n)
	}
	if group != nil {
		group.removeNode(n)
	}
}

// UpdateStatistics derives a new NodeStat from raw, using the node's
// current stat (if any) as the rps baseline, and replaces it.
func (n *Node) UpdateStatistics(raw RawStat, now time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stat = NewNodeStat(raw, n.stat, now)
}

// UpdateStatus is the node status state function (spec.md §4.2):
// destroyed → BAD; no stat yet → INIT; stat older than StalledAfter →
// STALLED; read_only → RO; otherwise OK.
func (n *Node) UpdateStatus(now time.Time) Status {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.destroyed:
		n.status = StatusBad
		n.statusMsg = "node is destroyed"
	case n.stat == nil:
		n.status = StatusInit
		n.statusMsg = "no statistics gathered yet"
	case n.stat.TS.Before(now.Add(-StalledAfter)):
		n.status = StatusStalled
		n.statusMsg = fmt.Sprintf("statistics are %s old", now.Sub(n.stat.TS))
	case n.readOnly:
		n.status = StatusRO
		n.statusMsg = "node is in read-only state"
	default:
		n.status = StatusOK
		n.statusMsg = "node is OK"
	}
	return n.status
}

// Info is the handler-facing summary of a node.
type Info struct {
	Addr   string
	Status Status
}

func (n *Node) Info() Info {
	addr, _ := n.Addr()
	return Info{Addr: addr, Status: n.Status()}
}
