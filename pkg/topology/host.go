package topology

import "sync"

// Host is a physical machine identified by its network address. Its
// datacenter is resolved on demand by an inventory adapter, not stored
// here.
type Host struct {
	Addr string

	mu    sync.RWMutex
	nodes []*Node
}

// NewHost constructs a Host. Exported so Repository.Add can be used
// directly: hosts.Add(addr, topology.NewHost(addr)).
func NewHost(addr string) *Host {
	return &Host{Addr: addr}
}

func (h *Host) String() string { return h.Addr }

func (h *Host) addNode(n *Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes = append(h.nodes, n)
}

func (h *Host) removeNode(n *Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, x := range h.nodes {
		if x == n {
			h.nodes = append(h.nodes[:i], h.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the nodes currently hosted here.
func (h *Host) Nodes() []*Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Node, len(h.nodes))
	copy(out, h.nodes)
	return out
}
