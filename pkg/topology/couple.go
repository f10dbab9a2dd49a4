package topology

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// Couple is a set of groups holding the same data across different
// datacenters. Its id is the sorted, colon-joined concatenation of its
// member group ids, e.g. "1:2:3".
type Couple struct {
	mu sync.RWMutex

	groups []*Group

	namespace string
	frozen    bool

	status    Status
	statusMsg string
}

// NewCouple builds a couple from groups, sorted by id, and sets each
// group's back-reference.
func NewCouple(groups []*Group, namespace string) *Couple {
	sorted := make([]*Group, len(groups))
	copy(sorted, groups)
	idsSort(sorted)

	c := &Couple{
		groups:    sorted,
		namespace: namespace,
		status:    StatusInit,
		statusMsg: "couple not yet initialized",
	}
	for _, g := range sorted {
		g.setCouple(c)
	}
	return c
}

func idsSort(groups []*Group) {
	for i := 1; i < len(groups); i++ {
		j := i
		for j > 0 && groups[j-1].ID > groups[j].ID {
			groups[j-1], groups[j] = groups[j], groups[j-1]
			j--
		}
	}
}

// ID returns the couple's colon-joined id string, e.g. "1:2:3".
func (c *Couple) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idLocked()
}

func (c *Couple) idLocked() string {
	parts := make([]string, len(c.groups))
	for i, g := range c.groups {
		parts[i] = strconv.Itoa(g.ID)
	}
	return strings.Join(parts, ":")
}

func (c *Couple) String() string { return c.ID() }

// CoupleKey returns the colon-joined, sorted couple id for ids — the
// same format Couple.ID produces — so callers can look a couple up in
// the repository before constructing one.
func CoupleKey(ids []int) string {
	sorted := append([]int(nil), ids...)
	sortInts(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ":")
}

// Groups returns the member groups, sorted by id.
func (c *Couple) Groups() []*Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Group, len(c.groups))
	copy(out, c.groups)
	return out
}

// AsTuple returns the member group ids, sorted ascending.
func (c *Couple) AsTuple() []int {
	return SortedGroupIDs(c.Groups())
}

// Namespace returns the couple's namespace.
func (c *Couple) Namespace() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.namespace
}

// Frozen reports whether the couple has been frozen.
func (c *Couple) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// SetFrozen sets the frozen flag (FreezeCouple / UnfreezeCouple).
func (c *Couple) SetFrozen(frozen bool) {
	c.mu.Lock()
	c.frozen = frozen
	c.mu.Unlock()
}

// AggregateStat bottlenecks (Mul) the per-group aggregate stats: a
// couple can only move data as fast as its slowest group.
func (c *Couple) AggregateStat() *NodeStat {
	groups := c.Groups()
	stats := make([]*NodeStat, 0, len(groups))
	for _, g := range groups {
		if s := g.AggregateStat(); s != nil {
			stats = append(stats, s)
		}
	}
	return ProductStats(stats)
}

// CheckGroups verifies that every member group's meta agrees on this
// couple's exact member set, per spec.md §4.4.
func (c *Couple) CheckGroups() bool {
	groups := c.Groups()
	want := SortedGroupIDs(groups)
	for _, g := range groups {
		meta := g.Meta()
		if meta == nil {
			return false
		}
		got := append([]int(nil), meta.Couple...)
		if !intsEqualSorted(got, want) {
			return false
		}
	}
	return true
}

func intsEqualSorted(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sortInts(a)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		j := i
		for j > 0 && a[j-1] > a[j] {
			a[j-1], a[j] = a[j], a[j-1]
			j--
		}
	}
}

// Status returns the last computed status.
func (c *Couple) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// StatusMessage explains the last computed status.
func (c *Couple) StatusMessage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusMsg
}

// UpdateStatus is the couple status chain from spec.md §4.4: refresh
// every member group, BAD if they disagree on meta, OK (or FROZEN) if
// every member is COUPLED, else aggregate INIT > BAD > RO, defaulting
// to BAD (the "can't happen" fallthrough preserved per spec.md §9).
func (c *Couple) UpdateStatus(now time.Time) Status {
	c.mu.Lock()
	groups := make([]*Group, len(c.groups))
	copy(groups, c.groups)
	frozen := c.frozen
	c.mu.Unlock()

	for _, g := range groups {
		g.UpdateStatus(now)
	}

	set := func(s Status, msg string) Status {
		c.mu.Lock()
		c.status = s
		c.statusMsg = msg
		c.mu.Unlock()
		return s
	}

	if !c.CheckGroups() {
		return set(StatusBad, "groups disagree on couple membership")
	}

	allCoupled := true
	for _, g := range groups {
		if g.Status() != StatusCoupled {
			allCoupled = false
			break
		}
	}
	if allCoupled {
		if frozen {
			return set(StatusFrozen, "couple is frozen")
		}
		return set(StatusOK, "couple is OK")
	}

	for _, g := range groups {
		if g.Status() == StatusInit {
			return set(StatusInit, fmt.Sprintf("group %s is not yet initialized", g))
		}
	}

	for _, g := range groups {
		if g.Status() == StatusBad {
			return set(StatusBad, fmt.Sprintf("group %s is bad", g))
		}
	}

	for _, g := range groups {
		if g.Status() == StatusRO {
			return set(StatusRO, fmt.Sprintf("group %s is read-only", g))
		}
	}

	return set(StatusBad, "unreachable group status combination")
}

// Closed reports whether the couple has crossed the configured
// free-space thresholds and should stop receiving new data.
func (c *Couple) Closed(minFreeSpace uint64, minFreeSpaceRel float64) bool {
	stat := c.AggregateStat()
	if stat == nil {
		return true
	}
	return stat.FreeSpace < float64(minFreeSpace) || stat.RelSpace < minFreeSpaceRel
}

// ComposeMeta builds the v2 symmetric-groups meta blob shared by every
// member group.
func (c *Couple) ComposeMeta() ([]byte, error) {
	return wire.ComposeGroupMeta(c.AsTuple(), c.Namespace())
}

// Destroy unlinks every member group from the couple.
func (c *Couple) Destroy() {
	for _, g := range c.Groups() {
		g.setCouple(nil)
	}
}
