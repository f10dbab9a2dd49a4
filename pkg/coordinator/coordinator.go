// Package coordinator is the composition root: it wires the topology
// model, the reconciler, the scheduler and the balancer/namespace
// operations into the one handler surface spec.md §6 names, the way
// original_source/balancer.py's Balancer class exposes one method per
// registered event.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/balancer"
	"github.com/mastermind-cluster/mastermind/pkg/events"
	"github.com/mastermind-cluster/mastermind/pkg/inventory"
	"github.com/mastermind-cluster/mastermind/pkg/leader"
	"github.com/mastermind-cluster/mastermind/pkg/namespace"
	"github.com/mastermind-cluster/mastermind/pkg/reconciler"
	"github.com/mastermind-cluster/mastermind/pkg/storage"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// Coordinator wires every package into the handler surface spec.md §6
// names.
type Coordinator struct {
	state           *topology.State
	session         storageclient.Session
	resolver        inventory.Resolver
	reconciler      *reconciler.Reconciler
	namespaces      *namespace.Registry
	thresholds      balancer.Thresholds
	metadataGroupID int
	broker          *events.Broker
	leader          leader.Leader
}

// New builds a Coordinator. metadataGroupID is the group the
// max_group/couple-meta auxiliary keys live in (spec.md §6).
func New(
	state *topology.State,
	session storageclient.Session,
	resolver inventory.Resolver,
	rec *reconciler.Reconciler,
	namespaces *namespace.Registry,
	thresholds balancer.Thresholds,
	metadataGroupID int,
) *Coordinator {
	return &Coordinator{
		state:           state,
		session:         session,
		resolver:        resolver,
		reconciler:      rec,
		namespaces:      namespaces,
		thresholds:      thresholds,
		metadataGroupID: metadataGroupID,
	}
}

// WithEvents attaches an event broker that CoupleGroups, BreakCouple,
// FreezeCouple/UnfreezeCouple and GroupDetachNode publish
// topology-change notifications to. Publishing is skipped entirely
// when no broker has been attached.
func (co *Coordinator) WithEvents(broker *events.Broker) *Coordinator {
	co.broker = broker
	return co
}

// WithLeader attaches a leadership gate for the single-writer
// mastermind:max_group key (spec.md §9 "Concurrent coordinators"). A
// nil or never-attached leader always reports itself as leader,
// matching the single-instance zero-config default.
func (co *Coordinator) WithLeader(l leader.Leader) *Coordinator {
	co.leader = l
	return co
}

func (co *Coordinator) publish(eventType events.EventType, message string, metadata map[string]string) {
	if co.broker == nil {
		return
	}
	co.broker.Publish(&events.Event{Type: eventType, Message: message, Metadata: metadata})
}

// GroupInfo is the handler-facing summary of a group.
type GroupInfo struct {
	ID            int
	Status        topology.Status
	StatusMessage string
	Nodes         []string
	CoupleID      string
	Namespace     string
}

func groupInfo(g *topology.Group) GroupInfo {
	info := GroupInfo{ID: g.ID, Status: g.Status(), StatusMessage: g.StatusMessage()}
	for _, n := range g.Nodes() {
		info.Nodes = append(info.Nodes, n.String())
	}
	if c := g.Couple(); c != nil {
		info.CoupleID = c.ID()
		info.Namespace = c.Namespace()
	} else if meta := g.Meta(); meta != nil {
		info.Namespace = meta.Namespace
	}
	return info
}

// CoupleInfo is the handler-facing summary of a couple.
type CoupleInfo struct {
	ID            string
	Status        topology.Status
	StatusMessage string
	Namespace     string
	Frozen        bool
	GroupIDs      []int
}

func coupleInfo(c *topology.Couple) CoupleInfo {
	return CoupleInfo{
		ID:            c.ID(),
		Status:        c.Status(),
		StatusMessage: c.StatusMessage(),
		Namespace:     c.Namespace(),
		Frozen:        c.Frozen(),
		GroupIDs:      c.AsTuple(),
	}
}

// GetGroups returns every known group.
func (co *Coordinator) GetGroups(ctx context.Context) ([]GroupInfo, error) {
	return co.filterGroups(func(*topology.Group) bool { return true }), nil
}

// GetSymmetricGroups returns every coupled group.
func (co *Coordinator) GetSymmetricGroups(ctx context.Context) ([]GroupInfo, error) {
	return co.filterGroups(func(g *topology.Group) bool { return g.Status() == topology.StatusCoupled }), nil
}

// GetBadGroups returns every group in BAD status.
func (co *Coordinator) GetBadGroups(ctx context.Context) ([]GroupInfo, error) {
	return co.filterGroups(func(g *topology.Group) bool { return g.Status() == topology.StatusBad }), nil
}

// GetFrozenGroups returns every group belonging to a frozen couple.
func (co *Coordinator) GetFrozenGroups(ctx context.Context) ([]GroupInfo, error) {
	return co.filterGroups(func(g *topology.Group) bool {
		c := g.Couple()
		return c != nil && c.Frozen()
	}), nil
}

// GetEmptyGroups returns every group with no couple assigned yet.
func (co *Coordinator) GetEmptyGroups(ctx context.Context) ([]GroupInfo, error) {
	return co.filterGroups(func(g *topology.Group) bool { return g.Couple() == nil }), nil
}

func (co *Coordinator) filterGroups(keep func(*topology.Group) bool) []GroupInfo {
	var out []GroupInfo
	for _, g := range co.state.Groups.All() {
		if keep(g) {
			out = append(out, groupInfo(g))
		}
	}
	return out
}

// GetClosedGroups returns couples that have crossed the free-space
// thresholds and should stop receiving new writes.
func (co *Coordinator) GetClosedGroups(ctx context.Context) ([]CoupleInfo, error) {
	couples := balancer.GetClosedGroups(co.state, co.thresholds)
	out := make([]CoupleInfo, len(couples))
	for i, c := range couples {
		out[i] = coupleInfo(c)
	}
	return out, nil
}

// GetGroupInfo returns one group's summary.
func (co *Coordinator) GetGroupInfo(ctx context.Context, groupID int) (GroupInfo, error) {
	g, ok := co.state.Groups.Get(groupID)
	if !ok {
		return GroupInfo{}, fmt.Errorf("group %d not found", groupID)
	}
	return groupInfo(g), nil
}

// GetGroupHistory returns the recorded detach events for a group.
func (co *Coordinator) GetGroupHistory(ctx context.Context, groupID int) ([]topology.DetachEvent, error) {
	g, ok := co.state.Groups.Get(groupID)
	if !ok {
		return nil, fmt.Errorf("group %d not found", groupID)
	}
	return g.History(), nil
}

// GetCoupleInfo returns one couple's summary.
func (co *Coordinator) GetCoupleInfo(ctx context.Context, coupleID string) (CoupleInfo, error) {
	c, ok := co.state.Couples.Get(coupleID)
	if !ok {
		return CoupleInfo{}, fmt.Errorf("couple %s not found", coupleID)
	}
	return coupleInfo(c), nil
}

// GetGroupWeights buckets OK couples by (namespace, size) and scores
// each bucket's candidates.
func (co *Coordinator) GetGroupWeights(ctx context.Context) (map[string]map[int][]balancer.Candidate, error) {
	return balancer.GetGroupWeights(co.state), nil
}

// GroupsByDC partitions every group with a resolvable host by
// datacenter.
func (co *Coordinator) GroupsByDC(ctx context.Context) (map[string][]int, error) {
	out := make(map[string][]int)
	for _, g := range co.state.Groups.All() {
		nodes := g.Nodes()
		if len(nodes) == 0 {
			continue
		}
		host := nodes[0].Host()
		if host == nil {
			continue
		}
		dc, err := co.resolver.DCByHost(ctx, host.Addr)
		if err != nil {
			continue
		}
		out[dc] = append(out[dc], g.ID)
	}
	return out, nil
}

// CouplesByNamespace partitions every known couple by namespace.
func (co *Coordinator) CouplesByNamespace(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, c := range co.state.Couples.All() {
		out[c.Namespace()] = append(out[c.Namespace()], c.ID())
	}
	return out, nil
}

// CoupleGroups composes size uncoupled groups from distinct
// datacenters into a new couple.
func (co *Coordinator) CoupleGroups(ctx context.Context, size int, mandatoryIDs []int, ns string) (CoupleInfo, error) {
	c, err := balancer.CoupleGroups(ctx, co.state, co.resolver, co.session, size, mandatoryIDs, ns)
	if err != nil {
		return CoupleInfo{}, err
	}
	co.reconciler.ForceNodesUpdate()
	co.publish(events.EventCoupleCreated, fmt.Sprintf("couple %s created", c.ID()), map[string]string{"couple_id": c.ID(), "namespace": c.Namespace()})
	return coupleInfo(c), nil
}

// BreakCouple destroys a couple after checking its confirmation
// string (or unconditionally, if force is set).
func (co *Coordinator) BreakCouple(ctx context.Context, coupleID, confirmation string, force bool) error {
	c, ok := co.state.Couples.Get(coupleID)
	if !ok {
		return fmt.Errorf("couple %s not found", coupleID)
	}
	if err := balancer.BreakCouple(ctx, co.session, co.state, c, confirmation, force); err != nil {
		return err
	}
	co.publish(events.EventCoupleBroken, fmt.Sprintf("couple %s broken", coupleID), map[string]string{"couple_id": coupleID})
	return nil
}

// RepairGroups rewrites a group's couple's meta from its agreeing
// peers.
func (co *Coordinator) RepairGroups(ctx context.Context, groupID int, forceNamespace string) error {
	g, ok := co.state.Groups.Get(groupID)
	if !ok {
		return fmt.Errorf("group %d not found", groupID)
	}
	return balancer.RepairGroups(ctx, co.session, g, forceNamespace)
}

// FreezeCouple marks a couple frozen.
func (co *Coordinator) FreezeCouple(ctx context.Context, coupleID string) error {
	c, ok := co.state.Couples.Get(coupleID)
	if !ok {
		return fmt.Errorf("couple %s not found", coupleID)
	}
	if err := balancer.FreezeCouple(ctx, co.session, c); err != nil {
		return err
	}
	co.publish(events.EventCoupleFrozen, fmt.Sprintf("couple %s frozen", coupleID), map[string]string{"couple_id": coupleID})
	return nil
}

// UnfreezeCouple clears a couple's frozen flag.
func (co *Coordinator) UnfreezeCouple(ctx context.Context, coupleID string) error {
	c, ok := co.state.Couples.Get(coupleID)
	if !ok {
		return fmt.Errorf("couple %s not found", coupleID)
	}
	if err := balancer.UnfreezeCouple(ctx, co.session, c); err != nil {
		return err
	}
	co.publish(events.EventCoupleUnfrozen, fmt.Sprintf("couple %s unfrozen", coupleID), map[string]string{"couple_id": coupleID})
	return nil
}

// GetNamespaces lists every configured namespace's settings.
func (co *Coordinator) GetNamespaces(ctx context.Context) ([]*storage.Settings, error) {
	return co.namespaces.List()
}

// GetNamespaceSettings returns one namespace's settings.
func (co *Coordinator) GetNamespaceSettings(ctx context.Context, ns string) (*storage.Settings, error) {
	return co.namespaces.Get(ns)
}

// GetNamespacesSettings returns every namespace's settings (alias of
// GetNamespaces kept for parity with the original handler name).
func (co *Coordinator) GetNamespacesSettings(ctx context.Context) ([]*storage.Settings, error) {
	return co.namespaces.List()
}

// NamespaceSetup validates and persists a namespace's settings.
func (co *Coordinator) NamespaceSetup(ctx context.Context, settings *storage.Settings) error {
	return co.namespaces.Setup(settings)
}

// GetNextGroupNumber allocates n fresh group ids. When a leader gate
// is attached, only the elected leader may advance mastermind:max_group
// (spec.md §9): every other instance refuses rather than racing on the
// read-then-write.
func (co *Coordinator) GetNextGroupNumber(ctx context.Context, n int) ([]int, error) {
	if co.leader != nil && !co.leader.IsLeader() {
		return nil, fmt.Errorf("this coordinator instance is not the election leader")
	}
	return balancer.GetNextGroupNumber(ctx, co.session, co.metadataGroupID, n)
}

// GroupDetachNode removes a node from a group.
func (co *Coordinator) GroupDetachNode(ctx context.Context, groupID int, addr string) error {
	if err := balancer.GroupDetachNode(co.state, groupID, addr, time.Now()); err != nil {
		return err
	}
	co.publish(events.EventNodeDetached, fmt.Sprintf("node %s detached from group %d", addr, groupID), map[string]string{"addr": addr, "group_id": fmt.Sprintf("%d", groupID)})
	return nil
}

// ForceNodesUpdate interrupts the reconciler's normal period and runs
// a full nodes reload immediately.
func (co *Coordinator) ForceNodesUpdate(ctx context.Context) error {
	co.reconciler.ForceNodesUpdate()
	return nil
}
