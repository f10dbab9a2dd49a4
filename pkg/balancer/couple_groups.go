package balancer

import (
	"context"
	"fmt"
	"sort"

	"github.com/mastermind-cluster/mastermind/pkg/inventory"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// CoupleGroups selects size uncoupled groups from distinct
// datacenters, honoring mandatoryIDs, and composes them into a new
// couple under namespace (spec.md §4.7 "couple_groups"). On success
// the couple's v2 meta has already been written to every member via
// session; the caller is expected to force a reconciliation sweep so
// the in-memory model picks the new couple up.
func CoupleGroups(ctx context.Context, state *topology.State, resolver inventory.Resolver, session storageclient.Session, size int, mandatoryIDs []int, namespace string) (*topology.Couple, error) {
	if len(mandatoryIDs) > size {
		return nil, fmt.Errorf("Too many mandatory groups")
	}

	uncoupled := make(map[int]*topology.Group)
	for _, g := range state.Groups.All() {
		if g.Couple() != nil {
			continue
		}
		if !allNodesOK(g) {
			continue
		}
		uncoupled[g.ID] = g
	}

	dcOf := func(g *topology.Group) (string, error) {
		nodes := g.Nodes()
		if len(nodes) == 0 {
			return "", fmt.Errorf("group %d has no nodes", g.ID)
		}
		host := nodes[0].Host()
		if host == nil {
			return "", fmt.Errorf("group %d node has no host", g.ID)
		}
		return resolver.DCByHost(ctx, host.Addr)
	}

	byDC := make(map[string][]*topology.Group)
	for _, g := range uncoupled {
		dc, err := dcOf(g)
		if err != nil {
			continue
		}
		byDC[dc] = append(byDC[dc], g)
	}
	for dc := range byDC {
		sort.Slice(byDC[dc], func(i, j int) bool { return byDC[dc][i].ID < byDC[dc][j].ID })
	}

	var chosen []*topology.Group
	usedDC := make(map[string]bool)

	for _, id := range mandatoryIDs {
		g, ok := uncoupled[id]
		if !ok {
			return nil, fmt.Errorf("group %d is coupled", id)
		}
		dc, err := dcOf(g)
		if err != nil {
			return nil, err
		}
		if usedDC[dc] {
			return nil, fmt.Errorf("groups must be in different dcs")
		}
		usedDC[dc] = true
		chosen = append(chosen, g)
		byDC[dc] = removeGroup(byDC[dc], g)
	}

	remaining := size - len(chosen)
	dcKeys := make([]string, 0, len(byDC))
	for dc := range byDC {
		dcKeys = append(dcKeys, dc)
	}
	sort.Strings(dcKeys)

	for _, dc := range dcKeys {
		if remaining == 0 {
			break
		}
		if usedDC[dc] {
			continue
		}
		pool := byDC[dc]
		if len(pool) == 0 {
			continue
		}
		chosen = append(chosen, pool[0])
		usedDC[dc] = true
		remaining--
	}
	if remaining > 0 {
		return nil, fmt.Errorf("Not enough dcs")
	}

	c := topology.NewCouple(chosen, namespace)
	state.Couples.Add(c.ID(), c)

	// Members are linked to c above regardless of outcome: a partial
	// write failure below leaves the couple visible so an operator can
	// target it with break_couple --force (spec.md §4.7).
	if err := ComposeSymmGroup(ctx, session, c, namespace); err != nil {
		return nil, err
	}
	return c, nil
}

func removeGroup(groups []*topology.Group, target *topology.Group) []*topology.Group {
	out := groups[:0:0]
	for _, g := range groups {
		if g != target {
			out = append(out, g)
		}
	}
	return out
}
