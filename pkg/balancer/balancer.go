// Package balancer implements the weighting and placement logic: a
// deterministic per-namespace/per-size weight table for new writes,
// datacenter-diverse composition of new couples, and the safety-
// checked repair/break/freeze protocols operators drive
// (spec.md §4.7).
package balancer

import (
	"context"
	"fmt"

	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
	"github.com/mastermind-cluster/mastermind/pkg/wire"
)

// Thresholds holds the free-space knobs behind the closed-couple
// predicate (spec.md §4.4, §9: "exact units as given in §6").
type Thresholds struct {
	MinFreeSpace         uint64
	MinFreeSpaceRelative float64
}

// ComposeSymmGroup writes the v2 symmetric-groups meta blob for
// namespace into every member of c (spec.md §4.7 "make_symm_group").
// On the first write failure it returns immediately; groups already
// written are left in place — the operator may retry or force-break.
func ComposeSymmGroup(ctx context.Context, session storageclient.Session, c *topology.Couple, namespace string) error {
	blob, err := wire.ComposeGroupMeta(c.AsTuple(), namespace)
	if err != nil {
		return err
	}
	for _, g := range c.Groups() {
		if err := session.WriteData(ctx, g.ID, storageclient.SymmGroupsKey, blob); err != nil {
			return fmt.Errorf("balancer: write symmetric-groups meta to group %d: %w", g.ID, err)
		}
	}
	return nil
}

// KillSymmGroup deletes the symmetric-groups key from every member of
// c, ignoring not-found (spec.md §4.7 "break_couple").
func KillSymmGroup(ctx context.Context, session storageclient.Session, c *topology.Couple) error {
	for _, g := range c.Groups() {
		if err := session.Remove(ctx, g.ID, storageclient.SymmGroupsKey); err != nil && err != storageclient.ErrNotFound {
			return fmt.Errorf("balancer: remove symmetric-groups meta from group %d: %w", g.ID, err)
		}
	}
	return nil
}

func readMaxGroup(ctx context.Context, session storageclient.Session, metadataGroupID int) (int, error) {
	blob, err := session.ReadData(ctx, metadataGroupID, storageclient.MaxGroupKey)
	if err != nil {
		if err == storageclient.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	var n int
	if _, err := fmt.Sscanf(string(blob), "%d", &n); err != nil {
		return 0, fmt.Errorf("balancer: malformed max_group value %q: %w", blob, err)
	}
	return n, nil
}

func allNodesOK(g *topology.Group) bool {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if n.Status() != topology.StatusOK {
			return false
		}
	}
	return true
}
