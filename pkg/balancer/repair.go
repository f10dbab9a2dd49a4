package balancer

import (
	"context"
	"fmt"

	"github.com/mastermind-cluster/mastermind/pkg/metrics"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// RepairGroups rewrites the symmetric-groups meta for every member of
// group's couple, resolving the couple's namespace from whichever
// peers already carry agreeing meta (or forceNamespace if none do)
// (spec.md §4.7 "repair_groups").
func RepairGroups(ctx context.Context, session storageclient.Session, group *topology.Group, forceNamespace string) error {
	c := group.Couple()
	if c == nil {
		return fmt.Errorf("group %d is not a member of any couple", group.ID)
	}

	switch c.Status() {
	case topology.StatusOK, topology.StatusFrozen:
		return fmt.Errorf("cannot repair, group %d is in couple %s", group.ID, c.ID())
	}

	namespace, err := agreedNamespace(c, group.ID, forceNamespace)
	if err != nil {
		return err
	}

	if err := ComposeSymmGroup(ctx, session, c, namespace); err != nil {
		return err
	}
	metrics.GroupsRepairedTotal.Inc()
	return nil
}

// agreedNamespace finds the namespace every peer of group (other than
// group itself) agrees on. Every peer must carry meta; if none of them
// do, forceNamespace is used instead (an empty forceNamespace in that
// case is a precondition failure). A peer missing meta while at least
// one other peer has it is a hard failure (spec.md §4.7, balancer.py's
// "group %d ... has no metadata").
func agreedNamespace(c *topology.Couple, skipGroupID int, forceNamespace string) (string, error) {
	peers := make([]*topology.Group, 0, len(c.Groups()))
	for _, g := range c.Groups() {
		if g.ID != skipGroupID {
			peers = append(peers, g)
		}
	}

	anyMeta := false
	for _, g := range peers {
		if g.Meta() != nil {
			anyMeta = true
			break
		}
	}
	if !anyMeta {
		if forceNamespace == "" {
			return "", fmt.Errorf("no peer of group %d has meta; force_namespace is required", skipGroupID)
		}
		return forceNamespace, nil
	}

	namespace := ""
	hasMeta := false
	for _, g := range peers {
		meta := g.Meta()
		if meta == nil {
			return "", fmt.Errorf("group %d has no metadata", g.ID)
		}
		if hasMeta && meta.Namespace != namespace {
			return "", fmt.Errorf("couple %s members disagree on namespace", c.ID())
		}
		namespace = meta.Namespace
		hasMeta = true
	}
	return namespace, nil
}
