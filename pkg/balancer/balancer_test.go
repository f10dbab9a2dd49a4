package balancer

import (
	"context"
	"testing"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/inventory"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// okGroup builds a group with one node that has already reported
// statistics, so it reaches StatusCoupled once meta agrees, or plain
// node-OK if left uncoupled.
func okGroup(t *testing.T, state *topology.State, id int, hostAddr string, now time.Time) *topology.Group {
	t.Helper()
	g := state.Group(id)
	host := state.Host(hostAddr)
	n := state.Node(host, 1025, g)
	n.UpdateStatistics(topology.RawStat{TotalBlocks: 1000, BlockSize: 4096, AvailBlocks: 1000}, now)
	n.UpdateStatus(now)
	return g
}

func coupleGroups(t *testing.T, state *topology.State, session storageclient.Session, namespace string, groups ...*topology.Group) *topology.Couple {
	t.Helper()
	c := topology.NewCouple(groups, namespace)
	state.Couples.Add(c.ID(), c)
	if err := ComposeSymmGroup(context.Background(), session, c, namespace); err != nil {
		t.Fatalf("ComposeSymmGroup: %v", err)
	}
	for _, g := range groups {
		blob, err := session.ReadData(context.Background(), g.ID, storageclient.SymmGroupsKey)
		if err != nil {
			t.Fatalf("readback: %v", err)
		}
		if err := g.ParseMeta(blob); err != nil {
			t.Fatalf("ParseMeta: %v", err)
		}
	}
	return c
}

func staticResolver(dcs map[string]string) inventory.Resolver {
	return inventory.NewStaticResolver(dcs)
}
