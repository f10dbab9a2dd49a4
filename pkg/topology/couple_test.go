package topology

import (
	"testing"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
	"github.com/stretchr/testify/require"
)

func buildCoupledGroups(t *testing.T, now time.Time, ids ...int) []*Group {
	t.Helper()
	h := NewHost("10.0.0.1")
	groups := make([]*Group, len(ids))
	for i, id := range ids {
		g := NewGroup(id)
		n := NewNode(h, 1025+i, g)
		n.UpdateStatistics(RawStat{TotalBlocks: 1000, BlockSize: 4096, AvailBlocks: 500}, now)
		groups[i] = g
	}
	blob, err := wire.ComposeGroupMeta(ids, "default")
	require.NoError(t, err)
	for _, g := range groups {
		require.NoError(t, g.ParseMeta(blob))
	}
	for _, g := range groups {
		g.UpdateStatus(now)
	}
	return groups
}

func TestCouple_ID_IsSortedColonJoined(t *testing.T) {
	g3 := NewGroup(3)
	g1 := NewGroup(1)
	g2 := NewGroup(2)
	c := NewCouple([]*Group{g3, g1, g2}, "default")
	require.Equal(t, "1:2:3", c.ID())
	require.Equal(t, []int{1, 2, 3}, c.AsTuple())
}

func TestCouple_UpdateStatus_InitWhenGroupInit(t *testing.T) {
	g1 := NewGroup(1)
	g2 := NewGroup(2)
	// Both groups agree on membership but have no nodes yet, so each is
	// INIT; groups without any meta would fail CheckGroups and give BAD.
	blob, err := wire.ComposeGroupMeta([]int{1, 2}, "default")
	require.NoError(t, err)
	require.NoError(t, g1.ParseMeta(blob))
	require.NoError(t, g2.ParseMeta(blob))
	c := NewCouple([]*Group{g1, g2}, "default")
	require.Equal(t, StatusInit, c.UpdateStatus(time.Unix(1000, 0)))
}

func TestCouple_UpdateStatus_OKWhenGroupsAgree(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")
	require.Equal(t, StatusOK, c.UpdateStatus(now))
}

func TestCouple_UpdateStatus_FrozenWhenGroupsAgreeAndFrozen(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")
	c.SetFrozen(true)
	require.Equal(t, StatusFrozen, c.UpdateStatus(now))
}

func TestCouple_UpdateStatus_BadWhenMembershipDisagrees(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")

	blobWrong, err := wire.ComposeGroupMeta([]int{1, 2, 3}, "default")
	require.NoError(t, err)
	require.NoError(t, groups[0].ParseMeta(blobWrong))

	require.Equal(t, StatusBad, c.UpdateStatus(now))
}

func TestCouple_UpdateStatus_ROWhenGroupRO(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")
	groups[0].Nodes()[0].SetReadOnly(true)
	require.Equal(t, StatusRO, c.UpdateStatus(now))
}

func TestCouple_CheckGroups(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")
	require.True(t, c.CheckGroups())
}

func TestCouple_FreezeUnfreeze(t *testing.T) {
	c := NewCouple([]*Group{NewGroup(1)}, "default")
	require.False(t, c.Frozen())
	c.SetFrozen(true)
	require.True(t, c.Frozen())
	c.SetFrozen(false)
	require.False(t, c.Frozen())
}

func TestCouple_Closed_TrueWithNoStats(t *testing.T) {
	c := NewCouple([]*Group{NewGroup(1)}, "default")
	require.True(t, c.Closed(1, 0.1))
}

func TestCouple_Closed_FalseWithEnoughSpace(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")
	require.False(t, c.Closed(1, 0.01))
}

func TestCouple_Closed_TrueBelowThreshold(t *testing.T) {
	now := time.Unix(10000, 0)
	groups := buildCoupledGroups(t, now, 1, 2)
	c := NewCouple(groups, "default")
	require.True(t, c.Closed(1<<40, 0.01))
}

func TestCouple_Destroy_UnlinksGroups(t *testing.T) {
	g1 := NewGroup(1)
	c := NewCouple([]*Group{g1}, "default")
	require.NotNil(t, g1.Couple())
	c.Destroy()
	require.Nil(t, g1.Couple())
}
