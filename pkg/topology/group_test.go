package topology

import (
	"testing"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/wire"
	"github.com/stretchr/testify/require"
)

func TestGroup_UpdateStatus_InitWhenNoNodes(t *testing.T) {
	g := NewGroup(1)
	require.Equal(t, StatusInit, g.UpdateStatus(time.Unix(1000, 0)))
}

func TestGroup_UpdateStatus_BadWhenNodeBad(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	// A destroyed node leaves its group, so the non-OK member here is a
	// node whose last stat is older than StalledAfter.
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now.Add(-StalledAfter-time.Second))

	blob, err := wire.ComposeGroupMeta([]int{1}, "default")
	require.NoError(t, err)
	require.NoError(t, g.ParseMeta(blob))

	require.Equal(t, StatusBad, g.UpdateStatus(now))
}

func TestGroup_UpdateStatus_InitWhenNoMeta(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	require.Equal(t, StatusInit, g.UpdateStatus(now))
	require.Equal(t, StatusInit, n.Status())
}

func TestGroup_UpdateStatus_InitWhenMetaCoupleEmpty(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	blob, err := wire.ComposeGroupMeta(nil, "default")
	require.NoError(t, err)
	require.NoError(t, g.ParseMeta(blob))

	require.Equal(t, StatusInit, g.UpdateStatus(now))
}

func TestGroup_UpdateStatus_BadWhenGroupMissingFromOwnMeta(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	blob, err := wire.ComposeGroupMeta([]int{2, 3}, "default")
	require.NoError(t, err)
	require.NoError(t, g.ParseMeta(blob))

	require.Equal(t, StatusBad, g.UpdateStatus(now))
}

func TestGroup_UpdateStatus_BadWhenCoupleNotYetBuilt(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	blob, err := wire.ComposeGroupMeta([]int{1, 2}, "default")
	require.NoError(t, err)
	require.NoError(t, g.ParseMeta(blob))

	require.Equal(t, StatusBad, g.UpdateStatus(now))
}

func TestGroup_UpdateStatus_ROWhenNodeReadOnly(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)
	n.SetReadOnly(true)

	blob, err := wire.ComposeGroupMeta([]int{1}, "default")
	require.NoError(t, err)
	require.NoError(t, g.ParseMeta(blob))

	require.Equal(t, StatusRO, g.UpdateStatus(now))
}

func TestGroup_UpdateStatus_BadWhenNamespaceDisagreesWithCouple(t *testing.T) {
	h := NewHost("10.0.0.1")
	g1 := NewGroup(1)
	g2 := NewGroup(2)
	now := time.Unix(10000, 0)

	n1 := NewNode(h, 1025, g1)
	n2 := NewNode(h, 1026, g2)
	n1.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)
	n2.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	blob1, err := wire.ComposeGroupMeta([]int{1, 2}, "web")
	require.NoError(t, err)
	blob2, err := wire.ComposeGroupMeta([]int{1, 2}, "other")
	require.NoError(t, err)
	require.NoError(t, g1.ParseMeta(blob1))
	require.NoError(t, g2.ParseMeta(blob2))

	NewCouple([]*Group{g1, g2}, "web")

	require.Equal(t, StatusBad, g2.UpdateStatus(now))
}

func TestGroup_UpdateStatus_CoupledWhenComplete(t *testing.T) {
	h := NewHost("10.0.0.1")
	g1 := NewGroup(1)
	g2 := NewGroup(2)
	now := time.Unix(10000, 0)

	n1 := NewNode(h, 1025, g1)
	n2 := NewNode(h, 1026, g2)
	n1.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)
	n2.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	blob, err := wire.ComposeGroupMeta([]int{1, 2}, "default")
	require.NoError(t, err)
	require.NoError(t, g1.ParseMeta(blob))
	require.NoError(t, g2.ParseMeta(blob))

	NewCouple([]*Group{g1, g2}, "default")

	require.Equal(t, StatusCoupled, g1.UpdateStatus(now))
	require.Equal(t, StatusCoupled, g2.UpdateStatus(now))
}

func TestGroup_DetachNode_RecordsHistory(t *testing.T) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	now := time.Unix(10000, 0)
	n := NewNode(h, 1025, g)
	addr, err := n.Addr()
	require.NoError(t, err)

	require.True(t, g.DetachNode(addr, now))
	require.False(t, g.HasNode(addr))

	hist := g.History()
	require.Len(t, hist, 1)
	require.Equal(t, addr, hist[0].Addr)
	require.Equal(t, now, hist[0].At)
}

func TestGroup_DetachNode_UnknownAddrReturnsFalse(t *testing.T) {
	g := NewGroup(1)
	require.False(t, g.DetachNode("10.0.0.9:1025", time.Unix(1000, 0)))
}

func TestGroup_ClearMeta(t *testing.T) {
	g := NewGroup(1)
	blob, err := wire.ComposeGroupMeta([]int{1}, "default")
	require.NoError(t, err)
	require.NoError(t, g.ParseMeta(blob))
	require.NotNil(t, g.Meta())

	g.ClearMeta()
	require.Nil(t, g.Meta())
}
