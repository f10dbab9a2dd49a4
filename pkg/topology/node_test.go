package topology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestNode() (*Host, *Group, *Node) {
	h := NewHost("10.0.0.1")
	g := NewGroup(1)
	n := NewNode(h, 1025, g)
	return h, g, n
}

func TestNode_UpdateStatus_InitWithoutStat(t *testing.T) {
	_, _, n := newTestNode()
	require.Equal(t, StatusInit, n.UpdateStatus(time.Unix(1000, 0)))
}

func TestNode_UpdateStatus_OKWithFreshStat(t *testing.T) {
	_, _, n := newTestNode()
	now := time.Unix(10000, 0)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)
	require.Equal(t, StatusOK, n.UpdateStatus(now))
}

func TestNode_UpdateStatus_StalledBoundary(t *testing.T) {
	_, _, n := newTestNode()
	statTime := time.Unix(10000, 0)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, statTime)

	// exactly at the boundary (now - 120s == statTime) is still OK
	require.Equal(t, StatusOK, n.UpdateStatus(statTime.Add(StalledAfter)))

	// one second past the boundary is STALLED
	require.Equal(t, StatusStalled, n.UpdateStatus(statTime.Add(StalledAfter+time.Second)))
}

func TestNode_UpdateStatus_ReadOnly(t *testing.T) {
	_, _, n := newTestNode()
	now := time.Unix(10000, 0)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)
	n.SetReadOnly(true)
	require.Equal(t, StatusRO, n.UpdateStatus(now))
}

func TestNode_UpdateStatus_DestroyedIsBad(t *testing.T) {
	_, _, n := newTestNode()
	n.Destroy()
	require.Equal(t, StatusBad, n.UpdateStatus(time.Unix(1000, 0)))
}

func TestNode_Addr_ErrorsAfterDestroy(t *testing.T) {
	_, _, n := newTestNode()
	addr, err := n.Addr()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:1025", addr)

	n.Destroy()
	_, err = n.Addr()
	require.ErrorIs(t, err, ErrNodeDestroyed)
	require.Equal(t, "<destroyed>", n.String())
}

func TestNode_DestroyUnlinksFromHostAndGroup(t *testing.T) {
	h, g, n := newTestNode()
	require.Len(t, h.Nodes(), 1)
	require.Len(t, g.Nodes(), 1)

	n.Destroy()

	require.Len(t, h.Nodes(), 0)
	require.Len(t, g.Nodes(), 0)
}

func TestNode_UpdateStatus_IsPureAndIdempotent(t *testing.T) {
	_, _, n := newTestNode()
	now := time.Unix(10000, 0)
	n.UpdateStatistics(RawStat{TotalBlocks: 100, BlockSize: 4096, AvailBlocks: 50}, now)

	first := n.UpdateStatus(now)
	second := n.UpdateStatus(now)
	require.Equal(t, first, second)
}
