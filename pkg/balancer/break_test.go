package balancer

import (
	"context"
	"testing"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
	"github.com/stretchr/testify/require"
)

func TestBreakCouple_RefusesWrongConfirmation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	g1 := okGroup(t, state, 1, "host-dc1", now)
	g2 := okGroup(t, state, 2, "host-dc2", now)
	c := coupleGroups(t, state, session, "web", g1, g2)
	c.UpdateStatus(now)

	err := BreakCouple(context.Background(), session, state, c, "nonsense", false)
	require.EqualError(t, err, "Incorrect confirmation string")
	require.True(t, state.Couples.Contains(c.ID()))
}

func TestBreakCouple_AcceptsGoodConfirmation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	g1 := okGroup(t, state, 1, "host-dc1", now)
	g2 := okGroup(t, state, 2, "host-dc2", now)
	c := coupleGroups(t, state, session, "web", g1, g2)
	c.UpdateStatus(now)
	require.Equal(t, topology.StatusOK, c.Status())

	err := BreakCouple(context.Background(), session, state, c, "Yes, I want to break good couple 1:2", false)
	require.NoError(t, err)
	require.False(t, state.Couples.Contains(c.ID()))

	_, err = session.ReadData(context.Background(), g1.ID, storageclient.SymmGroupsKey)
	require.ErrorIs(t, err, storageclient.ErrNotFound)
}

func TestBreakCouple_ForceSkipsConfirmation(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	g1 := okGroup(t, state, 1, "host-dc1", now)
	g2 := okGroup(t, state, 2, "host-dc2", now)
	c := coupleGroups(t, state, session, "web", g1, g2)

	err := BreakCouple(context.Background(), session, state, c, "", true)
	require.NoError(t, err)
	require.False(t, state.Couples.Contains(c.ID()))
}
