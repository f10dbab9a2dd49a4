package balancer

import (
	"context"
	"testing"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
	"github.com/stretchr/testify/require"
)

func TestCoupleGroups_PicksOneGroupPerDC(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	okGroup(t, state, 1, "host-dc1", now)
	okGroup(t, state, 2, "host-dc2", now)
	okGroup(t, state, 3, "host-dc3", now)

	resolver := staticResolver(map[string]string{
		"host-dc1": "dc1",
		"host-dc2": "dc2",
		"host-dc3": "dc3",
	})

	c, err := CoupleGroups(context.Background(), state, resolver, session, 3, nil, "web")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, c.AsTuple())
	require.Equal(t, "web", c.Namespace())
}

func TestCoupleGroups_NotEnoughDCsFails(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	okGroup(t, state, 1, "host-dc1", now)
	okGroup(t, state, 2, "host-dc1", now)

	resolver := staticResolver(map[string]string{"host-dc1": "dc1"})

	_, err := CoupleGroups(context.Background(), state, resolver, session, 2, nil, "web")
	require.EqualError(t, err, "Not enough dcs")
}

func TestCoupleGroups_MandatoryGroupAlreadyCoupledFails(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	g1 := okGroup(t, state, 1, "host-dc1", now)
	okGroup(t, state, 2, "host-dc2", now)
	other := okGroup(t, state, 99, "host-dc3", now)
	coupleGroups(t, state, session, "other", g1, other)

	resolver := staticResolver(map[string]string{
		"host-dc1": "dc1", "host-dc2": "dc2", "host-dc3": "dc3",
	})

	_, err := CoupleGroups(context.Background(), state, resolver, session, 2, []int{1, 2}, "web")
	require.EqualError(t, err, "group 1 is coupled")
}

func TestCoupleGroups_TooManyMandatoryGroupsFails(t *testing.T) {
	state := topology.NewState()
	session := storageclient.NewMemorySession()
	resolver := staticResolver(nil)

	_, err := CoupleGroups(context.Background(), state, resolver, session, 2, []int{1, 2, 3}, "web")
	require.EqualError(t, err, "Too many mandatory groups")
}

func TestCoupleGroups_MandatoryGroupsSameDCFails(t *testing.T) {
	now := time.Unix(1700000000, 0)
	state := topology.NewState()
	session := storageclient.NewMemorySession()

	okGroup(t, state, 1, "host-dc1", now)
	okGroup(t, state, 2, "host-dc1", now)

	resolver := staticResolver(map[string]string{"host-dc1": "dc1"})

	_, err := CoupleGroups(context.Background(), state, resolver, session, 2, []int{1, 2}, "web")
	require.EqualError(t, err, "groups must be in different dcs")
}
