package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticResolver_KnownAndUnknown(t *testing.T) {
	r := NewStaticResolver(map[string]string{"10.0.0.1": "dc1"})

	dc, err := r.DCByHost(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "dc1", dc)

	_, err = r.DCByHost(context.Background(), "10.0.0.2")
	require.ErrorIs(t, err, ErrUnknownHost)
}

type countingResolver struct {
	calls int
	dc    string
}

func (c *countingResolver) DCByHost(context.Context, string) (string, error) {
	c.calls++
	return c.dc, nil
}

func TestCachingResolver_MemoizesBackendCalls(t *testing.T) {
	backend := &countingResolver{dc: "dc1"}
	r := NewCachingResolver(backend)

	for i := 0; i < 5; i++ {
		dc, err := r.DCByHost(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		require.Equal(t, "dc1", dc)
	}

	require.Equal(t, 1, backend.calls)
}

func TestGroupsByDC_SkipsUnresolvedAndPartitions(t *testing.T) {
	r := NewStaticResolver(map[string]string{
		"10.0.0.1": "dc1",
		"10.0.0.2": "dc1",
		"10.0.0.3": "dc2",
	})

	out := GroupsByDC(context.Background(), r, map[string]int{
		"10.0.0.1": 1,
		"10.0.0.2": 2,
		"10.0.0.3": 3,
		"10.0.0.9": 9, // unresolved, skipped
	})

	require.ElementsMatch(t, []int{1, 2}, out["dc1"])
	require.ElementsMatch(t, []int{3}, out["dc2"])
	require.NotContains(t, out, "")
}
