package balancer

import (
	"context"
	"fmt"

	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
)

// MaxGroupNumbersPerCall bounds a single get_next_group_number request
// (spec.md §4.7, §8 boundary).
const MaxGroupNumbersPerCall = 100

// GetNextGroupNumber allocates n fresh group ids by reading and
// advancing mastermind:max_group. The coordinator is assumed to be the
// sole writer of this key (spec.md §5, §9); n==0 is a no-op that does
// not touch the stored value.
func GetNextGroupNumber(ctx context.Context, session storageclient.Session, metadataGroupID, n int) ([]int, error) {
	if n < 0 || n > MaxGroupNumbersPerCall {
		return nil, fmt.Errorf("n must be between 0 and %d", MaxGroupNumbersPerCall)
	}
	if n == 0 {
		return []int{}, nil
	}

	max, err := readMaxGroup(ctx, session, metadataGroupID)
	if err != nil {
		return nil, err
	}

	newMax := max + n
	if err := session.WriteData(ctx, metadataGroupID, storageclient.MaxGroupKey, []byte(fmt.Sprintf("%d", newMax))); err != nil {
		return nil, err
	}

	out := make([]int, n)
	for i := range out {
		out[i] = max + i + 1
	}
	return out, nil
}
