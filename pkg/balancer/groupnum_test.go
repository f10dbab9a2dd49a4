package balancer

import (
	"context"
	"testing"

	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/stretchr/testify/require"
)

func TestGetNextGroupNumber_ZeroIsNoOp(t *testing.T) {
	session := storageclient.NewMemorySession()
	ids, err := GetNextGroupNumber(context.Background(), session, 0, 0)
	require.NoError(t, err)
	require.Empty(t, ids)

	_, err = session.ReadData(context.Background(), 0, storageclient.MaxGroupKey)
	require.ErrorIs(t, err, storageclient.ErrNotFound)
}

func TestGetNextGroupNumber_AboveMaxFails(t *testing.T) {
	session := storageclient.NewMemorySession()
	_, err := GetNextGroupNumber(context.Background(), session, 0, 101)
	require.Error(t, err)
}

func TestGetNextGroupNumber_AllocatesSequentialIDs(t *testing.T) {
	session := storageclient.NewMemorySession()

	ids, err := GetNextGroupNumber(context.Background(), session, 0, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, ids)

	ids, err = GetNextGroupNumber(context.Background(), session, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []int{4, 5}, ids)
}
