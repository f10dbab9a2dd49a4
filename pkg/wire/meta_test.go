package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupMeta_V2RoundTrip(t *testing.T) {
	blob, err := ComposeGroupMeta([]int{4, 7, 12}, "storage-ns")
	require.NoError(t, err)

	meta, err := ParseGroupMeta(blob)
	require.NoError(t, err)
	require.Equal(t, 2, meta.Version)
	require.Equal(t, []int{4, 7, 12}, meta.Couple)
	require.Equal(t, "storage-ns", meta.Namespace)
}

func TestGroupMeta_V1LegacyArrayDefaultsNamespace(t *testing.T) {
	blob, err := Marshal([]int{1, 2})
	require.NoError(t, err)

	meta, err := ParseGroupMeta(blob)
	require.NoError(t, err)
	require.Equal(t, 1, meta.Version)
	require.Equal(t, []int{1, 2}, meta.Couple)
	require.Equal(t, DefaultNamespace, meta.Namespace)
}

func TestGroupMeta_EmptyBlobErrors(t *testing.T) {
	_, err := ParseGroupMeta(nil)
	require.Error(t, err)
}

func TestGroupMeta_UnsupportedVersionErrors(t *testing.T) {
	blob, err := Marshal(rawGroupMetaV2{Version: 99, Couple: []int{1}, Namespace: "x"})
	require.NoError(t, err)

	_, err = ParseGroupMeta(blob)
	require.Error(t, err)
}

func TestCoupleMeta_RoundTrip(t *testing.T) {
	blob, err := ComposeCoupleMeta(true)
	require.NoError(t, err)

	meta, err := ParseCoupleMeta(blob)
	require.NoError(t, err)
	require.True(t, meta.Frozen)
}

func TestCoupleMeta_EmptyBlobErrors(t *testing.T) {
	_, err := ParseCoupleMeta(nil)
	require.Error(t, err)
}
