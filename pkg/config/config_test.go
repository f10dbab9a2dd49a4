package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesYAMLAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mastermind.yaml")
	doc := `
storage_nodes: ["host1:1025", "host2:1025"]
metadata_nodes: ["meta1:1025"]
metadata_group_id: 1
symm_group_read_gap: 2
leader:
  enabled: true
  node_id: coordinator-1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"host1:1025", "host2:1025"}, cfg.StorageNodes)
	require.Equal(t, 1, cfg.MetadataGroupID)
	require.Equal(t, 2*time.Second, cfg.SymmGroupReadGap())
	require.Equal(t, 5*time.Second, cfg.WaitTimeout())
	require.True(t, cfg.Leader.Enabled)
	require.Equal(t, "coordinator-1", cfg.Leader.NodeID)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	require.Error(t, err)
}
