// Package config loads the coordinator's static configuration from a
// YAML file: storage and metadata fleet addresses, reconciler and
// balancer timing knobs, and the optional leader-election settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the coordinator's top-level configuration document.
type Config struct {
	// StorageNodes lists "host:port" addresses of the storage fleet
	// whose groups this coordinator manages.
	StorageNodes []string `yaml:"storage_nodes"`

	// MetadataNodes lists "host:port" addresses of the metadata fleet
	// (symmetric-groups, couple-meta, max_group, namespace settings).
	MetadataNodes   []string `yaml:"metadata_nodes"`
	MetadataGroupID int      `yaml:"metadata_group_id"`

	WaitTimeoutSeconds       int     `yaml:"wait_timeout"`
	SymmGroupReadGapSeconds  int     `yaml:"symm_group_read_gap"`
	CoupleReadGapSeconds     int     `yaml:"couple_read_gap"`
	NodesReloadPeriodSeconds int     `yaml:"nodes_reload_period"`
	MinFreeSpace             uint64  `yaml:"min_free_space"`
	MinFreeSpaceRelative     float64 `yaml:"min_free_space_relative"`

	DataDir string `yaml:"data_dir"`

	Leader LeaderConfig `yaml:"leader"`
	Log    LogConfig    `yaml:"log"`
}

// LeaderConfig mirrors pkg/leader.Config's YAML-facing fields.
type LeaderConfig struct {
	Enabled  bool     `yaml:"enabled"`
	NodeID   string   `yaml:"node_id"`
	BindAddr string   `yaml:"bind_addr"`
	DataDir  string   `yaml:"data_dir"`
	Peers    []string `yaml:"peers"`
}

// LogConfig mirrors pkg/log.Config's YAML-facing fields.
type LogConfig struct {
	Level      string `yaml:"level"`
	JSONOutput bool   `yaml:"json"`
}

// WaitTimeout returns the configured per-read timeout as a
// time.Duration, defaulting to 5s.
func (c Config) WaitTimeout() time.Duration {
	return secondsOr(c.WaitTimeoutSeconds, 5)
}

// SymmGroupReadGap returns the configured gap, defaulting to 1s.
func (c Config) SymmGroupReadGap() time.Duration {
	return secondsOr(c.SymmGroupReadGapSeconds, 1)
}

// CoupleReadGap returns the configured gap, defaulting to 1s.
func (c Config) CoupleReadGap() time.Duration {
	return secondsOr(c.CoupleReadGapSeconds, 1)
}

// NodesReloadPeriod returns the configured reload period, defaulting
// to 60s.
func (c Config) NodesReloadPeriod() time.Duration {
	return secondsOr(c.NodesReloadPeriodSeconds, 60)
}

func secondsOr(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

// Load reads and parses the YAML document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
