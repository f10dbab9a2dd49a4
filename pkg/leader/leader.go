// Package leader provides optional Raft-based leader election for
// running more than one coordinator process against the same storage
// fleet. spec.md §9 flags mastermind:max_group as single-writer and
// leaves multi-coordinator deployment as an open question; Elector
// resolves it by gating that read-then-write on leadership instead of
// mandating single-instance operation, while defaulting to disabled
// (every instance is its own leader) for the common case.
package leader

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/mastermind-cluster/mastermind/pkg/log"
	"github.com/mastermind-cluster/mastermind/pkg/metrics"
)

// Config holds the knobs needed to join or bootstrap the election
// cluster.
type Config struct {
	Enabled  bool
	NodeID   string
	BindAddr string
	DataDir  string
	Peers    []raft.Server // including self; Bootstrap uses this verbatim
}

// Elector wraps hashicorp/raft configured with a no-op FSM, used
// purely for its leader election guarantee.
type Elector struct {
	cfg  Config
	raft *raft.Raft
}

// disabledElector always reports itself as leader, for the
// zero-config single-instance default.
type disabledElector struct{}

func (disabledElector) IsLeader() bool { return true }

func (disabledElector) WaitForLeader(context.Context) error { return nil }

// Leader is satisfied by both Elector and the disabled stand-in.
type Leader interface {
	IsLeader() bool
	WaitForLeader(ctx context.Context) error
}

// New builds a Leader: a disabled stand-in if cfg.Enabled is false,
// otherwise a bootstrapped Raft Elector.
func New(cfg Config) (Leader, error) {
	if !cfg.Enabled {
		return disabledElector{}, nil
	}
	return newElector(cfg)
}

func newElector(cfg Config) (*Elector, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("leader: create data dir: %w", err)
	}

	raftCfg := raft.DefaultConfig()
	raftCfg.LocalID = raft.ServerID(cfg.NodeID)

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("leader: resolve bind addr: %w", err)
	}
	transport, err := raft.NewTCPTransport(cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("leader: create transport: %w", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("leader: create snapshot store: %w", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-log.db"))
	if err != nil {
		return nil, fmt.Errorf("leader: create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "raft-stable.db"))
	if err != nil {
		return nil, fmt.Errorf("leader: create stable store: %w", err)
	}

	r, err := raft.NewRaft(raftCfg, noopFSM{}, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, fmt.Errorf("leader: create raft: %w", err)
	}

	peers := cfg.Peers
	if len(peers) == 0 {
		peers = []raft.Server{{ID: raftCfg.LocalID, Address: transport.LocalAddr()}}
	}
	future := r.BootstrapCluster(raft.Configuration{Servers: peers})
	if err := future.Error(); err != nil && err != raft.ErrCantBootstrap {
		return nil, fmt.Errorf("leader: bootstrap cluster: %w", err)
	}

	e := &Elector{cfg: cfg, raft: r}
	go e.watchLeadership()
	return e, nil
}

func (e *Elector) watchLeadership() {
	logger := log.WithComponent("leader")
	for isLeader := range e.raft.LeaderCh() {
		if isLeader {
			metrics.RaftLeader.Set(1)
			logger.Info().Str("node_id", e.cfg.NodeID).Msg("acquired election leadership")
		} else {
			metrics.RaftLeader.Set(0)
			logger.Info().Str("node_id", e.cfg.NodeID).Msg("lost election leadership")
		}
	}
}

// IsLeader reports whether this process currently holds leadership.
func (e *Elector) IsLeader() bool {
	return e.raft.State() == raft.Leader
}

// WaitForLeader blocks until some instance (not necessarily this one)
// is elected leader, or ctx is done.
func (e *Elector) WaitForLeader(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if e.raft.Leader() != "" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Shutdown gracefully leaves the election cluster.
func (e *Elector) Shutdown() error {
	return e.raft.Shutdown().Error()
}
