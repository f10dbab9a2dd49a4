package leader

import (
	"io"

	"github.com/hashicorp/raft"
)

// noopFSM is the Raft-required state machine for a cluster that only
// ever needs to agree on *who is leader*, never to replicate actual
// payload data: the coordinator's topology model is rebuilt from the
// storage fleet on every reload and is explicitly never persisted
// through the log (spec.md §1 Non-goals).
type noopFSM struct{}

func (noopFSM) Apply(*raft.Log) interface{} { return nil }

func (noopFSM) Snapshot() (raft.FSMSnapshot, error) { return noopSnapshot{}, nil }

func (noopFSM) Restore(rc io.ReadCloser) error { return rc.Close() }

type noopSnapshot struct{}

func (noopSnapshot) Persist(sink raft.SnapshotSink) error { return sink.Close() }

func (noopSnapshot) Release() {}
