// Package storageclient defines the surface the coordinator uses to
// talk to the storage fleet: group metadata reads/writes and the
// per-node statistics calls the reconciler polls on a schedule. The
// wire protocol to the fleet itself is an external collaborator, out
// of scope for this module (spec.md §1); this package only models the
// session shape and ships an in-memory fake for tests and demos.
package storageclient

import (
	"context"
	"errors"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// ErrNotFound is returned by ReadData/StatLog when no such key or
// node exists in the session.
var ErrNotFound = errors.New("storageclient: not found")

// SymmGroupsKey is the well-known key group meta is stored under.
const SymmGroupsKey = "metabalancer\x00symmetric_groups"

// MaxGroupKey is the decimal-string monotonic group-id counter
// (spec.md §6).
const MaxGroupKey = "mastermind:max_group"

// CoupleMetaKey is the per-couple auxiliary metadata key (spec.md §6).
func CoupleMetaKey(coupleID string) string {
	return "mastermind:couple_meta:" + coupleID
}

// Session is one logical connection to the storage fleet, scoped to a
// set of groups (spec.md §6).
type Session interface {
	// SetTimeout bounds every subsequent call made through this session.
	SetTimeout(d time.Duration)

	// AddGroups restricts the session to operate on the given groups.
	AddGroups(groupIDs []int)

	// ReadData reads key from one group, returning ErrNotFound if the
	// key has never been written.
	ReadData(ctx context.Context, groupID int, key string) ([]byte, error)

	// WriteData writes key in one group.
	WriteData(ctx context.Context, groupID int, key string, value []byte) error

	// Remove deletes key from one group.
	Remove(ctx context.Context, groupID int, key string) error

	// LookupAddr returns the node address holding the given key in a
	// group, used to translate group ids to concrete node addresses
	// for statistics routing.
	LookupAddr(ctx context.Context, groupID int, key string) (string, error)

	// StatLogCount reports how many raw counter rows are available for
	// addr since the reconciler's last successful poll.
	StatLogCount(ctx context.Context, addr string) (int, error)

	// StatLog fetches the raw counter row for addr.
	StatLog(ctx context.Context, addr string) (topology.RawStat, error)
}
