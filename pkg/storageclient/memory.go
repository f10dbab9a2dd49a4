package storageclient

import (
	"context"
	"sync"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// MemorySession is an in-memory fake fleet: one key/value bucket per
// group, mirroring the bucket-per-entity shape of a BoltDB-backed
// store but kept entirely in memory since no real storage protocol is
// implemented here.
type MemorySession struct {
	mu      sync.RWMutex
	buckets map[int]map[string][]byte
	stats   map[string]topology.RawStat
	addrs   map[int]string

	timeout      time.Duration
	restrictedTo map[int]bool
}

// NewMemorySession builds an empty fake fleet.
func NewMemorySession() *MemorySession {
	return &MemorySession{
		buckets: make(map[int]map[string][]byte),
		stats:   make(map[string]topology.RawStat),
		addrs:   make(map[int]string),
	}
}

// SetAddr records which node address answers for groupID, so
// LookupAddr has something real to return.
func (m *MemorySession) SetAddr(groupID int, addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addrs[groupID] = addr
}

func (m *MemorySession) SetTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = d
}

func (m *MemorySession) AddGroups(groupIDs []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restrictedTo = make(map[int]bool, len(groupIDs))
	for _, id := range groupIDs {
		m.restrictedTo[id] = true
		if m.buckets[id] == nil {
			m.buckets[id] = make(map[string][]byte)
		}
	}
}

func (m *MemorySession) allowed(groupID int) bool {
	if m.restrictedTo == nil {
		return true
	}
	return m.restrictedTo[groupID]
}

func (m *MemorySession) ReadData(_ context.Context, groupID int, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.allowed(groupID) {
		return nil, ErrNotFound
	}
	bucket, ok := m.buckets[groupID]
	if !ok {
		return nil, ErrNotFound
	}
	v, ok := bucket[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemorySession) WriteData(_ context.Context, groupID int, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.buckets[groupID]
	if !ok {
		bucket = make(map[string][]byte)
		m.buckets[groupID] = bucket
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	bucket[key] = stored
	return nil
}

func (m *MemorySession) Remove(_ context.Context, groupID int, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.buckets[groupID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := bucket[key]; !ok {
		return ErrNotFound
	}
	delete(bucket, key)
	return nil
}

func (m *MemorySession) LookupAddr(_ context.Context, groupID int, _ string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr, ok := m.addrs[groupID]
	if !ok {
		return "", ErrNotFound
	}
	return addr, nil
}

// SetStat seeds addr's current raw counter row, for tests that drive
// the reconciler's statistics poll.
func (m *MemorySession) SetStat(addr string, stat topology.RawStat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[addr] = stat
}

func (m *MemorySession) StatLogCount(_ context.Context, addr string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.stats[addr]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (m *MemorySession) StatLog(_ context.Context, addr string) (topology.RawStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[addr]
	if !ok {
		return topology.RawStat{}, ErrNotFound
	}
	return s, nil
}

var _ Session = (*MemorySession)(nil)
