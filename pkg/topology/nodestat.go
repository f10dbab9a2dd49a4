package topology

import "time"

// DefaultMaxRPS is the first estimation of node performance used when
// no previous stat exists to derive a real rps from: a typical SATA
// HDD does about 100 IOPS.
const DefaultMaxRPS = 100.0

// RawStat is one raw per-node counter row as produced by the storage
// fleet's stat_log/stat_log_count call.
type RawStat struct {
	TotalBlocks   uint64 // DNET_CNTR_BLOCKS
	BlockSize     uint64 // DNET_CNTR_BSIZE
	AvailBlocks   uint64 // DNET_CNTR_BAVAIL
	LoadAverage   uint64 // DNET_CNTR_LA1 (or DNET_CNTR_DU1), hundredths of a unit
	StorageReads  uint64 // storage_commands.READ[0]
	StorageWrites uint64 // storage_commands.WRITE[0]
	ProxyReads    uint64 // proxy_commands.READ[0]
	ProxyWrites   uint64 // proxy_commands.WRITE[0]
}

// NodeStat is a per-node statistics snapshot. It forms a commutative
// monoid under both Add (aggregation) and Mul (bottleneck), each
// associative and commutative (see nodestat_test.go).
type NodeStat struct {
	TS time.Time

	TotalSpace  float64
	FreeSpace   float64
	RelSpace    float64
	LoadAverage float64

	ReadRPS     float64
	WriteRPS    float64
	MaxReadRPS  float64
	MaxWriteRPS float64

	lastRead  float64
	lastWrite float64
}

// NewNodeStat derives a NodeStat from a raw counter row, using prev (if
// non-nil) as the baseline for rps derivation.
func NewNodeStat(raw RawStat, prev *NodeStat, now time.Time) *NodeStat {
	s := &NodeStat{TS: now}

	s.lastRead = float64(raw.StorageReads + raw.ProxyReads)
	s.lastWrite = float64(raw.StorageWrites + raw.ProxyWrites)

	s.TotalSpace = float64(raw.TotalBlocks) * float64(raw.BlockSize)
	s.FreeSpace = float64(raw.AvailBlocks) * float64(raw.BlockSize)
	if raw.TotalBlocks > 0 {
		s.RelSpace = float64(raw.AvailBlocks) / float64(raw.TotalBlocks)
	}
	s.LoadAverage = float64(raw.LoadAverage) / 100

	if prev != nil {
		dt := s.TS.Sub(prev.TS).Seconds()
		if dt > 0 {
			s.ReadRPS = (s.lastRead - prev.lastRead) / dt
			s.WriteRPS = (s.lastWrite - prev.lastWrite) / dt
		}
		s.MaxReadRPS = maxRPS(s.ReadRPS, s.LoadAverage)
		s.MaxWriteRPS = maxRPS(s.WriteRPS, s.LoadAverage)
	} else {
		s.ReadRPS = 0
		s.WriteRPS = 0
		s.MaxReadRPS = DefaultMaxRPS
		s.MaxWriteRPS = DefaultMaxRPS
	}

	return s
}

func maxRPS(rps, loadAverage float64) float64 {
	if loadAverage == 0 {
		return DefaultMaxRPS
	}
	return max(rps/loadAverage, DefaultMaxRPS)
}

// Add aggregates two stats: spaces add, rel_space and ts take the min,
// load_average takes the max, rps and max_rps add.
func (a *NodeStat) Add(b *NodeStat) *NodeStat {
	return &NodeStat{
		TS:          minTime(a.TS, b.TS),
		TotalSpace:  a.TotalSpace + b.TotalSpace,
		FreeSpace:   a.FreeSpace + b.FreeSpace,
		RelSpace:    min(a.RelSpace, b.RelSpace),
		LoadAverage: max(a.LoadAverage, b.LoadAverage),
		ReadRPS:     a.ReadRPS + b.ReadRPS,
		WriteRPS:    a.WriteRPS + b.WriteRPS,
		MaxReadRPS:  a.MaxReadRPS + b.MaxReadRPS,
		MaxWriteRPS: a.MaxWriteRPS + b.MaxWriteRPS,
	}
}

// Mul bottlenecks two stats: spaces and max_rps take the min,
// load_average takes the max, rps takes the max.
func (a *NodeStat) Mul(b *NodeStat) *NodeStat {
	return &NodeStat{
		TS:          minTime(a.TS, b.TS),
		TotalSpace:  min(a.TotalSpace, b.TotalSpace),
		FreeSpace:   min(a.FreeSpace, b.FreeSpace),
		RelSpace:    min(a.RelSpace, b.RelSpace),
		LoadAverage: max(a.LoadAverage, b.LoadAverage),
		ReadRPS:     max(a.ReadRPS, b.ReadRPS),
		WriteRPS:    max(a.WriteRPS, b.WriteRPS),
		MaxReadRPS:  min(a.MaxReadRPS, b.MaxReadRPS),
		MaxWriteRPS: min(a.MaxWriteRPS, b.MaxWriteRPS),
	}
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// SumStats aggregates stats via Add. Returns nil for an empty slice.
func SumStats(stats []*NodeStat) *NodeStat {
	if len(stats) == 0 {
		return nil
	}
	res := stats[0]
	for _, s := range stats[1:] {
		res = res.Add(s)
	}
	return res
}

// ProductStats bottlenecks stats via Mul. Returns nil for an empty slice.
func ProductStats(stats []*NodeStat) *NodeStat {
	if len(stats) == 0 {
		return nil
	}
	res := stats[0]
	for _, s := range stats[1:] {
		res = res.Mul(s)
	}
	return res
}
