package balancer

import (
	"sort"

	"github.com/mastermind-cluster/mastermind/pkg/topology"
)

// Candidate is one couple's entry in a weight table: its member ids,
// its computed weight, and the free space it reports (used as a
// deterministic tie-breaker and surfaced to callers per spec.md §4.7).
type Candidate struct {
	MemberIDs []int
	Weight    float64
	FreeSpace float64
}

// RawBalance scores candidates and returns them sorted by descending
// weight, ties broken by descending free space. This is the weight
// function adapter spec.md §4.7 requires only to be "sortable by
// descending weight" and "deterministic for a given input set"; the
// original's balancelogic.py was not part of the retrieved sources
// (see DESIGN.md), so weight here is the couple's bottlenecked
// max_write_rps — the rate a write to the slowest member can sustain.
func RawBalance(candidates []*topology.Couple) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		var weight, free float64
		if stat := c.AggregateStat(); stat != nil {
			weight = stat.MaxWriteRPS
			free = stat.FreeSpace
		}
		out = append(out, Candidate{MemberIDs: c.AsTuple(), Weight: weight, FreeSpace: free})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].FreeSpace > out[j].FreeSpace
	})
	return out
}

// GetGroupWeights buckets every OK couple by (namespace, size) and
// scores each bucket independently (spec.md §4.7 "get_group_weights").
// Frozen and otherwise-non-OK couples are excluded: they are closed
// for new writes.
func GetGroupWeights(state *topology.State) map[string]map[int][]Candidate {
	buckets := make(map[string]map[int][]*topology.Couple)
	for _, c := range state.Couples.All() {
		if c.Status() != topology.StatusOK {
			continue
		}
		ns := c.Namespace()
		size := len(c.Groups())
		if buckets[ns] == nil {
			buckets[ns] = make(map[int][]*topology.Couple)
		}
		buckets[ns][size] = append(buckets[ns][size], c)
	}

	result := make(map[string]map[int][]Candidate, len(buckets))
	for ns, bySize := range buckets {
		result[ns] = make(map[int][]Candidate, len(bySize))
		for size, couples := range bySize {
			result[ns][size] = RawBalance(couples)
		}
	}
	return result
}

// GetClosedGroups returns every OK couple that has crossed the
// configured free-space thresholds (spec.md §4.4 "closed" predicate).
// A frozen or otherwise non-OK couple is already excluded from new
// writes for a different reason and is not reported here.
func GetClosedGroups(state *topology.State, th Thresholds) []*topology.Couple {
	var out []*topology.Couple
	for _, c := range state.Couples.All() {
		if c.Status() != topology.StatusOK {
			continue
		}
		if c.Closed(th.MinFreeSpace, th.MinFreeSpaceRelative) {
			out = append(out, c)
		}
	}
	return out
}
