// Package reconciler implements the metadata reconciliation engine: a
// periodic scheduler that performs parallel reads of per-group and
// per-couple metadata keys, validates cross-group agreement, and
// updates the in-memory topology model (spec.md §4.5).
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mastermind-cluster/mastermind/pkg/log"
	"github.com/mastermind-cluster/mastermind/pkg/metrics"
	"github.com/mastermind-cluster/mastermind/pkg/scheduler"
	"github.com/mastermind-cluster/mastermind/pkg/stats"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
	"github.com/mastermind-cluster/mastermind/pkg/wire"
	"github.com/rs/zerolog"
)

const (
	taskLoadNodes   = "load_nodes"
	taskGroupSweep  = "symm_group_sweep"
	taskCoupleSweep = "couple_sweep"
)

// Config holds the reconciler's tunable knobs (spec.md §4.5 / §6).
type Config struct {
	WaitTimeout         time.Duration // per-read timeout, default 5s
	SymmGroupReadGap    time.Duration // default 1s
	CoupleReadGap       time.Duration // default 1s
	NodesReloadPeriod   time.Duration // default 60s
	MetadataGroupID     int           // group the max_group / couple-meta keys live in
}

// DefaultConfig returns the spec's stated defaults.
func DefaultConfig() Config {
	return Config{
		WaitTimeout:       5 * time.Second,
		SymmGroupReadGap:  time.Second,
		CoupleReadGap:     time.Second,
		NodesReloadPeriod: 60 * time.Second,
	}
}

// Reconciler runs the group-meta sweep, couple-meta sweep and full
// nodes reload on the shared scheduler.Scheduler, mutating a single
// topology.State (spec.md §5: "all mutation of the model must be
// serialised").
type Reconciler struct {
	cfg     Config
	state   *topology.State
	session storageclient.Session
	sched   *scheduler.Scheduler
	logger  zerolog.Logger

	mu               sync.Mutex
	maxGroupID       int
	lastReloadAt     time.Time
	dynamicTooOldAge time.Duration
}

// New builds a Reconciler over state, reading/writing through session
// and scheduling its sweeps on sched. Start must be called separately.
func New(cfg Config, state *topology.State, session storageclient.Session, sched *scheduler.Scheduler) *Reconciler {
	return &Reconciler{
		cfg:     cfg,
		state:   state,
		session: session,
		sched:   sched,
		logger:  log.WithComponent("reconciler"),
	}
}

// Start queues the first full reload, which re-queues itself on
// NodesReloadPeriod forever (the "re-queue itself" idiom of
// spec.md §4.9).
func (r *Reconciler) Start() {
	r.sched.AddTaskIn(taskLoadNodes, 0, r.loadNodes)
}

// ForceNodesUpdate re-queues load_nodes immediately, hurrying an
// already-queued task forward rather than stacking a second one.
func (r *Reconciler) ForceNodesUpdate() {
	if !r.sched.Hurry(taskLoadNodes) {
		r.sched.AddTaskIn(taskLoadNodes, 0, r.loadNodes)
	}
}

// DynamicTooOldAge returns the balancer's "how stale can a reload be
// before we stop trusting rps numbers" knob (spec.md §4.5 step 4).
func (r *Reconciler) DynamicTooOldAge() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dynamicTooOldAge
}

// loadNodes is the full periodic reload: spec.md §4.5.
//  1. fetch fresh statistics and feed the ingester
//  2. queue the two metadata sweeps
//  3. refresh max_group bookkeeping
//  4. advance dynamic_too_old_age
//
// It re-queues itself for NodesReloadPeriod from now regardless of
// outcome, since reconciliation errors must never abort the sweep
// loop (spec.md §7).
func (r *Reconciler) loadNodes() {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDurationVec(metrics.ReconciliationDuration, "load_nodes")
		r.sched.AddTaskIn(taskLoadNodes, r.cfg.NodesReloadPeriod, r.loadNodes)
	}()

	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WaitTimeout)
	defer cancel()

	if err := r.refreshStatistics(ctx, now); err != nil {
		r.logger.Error().Err(err).Msg("failed to refresh statistics")
		metrics.ReconciliationCyclesTotal.WithLabelValues("load_nodes", "error").Inc()
	} else {
		metrics.ReconciliationCyclesTotal.WithLabelValues("load_nodes", "ok").Inc()
	}

	r.sched.AddTaskIn(taskGroupSweep, r.cfg.SymmGroupReadGap, r.sweepGroupMeta)
	r.sched.AddTaskIn(taskCoupleSweep, r.cfg.CoupleReadGap, r.sweepCoupleMeta)

	if err := r.refreshMaxGroup(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to refresh max_group")
	}

	r.mu.Lock()
	prev := r.lastReloadAt
	r.lastReloadAt = now
	if !prev.IsZero() {
		age := now.Sub(prev)
		floor := 3 * r.cfg.NodesReloadPeriod
		if age < floor {
			age = floor
		}
		r.dynamicTooOldAge = age
	}
	r.mu.Unlock()
}

// refreshStatistics polls every known node for fresh counters
// (stat_log_count preferred, stat_log as fallback) and feeds them to
// the statistics ingester.
func (r *Reconciler) refreshStatistics(ctx context.Context, now time.Time) error {
	var rows []stats.Row
	for _, n := range r.state.Nodes.All() {
		addr, err := n.Addr()
		if err != nil {
			continue
		}
		group := n.Group()
		if group == nil {
			continue
		}

		raw, err := r.fetchStat(ctx, addr)
		if err != nil {
			metrics.NodesTimedOutTotal.Inc()
			r.logger.Warn().Str("addr", addr).Err(err).Msg("statistics read failed")
			continue
		}
		metrics.NodesReachedTotal.Inc()

		host := n.Host()
		if host == nil {
			continue
		}
		rows = append(rows, stats.Row{HostAddr: host.Addr, Port: portOf(addr), GroupID: group.ID, Raw: raw})
	}

	for _, err := range stats.Ingest(r.state, rows, now) {
		r.logger.Warn().Err(err).Msg("statistics row rejected")
	}
	return nil
}

func (r *Reconciler) fetchStat(ctx context.Context, addr string) (topology.RawStat, error) {
	if n, err := r.session.StatLogCount(ctx, addr); err == nil && n > 0 {
		return r.session.StatLog(ctx, addr)
	}
	return r.session.StatLog(ctx, addr)
}

func portOf(addr string) int {
	var host string
	var port int
	if _, err := fmt.Sscanf(addr, "%[^:]:%d", &host, &port); err != nil {
		return 0
	}
	return port
}

// sweepGroupMeta is the group-meta sweep of spec.md §4.5: parallel
// reads of the symmetric-groups key, one session per group, drained
// in discovery order so a group referencing not-yet-seen peers pulls
// them in before falling back to arbitrary order.
func (r *Reconciler) sweepGroupMeta() {
	defer metrics.ReconciliationCyclesTotal.WithLabelValues("group_meta_sweep", "ok").Inc()

	groups := r.state.Groups.All()
	pending := make(map[int]*topology.Group, len(groups))
	for _, g := range groups {
		pending[g.ID] = g
	}

	type result struct {
		blob []byte
		err  error
	}
	futures := make(map[int]chan result, len(pending))
	for id := range pending {
		ch := make(chan result, 1)
		futures[id] = ch
		go func(id int) {
			ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WaitTimeout)
			defer cancel()
			blob, err := r.session.ReadData(ctx, id, storageclient.SymmGroupsKey)
			ch <- result{blob: blob, err: err}
		}(id)
	}

	drained := make(map[int]bool, len(pending))
	queue := make([]int, 0, len(pending))
	for id := range pending {
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if drained[id] {
			continue
		}
		g, ok := pending[id]
		if !ok {
			continue
		}
		drained[id] = true

		res := <-futures[id]
		if res.err != nil {
			g.ClearMeta()
			g.UpdateStatus(time.Now())
			continue
		}

		if err := g.ParseMeta(res.blob); err != nil {
			r.logger.Warn().Int("group_id", id).Err(err).Msg("unparseable group meta")
			g.ClearMeta()
			g.UpdateStatus(time.Now())
			continue
		}

		meta := g.Meta()
		for _, peer := range meta.Couple {
			if peer == id || drained[peer] {
				continue
			}
			if _, known := pending[peer]; !known {
				r.materializeGroup(peer)
			}
			queue = append([]int{peer}, queue...)
		}

		r.ensureCouple(g)
	}

	for id, g := range pending {
		if !drained[id] {
			g.ClearMeta()
		}
	}

	r.state.UpdateStatuses(time.Now())
}

// materializeGroup creates an empty-node placeholder for a group
// referenced by a peer's meta but not yet known (spec.md §3
// invariant: "every group mentioned in any observed meta.couple
// exists as a placeholder").
func (r *Reconciler) materializeGroup(id int) *topology.Group {
	return r.state.Group(id)
}

// ensureCouple materialises the couple g's parsed meta refers to,
// creating peer placeholders as needed, or reuses the existing one if
// the id-set is already a repository key (spec.md §4.5).
func (r *Reconciler) ensureCouple(g *topology.Group) {
	meta := g.Meta()
	if meta == nil || len(meta.Couple) == 0 {
		return
	}

	members := make([]*topology.Group, 0, len(meta.Couple))
	for _, id := range meta.Couple {
		members = append(members, r.materializeGroup(id))
	}

	key := topology.CoupleKey(meta.Couple)
	if _, ok := r.state.Couples.Get(key); ok {
		return
	}

	c := topology.NewCouple(members, meta.Namespace)
	r.state.Couples.Add(c.ID(), c)
}

// sweepCoupleMeta is the couple-meta sweep of spec.md §4.5: parallel
// reads of mastermind:couple_meta:<id> for every known couple.
func (r *Reconciler) sweepCoupleMeta() {
	defer metrics.ReconciliationCyclesTotal.WithLabelValues("couple_meta_sweep", "ok").Inc()

	couples := r.state.Couples.All()
	type result struct {
		id   string
		blob []byte
		err  error
	}
	results := make(chan result, len(couples))

	for _, c := range couples {
		go func(c *topology.Couple) {
			ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WaitTimeout)
			defer cancel()
			groupID := 0
			if groups := c.Groups(); len(groups) > 0 {
				groupID = groups[0].ID
			}
			blob, err := r.session.ReadData(ctx, groupID, storageclient.CoupleMetaKey(c.ID()))
			results <- result{id: c.ID(), blob: blob, err: err}
		}(c)
	}

	for range couples {
		res := <-results
		c, ok := r.state.Couples.Get(res.id)
		if !ok {
			continue
		}
		if res.err != nil {
			c.SetFrozen(false)
			continue
		}
		meta, err := wire.ParseCoupleMeta(res.blob)
		if err != nil {
			r.logger.Warn().Str("couple_id", res.id).Err(err).Msg("unparseable couple meta")
			continue
		}
		c.SetFrozen(meta.Frozen)
	}

	r.state.UpdateStatuses(time.Now())
}

// refreshMaxGroup reads mastermind:max_group and writes back the
// observed maximum group id if it exceeds the stored value
// (spec.md §4.5 step 3).
func (r *Reconciler) refreshMaxGroup(ctx context.Context) error {
	observed := 0
	for _, g := range r.state.Groups.All() {
		if g.ID > observed {
			observed = g.ID
		}
	}

	stored, err := r.readMaxGroup(ctx)
	if err != nil && err != storageclient.ErrNotFound {
		return err
	}

	r.mu.Lock()
	if stored > r.maxGroupID {
		r.maxGroupID = stored
	}
	current := r.maxGroupID
	r.mu.Unlock()

	if observed <= current {
		return nil
	}

	if err := r.session.WriteData(ctx, r.metadataGroupID(), storageclient.MaxGroupKey, []byte(fmt.Sprintf("%d", observed))); err != nil {
		return err
	}
	r.mu.Lock()
	r.maxGroupID = observed
	r.mu.Unlock()
	return nil
}

func (r *Reconciler) readMaxGroup(ctx context.Context) (int, error) {
	blob, err := r.session.ReadData(ctx, r.metadataGroupID(), storageclient.MaxGroupKey)
	if err != nil {
		return 0, err
	}
	var n int
	if _, err := fmt.Sscanf(string(blob), "%d", &n); err != nil {
		return 0, fmt.Errorf("reconciler: malformed max_group value %q: %w", blob, err)
	}
	return n, nil
}

func (r *Reconciler) metadataGroupID() int {
	return r.cfg.MetadataGroupID
}
