package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/raft"
	"github.com/mastermind-cluster/mastermind/pkg/balancer"
	"github.com/mastermind-cluster/mastermind/pkg/config"
	"github.com/mastermind-cluster/mastermind/pkg/coordinator"
	"github.com/mastermind-cluster/mastermind/pkg/events"
	"github.com/mastermind-cluster/mastermind/pkg/inventory"
	"github.com/mastermind-cluster/mastermind/pkg/leader"
	"github.com/mastermind-cluster/mastermind/pkg/log"
	"github.com/mastermind-cluster/mastermind/pkg/metrics"
	"github.com/mastermind-cluster/mastermind/pkg/namespace"
	"github.com/mastermind-cluster/mastermind/pkg/reconciler"
	"github.com/mastermind-cluster/mastermind/pkg/scheduler"
	"github.com/mastermind-cluster/mastermind/pkg/storage"
	"github.com/mastermind-cluster/mastermind/pkg/storageclient"
	"github.com/mastermind-cluster/mastermind/pkg/topology"
	"github.com/mastermind-cluster/mastermind/pkg/transport"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coordinator",
	Long: `Starts the coordinator: polls the storage fleet on a schedule,
reconciles group and couple metadata, and serves the operator handler
surface (spec.md §6) over a TCP envelope.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("config", "mastermind.yaml", "Path to the coordinator's YAML configuration file")
	serveCmd.Flags().String("listen-addr", ":9090", "Address the handler envelope listens on")
	serveCmd.Flags().String("metrics-addr", ":9091", "Address the /metrics, /healthz, /readyz endpoints listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	listenAddr, _ := cmd.Flags().GetString("listen-addr")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := log.WithComponent("serve")
	metrics.SetVersion(Version)

	state := topology.NewState()

	// The real storage fleet's wire protocol is an external
	// collaborator out of scope for this module (spec.md §1); the
	// in-memory fake session stands in until a concrete client is
	// wired against the fleet described in cfg.StorageNodes.
	session := storageclient.NewMemorySession()

	resolver := inventory.NewCachingResolver(inventory.NewStaticResolver(nil))

	boltStore, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open namespace store: %w", err)
	}
	defer boltStore.Close()
	namespaces := namespace.New(boltStore, state)

	sched := scheduler.NewScheduler()
	sched.Start()
	defer sched.Shutdown()

	recCfg := reconciler.Config{
		WaitTimeout:       cfg.WaitTimeout(),
		SymmGroupReadGap:  cfg.SymmGroupReadGap(),
		CoupleReadGap:     cfg.CoupleReadGap(),
		NodesReloadPeriod: cfg.NodesReloadPeriod(),
		MetadataGroupID:   cfg.MetadataGroupID,
	}
	rec := reconciler.New(recCfg, state, session, sched)
	rec.Start()

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	thresholds := balancer.Thresholds{
		MinFreeSpace:         cfg.MinFreeSpace,
		MinFreeSpaceRelative: cfg.MinFreeSpaceRelative,
	}
	co := coordinator.New(state, session, resolver, rec, namespaces, thresholds, cfg.MetadataGroupID).
		WithEvents(broker)

	if cfg.Leader.Enabled {
		el, err := leader.New(toLeaderConfig(cfg.Leader))
		if err != nil {
			return fmt.Errorf("start leader election: %w", err)
		}
		co = co.WithLeader(el)
	}

	dispatcher := transport.NewTCPDispatcher(listenAddr)
	co.Register(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("handler dispatcher stopped")
		}
	}()

	metricsSrv := &http.Server{Addr: metricsAddr, Handler: buildMetricsMux()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	logger.Info().Str("listen_addr", listenAddr).Str("metrics_addr", metricsAddr).Msg("mastermind coordinator started")
	metrics.RegisterComponent("reconciler", true, "running")
	metrics.RegisterComponent("scheduler", true, "running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return metricsSrv.Shutdown(shutdownCtx)
}

func buildMetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", metrics.HealthHandler())
	mux.HandleFunc("/readyz", metrics.ReadyHandler())
	mux.HandleFunc("/livez", metrics.LivenessHandler())
	return mux
}

// toLeaderConfig adapts the YAML-facing leader config into the one
// pkg/leader expects, parsing each "id@host:port" peer entry into a
// raft.Server.
func toLeaderConfig(c config.LeaderConfig) leader.Config {
	cfg := leader.Config{
		Enabled:  c.Enabled,
		NodeID:   c.NodeID,
		BindAddr: c.BindAddr,
		DataDir:  c.DataDir,
	}
	for _, p := range c.Peers {
		id, addr, ok := strings.Cut(p, "@")
		if !ok {
			continue
		}
		cfg.Peers = append(cfg.Peers, raft.Server{
			ID:      raft.ServerID(id),
			Address: raft.ServerAddress(addr),
		})
	}
	return cfg
}
