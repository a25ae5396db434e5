// Command scaled is the scale cluster daemon's CLI entrypoint, renamed
// from warren's cmd/warren. It wires the ambient config/logging/metrics
// stack up for the three operational subcommands below; the long-running
// agent/manager loops that would normally own the scheduler Runner and job
// catalog are out of scope (see DESIGN.md), so schedule-tick and cleanup
// run a single pass against an explicit input file and exit, and
// metrics-serve serves metrics for the configured job catalog until it is
// stopped, for operational debugging and scripting rather than as the
// daemon's steady-state mode.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/warren/pkg/config"
	"github.com/cuemby/warren/pkg/job"
	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
)

func main() {
	root := &cobra.Command{
		Use:   "scaled",
		Short: "scale cluster job scheduler and execution-configuration daemon",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Init(log.Config{Level: log.Level(logLevel), JSONOutput: logJSON})
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to scaled YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of console format")

	root.AddCommand(newScheduleTickCommand())
	root.AddCommand(newCleanupCommand())
	root.AddCommand(newMetricsServeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configPath through pkg/config, logging and exiting on
// failure since every subcommand here needs a valid configuration to do
// anything useful.
func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// openCatalog opens the job catalog named by cfg: in-memory with no
// JobCatalogPath, bolt-backed with one, or Raft-replicated on top of bolt
// when Raft.NodeID also names this node. All three satisfy job.Catalog and
// metrics.StatsCatalog; only the replicated catalog has a RaftStatsSource.
func openCatalog(cfg config.Config) (job.Catalog, metrics.StatsCatalog, metrics.RaftStatsSource, func(), error) {
	if cfg.JobCatalogPath == "" {
		c := job.NewMemoryCatalog()
		return c, c, nil, func() {}, nil
	}
	if cfg.Raft.NodeID != "" {
		r, err := job.NewCatalogReplicator(cfg.Raft.NodeID, cfg.Raft.BindAddr, cfg.Raft.DataDir, cfg.JobCatalogPath)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := r.Bootstrap(); err != nil {
			return nil, nil, nil, nil, err
		}
		return r, r, r, func() { _ = r.Close() }, nil
	}
	c, err := job.NewBoltCatalog(cfg.JobCatalogPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return c, c, nil, func() { _ = c.Close() }, nil
}
