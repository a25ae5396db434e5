package main

import (
	"net/http"

	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/spf13/cobra"
)

// newMetricsServeCommand serves /metrics and /healthz over HTTP, sampling
// the configured job catalog on the collector's usual 15s interval, for
// standalone use (e.g. alongside a worker process) without the full manager.
func newMetricsServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "metrics-serve",
		Short: "serve Prometheus metrics for the configured job catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.WithComponent("cmd")
			cfg := loadConfig()

			_, statsCatalog, raftStats, closeCatalog, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer closeCatalog()

			collector := metrics.NewCollector(statsCatalog, raftStats)
			collector.Start()
			defer collector.Stop()

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			mux.Handle("/healthz", metrics.HealthHandler())
			mux.Handle("/readyz", metrics.ReadyHandler())

			logger.Info().Str("addr", addr).Msg("serving metrics")
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /metrics and /healthz on")
	return cmd
}
