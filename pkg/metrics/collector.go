package metrics

import "time"

// StatsCatalog is the per-status count method the job catalogs provide
// beyond job.Catalog (job.BoltCatalog includes it), kept as a local interface so this package doesn't
// depend on pkg/job (accept the narrow interface, not the concrete type).
type StatsCatalog interface {
	CountsByStatus() (map[string]int, error)
}

// RaftStatsSource reports the Raft cluster stats the job catalog's
// replicated-write path exposes, matching the shape warren's manager
// exposes to its own metrics collector.
type RaftStatsSource interface {
	IsLeader() bool
	Stats() (lastLogIndex, appliedIndex uint64, peers int)
}

// Collector periodically samples the job catalog and (optionally) the Raft
// layer backing it, publishing the results as Prometheus gauges. It mirrors
// warren's pkg/manager-driven Collector, but is decoupled from any specific
// catalog or cluster implementation via small interfaces.
type Collector struct {
	catalog StatsCatalog
	raft    RaftStatsSource // nil when running without a replicated catalog
	stopCh  chan struct{}
}

// NewCollector creates a Collector. raft may be nil.
func NewCollector(catalog StatsCatalog, raft RaftStatsSource) *Collector {
	return &Collector{catalog: catalog, raft: raft, stopCh: make(chan struct{})}
}

// Start begins collecting metrics every 15 seconds until Stop is called.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectJobMetrics()
	c.collectRaftMetrics()
}

func (c *Collector) collectJobMetrics() {
	if c.catalog == nil {
		return
	}
	counts, err := c.catalog.CountsByStatus()
	if err != nil {
		return
	}
	for status, count := range counts {
		JobsTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *Collector) collectRaftMetrics() {
	if c.raft == nil {
		return
	}
	if c.raft.IsLeader() {
		RaftLeader.Set(1)
	} else {
		RaftLeader.Set(0)
	}
	lastLogIndex, appliedIndex, peers := c.raft.Stats()
	RaftLogIndex.Set(float64(lastLogIndex))
	RaftAppliedIndex.Set(float64(appliedIndex))
	RaftPeers.Set(float64(peers))
}
