package job

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// CatalogReplicator wraps a boltJobCatalog behind a single-node Raft log, so
// MarkCanceled calls only take effect once they commit, mirroring warren's
// manager.Bootstrap/Apply shape (pkg/manager/manager.go) retargeted from
// cluster state to job records. Joining additional voters requires a control
// RPC this build has no transport for (see DESIGN.md's pkg/client/pkg/api
// deletion note), so Bootstrap always forms a one-node cluster; the FSM and
// on-disk log/stable/snapshot stores are otherwise exactly what a multi-node
// deployment would use.
type CatalogReplicator struct {
	nodeID   string
	bindAddr string
	dataDir  string
	catalog  *boltJobCatalog
	fsm      *catalogFSM
	raft     *raft.Raft
}

// NewCatalogReplicator opens the BoltDB catalog at catalogPath and prepares
// (but does not start) its Raft wrapper. dataDir holds the Raft log, stable
// store, and snapshots; bindAddr is the local Raft transport address.
func NewCatalogReplicator(nodeID, bindAddr, dataDir, catalogPath string) (*CatalogReplicator, error) {
	catalog, err := newBoltJobCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return &CatalogReplicator{
		nodeID:   nodeID,
		bindAddr: bindAddr,
		dataDir:  dataDir,
		catalog:  catalog,
		fsm:      newCatalogFSM(catalog),
	}, nil
}

// Bootstrap forms a new single-node Raft cluster over the replicator's FSM,
// grounded on manager.Manager.Bootstrap's transport/store/timeout setup.
func (r *CatalogReplicator) Bootstrap() error {
	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(r.nodeID)

	addr, err := net.ResolveTCPAddr("tcp", r.bindAddr)
	if err != nil {
		return fmt.Errorf("failed to resolve bind address: %w", err)
	}
	transport, err := raft.NewTCPTransport(r.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}
	snapshotStore, err := raft.NewFileSnapshotStore(r.dataDir, 2, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-log.db"))
	if err != nil {
		return fmt.Errorf("failed to create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-stable.db"))
	if err != nil {
		return fmt.Errorf("failed to create stable store: %w", err)
	}

	rf, err := raft.NewRaft(config, r.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return fmt.Errorf("failed to create raft: %w", err)
	}
	r.raft = rf

	future := rf.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{{ID: config.LocalID, Address: transport.LocalAddr()}},
	})
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to bootstrap cluster: %w", err)
	}
	return nil
}

// MarkCanceled submits a mark_canceled command through the replicated log,
// timing the round trip against metrics.RaftCommitDuration the way
// manager.Manager.Apply does for cluster-state commands.
func (r *CatalogReplicator) MarkCanceled(ids []int64, when time.Time) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RaftCommitDuration)

	if r.raft == nil {
		return fmt.Errorf("raft not initialized")
	}
	cmd := catalogCommand{Op: "mark_canceled", IDs: ids, When: when}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("failed to marshal job catalog command: %w", err)
	}

	future := r.raft.Apply(data, 5*time.Second)
	if err := future.Error(); err != nil {
		return fmt.Errorf("failed to apply job catalog command: %w", err)
	}
	if resp := future.Response(); resp != nil {
		if applyErr, ok := resp.(error); ok && applyErr != nil {
			return applyErr
		}
	}
	return nil
}

// ListMatchingDescending and CountsByStatus read directly from the local
// catalog; Raft replication only gates writes, matching boltJobCatalog's own
// read/write split.
func (r *CatalogReplicator) ListMatchingDescending(filter BulkCancelFilter, beforeID int64, limit int) ([]*Record, error) {
	return r.catalog.ListMatchingDescending(filter, beforeID, limit)
}

func (r *CatalogReplicator) CountsByStatus() (map[string]int, error) {
	return r.catalog.CountsByStatus()
}

// IsLeader and Stats satisfy metrics.RaftStatsSource.
func (r *CatalogReplicator) IsLeader() bool {
	return r.raft != nil && r.raft.State() == raft.Leader
}

func (r *CatalogReplicator) Stats() (lastLogIndex, appliedIndex uint64, peers int) {
	if r.raft == nil {
		return 0, 0, 0
	}
	lastLogIndex = r.raft.LastIndex()
	appliedIndex = r.raft.AppliedIndex()
	peers = 1
	if configFuture := r.raft.GetConfiguration(); configFuture.Error() == nil {
		peers = len(configFuture.Configuration().Servers)
	}
	return lastLogIndex, appliedIndex, peers
}

// Close shuts down the Raft instance and the underlying catalog.
func (r *CatalogReplicator) Close() error {
	if r.raft != nil {
		if err := r.raft.Shutdown().Error(); err != nil {
			return err
		}
	}
	return r.catalog.Close()
}
