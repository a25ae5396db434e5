package job

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/hashicorp/raft"
	bolt "go.etcd.io/bbolt"
)

var bucketJobs = []byte("jobs")

// boltJobCatalog is a BoltDB-backed Catalog, adapted from
// pkg/storage.BoltStore's bucket/JSON-value convention. Reads go straight to
// the local BoltDB file; writes are expected to be applied only via the
// companion catalogFSM, so every replica's catalog converges through the
// same committed log warren's cluster state does.
type boltJobCatalog struct {
	db *bolt.DB
}

// BoltCatalog is the exported handle to a BoltDB-backed catalog, satisfying
// both Catalog (for CancelJobsBulkMessage) and metrics.StatsCatalog (for the
// collector), for callers that need the concrete type to also Close it.
type BoltCatalog interface {
	Catalog
	CountsByStatus() (map[string]int, error)
	Close() error
}

// NewBoltCatalog opens (creating if necessary) a BoltDB-backed job catalog
// at path, for deployments that need the catalog to survive a process
// restart. Writes made directly against the returned catalog are local only;
// a clustered deployment applies them through catalogFSM instead.
func NewBoltCatalog(path string) (BoltCatalog, error) {
	return newBoltJobCatalog(path)
}

// newBoltJobCatalog opens (creating if necessary) a BoltDB catalog at path.
func newBoltJobCatalog(path string) (*boltJobCatalog, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open job catalog: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketJobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltJobCatalog{db: db}, nil
}

func (c *boltJobCatalog) Close() error {
	return c.db.Close()
}

func (c *boltJobCatalog) put(r *Record) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return b.Put(jobKey(r.ID), data)
	})
}

func (c *boltJobCatalog) ListMatchingDescending(filter BulkCancelFilter, beforeID int64, limit int) ([]*Record, error) {
	var matched []*Record
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		return b.ForEach(func(k, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if beforeID != 0 && r.ID >= beforeID {
				return nil
			}
			if matches(&r, filter) {
				matched = append(matched, &r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// CountsByStatus returns the number of jobs in the catalog for each status
// present, for the metrics collector.
func (c *boltJobCatalog) CountsByStatus() (map[string]int, error) {
	counts := make(map[string]int)
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		return b.ForEach(func(k, v []byte) error {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			counts[string(r.Status)]++
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	return counts, nil
}

func (c *boltJobCatalog) MarkCanceled(ids []int64, when time.Time) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJobs)
		for _, id := range ids {
			data := b.Get(jobKey(id))
			if data == nil {
				continue
			}
			var r Record
			if err := json.Unmarshal(data, &r); err != nil {
				return err
			}
			if terminal[r.Status] {
				continue
			}
			r.Status = StatusCanceled
			ended := when
			r.Ended = &ended
			encoded, err := json.Marshal(&r)
			if err != nil {
				return err
			}
			if err := b.Put(jobKey(id), encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

// jobKey renders a job id as a big-endian fixed-width key so bucket
// iteration and bolt's own key ordering agree with descending-id sorting
// done in Go after the scan (Bolt itself iterates ascending).
func jobKey(id int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// catalogFSM implements raft.FSM over a boltJobCatalog, so MarkCanceled
// calls are only ever applied after they commit through the replicated
// log, matching pkg/manager.WarrenFSM's command-dispatch shape.
type catalogFSM struct {
	catalog *boltJobCatalog
}

// newCatalogFSM creates the FSM wrapping catalog.
func newCatalogFSM(catalog *boltJobCatalog) *catalogFSM {
	return &catalogFSM{catalog: catalog}
}

// catalogCommand is the single replicated operation the job catalog FSM
// understands: marking a batch of job ids canceled.
type catalogCommand struct {
	Op   string    `json:"op"`
	IDs  []int64   `json:"ids"`
	When time.Time `json:"when"`
}

func (f *catalogFSM) Apply(log *raft.Log) interface{} {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.RaftApplyDuration)

	var cmd catalogCommand
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal job catalog command: %w", err)
	}

	switch cmd.Op {
	case "mark_canceled":
		return f.catalog.MarkCanceled(cmd.IDs, cmd.When)
	default:
		return fmt.Errorf("unknown job catalog command: %s", cmd.Op)
	}
}

func (f *catalogFSM) Snapshot() (raft.FSMSnapshot, error) {
	records, err := f.catalog.ListMatchingDescending(BulkCancelFilter{}, 0, 1<<30)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot job catalog: %w", err)
	}
	return &catalogSnapshot{Records: records}, nil
}

func (f *catalogFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	var snap catalogSnapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode job catalog snapshot: %w", err)
	}
	for _, r := range snap.Records {
		if err := f.catalog.put(r); err != nil {
			return fmt.Errorf("failed to restore job %d: %w", r.ID, err)
		}
	}
	return nil
}

type catalogSnapshot struct {
	Records []*Record
}

func (s *catalogSnapshot) Persist(sink raft.SnapshotSink) error {
	err := func() error {
		if err := json.NewEncoder(sink).Encode(s); err != nil {
			return err
		}
		return sink.Close()
	}()
	if err != nil {
		sink.Cancel()
	}
	return err
}

func (s *catalogSnapshot) Release() {}
