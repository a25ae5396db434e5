package job

import (
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestCatalogReplicator_BootstrapAndMarkCanceled(t *testing.T) {
	dir := t.TempDir()
	bindAddr := fmt.Sprintf("127.0.0.1:%d", freePort(t))

	r, err := NewCatalogReplicator("node-1", bindAddr, dir, filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Bootstrap())
	assert.Eventually(t, r.IsLeader, 5*time.Second, 10*time.Millisecond, "single-node cluster must elect itself leader")

	require.NoError(t, r.catalog.put(&Record{ID: 1, Status: StatusRunning}))
	require.NoError(t, r.MarkCanceled([]int64{1}, time.Now()))

	page, err := r.ListMatchingDescending(BulkCancelFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, StatusCanceled, page[0].Status)

	lastLogIndex, appliedIndex, peers := r.Stats()
	assert.Greater(t, lastLogIndex, uint64(0))
	assert.Greater(t, appliedIndex, uint64(0))
	assert.Equal(t, 1, peers)
}
