package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/cuemby/warren/pkg/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snapshots []AgentSnapshot
	queued    []QueuedJobExecution
	snapErr   error
	queuedErr error
}

func (s *fakeSource) AgentSnapshots() ([]AgentSnapshot, error) {
	return s.snapshots, s.snapErr
}

func (s *fakeSource) QueuedJobExecutions() ([]QueuedJobExecution, error) {
	return s.queued, s.queuedErr
}

func TestRunner_Tick_PlacesHighestPriorityFirst(t *testing.T) {
	node1 := newReadyNode("1")
	node2 := newReadyNode("2")
	source := &fakeSource{
		snapshots: []AgentSnapshot{
			{
				AgentID:   "1",
				Node:      node1,
				Offers:    []Offer{NewOffer("o1", "1", "fw", resources.Of(5, 50, 0), time.Unix(0, 0))},
				Watermark: resources.Of(5, 50, 0),
			},
			{
				AgentID:   "2",
				Node:      node2,
				Offers:    []Offer{NewOffer("o2", "2", "fw", resources.Of(5, 50, 0), time.Unix(0, 0))},
				Watermark: resources.Of(5, 50, 0),
			},
		},
		queued: []QueuedJobExecution{
			&fakeQueuedJobExe{priority: 10, required: resources.Of(4, 40, 0)},
			&fakeQueuedJobExe{priority: 1, required: resources.Of(4, 40, 0)},
		},
	}

	runner := NewRunner(source)
	results, err := runner.Tick(time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, results, 2)

	placed := 0
	for _, r := range results {
		placed += len(r.AllocatedQueuedJobExes)
	}
	assert.Equal(t, 2, placed)

	highPriority := source.queued[1].(*fakeQueuedJobExe)
	assert.NotEmpty(t, highPriority.providedNodeID, "higher-priority job should have been placed")
}

func TestRunner_Tick_RejectsWhenNoNodeFits(t *testing.T) {
	node1 := newReadyNode("1")
	source := &fakeSource{
		snapshots: []AgentSnapshot{
			{AgentID: "1", Node: node1, Watermark: resources.Of(1, 1, 0)},
		},
		queued: []QueuedJobExecution{
			&fakeQueuedJobExe{priority: 1, required: resources.Of(100, 100, 0)},
		},
	}

	runner := NewRunner(source)
	results, err := runner.Tick(time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].AllocatedQueuedJobExes)
}

func TestRunner_Tick_AcceptsMaintenanceAndRunningTasksFirst(t *testing.T) {
	node1 := newReadyNode("1")
	health := &fakeTask{res: resources.Of(0.1, 10, 0)}
	node1.nextTasks = []ResourceBearer{health}
	running := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(1, 10, 0)}}

	source := &fakeSource{
		snapshots: []AgentSnapshot{
			{
				AgentID:        "1",
				Node:           node1,
				Offers:         []Offer{NewOffer("o1", "1", "fw", resources.Of(10, 100, 0), time.Unix(0, 0))},
				CurrentJobExes: []RunningJobExecution{running},
				Watermark:      resources.Of(10, 100, 0),
			},
		},
	}

	runner := NewRunner(source)
	results, err := runner.Tick(time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].AllocatedTasks, 2)
}

func TestRunner_Tick_PropagatesSourceErrors(t *testing.T) {
	source := &fakeSource{snapErr: errors.New("catalog unavailable")}
	runner := NewRunner(source)

	_, err := runner.Tick(time.Unix(0, 0))
	assert.Error(t, err)
}

func TestRunner_StartStop(t *testing.T) {
	source := &fakeSource{}
	runner := NewRunner(source)
	runner.Start(10 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	runner.Stop()
}
