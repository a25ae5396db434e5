package scheduler

import (
	"testing"
	"time"

	"github.com/cuemby/warren/pkg/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	res resources.Resources
}

func (t *fakeTask) GetResources() resources.Resources { return t.res }

type fakeNode struct {
	id                  string
	readyForNewJob      bool
	readyForNextJobTask bool
	nextTasks           []ResourceBearer
}

func (n *fakeNode) ID() string                  { return n.id }
func (n *fakeNode) Hostname() string            { return "host_1" }
func (n *fakeNode) IsReadyForNewJob() bool      { return n.readyForNewJob }
func (n *fakeNode) IsReadyForNextJobTask() bool { return n.readyForNextJobTask }
func (n *fakeNode) NextTasks() []ResourceBearer { return n.nextTasks }

type fakeRunningJobExe struct {
	next      ResourceBearer
	canceled  bool
	priority  int
	scheduled resources.Resources
}

func (r *fakeRunningJobExe) NextTask() (ResourceBearer, bool) {
	if r.canceled {
		return nil, false
	}
	return r.next, true
}
func (r *fakeRunningJobExe) Priority() int                          { return r.priority }
func (r *fakeRunningJobExe) ScheduledResources() resources.Resources { return r.scheduled }

type fakeQueuedJobExe struct {
	required       resources.Resources
	priority       int
	providedNodeID string
}

func (q *fakeQueuedJobExe) RequiredResources() resources.Resources { return q.required }
func (q *fakeQueuedJobExe) Priority() int                          { return q.priority }
func (q *fakeQueuedJobExe) SetProvidedNodeID(id string)            { q.providedNodeID = id }

func newReadyNode(id string) *fakeNode {
	return &fakeNode{id: id, readyForNewJob: true, readyForNextJobTask: true}
}

func TestAcceptJobExeNextTask(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(1, 10, 0)}}
	var waiting []ResourceBearer

	hadWaiting := sn.AcceptJobExeNextTask(jobExe, &waiting)

	assert.False(t, hadWaiting)
	assert.Len(t, sn.AllocatedRunningJobExecutions(), 1)
	assert.True(t, sn.AllocatedResources().Equal(resources.Of(1, 10, 0)))
	assert.True(t, sn.RemainingResources().Equal(resources.Of(9, 40, 0)))
	assert.Empty(t, waiting)
}

func TestAcceptJobExeNextTask_NotReadyForNextTask(t *testing.T) {
	node := newReadyNode("1")
	node.readyForNextJobTask = false
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(1, 10, 0)}}
	var waiting []ResourceBearer

	hadWaiting := sn.AcceptJobExeNextTask(jobExe, &waiting)

	assert.False(t, hadWaiting)
	assert.Empty(t, sn.AllocatedRunningJobExecutions())
	assert.True(t, sn.RemainingResources().Equal(resources.Of(10, 50, 0)))
}

func TestAcceptJobExeNextTask_Canceled(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe := &fakeRunningJobExe{canceled: true}
	var waiting []ResourceBearer

	hadWaiting := sn.AcceptJobExeNextTask(jobExe, &waiting)

	assert.False(t, hadWaiting)
	assert.Empty(t, sn.AllocatedRunningJobExecutions())
	assert.Empty(t, waiting)
}

func TestAcceptJobExeNextTask_InsufficientResources(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	task := &fakeTask{res: resources.Of(11, 10, 0)}
	jobExe := &fakeRunningJobExe{next: task}
	var waiting []ResourceBearer

	hadWaiting := sn.AcceptJobExeNextTask(jobExe, &waiting)

	assert.True(t, hadWaiting)
	assert.Empty(t, sn.AllocatedRunningJobExecutions())
	assert.True(t, sn.RemainingResources().Equal(resources.Of(10, 50, 0)))
	require.Len(t, waiting, 1)
	assert.Same(t, task, waiting[0])
}

func TestAcceptNewJobExe(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe := &fakeQueuedJobExe{required: resources.Of(1, 10, 0)}
	accepted := sn.AcceptNewJobExe(jobExe)

	assert.True(t, accepted)
	assert.Len(t, sn.AllocatedQueuedJobExecutions(), 1)
	assert.True(t, sn.AllocatedResources().Equal(resources.Of(1, 10, 0)))
	assert.True(t, sn.RemainingResources().Equal(resources.Of(9, 40, 0)))
	assert.Equal(t, "1", jobExe.providedNodeID)
}

func TestAcceptNewJobExe_InsufficientResources(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe := &fakeQueuedJobExe{required: resources.Of(11, 10, 0)}
	accepted := sn.AcceptNewJobExe(jobExe)

	assert.False(t, accepted)
	assert.Empty(t, sn.AllocatedQueuedJobExecutions())
	assert.Equal(t, "", jobExe.providedNodeID)
}

func TestAcceptNewJobExe_NodeNotReady(t *testing.T) {
	node := newReadyNode("1")
	node.readyForNewJob = false
	rs := NewResourceSet(resources.Of(10, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	accepted := sn.AcceptNewJobExe(&fakeQueuedJobExe{required: resources.Of(1, 10, 0)})

	assert.False(t, accepted)
}

func TestAcceptNodeTasks(t *testing.T) {
	node := newReadyNode("1")
	health := &fakeTask{res: resources.Of(0.1, 32, 0)}
	pull := &fakeTask{res: resources.Of(0.1, 32, 0)}
	node.nextTasks = []ResourceBearer{health, pull}

	rs := NewResourceSet(resources.Of(100, 5000, 0), resources.Resources{}, resources.Of(100, 5000, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)
	var waiting []ResourceBearer

	hadWaiting := sn.AcceptNodeTasks(time.Unix(0, 0), &waiting)

	assert.False(t, hadWaiting)
	assert.Len(t, sn.AllocatedTasks(), 2)
	assert.True(t, sn.AllocatedResources().Equal(resources.Of(0.2, 64, 0)))
	assert.Empty(t, waiting)
}

func TestAcceptNodeTasks_InsufficientResources(t *testing.T) {
	node := newReadyNode("1")
	health := &fakeTask{res: resources.Of(0.1, 32, 0)}
	pull := &fakeTask{res: resources.Of(0.1, 32, 0)}
	node.nextTasks = []ResourceBearer{health, pull}

	rs := NewResourceSet(resources.Of(0, 50, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)
	var waiting []ResourceBearer

	hadWaiting := sn.AcceptNodeTasks(time.Unix(0, 0), &waiting)

	assert.True(t, hadWaiting)
	assert.Empty(t, sn.AllocatedTasks())
	assert.Len(t, waiting, 2)
}

func buildOffersNode(t *testing.T) (*SchedulingNode, *fakeTask, *fakeTask, *fakeRunningJobExe, *fakeRunningJobExe) {
	t.Helper()
	node := newReadyNode("1")
	health := &fakeTask{res: resources.Of(0.1, 32, 0)}
	pull := &fakeTask{res: resources.Of(0.1, 32, 0)}
	node.nextTasks = []ResourceBearer{health, pull}

	rs := NewResourceSet(resources.Of(100, 500, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe1 := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(1, 10, 0)}}
	jobExe2 := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(2, 20, 0)}}

	sn.AcceptNodeTasks(time.Unix(0, 0), &[]ResourceBearer{})
	sn.AcceptJobExeNextTask(jobExe1, &[]ResourceBearer{})
	sn.AcceptJobExeNextTask(jobExe2, &[]ResourceBearer{})

	require.Len(t, sn.AllocatedTasks(), 2)
	require.Len(t, sn.AllocatedRunningJobExecutions(), 2)

	return sn, health, pull, jobExe1, jobExe2
}

func TestAddAllocatedOffers_EverythingFits(t *testing.T) {
	sn, _, _, _, _ := buildOffersNode(t)
	allRequired := resources.Of(0.2, 64, 0).Add(resources.Of(1, 10, 0)).Add(resources.Of(2, 20, 0))

	offer1 := NewOffer("offer_1", "agent_1", "fw", resources.Of(1, 0, 0), time.Unix(0, 0))
	offer2 := NewOffer("offer_2", "agent_1", "fw", allRequired, time.Unix(0, 0))
	offer3 := NewOffer("offer_3", "agent_1", "fw", resources.Of(7.5, 600, 800), time.Unix(0, 0))

	sn.AddAllocatedOffers([]Offer{offer1, offer2, offer3})

	assert.Equal(t, []Offer{offer1, offer2, offer3}, sn.AllocatedOffers())
	assert.Len(t, sn.AllocatedTasks(), 2)
	assert.Len(t, sn.AllocatedRunningJobExecutions(), 2)
	assert.Empty(t, sn.AllocatedQueuedJobExecutions())
	assert.True(t, sn.AllocatedResources().Equal(allRequired))
}

func TestAddAllocatedOffers_RemovesJobExesOnly(t *testing.T) {
	sn, _, _, _, _ := buildOffersNode(t)
	nodeTaskRes := resources.Of(0.2, 64, 0)

	offer1 := NewOffer("offer_1", "agent_1", "fw", resources.Of(0.5, 0, 0), time.Unix(0, 0))
	offer2 := NewOffer("offer_2", "agent_1", "fw", nodeTaskRes, time.Unix(0, 0))

	sn.AddAllocatedOffers([]Offer{offer1, offer2})

	assert.Len(t, sn.AllocatedTasks(), 2)
	assert.Empty(t, sn.AllocatedRunningJobExecutions())
	assert.Empty(t, sn.AllocatedQueuedJobExecutions())
	assert.True(t, sn.AllocatedResources().Equal(nodeTaskRes))
}

func TestAddAllocatedOffers_RemovesEverything(t *testing.T) {
	sn, _, _, _, _ := buildOffersNode(t)

	offer1 := NewOffer("offer_1", "agent_1", "fw", resources.Of(0.1, 600, 0), time.Unix(0, 0))
	sn.AddAllocatedOffers([]Offer{offer1})

	assert.Empty(t, sn.AllocatedTasks())
	assert.Empty(t, sn.AllocatedRunningJobExecutions())
	assert.Empty(t, sn.AllocatedQueuedJobExecutions())
	assert.True(t, sn.AllocatedResources().Equal(resources.Resources{}))
	assert.True(t, sn.RemainingResources().Equal(resources.Of(0.1, 600, 0)))
}

func TestResetNewJobExes(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(100, 500, 0), resources.Resources{}, resources.Of(100, 500, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe1 := &fakeQueuedJobExe{required: resources.Of(2, 60, 0)}
	jobExe2 := &fakeQueuedJobExe{required: resources.Of(4.5, 400, 0)}
	sn.AcceptNewJobExe(jobExe1)
	sn.AcceptNewJobExe(jobExe2)
	require.Len(t, sn.AllocatedQueuedJobExecutions(), 2)

	sn.ResetNewJobExes()

	assert.Empty(t, sn.AllocatedQueuedJobExecutions())
	assert.True(t, sn.AllocatedResources().Equal(resources.Resources{}))
	assert.True(t, sn.RemainingResources().Equal(resources.Of(100, 500, 0)))
}

func TestStartJobExeTasks(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(20, 100, 0), resources.Resources{}, resources.Of(200, 700, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	jobExe1 := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(10, 50, 0)}}
	jobExe2 := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(5, 25, 0)}}
	sn.AcceptJobExeNextTask(jobExe1, &[]ResourceBearer{})
	sn.AcceptJobExeNextTask(jobExe2, &[]ResourceBearer{})
	require.Len(t, sn.AllocatedRunningJobExecutions(), 2)

	jobExe1.canceled = true

	sn.StartJobExeTasks()

	assert.Empty(t, sn.AllocatedRunningJobExecutions())
	assert.Len(t, sn.AllocatedTasks(), 1)
}

func TestScoreJobExeForScheduling(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(20, 100, 0), resources.Of(100, 500, 0), resources.Of(200, 700, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	running := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(10, 50, 0)}}
	sn.AcceptJobExeNextTask(running, &[]ResourceBearer{})

	jobExe := &fakeQueuedJobExe{required: resources.Of(5, 40, 0)}
	candidates := []resources.Resources{
		resources.Of(2, 10, 0),
		resources.Of(85, 109, 0),
		resources.Of(86, 10, 0),
		resources.Of(2, 111, 0),
	}

	score := sn.ScoreJobExeForScheduling(jobExe, candidates)
	require.NotNil(t, score)
	assert.Equal(t, 2, *score)
}

func TestScoreJobExeForScheduling_InsufficientResources(t *testing.T) {
	node := newReadyNode("1")
	rs := NewResourceSet(resources.Of(20, 100, 0), resources.Of(100, 500, 0), resources.Of(200, 700, 0))
	sn := NewSchedulingNode("agent_1", node, nil, nil, rs)

	running := &fakeRunningJobExe{next: &fakeTask{res: resources.Of(10, 50, 0)}}
	sn.AcceptJobExeNextTask(running, &[]ResourceBearer{})

	jobExe := &fakeQueuedJobExe{required: resources.Of(91, 40, 0)}
	score := sn.ScoreJobExeForScheduling(jobExe, nil)
	assert.Nil(t, score)
}

func TestScoreJobExeForReservation(t *testing.T) {
	node := newReadyNode("1")
	health := &fakeTask{res: resources.Of(0.1, 32, 0)}
	rs := NewResourceSet(resources.Of(20, 100, 0), resources.Resources{}, resources.Of(200, 700, 0))

	existing1 := &fakeRunningJobExe{priority: 1000, scheduled: resources.Of(10, 50, 0)}
	existing2 := &fakeRunningJobExe{priority: 100, scheduled: resources.Of(56, 15, 0)}
	sn := NewSchedulingNode("agent_1", node, []ResourceBearer{health}, []RunningJobExecution{existing1, existing2}, rs)

	queued1 := &fakeQueuedJobExe{priority: 100, required: resources.Of(8, 40, 0)}
	queued2 := &fakeQueuedJobExe{priority: 1000, required: resources.Of(8, 40, 0)}
	sn.AcceptNewJobExe(queued1)
	sn.AcceptNewJobExe(queued2)

	jobExe := &fakeQueuedJobExe{priority: 120, required: resources.Of(130, 600, 0)}
	candidates := []resources.Resources{resources.Of(2, 10, 0), resources.Of(5.5, 12, 0), resources.Of(6, 10, 0), resources.Of(2, 14, 0)}

	score := sn.ScoreJobExeForReservation(jobExe, candidates)
	require.NotNil(t, score)
	assert.Equal(t, 2, *score)
}

func TestScoreJobExeForReservation_InsufficientResources(t *testing.T) {
	node := newReadyNode("1")
	health := &fakeTask{res: resources.Of(0.1, 32, 0)}
	rs := NewResourceSet(resources.Of(20, 100, 0), resources.Resources{}, resources.Of(200, 700, 0))

	existing1 := &fakeRunningJobExe{priority: 1000, scheduled: resources.Of(10, 50, 0)}
	existing2 := &fakeRunningJobExe{priority: 100, scheduled: resources.Of(56, 15, 0)}
	sn := NewSchedulingNode("agent_1", node, []ResourceBearer{health}, []RunningJobExecution{existing1, existing2}, rs)

	queued1 := &fakeQueuedJobExe{priority: 100, required: resources.Of(8, 40, 0)}
	queued2 := &fakeQueuedJobExe{priority: 1000, required: resources.Of(8, 40, 0)}
	sn.AcceptNewJobExe(queued1)
	sn.AcceptNewJobExe(queued2)

	jobExe := &fakeQueuedJobExe{priority: 120, required: resources.Of(140, 600, 0)}
	score := sn.ScoreJobExeForReservation(jobExe, []resources.Resources{resources.Of(2, 10, 0)})
	assert.Nil(t, score)
}
