package scheduler

import (
	"time"

	"github.com/cuemby/warren/pkg/resources"
)

// ResourceBearer is anything that has a fixed resource footprint: a node
// maintenance task, or a job execution's next task.
type ResourceBearer interface {
	GetResources() resources.Resources
}

// RunningJobExecution is a job execution already scheduled on a node: it
// may have a next task ready to run, and carries enough identity to be
// weighed against other executions during reservation scoring.
type RunningJobExecution interface {
	// NextTask returns the execution's next task to run and true, or
	// (nil, false) if the execution has no next task (e.g. it was
	// canceled, or it has already completed all of its tasks).
	NextTask() (ResourceBearer, bool)
	// Priority orders job executions for reservation scoring: a lower
	// value means higher actual scheduling priority.
	Priority() int
	ScheduledResources() resources.Resources
}

// QueuedJobExecution is a job execution waiting to be placed on a node.
type QueuedJobExecution interface {
	RequiredResources() resources.Resources
	Priority() int
	SetProvidedNodeID(nodeID string)
}

// NodeView is the node-level state the scheduler consults: whether the
// node currently accepts new job executions or the next task of an
// in-progress execution, and what maintenance tasks it needs run this
// tick.
type NodeView interface {
	ID() string
	Hostname() string
	IsReadyForNewJob() bool
	IsReadyForNextJobTask() bool
	NextTasks() []ResourceBearer
}

// SchedulingNode accumulates one tick's worth of scheduling decisions for
// a single agent: which maintenance tasks, in-progress job execution next
// tasks, and newly queued job executions it can accept, given its offered
// resources. It is not safe for concurrent use; the scheduler owns one
// instance per agent per tick.
type SchedulingNode struct {
	AgentID string
	node    NodeView

	// currentTasks and currentJobExes describe resources already
	// committed to work that was accepted on a previous tick (used only
	// by reservation scoring, which looks ahead of this tick's offers).
	currentTasks   []ResourceBearer
	currentJobExes []RunningJobExecution

	resourceSet ResourceSet

	remainingResources resources.Resources
	allocatedResources resources.Resources

	allocatedTasks          []ResourceBearer
	allocatedOffers         []Offer
	allocatedRunningJobExes []RunningJobExecution
	allocatedQueuedJobExes  []QueuedJobExecution
}

// NewSchedulingNode creates a SchedulingNode. currentTasks and
// currentJobExes are the maintenance tasks and job executions already
// running on the node from prior ticks; resourceSet carries this tick's
// offered resources, the resources consumed by currently running tasks,
// and the node's total watermark capacity.
func NewSchedulingNode(agentID string, node NodeView, currentTasks []ResourceBearer, currentJobExes []RunningJobExecution, resourceSet ResourceSet) *SchedulingNode {
	return &SchedulingNode{
		AgentID:             agentID,
		node:                node,
		currentTasks:        currentTasks,
		currentJobExes:      currentJobExes,
		resourceSet:        resourceSet,
		remainingResources: resourceSet.Offered,
		allocatedResources: resources.Resources{},
	}
}

// AllocatedResources returns the resources committed so far this tick.
func (n *SchedulingNode) AllocatedResources() resources.Resources {
	return n.allocatedResources
}

// RemainingResources returns the resources left uncommitted this tick.
func (n *SchedulingNode) RemainingResources() resources.Resources {
	return n.remainingResources
}

// AllocatedTasks returns the maintenance tasks accepted this tick.
func (n *SchedulingNode) AllocatedTasks() []ResourceBearer {
	return n.allocatedTasks
}

// AllocatedOffers returns the resource offers added to the node this tick,
// in the order they were added.
func (n *SchedulingNode) AllocatedOffers() []Offer {
	return n.allocatedOffers
}

// AllocatedRunningJobExecutions returns the in-progress job executions
// whose next task was accepted this tick.
func (n *SchedulingNode) AllocatedRunningJobExecutions() []RunningJobExecution {
	return n.allocatedRunningJobExes
}

// AllocatedQueuedJobExecutions returns the newly queued job executions
// accepted onto this node this tick.
func (n *SchedulingNode) AllocatedQueuedJobExecutions() []QueuedJobExecution {
	return n.allocatedQueuedJobExes
}

func (n *SchedulingNode) accept(res resources.Resources) {
	n.allocatedResources = n.allocatedResources.Add(res)
	n.remainingResources = n.remainingResources.Subtract(res)
}

// AcceptNodeTasks accepts the node's maintenance tasks (health checks,
// image pulls, cleanup) for this tick if the remaining resources can cover
// all of them together. When they do not fit, every task is appended to
// waitingTasks and true is returned so the caller knows to retry later.
func (n *SchedulingNode) AcceptNodeTasks(now time.Time, waitingTasks *[]ResourceBearer) bool {
	tasks := n.node.NextTasks()
	if len(tasks) == 0 {
		return false
	}

	total := resources.Resources{}
	for _, t := range tasks {
		total = total.Add(t.GetResources())
	}

	if !n.remainingResources.Dominates(total) {
		*waitingTasks = append(*waitingTasks, tasks...)
		return true
	}

	n.accept(total)
	n.allocatedTasks = append(n.allocatedTasks, tasks...)
	return false
}

// AcceptJobExeNextTask accepts the next task of an already-running job
// execution if the node currently allows job-execution tasks and the
// remaining resources can cover it. A canceled execution (no next task)
// is silently dropped: it needs nothing further from this node.
func (n *SchedulingNode) AcceptJobExeNextTask(jobExe RunningJobExecution, waitingTasks *[]ResourceBearer) bool {
	if !n.node.IsReadyForNextJobTask() {
		return false
	}

	task, ok := jobExe.NextTask()
	if !ok {
		return false
	}

	if !n.remainingResources.Dominates(task.GetResources()) {
		*waitingTasks = append(*waitingTasks, task)
		return true
	}

	n.accept(task.GetResources())
	n.allocatedRunningJobExes = append(n.allocatedRunningJobExes, jobExe)
	return false
}

// AcceptNewJobExe accepts a newly queued job execution onto this node if
// the node currently allows new job executions and the remaining
// resources can cover its required resources. On acceptance, the
// execution is marked as provided by this node.
func (n *SchedulingNode) AcceptNewJobExe(jobExe QueuedJobExecution) bool {
	if !n.node.IsReadyForNewJob() {
		return false
	}

	if !n.remainingResources.Dominates(jobExe.RequiredResources()) {
		return false
	}

	n.accept(jobExe.RequiredResources())
	n.allocatedQueuedJobExes = append(n.allocatedQueuedJobExes, jobExe)
	jobExe.SetProvidedNodeID(n.node.ID())
	return true
}

// ResetNewJobExes undoes every newly queued job execution accepted this
// tick, returning their resources to the remaining pool. Used when a
// scheduling cycle decides to re-run reservation scoring from scratch.
func (n *SchedulingNode) ResetNewJobExes() {
	var total resources.Resources
	for _, jobExe := range n.allocatedQueuedJobExes {
		total = total.Add(jobExe.RequiredResources())
	}
	n.allocatedResources = n.allocatedResources.Subtract(total)
	n.remainingResources = n.remainingResources.Add(total)
	n.allocatedQueuedJobExes = nil
}

// AddAllocatedOffers folds newly granted resource offers into the node's
// tally. The combined offered resources may be smaller than what was
// already committed to maintenance tasks, in-progress job executions, and
// newly queued job executions; when that happens, allocations are shed in
// least-valuable-first order: newly accepted queued job executions go
// first, then in-progress job executions' next tasks, and maintenance
// tasks are kept until nothing else is left to shed, since node upkeep
// (health checks, image pulls, cleanup) is the most valuable work to
// preserve across a resource shortfall.
func (n *SchedulingNode) AddAllocatedOffers(offers []Offer) {
	n.allocatedOffers = append(n.allocatedOffers, offers...)

	offered := sumOffers(n.allocatedOffers)

	tasksRes := resources.Resources{}
	for _, t := range n.allocatedTasks {
		tasksRes = tasksRes.Add(t.GetResources())
	}
	runningRes := resources.Resources{}
	for _, jobExe := range n.allocatedRunningJobExes {
		if task, ok := jobExe.NextTask(); ok {
			runningRes = runningRes.Add(task.GetResources())
		}
	}
	queuedRes := resources.Resources{}
	for _, jobExe := range n.allocatedQueuedJobExes {
		queuedRes = queuedRes.Add(jobExe.RequiredResources())
	}

	tasksAndRunning := tasksRes.Add(runningRes)
	all := tasksAndRunning.Add(queuedRes)

	switch {
	case offered.Dominates(all):
		n.allocatedResources = all
	case offered.Dominates(tasksAndRunning):
		n.allocatedQueuedJobExes = nil
		n.allocatedResources = tasksAndRunning
	case offered.Dominates(tasksRes):
		n.allocatedRunningJobExes = nil
		n.allocatedQueuedJobExes = nil
		n.allocatedResources = tasksRes
	default:
		n.allocatedTasks = nil
		n.allocatedRunningJobExes = nil
		n.allocatedQueuedJobExes = nil
		n.allocatedResources = resources.Resources{}
	}

	n.remainingResources = offered.Subtract(n.allocatedResources)
}

// StartJobExeTasks promotes every in-progress job execution accepted this
// tick to an actual running task: executions that still have a next task
// move it onto the allocated task list, executions that were canceled in
// the interim contribute nothing. Either way, the executions are cleared
// from the running-job-execution tracking list once this call returns.
func (n *SchedulingNode) StartJobExeTasks() {
	for _, jobExe := range n.allocatedRunningJobExes {
		if task, ok := jobExe.NextTask(); ok {
			n.allocatedTasks = append(n.allocatedTasks, task)
		}
	}
	n.allocatedRunningJobExes = nil
}

// ScoreJobExeForScheduling reports how many of the given candidate
// resource shapes (ordered most to least preferred) would fit into the
// node's resources available for immediate scheduling right now: the
// node's watermark capacity, minus resources already consumed by running
// tasks outside this tick, minus what this tick has already allocated,
// minus the job execution's own required resources. Returns nil if the
// job execution itself does not fit.
func (n *SchedulingNode) ScoreJobExeForScheduling(jobExe QueuedJobExecution, candidates []resources.Resources) *int {
	available := n.resourceSet.Watermark.
		Subtract(n.resourceSet.Tasks).
		Subtract(n.allocatedResources).
		SignedSubtract(jobExe.RequiredResources())
	return scoreAgainst(available, candidates)
}

// ScoreJobExeForReservation reports how many of the given candidate
// resource shapes would fit into the resources this node could offer a
// job execution of the given priority, once work of strictly higher
// priority is accounted for: the node's watermark capacity, minus
// currently running maintenance tasks, minus already-running job
// executions of higher priority, minus newly queued job executions of
// higher priority accepted this tick, minus the job execution's own
// required resources. Returns nil if the job execution itself would not
// fit even with lower-priority work set aside.
func (n *SchedulingNode) ScoreJobExeForReservation(jobExe QueuedJobExecution, candidates []resources.Resources) *int {
	// Lower Priority() values mean higher actual scheduling priority, so
	// "higher priority than jobExe" means a strictly smaller number.
	priority := jobExe.Priority()

	higherRunning := resources.Resources{}
	for _, existing := range n.currentJobExes {
		if existing.Priority() < priority {
			higherRunning = higherRunning.Add(existing.ScheduledResources())
		}
	}
	higherQueued := resources.Resources{}
	for _, existing := range n.allocatedQueuedJobExes {
		if existing.Priority() < priority {
			higherQueued = higherQueued.Add(existing.RequiredResources())
		}
	}
	systemTasks := resources.Resources{}
	for _, t := range n.currentTasks {
		systemTasks = systemTasks.Add(t.GetResources())
	}

	available := n.resourceSet.Watermark.
		Subtract(systemTasks).
		Subtract(higherRunning).
		Subtract(higherQueued).
		SignedSubtract(jobExe.RequiredResources())
	return scoreAgainst(available, candidates)
}

// scoreAgainst counts how many leading candidates the signed available
// bag dominates, stopping at the first one that does not fit. Returns nil
// if available itself is already over-committed (any negative component).
func scoreAgainst(available map[string]float64, candidates []resources.Resources) *int {
	for _, v := range available {
		if v < -resources.Epsilon {
			return nil
		}
	}
	availableBag := resources.New(available)

	score := 0
	for _, candidate := range candidates {
		if !availableBag.Dominates(candidate) {
			break
		}
		score++
	}
	return &score
}
