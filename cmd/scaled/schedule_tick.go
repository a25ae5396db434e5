package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/resources"
	"github.com/cuemby/warren/pkg/scheduler"
	"github.com/spf13/cobra"
)

// newScheduleTickCommand runs exactly one scheduling pass against a
// snapshot file and prints the resulting placements, for operational
// debugging of the scoring/shedding logic without standing up a cluster.
func newScheduleTickCommand() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "schedule-tick",
		Short: "run one scheduling tick against a snapshot file and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.WithComponent("cmd")

			data, err := os.ReadFile(snapshotPath)
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			var snap tickSnapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("failed to parse snapshot: %w", err)
			}

			runner := scheduler.NewRunner(snap.toSource())
			results, err := runner.Tick(time.Now())
			if err != nil {
				logger.Error().Err(err).Msg("scheduling tick failed")
				return err
			}

			out, err := json.MarshalIndent(tickResultsToJSON(results), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "path to a JSON agent/queue snapshot file")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

// --- Snapshot JSON schema and adapters onto the scheduler's interfaces ---
//
// The scheduler package depends only on small interfaces (NodeView,
// ResourceBearer, RunningJobExecution, QueuedJobExecution) so that whatever
// owns cluster membership and job execution state can implement them
// directly. With pkg/manager out of scope, this command is that owner for
// one-off debugging: it decodes a flat JSON snapshot into concrete types
// implementing those interfaces and feeds them to scheduler.Runner.

type resourceMap map[string]float64

func (m resourceMap) toResources() resources.Resources {
	return resources.New(m)
}

type tickTask struct {
	Resources resourceMap `json:"resources"`
}

func (t tickTask) GetResources() resources.Resources { return t.Resources.toResources() }

type tickRunningJobExe struct {
	PriorityValue          int         `json:"priority"`
	ScheduledResourcesMap  resourceMap `json:"scheduledResources"`
	NextTaskResources      resourceMap `json:"nextTaskResources"`
	NextTaskPresent        bool        `json:"hasNextTask"`
}

func (e tickRunningJobExe) NextTask() (scheduler.ResourceBearer, bool) {
	if !e.NextTaskPresent {
		return nil, false
	}
	return tickTask{Resources: e.NextTaskResources}, true
}
func (e tickRunningJobExe) Priority() int                          { return e.PriorityValue }
func (e tickRunningJobExe) ScheduledResources() resources.Resources { return e.ScheduledResourcesMap.toResources() }

type tickQueuedJobExe struct {
	ID                   string      `json:"id"`
	PriorityValue        int         `json:"priority"`
	RequiredResourcesMap resourceMap `json:"requiredResources"`
	providedNodeID       string
}

func (e *tickQueuedJobExe) RequiredResources() resources.Resources { return e.RequiredResourcesMap.toResources() }
func (e *tickQueuedJobExe) Priority() int                          { return e.PriorityValue }
func (e *tickQueuedJobExe) SetProvidedNodeID(nodeID string)        { e.providedNodeID = nodeID }

type tickNode struct {
	AgentIDValue      string      `json:"agentID"`
	HostnameValue     string      `json:"hostname"`
	ReadyForNewJob    bool        `json:"readyForNewJob"`
	ReadyForNextTask  bool        `json:"readyForNextJobTask"`
	MaintenanceTasks  []tickTask  `json:"maintenanceTasks"`
}

func (n tickNode) ID() string                 { return n.AgentIDValue }
func (n tickNode) Hostname() string           { return n.HostnameValue }
func (n tickNode) IsReadyForNewJob() bool     { return n.ReadyForNewJob }
func (n tickNode) IsReadyForNextJobTask() bool { return n.ReadyForNextTask }
func (n tickNode) NextTasks() []scheduler.ResourceBearer {
	bearers := make([]scheduler.ResourceBearer, len(n.MaintenanceTasks))
	for i, t := range n.MaintenanceTasks {
		bearers[i] = t
	}
	return bearers
}

type tickAgent struct {
	Node           tickNode            `json:"node"`
	Offers         []resourceMap       `json:"offers"`
	CurrentTasks   []tickTask          `json:"currentTasks"`
	RunningJobExes []tickRunningJobExe `json:"runningJobExes"`
	Watermark      resourceMap         `json:"watermark"`
}

type tickSnapshot struct {
	Agents []tickAgent        `json:"agents"`
	Queued []tickQueuedJobExe `json:"queued"`
}

type jsonSource struct {
	snapshot tickSnapshot
}

func (s tickSnapshot) toSource() scheduler.Source {
	return jsonSource{snapshot: s}
}

func (s jsonSource) AgentSnapshots() ([]scheduler.AgentSnapshot, error) {
	out := make([]scheduler.AgentSnapshot, len(s.snapshot.Agents))
	for i, a := range s.snapshot.Agents {
		offers := make([]scheduler.Offer, len(a.Offers))
		for j, o := range a.Offers {
			offers[j] = scheduler.NewOffer(fmt.Sprintf("%s-offer-%d", a.Node.AgentIDValue, j), a.Node.AgentIDValue, "", o.toResources(), time.Now())
		}
		currentTasks := make([]scheduler.ResourceBearer, len(a.CurrentTasks))
		for j, t := range a.CurrentTasks {
			currentTasks[j] = t
		}
		runningJobExes := make([]scheduler.RunningJobExecution, len(a.RunningJobExes))
		for j, e := range a.RunningJobExes {
			runningJobExes[j] = e
		}
		out[i] = scheduler.AgentSnapshot{
			AgentID:        a.Node.AgentIDValue,
			Node:           a.Node,
			Offers:         offers,
			CurrentTasks:   currentTasks,
			CurrentJobExes: runningJobExes,
			Watermark:      a.Watermark.toResources(),
		}
	}
	return out, nil
}

func (s jsonSource) QueuedJobExecutions() ([]scheduler.QueuedJobExecution, error) {
	out := make([]scheduler.QueuedJobExecution, len(s.snapshot.Queued))
	for i := range s.snapshot.Queued {
		out[i] = &s.snapshot.Queued[i]
	}
	return out, nil
}

type tickResultJSON struct {
	AgentID                string             `json:"agentID"`
	AllocatedTasks         int                `json:"allocatedTasks"`
	AllocatedQueuedJobExes int                `json:"allocatedQueuedJobExecutions"`
	RemainingResourcesJSON map[string]float64 `json:"remainingResources"`
}

func tickResultsToJSON(results []scheduler.TickResult) []tickResultJSON {
	out := make([]tickResultJSON, len(results))
	for i, r := range results {
		out[i] = tickResultJSON{
			AgentID:               r.AgentID,
			AllocatedTasks:         len(r.AllocatedTasks),
			AllocatedQueuedJobExes: len(r.AllocatedQueuedJobExes),
			RemainingResourcesJSON: r.RemainingResources.ToJSON(),
		}
	}
	return out
}
