package execconfig

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/resources"
)

const cleanupTaskIDPrefix = "scale_cleanup"

// cleanupCounter makes successive cleanup task IDs unique within a process,
// mirroring the original's AtomicCounter.
var cleanupCounter int64

func nextCleanupCounter() int64 {
	n := atomic.AddInt64(&cleanupCounter, 1) - 1
	metrics.CleanupTasksCreatedTotal.Set(float64(n + 1))
	return n
}

// RunningExecution is the minimal view of a running job execution the
// cleanup planner needs: the container names Docker assigned to its
// tasks, and the named Docker volumes it created.
type RunningExecution struct {
	ContainerNames []string
	DockerVolumes  []string
}

// CleanupTask is the node-maintenance task that removes stopped Docker
// containers and dangling volumes. With no executions given it is an
// "initial cleanup" that sweeps every non-running container and every
// dangling scale_-prefixed volume on the node; otherwise it targets only
// the containers/volumes belonging to the given executions.
type CleanupTask struct {
	ID               string
	AgentID          string
	FrameworkID      string
	Executions       []RunningExecution
	IsInitialCleanup bool
	Command          string
}

// NewCleanupTask builds a CleanupTask for the given agent. Pass no
// executions to build an initial (node-wide) cleanup.
func NewCleanupTask(frameworkID, agentID string, executions []RunningExecution) *CleanupTask {
	t := &CleanupTask{
		ID:               fmt.Sprintf("%s_%s_%d", cleanupTaskIDPrefix, frameworkID, nextCleanupCounter()),
		AgentID:          agentID,
		FrameworkID:      frameworkID,
		Executions:       executions,
		IsInitialCleanup: len(executions) == 0,
	}
	t.Command = t.buildCommand()
	return t
}

// GetResources returns the fixed resource footprint of a cleanup task.
func (t *CleanupTask) GetResources() resources.Resources {
	return resources.New(map[string]float64{resources.CPUs: 0.1, resources.Mem: 32.0})
}

const (
	allContainersCmd           = `docker ps -a --format '{{.Names}}'`
	nonrunningFilters          = `-f status=created -f status=dead -f status=exited`
	allNonrunningContainersCmd = `docker ps ` + nonrunningFilters + ` --format '{{.Names}}'`
	allVolumesCmd              = `docker volume ls -q`
	allScaleDanglingVolumesCmd = `docker volume ls -f dangling=true -q | grep scale_`
	containerDeleteCmd         = `docker rm $cont`
	volumeDeleteCmd            = `docker volume rm $vol`
)

// buildCommand constructs the shell command the launcher runs on the node,
// grounded on cleanup_task.py's three command pieces: delete target
// containers, delete any stuck containers blocking volume removal, then
// delete target volumes.
func (t *CleanupTask) buildCommand() string {
	isScaleContainer := fmt.Sprintf("docker inspect $cont | grep -q %s", t.FrameworkID)

	var containerListCmd, volumeListCmd, deleteStuckContainerCmd string
	if t.IsInitialCleanup {
		containerListCmd = allNonrunningContainersCmd
		volumeListCmd = allScaleDanglingVolumesCmd
		deleteStuckContainerCmd = ":"
	} else {
		var containers, volumes []string
		for _, exe := range t.Executions {
			containers = append(containers, exe.ContainerNames...)
			volumes = append(volumes, exe.DockerVolumes...)
		}
		containerListCmd = fmt.Sprintf("%s | grep -e %s", allContainersCmd, strings.Join(containers, " -e "))
		volumeListCmd = fmt.Sprintf("%s | grep -e %s", allVolumesCmd, strings.Join(volumes, " -e "))
		deleteStuckContainerCmd = forCmd("cont", allNonrunningContainersCmd, ifCmd(isScaleContainer, containerDeleteCmd, ":"))
	}

	deleteContainersCmd := forCmd("cont", containerListCmd, containerDeleteCmd)
	deleteVolumesCmd := forCmd("vol", volumeListCmd, volumeDeleteCmd)

	return fmt.Sprintf("%s; %s; %s", deleteContainersCmd, deleteStuckContainerCmd, deleteVolumesCmd)
}

func ifCmd(cond, then, els string) string {
	return fmt.Sprintf("if %s ; then %s ; else %s ; fi", cond, then, els)
}

func forCmd(varName, listCmd, body string) string {
	return fmt.Sprintf("for %s in `%s`; do %s; done", varName, listCmd, body)
}
