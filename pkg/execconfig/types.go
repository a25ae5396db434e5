package execconfig

import "github.com/cuemby/warren/pkg/resources"

// TaskType identifies the role a task plays within an execution or on a
// node's maintenance surface.
type TaskType string

const (
	TaskPull       TaskType = "pull"
	TaskPre        TaskType = "pre"
	TaskMain       TaskType = "main"
	TaskPost       TaskType = "post"
	TaskHealth     TaskType = "health"
	TaskCleanup    TaskType = "cleanup"
	TaskNodeOther  TaskType = "node-other"
)

// WorkspaceMode is the access mode an execution is granted on a workspace.
type WorkspaceMode string

const (
	ModeRO WorkspaceMode = "RO"
	ModeRW WorkspaceMode = "RW"
)

// EnvVar is a single name/value pair. Task.Env is kept as an ordered slice
// (rather than a map) so that repeated builder passes over the same inputs
// always produce byte-identical output: insertion order is preserved and
// overwriting an existing name updates it in place instead of moving it to
// the end.
type EnvVar struct {
	Name  string
	Value string
}

// DockerParameter is a single (key, value) Docker launch parameter, e.g.
// ("env", "FOO=bar") or ("log-driver", "syslog"). Unlike Env, repeated keys
// are legal and meaningful (multiple "log-opt" entries, one "env" per
// variable), so ContainerParams is always a plain ordered slice.
type DockerParameter struct {
	Key   string
	Value string
}

// Volume describes a concrete mount: either a host bind-mount or a named
// driver-backed volume (the "nfs" driver carries a "share" option).
type Volume struct {
	Name         string
	ContainerPath string
	Mode         WorkspaceMode
	IsHost       bool
	HostPath     string
	Driver       string
	DriverOpts   map[string]string
}

// ToDockerParam renders the volume as the Docker CLI "-v" parameter used to
// bind it into a container. created is true when an earlier task in the
// same execution already issued the create-time volume options; later
// tasks bind the same named volume without repeating driver options.
func (v *Volume) ToDockerParam(created bool) DockerParameter {
	mode := "ro"
	if v.Mode == ModeRW {
		mode = "rw"
	}
	if v.IsHost {
		return DockerParameter{Key: "volume", Value: v.HostPath + ":" + v.ContainerPath + ":" + mode}
	}
	spec := v.Name + ":" + v.ContainerPath + ":" + mode
	if !created && v.Driver != "" {
		spec += ",volume-driver=" + v.Driver
		for k, optVal := range v.DriverOpts {
			spec += ",volume-opt=" + k + "=" + optVal
		}
	}
	return DockerParameter{Key: "volume", Value: spec}
}

// TaskWorkspace is a workspace name bound into a task with an access mode.
type TaskWorkspace struct {
	Name string
	Mode WorkspaceMode
}

// Task is a single container launch: either a phase of a job execution
// (pull/pre/main/post), or node maintenance (health/cleanup/node-other).
type Task struct {
	ID              string
	Type            TaskType
	AgentID         string
	Image           string
	Args            string
	Env             []EnvVar
	ContainerParams []DockerParameter
	Resources       resources.Resources
	// MountVolumes holds resolved mounts declared by the job interface,
	// keyed by mount name. A nil value means the mount could not be
	// resolved and is left as a placeholder for the launcher.
	MountVolumes map[string]*Volume
	// Workspaces holds the task-level workspace bindings (name -> mode).
	Workspaces map[string]TaskWorkspace
	// WorkspaceVolumes holds the materialised volume for each bound
	// workspace, once resolved against the workspace catalog.
	WorkspaceVolumes map[string]*Volume
	Settings         map[string]string
}

func newTask(id string, taskType TaskType) *Task {
	return &Task{
		ID:               id,
		Type:             taskType,
		MountVolumes:     map[string]*Volume{},
		Workspaces:       map[string]TaskWorkspace{},
		WorkspaceVolumes: map[string]*Volume{},
		Settings:         map[string]string{},
	}
}

// SetEnv inserts or updates an env var, preserving first-seen order.
func (t *Task) SetEnv(name, value string) {
	for i := range t.Env {
		if t.Env[i].Name == name {
			t.Env[i].Value = value
			return
		}
	}
	t.Env = append(t.Env, EnvVar{Name: name, Value: value})
}

// AddContainerParam appends a Docker parameter (duplicates allowed).
func (t *Task) AddContainerParam(key, value string) {
	t.ContainerParams = append(t.ContainerParams, DockerParameter{Key: key, Value: value})
}

// SetWorkspace binds a workspace name to a task with the given mode.
func (t *Task) SetWorkspace(name string, mode WorkspaceMode) {
	t.Workspaces[name] = TaskWorkspace{Name: name, Mode: mode}
}

// GetResources satisfies the resource-bearing contract the scheduler uses
// for both node maintenance tasks and execution next-tasks.
func (t *Task) GetResources() resources.Resources {
	return t.Resources
}
