package execconfig

import "github.com/cuemby/warren/pkg/resources"

// InputFile is a single file supplied to an execution through an input.
type InputFile struct {
	ID             int64
	WorkspaceRef   string
	WorkspacePath  string
	LocalFileName  string // set only when a basename collision occurred
}

// BaseName returns the name the file should be materialised under inside
// the input workspace: the collision-disambiguated name when one was
// assigned, otherwise the basename of WorkspacePath.
func (f *InputFile) BaseName() string {
	if f.LocalFileName != "" {
		return f.LocalFileName
	}
	return basename(f.WorkspacePath)
}

// Configuration is the structured per-execution launch plan: an ordered
// task list plus the per-task fields each task carries (args, env,
// container params, resources, mounts, workspaces, settings). Regular jobs
// carry the triad [pull, pre, main, post]; system jobs carry [main] only.
type Configuration struct {
	order []TaskType
	tasks map[TaskType]*Task

	// InputFiles holds the enqueue-time input file catalog, keyed by input
	// name, preserving the order files were declared for that input.
	InputFiles map[string][]*InputFile

	// OutputWorkspaces maps an output name to the workspace name it
	// resolves to. Populated only for regular (non-system) jobs.
	OutputWorkspaces map[string]string
}

// NewConfiguration returns an empty configuration with no tasks.
func NewConfiguration() *Configuration {
	return &Configuration{
		tasks:            map[TaskType]*Task{},
		InputFiles:       map[string][]*InputFile{},
		OutputWorkspaces: map[string]string{},
	}
}

// CreateTasks appends the given task types to the plan in order, each
// starting out empty. Calling CreateTasks a second time with an overlapping
// type is a no-op for that type (the existing task is kept).
func (c *Configuration) CreateTasks(types ...TaskType) {
	for _, t := range types {
		if _, exists := c.tasks[t]; exists {
			continue
		}
		c.order = append(c.order, t)
		c.tasks[t] = newTask("", t)
	}
}

// Task returns the task of the given type, or nil if it was never created.
func (c *Configuration) Task(taskType TaskType) *Task {
	return c.tasks[taskType]
}

// TaskTypes returns the task types present in the plan, in creation order.
func (c *Configuration) TaskTypes() []TaskType {
	out := make([]TaskType, len(c.order))
	copy(out, c.order)
	return out
}

// HasPullTask reports whether the plan includes the pull/pre/post triad.
func (c *Configuration) HasPullTask() bool {
	_, ok := c.tasks[TaskPull]
	return ok
}

// SetTaskIDs assigns task IDs of the form "<clusterID>_<type>" to every
// task in the plan.
func (c *Configuration) SetTaskIDs(clusterID string) {
	for _, t := range c.order {
		c.tasks[t].ID = clusterID + "_" + string(t)
	}
}

// TaskID returns the assigned ID for the given task type, or "" if unset.
func (c *Configuration) TaskID(taskType TaskType) string {
	if t, ok := c.tasks[taskType]; ok {
		return t.ID
	}
	return ""
}

// AddToTask merges the given fields onto the named task, creating it if
// necessary (mirrors the original "add_to_task" accumulation pattern: each
// call only ever adds, never removes, from what is already on the task).
func (c *Configuration) AddToTask(taskType TaskType, fn func(t *Task)) {
	t, ok := c.tasks[taskType]
	if !ok {
		t = newTask("", taskType)
		c.tasks[taskType] = t
		c.order = append(c.order, taskType)
	}
	fn(t)
}

// InputWorkspaceNames returns the distinct set of workspace names that the
// execution's input files live in.
func (c *Configuration) InputWorkspaceNames() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, files := range c.InputFiles {
		for _, f := range files {
			if _, ok := seen[f.WorkspaceRef]; !ok {
				seen[f.WorkspaceRef] = struct{}{}
				names = append(names, f.WorkspaceRef)
			}
		}
	}
	return names
}

// Clone returns a deep copy of the configuration, used to produce the
// redacted/hydrated pair that differ only in secret values.
func (c *Configuration) Clone() *Configuration {
	out := NewConfiguration()
	out.order = append(out.order, c.order...)
	for taskType, t := range c.tasks {
		out.tasks[taskType] = cloneTask(t)
	}
	for name, files := range c.InputFiles {
		cp := make([]*InputFile, len(files))
		for i, f := range files {
			fc := *f
			cp[i] = &fc
		}
		out.InputFiles[name] = cp
	}
	for k, v := range c.OutputWorkspaces {
		out.OutputWorkspaces[k] = v
	}
	return out
}

func cloneTask(t *Task) *Task {
	c := &Task{
		ID:        t.ID,
		Type:      t.Type,
		AgentID:   t.AgentID,
		Image:     t.Image,
		Args:      t.Args,
		Resources: t.Resources,
	}
	c.Env = append(c.Env, t.Env...)
	c.ContainerParams = append(c.ContainerParams, t.ContainerParams...)
	c.MountVolumes = map[string]*Volume{}
	for k, v := range t.MountVolumes {
		if v == nil {
			c.MountVolumes[k] = nil
			continue
		}
		vc := *v
		c.MountVolumes[k] = &vc
	}
	c.Workspaces = map[string]TaskWorkspace{}
	for k, v := range t.Workspaces {
		c.Workspaces[k] = v
	}
	c.WorkspaceVolumes = map[string]*Volume{}
	for k, v := range t.WorkspaceVolumes {
		if v == nil {
			c.WorkspaceVolumes[k] = nil
			continue
		}
		vc := *v
		c.WorkspaceVolumes[k] = &vc
	}
	c.Settings = map[string]string{}
	for k, v := range t.Settings {
		c.Settings[k] = v
	}
	return c
}

// TotalResources sums the resource vectors of every task in the plan.
func (c *Configuration) TotalResources() resources.Resources {
	total := resources.Resources{}
	for _, t := range c.tasks {
		total = total.Add(t.Resources)
	}
	return total
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
