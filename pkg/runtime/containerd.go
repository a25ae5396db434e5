package runtime

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/cio"
	"github.com/containerd/containerd/namespaces"
	"github.com/containerd/containerd/oci"
	"github.com/cuemby/warren/pkg/execconfig"
	"github.com/cuemby/warren/pkg/resources"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

const (
	// DefaultNamespace is the containerd namespace scaled launches tasks in.
	DefaultNamespace = "scale"

	// DefaultSocketPath is the default containerd socket.
	DefaultSocketPath = "/run/containerd/containerd.sock"
)

// TaskState is the launcher-observed lifecycle state of a launched task,
// distinct from execconfig.TaskType (which names the task's role).
type TaskState string

const (
	TaskStatePending  TaskState = "pending"
	TaskStateRunning  TaskState = "running"
	TaskStateComplete TaskState = "complete"
	TaskStateFailed   TaskState = "failed"
)

// ContainerLauncher is the §6.1 contract: given a task's (image, args, env,
// container_params, mounts, resources, id), launch it and report its
// lifecycle. Plans produced by the configurators are consumed only through
// this interface; a concrete runtime's internals are a non-goal.
type ContainerLauncher interface {
	PullImage(ctx context.Context, imageRef string) error
	Launch(ctx context.Context, task *execconfig.Task, mounts []specs.Mount) (string, error)
	Start(ctx context.Context, launchedID string) error
	Stop(ctx context.Context, launchedID string, timeout time.Duration) error
	Delete(ctx context.Context, launchedID string) error
	Status(ctx context.Context, launchedID string) (TaskState, error)
}

// ContainerdRuntime implements ContainerLauncher using containerd, adapted
// from warren's container runtime adaptor to take an execconfig.Task
// instead of a types.Container.
type ContainerdRuntime struct {
	client    *containerd.Client
	namespace string
}

// NewContainerdRuntime creates a new containerd runtime client.
func NewContainerdRuntime(socketPath string) (*ContainerdRuntime, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	client, err := containerd.New(socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to containerd: %w", err)
	}

	return &ContainerdRuntime{
		client:    client,
		namespace: DefaultNamespace,
	}, nil
}

// Close closes the containerd client connection.
func (r *ContainerdRuntime) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// PullImage pulls a container image from a registry.
func (r *ContainerdRuntime) PullImage(ctx context.Context, imageRef string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	if _, err := r.client.Pull(ctx, imageRef, containerd.WithPullUnpack); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	return nil
}

// dockerParam looks up the first container param with the given key, for
// the handful of params (shm-size, etc.) containerd needs translated into
// OCI spec options rather than passed through verbatim.
func dockerParam(task *execconfig.Task, key string) (string, bool) {
	for _, p := range task.ContainerParams {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Launch creates (but does not start) a container for task, including its
// resolved mounts (secret tmpfs, workspace volumes, resolv.conf bind). The
// launcher trusts the caller (the execution engine) to have already applied
// the plan's container_params to env/log-driver rendering; here they are
// consulted only for the spec-level options containerd exposes directly.
func (r *ContainerdRuntime) Launch(ctx context.Context, task *execconfig.Task, mounts []specs.Mount) (string, error) {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	image, err := r.client.GetImage(ctx, task.Image)
	if err != nil {
		return "", fmt.Errorf("failed to get image %s: %w", task.Image, err)
	}

	env := make([]string, 0, len(task.Env))
	for _, e := range task.Env {
		env = append(env, e.Name+"="+e.Value)
	}

	opts := []oci.SpecOpts{
		oci.WithImageConfig(image),
		oci.WithEnv(env),
	}

	if cpu := task.Resources.Get(resources.CPUs); cpu > 0 {
		shares := uint64(cpu * 1024)
		quota := int64(cpu * 100000)
		period := uint64(100000)
		opts = append(opts, oci.WithCPUShares(shares), oci.WithCPUCFS(quota, period))
	}
	if mem := task.Resources.Get(resources.Mem); mem > 0 {
		opts = append(opts, oci.WithMemoryLimit(uint64(mem)))
	}
	if shm, ok := dockerParam(task, "shm-size"); ok {
		opts = append(opts, oci.WithDevShmSize(parseShmSizeKB(shm)))
	}

	if len(mounts) > 0 {
		opts = append(opts, oci.WithMounts(mounts))
	}

	ctrdContainer, err := r.client.NewContainer(
		ctx,
		task.ID,
		containerd.WithImage(image),
		containerd.WithNewSnapshot(task.ID+"-snapshot", image),
		containerd.WithNewSpec(opts...),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container for task %s: %w", task.ID, err)
	}

	return ctrdContainer.ID(), nil
}

// parseShmSizeKB converts a "64m"/"512k"/"1g" style shm-size docker
// parameter into kilobytes. Unparseable values fall back to 0 (containerd's
// own default).
func parseShmSizeKB(value string) int64 {
	if value == "" {
		return 0
	}
	var num int64
	var unit byte
	n, err := fmt.Sscanf(value, "%d%c", &num, &unit)
	if err != nil || n < 1 {
		return 0
	}
	switch unit {
	case 'g', 'G':
		return num * 1024 * 1024
	case 'm', 'M':
		return num * 1024
	case 'k', 'K':
		return num
	default:
		return num
	}
}

// Start starts a launched task.
func (r *ContainerdRuntime) Start(ctx context.Context, launchedID string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, launchedID)
	if err != nil {
		return fmt.Errorf("failed to load container %s: %w", launchedID, err)
	}

	task, err := container.NewTask(ctx, cio.NullIO)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := task.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}
	return nil
}

// Stop stops a running task, escalating from SIGTERM to SIGKILL if it does
// not exit within timeout.
func (r *ContainerdRuntime) Stop(ctx context.Context, launchedID string, timeout time.Duration) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, launchedID)
	if err != nil {
		return fmt.Errorf("failed to load container %s: %w", launchedID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := task.Kill(stopCtx, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to kill task: %w", err)
	}

	statusC, err := task.Wait(stopCtx)
	if err != nil {
		return fmt.Errorf("failed to wait for task: %w", err)
	}

	select {
	case <-statusC:
	case <-stopCtx.Done():
		if err := task.Kill(ctx, syscall.SIGKILL); err != nil {
			return fmt.Errorf("failed to force kill task: %w", err)
		}
	}

	if _, err := task.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Delete removes a launched task's container and snapshot, stopping it
// first if still running.
func (r *ContainerdRuntime) Delete(ctx context.Context, launchedID string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, launchedID)
	if err != nil {
		return nil
	}

	_ = r.Stop(ctx, launchedID, 10*time.Second)

	if err := container.Delete(ctx, containerd.WithSnapshotCleanup); err != nil {
		return fmt.Errorf("failed to delete container: %w", err)
	}
	return nil
}

// Status reports a launched task's lifecycle state.
func (r *ContainerdRuntime) Status(ctx context.Context, launchedID string) (TaskState, error) {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, launchedID)
	if err != nil {
		return TaskStateFailed, fmt.Errorf("failed to load container %s: %w", launchedID, err)
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return TaskStatePending, nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return TaskStateFailed, fmt.Errorf("failed to get task status: %w", err)
	}

	switch status.Status {
	case containerd.Running, containerd.Paused:
		return TaskStateRunning, nil
	case containerd.Stopped:
		if status.ExitStatus == 0 {
			return TaskStateComplete, nil
		}
		return TaskStateFailed, nil
	default:
		return TaskStatePending, nil
	}
}
