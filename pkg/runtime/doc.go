/*
Package runtime implements the container launcher the execution-
configuration plans are consumed by: the §6.1 contract of (image, args,
env, container_params, mounts, resources, id) per task.

The package defines ContainerLauncher, the interface scale's execution
engine calls against, and ContainerdRuntime, a containerd-backed reference
implementation adapted from warren's container runtime adaptor to take an
*execconfig.Task instead of warren's types.Container.

# Architecture

	┌─────────────────── CONTAINERD RUNTIME ────────────────────┐
	│                                                             │
	│  ┌──────────────────────────────────────────────┐         │
	│  │        ContainerdRuntime Client               │         │
	│  │  - Socket: /run/containerd/containerd.sock    │         │
	│  │  - Namespace: scale                           │         │
	│  └──────────────────┬───────────────────────────┘         │
	│                     │                                       │
	│  ┌──────────────────▼───────────────────────────┐         │
	│  │           Image Operations                    │         │
	│  │  - Pull images from registries                │         │
	│  │  - Unpack for snapshot creation                │         │
	│  └──────────────────┬───────────────────────────┘         │
	│                     │                                       │
	│  ┌──────────────────▼───────────────────────────┐         │
	│  │        Task Lifecycle (ContainerLauncher)      │         │
	│  │  - Launch: Generate OCI spec from execconfig.Task│       │
	│  │  - Start: Launch container process              │         │
	│  │  - Stop: Graceful shutdown (SIGTERM→SIGKILL)    │         │
	│  │  - Delete: Cleanup container and snapshot       │         │
	│  └──────────────────┬───────────────────────────┘         │
	│                     │                                       │
	│  ┌──────────────────▼───────────────────────────┐         │
	│  │         Resource & Mount Application           │         │
	│  │  - CPU: Shares (1024 = 1 core) + CFS quota     │         │
	│  │  - Memory: Hard limits in bytes                │         │
	│  │  - Mounts: secrets tmpfs, workspace volumes,    │         │
	│  │    resolv.conf, all passed in by the caller      │         │
	│  └────────────────────────────────────────────────┘        │
	└─────────────────────────────────────────────────────────┘

# Usage

	rt, err := runtime.NewContainerdRuntime("")
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	if err := rt.PullImage(ctx, task.Image); err != nil {
		log.Fatal(err)
	}

	id, err := rt.Launch(ctx, task, mounts)
	if err != nil {
		log.Fatal(err)
	}
	if err := rt.Start(ctx, id); err != nil {
		log.Fatal(err)
	}

	status, err := rt.Status(ctx, id)
	if status == runtime.TaskStateComplete {
		// ...
	}

	rt.Stop(ctx, id, 30*time.Second)
	rt.Delete(ctx, id)

# Non-goals

The runtime adaptor's internals (OCI spec generation details, snapshotter
choice, containerd binary management) are a non-goal per spec.md §1; only
the launcher's input/output contract is in scope, exercised here by a
concrete containerd-backed implementation.

# See Also

  - pkg/execconfig for the Task type this package consumes
  - containerd documentation: https://containerd.io/
  - OCI runtime spec: https://github.com/opencontainers/runtime-spec
*/
package runtime
