/*
Package types defines the cluster-wide entities scaled's scheduler depends
on but treats as externally supplied: node identity, role, status, and
registered resource capacity.

# Core Types

  - Cluster: the managers and worker agents in a cluster.
  - Node: a single manager or worker agent (ID, role, address, labels,
    resources, status, last heartbeat).
  - NodeRole / NodeStatus: typed string enums for a node's role and
    current health.
  - NodeResources: a node's total capacity and currently allocated
    resources, the basis of the scheduler's watermark.

# Usage

Node is projected into a scheduler.NodeView by whatever component owns
cluster membership, before being handed to the scheduling tick:

	node := &types.Node{ID: "agent-1", Role: types.NodeRoleWorker, Status: types.NodeStatusReady}

Everything beyond node identity and resource capacity — service specs,
task lifecycles, secrets, volumes, ingress rules — belongs to warren's
container-orchestration domain model and is out of scope here; see
DESIGN.md for what was dropped and why.
*/
package types
