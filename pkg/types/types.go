package types

import (
	"net"
	"time"
)

// Cluster represents the entire cluster: its managers and the worker
// agents the scheduler places job executions onto.
type Cluster struct {
	ID        string
	CreatedAt time.Time
	Managers  []*Node
	Workers   []*Node
}

// Node represents a manager or worker agent in the cluster. It is the
// cluster-wide entity the scheduler depends on but treats as externally
// supplied: callers project it into a scheduler.NodeView for the tick loop.
type Node struct {
	ID            string
	Role          NodeRole
	Address       string // Host IP address
	OverlayIP     net.IP // WireGuard overlay IP
	Hostname      string
	Labels        map[string]string
	Resources     *NodeResources
	Status        NodeStatus
	LastHeartbeat time.Time
	CreatedAt     time.Time
}

// NodeRole defines the role of a node.
type NodeRole string

const (
	NodeRoleManager NodeRole = "manager"
	NodeRoleWorker  NodeRole = "worker"
)

// NodeStatus represents the current state of a node.
type NodeStatus string

const (
	NodeStatusReady    NodeStatus = "ready"
	NodeStatusDown     NodeStatus = "down"
	NodeStatusDraining NodeStatus = "draining"
	NodeStatusUnknown  NodeStatus = "unknown"
)

// NodeResources tracks a node's total capacity and currently allocated
// resources, the watermark the scheduler's ResourceSet is built from.
type NodeResources struct {
	// Total capacity
	CPUCores    int
	MemoryBytes int64
	DiskBytes   int64

	// Currently allocated (reserved by tasks)
	CPUAllocated    float64
	MemoryAllocated int64
	DiskAllocated   int64
}
