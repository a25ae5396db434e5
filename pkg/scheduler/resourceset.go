package scheduler

import "github.com/cuemby/warren/pkg/resources"

// ResourceSet captures the three resource quantities a node's scheduling
// decisions are made against on a given tick:
//
//   - Offered: the resources actually granted to the scheduler this tick
//     (the sum of the node's resource offers).
//   - Tasks: resources already consumed by tasks that were scheduled on
//     previous ticks and are still running (outside this tick's
//     acceptance bookkeeping).
//   - Watermark: the node's total registered capacity, used as the
//     baseline for reservation and scheduling scores, which look ahead of
//     what has actually been offered this tick.
type ResourceSet struct {
	Offered   resources.Resources
	Tasks     resources.Resources
	Watermark resources.Resources
}

// NewResourceSet creates a ResourceSet.
func NewResourceSet(offered, tasks, watermark resources.Resources) ResourceSet {
	return ResourceSet{Offered: offered, Tasks: tasks, Watermark: watermark}
}
