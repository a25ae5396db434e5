package job

import (
	"fmt"

	"github.com/cuemby/warren/pkg/execconfig"
)

// WorkspaceCatalog is an in-memory execconfig.WorkspaceCatalog, used by
// tests and small single-node deployments.
type WorkspaceCatalog struct {
	byID   map[int64]string
	byName map[string]*execconfig.WorkspaceModel
}

// NewWorkspaceCatalog creates an empty WorkspaceCatalog.
func NewWorkspaceCatalog() *WorkspaceCatalog {
	return &WorkspaceCatalog{
		byID:   make(map[int64]string),
		byName: make(map[string]*execconfig.WorkspaceModel),
	}
}

// Add registers a workspace under both its id and name.
func (c *WorkspaceCatalog) Add(id int64, model *execconfig.WorkspaceModel) {
	c.byID[id] = model.Name
	c.byName[model.Name] = model
}

func (c *WorkspaceCatalog) NameByID(id int64) (string, error) {
	name, ok := c.byID[id]
	if !ok {
		return "", fmt.Errorf("workspace id %d not found", id)
	}
	return name, nil
}

func (c *WorkspaceCatalog) ByName(name string) (*execconfig.WorkspaceModel, error) {
	model, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("workspace %q not found", name)
	}
	return model, nil
}

// IngestCatalog is an in-memory execconfig.IngestCatalog.
type IngestCatalog struct {
	byID map[int64][2]string // [workspace, newWorkspace]
}

// NewIngestCatalog creates an empty IngestCatalog.
func NewIngestCatalog() *IngestCatalog {
	return &IngestCatalog{byID: make(map[int64][2]string)}
}

// Add registers the workspace pair for an old-style ingest id.
func (c *IngestCatalog) Add(id int64, workspace, newWorkspace string) {
	c.byID[id] = [2]string{workspace, newWorkspace}
}

func (c *IngestCatalog) WorkspacesByIngestID(id int64) (string, string, error) {
	pair, ok := c.byID[id]
	if !ok {
		return "", "", fmt.Errorf("ingest id %d not found", id)
	}
	return pair[0], pair[1], nil
}

// StrikeCatalog is an in-memory execconfig.StrikeCatalog.
type StrikeCatalog struct {
	byJobID map[int64]string
}

// NewStrikeCatalog creates an empty StrikeCatalog.
func NewStrikeCatalog() *StrikeCatalog {
	return &StrikeCatalog{byJobID: make(map[int64]string)}
}

// Add registers the workspace configured for a Strike job.
func (c *StrikeCatalog) Add(jobID int64, workspace string) {
	c.byJobID[jobID] = workspace
}

func (c *StrikeCatalog) WorkspaceForJob(jobID int64) (string, error) {
	ws, ok := c.byJobID[jobID]
	if !ok {
		return "", fmt.Errorf("strike job %d not found", jobID)
	}
	return ws, nil
}

// ScanCatalog is an in-memory execconfig.ScanCatalog, resolving by live job
// id first and falling back to the dry-run job id, matching the original's
// two-lookup fallback.
type ScanCatalog struct {
	byJobID       map[int64]string
	byDryRunJobID map[int64]string
}

// NewScanCatalog creates an empty ScanCatalog.
func NewScanCatalog() *ScanCatalog {
	return &ScanCatalog{
		byJobID:       make(map[int64]string),
		byDryRunJobID: make(map[int64]string),
	}
}

// AddLive registers the workspace for a live Scan job id.
func (c *ScanCatalog) AddLive(jobID int64, workspace string) {
	c.byJobID[jobID] = workspace
}

// AddDryRun registers the workspace for a dry-run Scan job id.
func (c *ScanCatalog) AddDryRun(jobID int64, workspace string) {
	c.byDryRunJobID[jobID] = workspace
}

func (c *ScanCatalog) WorkspaceForJob(jobID int64) (string, error) {
	ws, ok := c.byJobID[jobID]
	if !ok {
		return "", fmt.Errorf("scan job %d not found", jobID)
	}
	return ws, nil
}

func (c *ScanCatalog) WorkspaceForDryRunJob(jobID int64) (string, error) {
	ws, ok := c.byDryRunJobID[jobID]
	if !ok {
		return "", fmt.Errorf("scan dry-run job %d not found", jobID)
	}
	return ws, nil
}
