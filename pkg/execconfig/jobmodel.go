package execconfig

import "github.com/cuemby/warren/pkg/resources"

// System job names that receive specialised workspace wiring at enqueue
// time (spec.md §6.2).
const (
	SystemJobIngest = "scale-ingest"
	SystemJobStrike = "scale-strike"
	SystemJobScan   = "scale-scan"
)

// InputDataItem is one entry of a job's declared input data: exactly one of
// Value, FileID, or FileIDs is set, matching the job interface's "value",
// "file_id" and "file_ids" input kinds.
type InputDataItem struct {
	Name    string
	Value   *string
	FileID  *int64
	FileIDs []int64
}

// JobData is the enqueue-time data payload of a job: its input values plus,
// for non-system jobs, the workspace each declared output should land in.
type JobData struct {
	InputData []InputDataItem
	// OutputWorkspaceIDs maps an output name to the workspace ID it should
	// be written to.
	OutputWorkspaceIDs map[string]int64
	// Properties holds free-form string properties consulted by
	// system-job workspace resolution (e.g. "Ingest ID", "workspace").
	Properties map[string]string
}

// Job is the enqueue-time view of a job the QueuedConfigurator consumes.
type Job struct {
	ID       int64
	Name     string // job type name, e.g. "scale-ingest" for system jobs
	IsSystem bool
	Data     JobData
	Interface Interface
}

// MountDecl is a mount declared by a job interface.
type MountDecl struct {
	Name string
	Mode WorkspaceMode
	Path string
}

// SettingDecl is a setting declared by a job interface.
type SettingDecl struct {
	Name   string
	Secret bool
}

// Interface is the job interface: the command line template, declared
// mounts, and declared settings.
type Interface struct {
	CommandArgs string
	Mounts      []MountDecl
	Settings    []SettingDecl
}

// JobType carries job-type level metadata consulted at dispatch time.
type JobType struct {
	Name               string
	Version            string
	IsSystem           bool
	SharedMemRequiredMiB float64
	ExtraDockerParams  []DockerParameter
}

// JobIndex returns the "<name>-<version>" key (dots replaced by
// underscores) used to look up job-type secrets in the vault.
func (jt JobType) JobIndex() string {
	s := jt.Name + "-" + jt.Version
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '.' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}

// WorkspaceVolumeSpec describes how a workspace resolves to storage: either
// a host bind (RemotePath on the agent host) or a named driver volume.
type WorkspaceVolumeSpec struct {
	IsHost     bool
	RemotePath string
	Driver     string // e.g. "nfs"
}

// WorkspaceModel is the catalog record for a named workspace.
type WorkspaceModel struct {
	Name   string
	Volume *WorkspaceVolumeSpec // nil if the workspace has no backing volume
}

// WorkspaceCatalog resolves workspace identities and backing volumes.
type WorkspaceCatalog interface {
	NameByID(id int64) (string, error)
	ByName(name string) (*WorkspaceModel, error)
}

// IngestCatalog resolves the workspace pair used by an old-style ingest job
// that does not carry its workspaces in job data.
type IngestCatalog interface {
	WorkspacesByIngestID(id int64) (workspace, newWorkspace string, err error)
}

// StrikeCatalog resolves the workspace configured for a Strike job.
type StrikeCatalog interface {
	WorkspaceForJob(jobID int64) (string, error)
}

// ScanCatalog resolves the workspace configured for a Scan job, trying the
// live job ID first and falling back to the dry-run job ID.
type ScanCatalog interface {
	WorkspaceForJob(jobID int64) (string, error)
	WorkspaceForDryRunJob(jobID int64) (string, error)
}

// JobTypeConfig resolves job-type-declared mount volumes and setting
// values (non-secret settings only; secret values come from the vault).
type JobTypeConfig interface {
	MountVolume(name, volumeName, path string, mode WorkspaceMode) *Volume
	SettingValue(name string) string
}

// SecretsResolver retrieves the non-hidden secret setting values declared by
// a job type, keyed by setting name.
type SecretsResolver interface {
	JobTypeSecrets(jobIndex string) (map[string]string, error)
}

// JobExecution is the schedule-time view of a job execution the
// ScheduledConfigurator consumes.
type JobExecution struct {
	ID            int64
	ClusterID     string
	DockerImage   string
	InputFileSize float64 // MiB, used to shrink main-task disk after pull
	Resources     resources.Resources
	Configuration *Configuration // the stored configuration, populated by ConfigureQueuedJob
}
