package execconfig

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/scaleerrors"
)

// ScaleFile is the minimal catalog-backed view of an input file the
// QueuedConfigurator needs: its workspace and path within that workspace.
type ScaleFile struct {
	ID            int64
	WorkspaceName string
	WorkspacePath string
}

// QueuedConfigurator builds the initial execution configuration at enqueue
// time, from job data, the input file catalog, and (for system jobs) the
// ingest/strike/scan catalogs.
type QueuedConfigurator struct {
	inputFiles map[int64]*ScaleFile

	workspaces    WorkspaceCatalog
	ingests       IngestCatalog
	strikes       StrikeCatalog
	scans         ScanCatalog
	cachedNames   map[int64]string
}

// NewQueuedConfigurator creates a configurator for a set of input files
// keyed by Scale file ID, plus the catalogs needed to resolve system-job
// workspaces.
func NewQueuedConfigurator(inputFiles map[int64]*ScaleFile, workspaces WorkspaceCatalog, ingests IngestCatalog, strikes StrikeCatalog, scans ScanCatalog) *QueuedConfigurator {
	return &QueuedConfigurator{
		inputFiles:  inputFiles,
		workspaces:  workspaces,
		ingests:     ingests,
		strikes:     strikes,
		scans:       scans,
		cachedNames: map[int64]string{},
	}
}

// ConfigureQueuedJob creates and returns an execution configuration for the
// given queued job, per spec.md §4.4.
func (qc *QueuedConfigurator) ConfigureQueuedJob(job *Job) (*Configuration, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ExecConfigBuildDuration, "queued")

	config := NewConfiguration()

	inputFilesDict, err := qc.createInputFileDict(job)
	if err != nil {
		return nil, err
	}
	config.InputFiles = inputFilesDict

	envVars, err := qc.buildInputEnvVars(job, inputFilesDict)
	if err != nil {
		return nil, err
	}

	taskWorkspaces := map[string]TaskWorkspace{}
	if job.IsSystem {
		ws, err := qc.systemJobWorkspaces(job)
		if err != nil {
			return nil, err
		}
		taskWorkspaces = ws
	} else {
		outputWorkspaces, err := qc.resolveOutputWorkspaces(job)
		if err != nil {
			return nil, err
		}
		config.OutputWorkspaces = outputWorkspaces
	}

	envNames := make([]string, 0, len(envVars))
	for name := range envVars {
		envNames = append(envNames, name)
	}
	sort.Strings(envNames)

	config.CreateTasks(TaskMain)
	config.AddToTask(TaskMain, func(t *Task) {
		t.Args = job.Interface.CommandArgs
		for _, name := range envNames {
			t.SetEnv(name, envVars[name])
		}
		for name, ws := range taskWorkspaces {
			t.Workspaces[name] = ws
		}
	})

	return config, nil
}

// createInputFileDict builds the input-name -> ordered file list map,
// disambiguating basename collisions within a single input's file list by
// prefixing the Scale file ID (spec.md §3, Input file descriptor).
func (qc *QueuedConfigurator) createInputFileDict(job *Job) (map[string][]*InputFile, error) {
	filesByInput := map[string][]int64{}
	for _, item := range job.Data.InputData {
		if item.FileID != nil {
			filesByInput[item.Name] = append(filesByInput[item.Name], *item.FileID)
		}
		if item.FileIDs != nil {
			filesByInput[item.Name] = append(filesByInput[item.Name], item.FileIDs...)
		}
	}

	result := map[string][]*InputFile{}
	for inputName, fileIDs := range filesByInput {
		var list []*InputFile
		seenNames := map[string]struct{}{}
		for _, fileID := range fileIDs {
			sf, ok := qc.inputFiles[fileID]
			if !ok {
				return nil, fmt.Errorf("%w: input file %d not found in catalog", scaleerrors.ErrInvalidMetadata, fileID)
			}
			inputFile := &InputFile{ID: sf.ID, WorkspaceRef: sf.WorkspaceName, WorkspacePath: sf.WorkspacePath}
			name := basename(sf.WorkspacePath)
			if _, collides := seenNames[name]; collides {
				inputFile.LocalFileName = fmt.Sprintf("%d.%s", sf.ID, name)
				name = inputFile.LocalFileName
			}
			seenNames[name] = struct{}{}
			list = append(list, inputFile)
		}
		result[inputName] = list
	}
	return result, nil
}

// buildInputEnvVars derives env vars from job_data.input_data: a scalar
// value maps directly, a file_id input maps to its resolved path under
// InputRoot, and a file_ids input maps to its input directory.
func (qc *QueuedConfigurator) buildInputEnvVars(job *Job, inputFiles map[string][]*InputFile) (map[string]string, error) {
	envVars := map[string]string{}
	for _, item := range job.Data.InputData {
		envName := NormalizeEnvVarName(item.Name)
		switch {
		case item.Value != nil:
			envVars[envName] = *item.Value
		case item.FileID != nil:
			files, ok := inputFiles[item.Name]
			if !ok || len(files) == 0 {
				return nil, fmt.Errorf("%w: no input file resolved for %q", scaleerrors.ErrInvalidMetadata, item.Name)
			}
			envVars[envName] = InputRoot + "/" + item.Name + "/" + files[0].BaseName()
		case item.FileIDs != nil:
			envVars[envName] = InputRoot + "/" + item.Name
		}
	}
	return envVars, nil
}

// resolveOutputWorkspaces caches workspace names by ID and resolves each
// declared output to its workspace name.
//
// This loop iterates JobData.OutputWorkspaceIDs. The original's habit of
// deriving output workspaces from the *input* workspace set is carried only
// by configureRegularJob in scheduled.go (the post task's workspace
// bindings), not here.
func (qc *QueuedConfigurator) resolveOutputWorkspaces(job *Job) (map[string]string, error) {
	ids := make([]int64, 0, len(job.Data.OutputWorkspaceIDs))
	for _, id := range job.Data.OutputWorkspaceIDs {
		ids = append(ids, id)
	}
	if err := qc.cacheWorkspaceNames(ids); err != nil {
		return nil, err
	}

	out := map[string]string{}
	for output, wsID := range job.Data.OutputWorkspaceIDs {
		out[output] = qc.cachedNames[wsID]
	}
	return out, nil
}

func (qc *QueuedConfigurator) cacheWorkspaceNames(ids []int64) error {
	for _, id := range ids {
		if _, ok := qc.cachedNames[id]; ok {
			continue
		}
		name, err := qc.workspaces.NameByID(id)
		if err != nil {
			return fmt.Errorf("resolve workspace %d: %w", id, err)
		}
		qc.cachedNames[id] = name
	}
	return nil
}

// systemJobWorkspaces returns the workspaces needed for the main task of a
// system job, per spec.md §6.2.
func (qc *QueuedConfigurator) systemJobWorkspaces(job *Job) (map[string]TaskWorkspace, error) {
	workspaces := map[string]TaskWorkspace{}

	switch job.Name {
	case SystemJobIngest:
		workspaceName := job.Data.Properties["workspace"]
		newWorkspaceName := ""
		if workspaceName != "" {
			newWorkspaceName = job.Data.Properties["new_workspace"]
		} else if idStr, ok := job.Data.Properties["Ingest ID"]; ok && idStr != "" {
			ingestID, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid Ingest ID %q", scaleerrors.ErrInvalidMetadata, idStr)
			}
			if qc.ingests == nil {
				return nil, fmt.Errorf("%w: ingest catalog not configured", scaleerrors.ErrInvalidMetadata)
			}
			ws, newWs, err := qc.ingests.WorkspacesByIngestID(ingestID)
			if err != nil {
				return nil, fmt.Errorf("lookup ingest %d: %w", ingestID, err)
			}
			workspaceName, newWorkspaceName = ws, newWs
		}
		if workspaceName != "" {
			workspaces[workspaceName] = TaskWorkspace{Name: workspaceName, Mode: ModeRW}
		}
		if newWorkspaceName != "" {
			workspaces[newWorkspaceName] = TaskWorkspace{Name: newWorkspaceName, Mode: ModeRW}
		}

	case SystemJobStrike:
		if qc.strikes == nil {
			return nil, fmt.Errorf("%w: strike catalog not configured", scaleerrors.ErrInvalidMetadata)
		}
		name, err := qc.strikes.WorkspaceForJob(job.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup strike for job %d: %w", job.ID, err)
		}
		workspaces[name] = TaskWorkspace{Name: name, Mode: ModeRW}

	case SystemJobScan:
		if qc.scans == nil {
			return nil, fmt.Errorf("%w: scan catalog not configured", scaleerrors.ErrInvalidMetadata)
		}
		name, err := qc.scans.WorkspaceForJob(job.ID)
		if err != nil {
			name, err = qc.scans.WorkspaceForDryRunJob(job.ID)
			if err != nil {
				return nil, fmt.Errorf("lookup scan for job %d: %w", job.ID, err)
			}
		}
		workspaces[name] = TaskWorkspace{Name: name, Mode: ModeRW}
	}

	return workspaces, nil
}
