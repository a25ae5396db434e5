package execconfig

import (
	"testing"

	"github.com/cuemby/warren/pkg/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobTypeConfig struct {
	settings map[string]string
}

func (f *fakeJobTypeConfig) MountVolume(name, volumeName, path string, mode WorkspaceMode) *Volume {
	return &Volume{Name: volumeName, ContainerPath: path, Mode: mode}
}

func (f *fakeJobTypeConfig) SettingValue(name string) string {
	return f.settings[name]
}

type fakeSecretsResolver struct {
	values map[string]map[string]string
}

func (f *fakeSecretsResolver) JobTypeSecrets(jobIndex string) (map[string]string, error) {
	return f.values[jobIndex], nil
}

func newTestScheduledConfigurator() *ScheduledConfigurator {
	ws := &fakeWorkspaceCatalog{
		byName: map[string]*WorkspaceModel{
			"raw": {Name: "raw", Volume: &WorkspaceVolumeSpec{IsHost: true, RemotePath: "/mnt/raw"}},
		},
	}
	return NewScheduledConfigurator(ws, map[string]string{"SCALE_DB_NAME": "scale"}, "", nil)
}

func TestConfigureScheduledJob_RegularJobResourceSplit(t *testing.T) {
	sc := newTestScheduledConfigurator()
	qc := NewQueuedConfigurator(nil, &fakeWorkspaceCatalog{}, nil, nil, nil)

	job := &Job{ID: 1, Interface: Interface{CommandArgs: "run.sh"}}
	cfg, err := qc.ConfigureQueuedJob(job)
	require.NoError(t, err)

	jobExe := &JobExecution{
		ID:            1,
		ClusterID:     "c1",
		DockerImage:   "example/image:1.0",
		InputFileSize: 100,
		Resources:     resources.Of(2, 1024, 500),
		Configuration: cfg,
	}
	jobType := &JobType{Name: "my-job", Version: "1.0"}
	iface := Interface{CommandArgs: "run.sh", Mounts: nil, Settings: nil}

	result, err := sc.ConfigureScheduledJob(jobExe, jobType, iface, &fakeJobTypeConfig{})
	require.NoError(t, err)

	pull := result.Task(TaskPull)
	main := result.Task(TaskMain)
	post := result.Task(TaskPost)
	require.NotNil(t, pull)
	require.NotNil(t, main)
	require.NotNil(t, post)

	assert.Equal(t, 500.0, pull.Resources.Get(resources.Disk))
	assert.Equal(t, 400.0, main.Resources.Get(resources.Disk))
	assert.Equal(t, 2.0, main.Resources.Get(resources.CPUs))
	assert.NotContains(t, post.Resources.ToJSON(), resources.Disk)
}

func TestConfigureScheduledJob_SystemJobSkipsTriad(t *testing.T) {
	sc := newTestScheduledConfigurator()
	qc := NewQueuedConfigurator(nil, &fakeWorkspaceCatalog{}, nil, nil, nil)

	job := &Job{ID: 2, IsSystem: true, Name: SystemJobIngest}
	cfg, err := qc.ConfigureQueuedJob(job)
	require.NoError(t, err)

	jobExe := &JobExecution{ID: 2, ClusterID: "c2", Resources: resources.Of(1, 256, 0), Configuration: cfg}
	jobType := &JobType{Name: "scale-ingest", Version: "1.0", IsSystem: true}

	result, err := sc.ConfigureScheduledJob(jobExe, jobType, Interface{}, &fakeJobTypeConfig{})
	require.NoError(t, err)

	assert.Nil(t, result.Task(TaskPull))
	main := result.Task(TaskMain)
	require.NotNil(t, main)
	assert.Equal(t, 1.0, main.Resources.Get(resources.CPUs))
}
