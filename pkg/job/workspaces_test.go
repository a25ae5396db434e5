package job

import (
	"testing"

	"github.com/cuemby/warren/pkg/execconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceCatalog_ResolvesByIDAndName(t *testing.T) {
	c := NewWorkspaceCatalog()
	c.Add(1, &execconfig.WorkspaceModel{Name: "raw", Volume: &execconfig.WorkspaceVolumeSpec{IsHost: true, RemotePath: "/mnt/raw"}})

	name, err := c.NameByID(1)
	require.NoError(t, err)
	assert.Equal(t, "raw", name)

	model, err := c.ByName("raw")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/raw", model.Volume.RemotePath)

	_, err = c.NameByID(2)
	assert.Error(t, err)
}

func TestScanCatalog_FallsBackToDryRun(t *testing.T) {
	c := NewScanCatalog()
	c.AddDryRun(5, "dry-run-ws")

	_, err := c.WorkspaceForJob(5)
	assert.Error(t, err)

	ws, err := c.WorkspaceForDryRunJob(5)
	require.NoError(t, err)
	assert.Equal(t, "dry-run-ws", ws)
}
