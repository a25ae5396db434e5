package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/scale/input_data", cfg.InputRoot)
	assert.Equal(t, "/scale/output_data", cfg.OutputRoot)
	assert.Empty(t, cfg.SyslogAddress)
}

func TestLoad_ParsesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaled.yaml")
	require.NoError(t, writeFile(path, `
syslogAddress: "syslog://127.0.0.1:514"
inputRoot: /data/in
outputRoot: /data/out
database:
  name: scale
  user: scale_user
  password: secret
  host: db.internal
  port: "5432"
`))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "syslog://127.0.0.1:514", cfg.SyslogAddress)
	assert.Equal(t, "/data/in", cfg.InputRoot)
	assert.Equal(t, "scale", cfg.Database.Name)
}

func TestDatabaseConfig_SystemSettings(t *testing.T) {
	db := DatabaseConfig{Name: "scale", User: "u", Password: "p", Host: "h", Port: "5432"}
	settings := db.SystemSettings()
	assert.Equal(t, "scale", settings["SCALE_DB_NAME"])
	assert.Equal(t, "5432", settings["SCALE_DB_PORT"])
}

func TestConfig_VaultPassword_RequiresEnvVar(t *testing.T) {
	cfg := Default()
	_, err := cfg.VaultPassword()
	assert.Error(t, err)

	cfg.Vault.PasswordEnv = "SCALE_TEST_VAULT_PW"
	t.Setenv("SCALE_TEST_VAULT_PW", "s3cr3t")
	pw, err := cfg.VaultPassword()
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", pw)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0600)
}
