package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig carries the five-key vector the original
// ScheduledExecutionConfigurator.__init__ builds from Django's
// settings.DATABASES, projected verbatim onto SCALE_DB_* task env vars.
type DatabaseConfig struct {
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
}

// SystemSettings projects DatabaseConfig onto the SCALE_DB_* env var names
// the scheduled configurator applies to every task's pre/post (regular
// jobs) or main (system jobs) phase.
func (d DatabaseConfig) SystemSettings() map[string]string {
	return map[string]string{
		"SCALE_DB_NAME":     d.Name,
		"SCALE_DB_USER":     d.User,
		"SCALE_DB_PASSWORD": d.Password,
		"SCALE_DB_HOST":     d.Host,
		"SCALE_DB_PORT":     d.Port,
	}
}

// VaultConfig carries the connection parameters the ambient
// vault.LocalSecretsProvider is constructed with.
type VaultConfig struct {
	// PasswordEnv names the environment variable holding the vault's
	// master password (never stored in the YAML file itself).
	PasswordEnv string `yaml:"passwordEnv"`
}

// RaftConfig carries the job.CatalogReplicator's single-node Raft wiring.
// NodeID empty selects the plain (non-replicated) BoltCatalog instead.
type RaftConfig struct {
	NodeID   string `yaml:"nodeID"`
	BindAddr string `yaml:"bindAddr"`
	DataDir  string `yaml:"dataDir"`
}

// Config is scaled's top-level runtime configuration: loaded from YAML,
// then overridden by environment variables, matching the env-override
// idiom warren's worker/manager startup flags already use alongside
// cmd/warren/apply.go's YAML parsing.
type Config struct {
	// SyslogAddress is the Docker syslog driver address tasks log to; empty
	// disables syslog Docker logging parameters.
	SyslogAddress string `yaml:"syslogAddress"`
	// InputRoot and OutputRoot are the in-container mount points for a
	// job's input and output data volumes.
	InputRoot  string `yaml:"inputRoot"`
	OutputRoot string `yaml:"outputRoot"`
	// JobCatalogPath is the BoltDB file path for the bolt-backed job
	// catalog; empty selects the in-memory catalog instead.
	JobCatalogPath string `yaml:"jobCatalogPath"`

	Database DatabaseConfig `yaml:"database"`
	Vault    VaultConfig    `yaml:"vault"`
	Raft     RaftConfig     `yaml:"raft"`
}

// Default returns the configuration warren's own defaults would use absent
// a YAML file: no syslog, the standard Scale input/output roots, and an
// in-memory job catalog.
func Default() Config {
	return Config{
		InputRoot:  "/scale/input_data",
		OutputRoot: "/scale/output_data",
	}
}

// Load reads a YAML configuration file at path (if non-empty) over
// Default(), then applies environment-variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCALE_SYSLOG_ADDRESS"); v != "" {
		cfg.SyslogAddress = v
	}
	if v := os.Getenv("SCALE_INPUT_ROOT"); v != "" {
		cfg.InputRoot = v
	}
	if v := os.Getenv("SCALE_OUTPUT_ROOT"); v != "" {
		cfg.OutputRoot = v
	}
	if v := os.Getenv("SCALE_JOB_CATALOG_PATH"); v != "" {
		cfg.JobCatalogPath = v
	}
	if v := os.Getenv("SCALE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("SCALE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("SCALE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SCALE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("SCALE_DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("SCALE_VAULT_PASSWORD_ENV"); v != "" {
		cfg.Vault.PasswordEnv = v
	}
	if v := os.Getenv("SCALE_RAFT_NODE_ID"); v != "" {
		cfg.Raft.NodeID = v
	}
	if v := os.Getenv("SCALE_RAFT_BIND_ADDR"); v != "" {
		cfg.Raft.BindAddr = v
	}
	if v := os.Getenv("SCALE_RAFT_DATA_DIR"); v != "" {
		cfg.Raft.DataDir = v
	}
}

// VaultPassword resolves the vault master password from the environment
// variable named by Vault.PasswordEnv.
func (c Config) VaultPassword() (string, error) {
	if c.Vault.PasswordEnv == "" {
		return "", fmt.Errorf("vault passwordEnv is not configured")
	}
	v, ok := os.LookupEnv(c.Vault.PasswordEnv)
	if !ok || v == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.Vault.PasswordEnv)
	}
	return v, nil
}

