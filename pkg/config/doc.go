// Package config loads scaled's runtime configuration from a YAML file with
// environment-variable overrides, the way cmd/warren's apply.go parses YAML
// resources with gopkg.in/yaml.v3. It carries the ambient settings the
// scheduler and execution configurators need that spec.md treats as
// externally supplied: the syslog address, input/output path roots, the
// database DSN projected into system-settings env vars, and vault
// connection parameters.
package config
