package execconfig

import "strings"

// Container paths for per-execution private volumes (spec.md §6.4).
const (
	InputRoot  = "/scale/input_data"
	OutputRoot = "/scale/output_data"
)

// Env var names pointing at OutputRoot on the main task.
const (
	EnvJobOutputDir = "job_output_dir"
	EnvOutputDir    = "OUTPUT_DIR"
)

// NormalizeEnvVarName returns the given name transformed into a legal,
// upper-cased environment variable name: '-' becomes '_', everything is
// upper-cased. It is idempotent: NormalizeEnvVarName(NormalizeEnvVarName(s))
// == NormalizeEnvVarName(s).
func NormalizeEnvVarName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
