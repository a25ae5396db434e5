package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cuemby/warren/pkg/execconfig"
	"github.com/cuemby/warren/pkg/log"
	"github.com/spf13/cobra"
)

// cleanupInput is the JSON shape newCleanupCommand reads: the agent and
// framework to plan a cleanup for, and optionally the still-tracked
// executions on that agent. An empty executions list plans an initial
// (node-wide) cleanup, matching execconfig.NewCleanupTask's own contract.
type cleanupInput struct {
	AgentID     string                        `json:"agentID"`
	FrameworkID string                        `json:"frameworkID"`
	Executions  []execconfig.RunningExecution `json:"executions"`
}

// newCleanupCommand builds a single CleanupTask from an input file and
// prints its shell command, for operational debugging of the cleanup
// planner without dispatching it through a real ContainerLauncher.
func newCleanupCommand() *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "plan one cleanup task for an agent and print its command",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.WithComponent("cmd")

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read cleanup input: %w", err)
			}
			var in cleanupInput
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("failed to parse cleanup input: %w", err)
			}

			task := execconfig.NewCleanupTask(in.FrameworkID, in.AgentID, in.Executions)
			logger.Info().Str("agentID", task.AgentID).Bool("initial", task.IsInitialCleanup).Msg("planned cleanup task")

			out, err := json.MarshalIndent(task, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a JSON cleanup input file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
