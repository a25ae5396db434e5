package execconfig

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/resources"
)

const (
	jobExeInputMount  = "scale_input_mount"
	jobExeOutputMount = "scale_output_mount"

	taskInputRoot  = InputRoot
	taskOutputRoot = OutputRoot
)

// ScheduledConfigurator finishes an execution configuration at schedule
// time: it adds the task triad, resource splits, workspace volumes, Docker
// logging parameters, and secret settings. It returns a redacted copy (safe
// to persist) and a hydrated copy (carries real secret values, used only
// for the in-memory dispatch to the agent).
type ScheduledConfigurator struct {
	workspaces   WorkspaceCatalog
	loggingAddr  string // empty disables the syslog Docker logging wiring
	systemDBVars map[string]string
	secrets      SecretsResolver
}

// NewScheduledConfigurator creates a ScheduledConfigurator. systemDBVars
// holds the SCALE_DB_* style system settings applied to the pre/post tasks
// of regular jobs and the main task of system jobs (redacted in the
// persisted copy); loggingAddr, when non-empty, turns on the syslog Docker
// logging parameters for pull/pre/main/post tasks.
func NewScheduledConfigurator(workspaces WorkspaceCatalog, systemDBVars map[string]string, loggingAddr string, secrets SecretsResolver) *ScheduledConfigurator {
	return &ScheduledConfigurator{
		workspaces:   workspaces,
		loggingAddr:  loggingAddr,
		systemDBVars: systemDBVars,
		secrets:      secrets,
	}
}

// ConfigureScheduledJob finishes the configuration for a job execution
// being scheduled. jobExe.Configuration holds the enqueue-time
// configuration produced by ConfigureQueuedJob; its InputFiles and
// OutputWorkspaces are reused, its task list is extended and filled in.
//
// The returned *Configuration is the hydrated copy (real secret values);
// jobExe.Configuration is mutated in place to become the redacted copy
// safe to persist.
func (sc *ScheduledConfigurator) ConfigureScheduledJob(jobExe *JobExecution, jobType *JobType, iface Interface, jobTypeConfig JobTypeConfig) (*Configuration, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ExecConfigBuildDuration, "scheduled")

	config := jobExe.Configuration
	if config == nil {
		return nil, fmt.Errorf("job execution %d has no queued configuration", jobExe.ID)
	}

	sc.configureMainTask(config, jobExe, jobType, iface, jobTypeConfig)

	if jobType.IsSystem {
		configureSystemJob(config, jobExe)
	} else {
		configureRegularJob(config, jobExe)
	}

	if err := sc.configureAllTasks(config, jobExe); err != nil {
		return nil, err
	}

	configWithSecrets, err := sc.configureSecrets(config, jobExe, jobType, iface, jobTypeConfig)
	if err != nil {
		return nil, err
	}

	return configWithSecrets, nil
}

func (sc *ScheduledConfigurator) configureMainTask(config *Configuration, jobExe *JobExecution, jobType *JobType, iface Interface, jobTypeConfig JobTypeConfig) {
	if jobType.SharedMemRequiredMiB > 0 {
		shared := int64(math.Ceil(jobType.SharedMemRequiredMiB))
		config.AddToTask(TaskMain, func(t *Task) {
			t.AddContainerParam("shm-size", fmt.Sprintf("%dm", shared))
			t.SetEnv("ALLOCATED_SHARED_MEM", fmt.Sprintf("%d", shared))
		})
	}

	config.AddToTask(TaskMain, func(t *Task) {
		for _, mount := range iface.Mounts {
			volumeName := jobExe.ClusterID + "_" + mount.Name
			t.MountVolumes[mount.Name] = jobTypeConfig.MountVolume(mount.Name, volumeName, mount.Path, mount.Mode)
		}
	})
}

// configureRegularJob adds the pull/pre/post tasks, the input/output
// workspace bindings, the shared input/output volumes, and the resource
// split across the triad for a non-system job. Grounded verbatim on
// _configure_regular_job in configurators.py, including its output
// workspace loop, which iterates the execution's *input* workspace names
// rather than a distinct output-workspace set — preserved exactly per
// spec.md's Open Question.
func configureRegularJob(config *Configuration, jobExe *JobExecution) {
	config.CreateTasks(TaskPull, TaskPre, TaskMain, TaskPost)

	config.AddToTask(TaskPull, func(t *Task) { t.Args = pullCommand(jobExe.DockerImage) })
	config.AddToTask(TaskPre, func(t *Task) { t.Args = fmt.Sprintf("scale_pre_steps -i %d", jobExe.ID) })
	config.AddToTask(TaskPost, func(t *Task) { t.Args = fmt.Sprintf("scale_post_steps -i %d", jobExe.ID) })

	inputNames := config.InputWorkspaceNames()
	sort.Strings(inputNames)

	config.AddToTask(TaskPre, func(t *Task) {
		for _, name := range inputNames {
			t.SetWorkspace(name, ModeRO)
		}
	})
	config.AddToTask(TaskMain, func(t *Task) {
		for _, name := range inputNames {
			t.SetWorkspace(name, ModeRO)
		}
	})
	// Preserved from the original: output workspaces are derived from the
	// same input-workspace-name loop, not from config.OutputWorkspaces.
	config.AddToTask(TaskPost, func(t *Task) {
		for _, name := range inputNames {
			t.SetWorkspace(name, ModeRW)
		}
	})

	inputVolName := jobExe.ClusterID + "_input"
	outputVolName := jobExe.ClusterID + "_output"
	inputVolRO := &Volume{Name: inputVolName, ContainerPath: taskInputRoot, Mode: ModeRO}
	inputVolRW := &Volume{Name: inputVolName, ContainerPath: taskInputRoot, Mode: ModeRW}
	outputVolRO := &Volume{Name: outputVolName, ContainerPath: taskOutputRoot, Mode: ModeRO}
	outputVolRW := &Volume{Name: outputVolName, ContainerPath: taskOutputRoot, Mode: ModeRW}

	config.AddToTask(TaskPre, func(t *Task) {
		t.MountVolumes[jobExeInputMount] = inputVolRW
		t.MountVolumes[jobExeOutputMount] = outputVolRW
	})
	config.AddToTask(TaskMain, func(t *Task) {
		t.MountVolumes[jobExeInputMount] = inputVolRO
		t.MountVolumes[jobExeOutputMount] = outputVolRW
	})
	config.AddToTask(TaskPost, func(t *Task) {
		t.MountVolumes[jobExeOutputMount] = outputVolRO
	})

	config.AddToTask(TaskMain, func(t *Task) {
		t.SetEnv(EnvJobOutputDir, taskOutputRoot)
		t.SetEnv(EnvOutputDir, taskOutputRoot)
	})

	res := jobExe.Resources
	config.AddToTask(TaskPull, func(t *Task) { t.Resources = res })
	config.AddToTask(TaskPre, func(t *Task) { t.Resources = res })

	mainRes := res.Subtract(resources.Of(0, 0, jobExe.InputFileSize))
	config.AddToTask(TaskMain, func(t *Task) { t.Resources = mainRes })

	postRes := mainRes.RemoveKind(resources.Disk)
	config.AddToTask(TaskPost, func(t *Task) { t.Resources = postRes })
}

func configureSystemJob(config *Configuration, jobExe *JobExecution) {
	config.AddToTask(TaskMain, func(t *Task) { t.Resources = jobExe.Resources })
}

func pullCommand(image string) string {
	return "scale_pull " + image
}

// configureAllTasks adds the per-task allocated-resource env vars,
// resolves workspace volumes, and (when logging is enabled) the syslog
// Docker logging parameters, across every task in the plan.
func (sc *ScheduledConfigurator) configureAllTasks(config *Configuration, jobExe *JobExecution) error {
	config.SetTaskIDs(jobExe.ClusterID)

	for _, taskType := range config.TaskTypes() {
		task := config.Task(taskType)

		envVars := map[string]string{}
		for kind, value := range task.Resources.ToJSON() {
			envVars["ALLOCATED_"+NormalizeEnvVarName(kind)] = formatResourceValue(value)
		}

		for name, tw := range task.Workspaces {
			wsModel, err := sc.workspaces.ByName(name)
			if err != nil {
				return fmt.Errorf("resolve workspace %q: %w", name, err)
			}
			if wsModel.Volume == nil {
				continue
			}
			volName := jobExe.ClusterID + "_" + name
			contPath := "/scale/workspace_mounts/" + volName
			var vol *Volume
			if wsModel.Volume.IsHost {
				vol = &Volume{Name: volName, ContainerPath: contPath, Mode: tw.Mode, IsHost: true, HostPath: wsModel.Volume.RemotePath}
			} else {
				driverOpts := map[string]string{}
				if wsModel.Volume.Driver == "nfs" {
					driverOpts["share"] = wsModel.Volume.RemotePath
				}
				vol = &Volume{Name: volName, ContainerPath: contPath, Mode: tw.Mode, Driver: wsModel.Volume.Driver, DriverOpts: driverOpts}
			}
			task.WorkspaceVolumes[name] = vol
		}

		envNames := make([]string, 0, len(envVars))
		for name := range envVars {
			envNames = append(envNames, name)
		}
		sort.Strings(envNames)

		config.AddToTask(taskType, func(t *Task) {
			for _, name := range envNames {
				t.SetEnv(name, envVars[name])
			}
		})
	}

	if sc.loggingAddr != "" {
		logDriver := DockerParameter{Key: "log-driver", Value: "syslog"}
		syslogFormat := DockerParameter{Key: "log-opt", Value: "syslog-format=rfc3164"}
		logAddress := DockerParameter{Key: "log-opt", Value: "syslog-address=" + sc.loggingAddr}

		if config.HasPullTask() {
			config.AddToTask(TaskPull, func(t *Task) {
				tag := DockerParameter{Key: "log-opt", Value: "tag=" + config.TaskID(TaskPull)}
				t.ContainerParams = append(t.ContainerParams, logDriver, syslogFormat, logAddress, tag)
			})
			config.AddToTask(TaskPre, func(t *Task) {
				tag := DockerParameter{Key: "log-opt", Value: "tag=" + config.TaskID(TaskPre)}
				t.ContainerParams = append(t.ContainerParams, logDriver, syslogFormat, logAddress, tag)
			})
			config.AddToTask(TaskPost, func(t *Task) {
				tag := DockerParameter{Key: "log-opt", Value: "tag=" + config.TaskID(TaskPost)}
				t.ContainerParams = append(t.ContainerParams, logDriver, syslogFormat, logAddress, tag)
				t.AddContainerParam("env", "SCALE_ELASTICSEARCH_URLS=")
			})
		}
		config.AddToTask(TaskMain, func(t *Task) {
			tag := DockerParameter{Key: "log-opt", Value: "tag=" + config.TaskID(TaskMain)}
			t.ContainerParams = append(t.ContainerParams, logDriver, syslogFormat, logAddress, tag)
		})
	}

	return nil
}

// configureSecrets builds the redacted/hydrated configuration pair:
// system settings and job-type secret settings differ only in whether
// secret values are masked with "*****".
func (sc *ScheduledConfigurator) configureSecrets(config *Configuration, jobExe *JobExecution, jobType *JobType, iface Interface, jobTypeConfig JobTypeConfig) (*Configuration, error) {
	configWithSecrets := config.Clone()

	redactedSystem := map[string]string{}
	for k := range sc.systemDBVars {
		redactedSystem[k] = "*****"
	}

	if jobType.IsSystem {
		config.AddToTask(TaskMain, func(t *Task) { setSettings(t, redactedSystem) })
		configWithSecrets.AddToTask(TaskMain, func(t *Task) { setSettings(t, sc.systemDBVars) })
	} else {
		config.AddToTask(TaskPre, func(t *Task) { setSettings(t, redactedSystem) })
		configWithSecrets.AddToTask(TaskPre, func(t *Task) { setSettings(t, sc.systemDBVars) })
		config.AddToTask(TaskPost, func(t *Task) { setSettings(t, redactedSystem) })
		configWithSecrets.AddToTask(TaskPost, func(t *Task) { setSettings(t, sc.systemDBVars) })

		var secretSettings map[string]string
		if sc.secrets != nil {
			var err error
			secretSettings, err = sc.secrets.JobTypeSecrets(jobType.JobIndex())
			if err != nil {
				return nil, fmt.Errorf("retrieve secrets for job type %s: %w", jobType.JobIndex(), err)
			}
		}

		for _, pair := range []struct {
			cfg    *Configuration
			hidden bool
		}{{config, true}, {configWithSecrets, false}} {
			taskSettings := map[string]string{}
			for _, setting := range iface.Settings {
				var value string
				if setting.Secret {
					value = secretSettings[setting.Name]
					if value != "" && pair.hidden {
						value = "*****"
					}
				} else {
					value = jobTypeConfig.SettingValue(setting.Name)
				}
				taskSettings[setting.Name] = value
			}
			pair.cfg.AddToTask(TaskMain, func(t *Task) { setSettings(t, taskSettings) })
		}
	}

	for _, cfg := range []*Configuration{config, configWithSecrets} {
		for _, taskType := range cfg.TaskTypes() {
			task := cfg.Task(taskType)
			names := make([]string, 0, len(task.Settings))
			for name := range task.Settings {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				cfg.AddToTask(taskType, func(t *Task) {
					t.SetEnv(NormalizeEnvVarName(name), task.Settings[name])
				})
			}
		}
	}

	for _, cfg := range []*Configuration{config, configWithSecrets} {
		existingVolumes := map[string]struct{}{}
		for _, taskType := range cfg.TaskTypes() {
			task := cfg.Task(taskType)
			cfg.AddToTask(taskType, func(t *Task) {
				for _, env := range task.Env {
					t.AddContainerParam("env", env.Name+"="+env.Value)
				}
				names := make([]string, 0, len(task.WorkspaceVolumes))
				for name := range task.WorkspaceVolumes {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					_, created := existingVolumes[name]
					param := task.WorkspaceVolumes[name].ToDockerParam(created)
					t.AddContainerParam(param.Key, param.Value)
					existingVolumes[name] = struct{}{}
				}
			})
		}
	}

	if jobType != nil && len(jobType.ExtraDockerParams) > 0 {
		config.AddToTask(TaskMain, func(t *Task) { t.ContainerParams = append(t.ContainerParams, jobType.ExtraDockerParams...) })
		configWithSecrets.AddToTask(TaskMain, func(t *Task) { t.ContainerParams = append(t.ContainerParams, jobType.ExtraDockerParams...) })
	}

	return configWithSecrets, nil
}

func setSettings(t *Task, settings map[string]string) {
	for k, v := range settings {
		t.Settings[k] = v
	}
}

func formatResourceValue(v float64) string {
	s := fmt.Sprintf("%g", v)
	return strings.TrimSuffix(s, ".0")
}
