// Package execconfig builds and finalises the per-execution launch plan: an
// ordered task list (pull/pre/main/post for regular jobs, main only for
// system jobs) together with each task's arguments, environment, container
// parameters, resource vector, mount volumes, workspace bindings and
// (secret-aware) settings. A QueuedConfigurator builds the plan skeleton
// when a job is queued; a ScheduledConfigurator finalises it at dispatch
// time, producing a redacted copy safe to persist and a hydrated copy for
// the launcher.
package execconfig
