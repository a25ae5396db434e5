package job

import "time"

// Status is a job's lifecycle state, matching the original's job.models.Job
// status column values.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusBlocked   Status = "BLOCKED"
	StatusQueued    Status = "QUEUED"
	StatusRunning   Status = "RUNNING"
	StatusFailed    Status = "FAILED"
	StatusCompleted Status = "COMPLETED"
	StatusCanceled  Status = "CANCELED"
)

// terminal statuses are statuses can_be_canceled must reject: a job already
// at rest can't be canceled again.
var terminal = map[Status]bool{
	StatusFailed:    true,
	StatusCompleted: true,
	StatusCanceled:  true,
}

// Record is the catalog's view of a single job, carrying only the fields
// bulk-cancel's filter and status transition need.
type Record struct {
	ID            int64
	JobTypeID     int64
	Status        Status
	ErrorCategory string
	ErrorID       int64
	Started       *time.Time
	Ended         *time.Time
}

// CanBeCanceled reports whether the job is still eligible to transition to
// CANCELED, matching the original Job.can_be_canceled: not already
// terminal.
func (r *Record) CanBeCanceled() bool {
	return !terminal[r.Status]
}
