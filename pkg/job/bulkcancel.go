package job

import (
	"time"

	"github.com/cuemby/warren/pkg/metrics"
)

// MaxBatchSize is the page size CancelJobsBulkMessage reads per execute(),
// matching the original's MAX_BATCH_SIZE.
const MaxBatchSize = 1000

// CancelMessage is a single "cancel this job" command, the payload
// create_cancel_jobs_messages builds in the original. Dispatching it onto
// the message queue is the messaging layer's responsibility; bulk-cancel's
// job here ends at producing the batch.
type CancelMessage struct {
	JobID     int64
	Timestamp time.Time
}

// CancelJobsBulkMessage is the durable command message that walks the job
// catalog in descending-id pages, collecting cancelable jobs and chaining
// itself across pages via CurrentJobID, matching job.messages.cancel_jobs_bulk.
type CancelJobsBulkMessage struct {
	Filter       BulkCancelFilter
	CurrentJobID int64 // 0 means "start from the maximum id"
}

// NewCancelJobsBulkMessage creates a message applying filter with no cursor.
func NewCancelJobsBulkMessage(filter BulkCancelFilter) *CancelJobsBulkMessage {
	return &CancelJobsBulkMessage{Filter: filter}
}

// ToJSON serializes only the populated fields, mirroring the original's
// to_json (which omits None fields entirely).
func (m *CancelJobsBulkMessage) ToJSON() map[string]any {
	out := map[string]any{}
	if m.CurrentJobID != 0 {
		out["current_job_id"] = m.CurrentJobID
	}
	if m.Filter.Started != nil {
		out["started"] = m.Filter.Started.Format(time.RFC3339)
	}
	if m.Filter.Ended != nil {
		out["ended"] = m.Filter.Ended.Format(time.RFC3339)
	}
	if len(m.Filter.ErrorCategories) > 0 {
		out["error_categories"] = m.Filter.ErrorCategories
	}
	if len(m.Filter.ErrorIDs) > 0 {
		out["error_ids"] = m.Filter.ErrorIDs
	}
	if len(m.Filter.JobIDs) > 0 {
		out["job_ids"] = m.Filter.JobIDs
	}
	if len(m.Filter.JobTypeIDs) > 0 {
		out["job_type_ids"] = m.Filter.JobTypeIDs
	}
	if m.Filter.Status != nil {
		out["status"] = string(*m.Filter.Status)
	}
	return out
}

// clone returns a copy of m with an identical filter, for successor-message
// construction (from_json(to_json(self)) in the original).
func (m *CancelJobsBulkMessage) clone() *CancelJobsBulkMessage {
	c := *m
	return &c
}

// ExecuteResult is the outcome of one CancelJobsBulkMessage.Execute call.
type ExecuteResult struct {
	// Successor is the next message to run, set when the page filled and
	// more jobs may remain beyond CurrentJobID.
	Successor *CancelJobsBulkMessage
	// Cancels are the per-job cancel messages produced for this page's
	// cancelable jobs.
	Cancels []CancelMessage
}

// Execute queries catalog for one page of jobs matching m.Filter (descending
// by id, bounded by MaxBatchSize and m.CurrentJobID), emits a successor
// message when the page filled, and returns a cancel message for every
// cancelable job in the page. It always returns success for an empty
// result set; only a catalog error propagates.
func (m *CancelJobsBulkMessage) Execute(catalog Catalog, now time.Time) (ExecuteResult, error) {
	metrics.BulkCancelBatchesTotal.Inc()

	page, err := catalog.ListMatchingDescending(m.Filter, m.CurrentJobID, MaxBatchSize)
	if err != nil {
		return ExecuteResult{}, err
	}

	var result ExecuteResult
	var lastJobID int64
	cancelIDs := make([]int64, 0, len(page))
	for _, r := range page {
		lastJobID = r.ID
		if r.CanBeCanceled() {
			cancelIDs = append(cancelIDs, r.ID)
		}
	}

	if len(page) == MaxBatchSize {
		successor := m.clone()
		successor.CurrentJobID = lastJobID
		result.Successor = successor
	}

	for _, id := range cancelIDs {
		result.Cancels = append(result.Cancels, CancelMessage{JobID: id, Timestamp: now})
	}
	if n := len(result.Cancels); n > 0 {
		metrics.BulkCancelJobsCanceledTotal.Add(float64(n))
	}

	return result, nil
}
