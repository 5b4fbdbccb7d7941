package models

import (
	"fmt"
	"time"
)

var _ Record = (*Analysis)(nil)

// Analysis is a persisted analysis submission with its last observed status and, once completed, its result.
type Analysis struct {
	id          string
	sequence    int
	taskID      string
	dbType      string
	host        string
	database    string
	schema      string
	status      Status
	progress    int
	message     string
	result      *Result
	createdAt   time.Time
	updatedAt   time.Time
	completedAt *time.Time
	deletedAt   *time.Time
}

// NewAnalysis creates an [Analysis] for a freshly submitted task.
func NewAnalysis(taskID string, req AnalysisRequest) *Analysis {
	now := time.Now()
	return &Analysis{
		taskID:    taskID,
		dbType:    req.DBType,
		host:      req.Host,
		database:  req.Database,
		schema:    req.Schema,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
}

func (a *Analysis) ID() string              { return a.id }
func (a *Analysis) Sequence() int           { return a.sequence }
func (a *Analysis) TaskID() string          { return a.taskID }
func (a *Analysis) DBType() string          { return a.dbType }
func (a *Analysis) Host() string            { return a.host }
func (a *Analysis) Database() string        { return a.database }
func (a *Analysis) Schema() string          { return a.schema }
func (a *Analysis) Status() Status          { return a.status }
func (a *Analysis) Progress() int           { return a.progress }
func (a *Analysis) Message() string         { return a.message }
func (a *Analysis) Result() *Result         { return a.result }
func (a *Analysis) CreatedAt() time.Time    { return a.createdAt }
func (a *Analysis) UpdatedAt() time.Time    { return a.updatedAt }
func (a *Analysis) CompletedAt() *time.Time { return a.completedAt }
func (a *Analysis) DeletedAt() *time.Time   { return a.deletedAt }

func (a *Analysis) SetID(id string)             { a.id = id }
func (a *Analysis) SetSequence(seq int)         { a.sequence = seq }
func (a *Analysis) SetSchema(schema string)     { a.schema = schema }
func (a *Analysis) SetMessage(message string)   { a.message = message }
func (a *Analysis) SetResult(result *Result)    { a.result = result }
func (a *Analysis) SetCreatedAt(t time.Time)    { a.createdAt = t }
func (a *Analysis) SetUpdatedAt(t time.Time)    { a.updatedAt = t }
func (a *Analysis) SetCompletedAt(t *time.Time) { a.completedAt = t }
func (a *Analysis) SetDeletedAt(t *time.Time)   { a.deletedAt = t }
func (a *Analysis) SetStatus(status Status)     { a.status = status }
func (a *Analysis) SetProgress(progress int)    { a.progress = progress }

// Settle records a terminal outcome.
func (a *Analysis) Settle(status Status, progress int, message string, result *Result) {
	now := time.Now()
	a.status = status
	a.progress = progress
	a.message = message
	a.result = result
	a.completedAt = &now
}

// IsDeleted reports whether the analysis has been soft-deleted.
func (a *Analysis) IsDeleted() bool { return a.deletedAt != nil }

// Validate checks required fields and value ranges.
func (a *Analysis) Validate() error {
	if a.taskID == "" {
		return fmt.Errorf("task_id is required")
	}
	if a.dbType == "" {
		return fmt.Errorf("db_type is required")
	}
	if a.progress < 0 || a.progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", a.progress)
	}
	switch a.status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("invalid status: %q", a.status)
	}
	if a.status == StatusCompleted && a.result == nil {
		return fmt.Errorf("completed analysis requires a result")
	}
	return nil
}
