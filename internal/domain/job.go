package domain

import "time"

// JobType enumerates supported generation job categories.
type JobType string

const (
	JobTypeGenerateComments JobType = "generate_comments"
)

// JobStatus enumerates job lifecycle states. Transitions are one-directional:
// queued -> running -> done|failed. A terminal job is immutable.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// NormalizeJobStatus maps a stored value onto the closed enum. Unknown values
// read as failed so a corrupted row can never be mistaken for live work.
func NormalizeJobStatus(v string) JobStatus {
	switch JobStatus(v) {
	case JobStatusQueued, JobStatusRunning, JobStatusDone:
		return JobStatus(v)
	default:
		return JobStatusFailed
	}
}

// RequesterType identifies who asked for a generation run.
type RequesterType string

const (
	RequesterAdmin  RequesterType = "admin"
	RequesterDevice RequesterType = "device"
)

// TargetType names the entity kind a job produces content for.
type TargetType string

const (
	TargetItem TargetType = "item"
)

// Job is one durable, auditable attempt to produce generated content.
type Job struct {
	ID            string
	Type          JobType
	TargetType    TargetType
	TargetID      string
	Status        JobStatus
	RequesterType RequesterType
	RequesterID   string
	Provider      *string
	Model         *string
	Temperature   *float64
	MaxTokens     *int
	Error         *string
	CreatedAt     time.Time
	StartedAt     *time.Time
	FinishedAt    *time.Time
}

// JobMessage is one entry of a job's append-only transcript: the outbound
// prompt and the raw provider reply, kept for audit and debugging.
type JobMessage struct {
	ID        int64
	JobID     string
	Role      string
	Content   string
	CreatedAt time.Time
}
