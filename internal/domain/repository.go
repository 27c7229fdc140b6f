package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for jobs and their transcripts.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	// MarkRunning records the chosen provider/model and generation knobs while
	// moving a queued job to running.
	MarkRunning(ctx context.Context, jobID, provider, model string, temperature float64, maxTokens int) error
	// Finish moves a job to a terminal status. Writes against a job that is
	// already terminal return ErrJobTerminal.
	Finish(ctx context.Context, jobID string, status JobStatus, errMsg *string) error
	AppendMessage(ctx context.Context, jobID, role, content string) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	Transcript(ctx context.Context, jobID string) ([]JobMessage, error)
	// DeleteTerminalBefore prunes terminal jobs (and their transcripts)
	// finished before the cutoff, returning the number of jobs removed.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CommentRepository persists validated generation output.
type CommentRepository interface {
	// SaveAll inserts the comments and returns their storage ids in order.
	SaveAll(ctx context.Context, comments []Comment) ([]string, error)
	ListByTarget(ctx context.Context, targetType TargetType, targetID string, limit int) ([]Comment, error)
}

// WhitelistRepository reads and administers the hashtag whitelist.
type WhitelistRepository interface {
	// ListActive returns active entries ordered by priority (highest first),
	// then tag. The returned slice is a snapshot, not a live view.
	ListActive(ctx context.Context) ([]WhitelistEntry, error)
	List(ctx context.Context) ([]WhitelistEntry, error)
	Upsert(ctx context.Context, entry WhitelistEntry) error
}
