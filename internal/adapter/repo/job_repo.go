package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dailyitems/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)

// Create inserts a new job record in its initial status.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO jobs (id, job_type, target_type, target_id, status, requester_type, requester_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Type,
		job.TargetType,
		job.TargetID,
		job.Status,
		job.RequesterType,
		job.RequesterID,
		job.CreatedAt,
	)
	return err
}

// MarkRunning moves a queued job to running, recording the provider choice.
// The status guard keeps the transition one-directional.
func (r *JobRepositoryPG) MarkRunning(ctx context.Context, jobID, provider, model string, temperature float64, maxTokens int) error {
	query := `
UPDATE jobs
SET status = $2,
    provider = $3,
    model = $4,
    temperature = $5,
    max_tokens = $6,
    started_at = NOW()
WHERE id = $1 AND status = $7;
`
	tag, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusRunning, provider, model, temperature, maxTokens, domain.JobStatusQueued)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, jobID)
	}
	return nil
}

// Finish moves a job to a terminal status. A job that is already terminal is
// left untouched and reported via domain.ErrJobTerminal.
func (r *JobRepositoryPG) Finish(ctx context.Context, jobID string, status domain.JobStatus, errMsg *string) error {
	query := `
UPDATE jobs
SET status = $2,
    error = $3,
    finished_at = NOW()
WHERE id = $1 AND status IN ($4, $5);
`
	tag, err := r.pool.Exec(ctx, query, jobID, status, errMsg, domain.JobStatusQueued, domain.JobStatusRunning)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionError(ctx, jobID)
	}
	return nil
}

// transitionError distinguishes a missing job from a refused transition.
func (r *JobRepositoryPG) transitionError(ctx context.Context, jobID string) error {
	if _, err := r.GetByID(ctx, jobID); err != nil {
		return err
	}
	return domain.ErrJobTerminal
}

// AppendMessage adds one entry to the job's append-only transcript.
func (r *JobRepositoryPG) AppendMessage(ctx context.Context, jobID, role, content string) error {
	query := `
INSERT INTO job_messages (job_id, role, content, created_at)
VALUES ($1, $2, $3, NOW());
`
	_, err := r.pool.Exec(ctx, query, jobID, role, content)
	return err
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	query := `
SELECT id, job_type, target_type, target_id, status, requester_type, requester_id,
       provider, model, temperature, max_tokens, error, created_at, started_at, finished_at
FROM jobs
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, jobID)
	var job domain.Job
	var status string
	if err := row.Scan(
		&job.ID,
		&job.Type,
		&job.TargetType,
		&job.TargetID,
		&status,
		&job.RequesterType,
		&job.RequesterID,
		&job.Provider,
		&job.Model,
		&job.Temperature,
		&job.MaxTokens,
		&job.Error,
		&job.CreatedAt,
		&job.StartedAt,
		&job.FinishedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.Status = domain.NormalizeJobStatus(status)
	return &job, nil
}

// Transcript returns the job's messages in append order.
func (r *JobRepositoryPG) Transcript(ctx context.Context, jobID string) ([]domain.JobMessage, error) {
	query := `
SELECT id, job_id, role, content, created_at
FROM job_messages
WHERE job_id = $1
ORDER BY id;
`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []domain.JobMessage
	for rows.Next() {
		var msg domain.JobMessage
		if err := rows.Scan(&msg.ID, &msg.JobID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// DeleteTerminalBefore prunes terminal jobs finished before the cutoff.
// Transcripts go with them via the foreign key cascade.
func (r *JobRepositoryPG) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
DELETE FROM jobs
WHERE status IN ($1, $2) AND finished_at < $3;
`
	tag, err := r.pool.Exec(ctx, query, domain.JobStatusDone, domain.JobStatusFailed, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
