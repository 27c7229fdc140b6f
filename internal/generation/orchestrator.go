package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dailyitems/internal/domain"
	"dailyitems/internal/providers/chat"
)

// Options tunes the orchestrator's provider calls.
type Options struct {
	// ProviderName selects the backend from the registry; empty picks the
	// registry default.
	ProviderName string
	Temperature  float64
	MaxTokens    int
}

// Result is a finished generation run.
type Result struct {
	JobID string
	Items []domain.GeneratedComment
}

// Requester identifies who asked for a run, for the job audit trail.
type Requester struct {
	Type domain.RequesterType
	ID   string
}

// Orchestrator drives one generation request through its job lifecycle:
// queued -> running -> done|failed, with the full prompt and raw reply
// recorded on the job transcript either way.
type Orchestrator struct {
	jobs      domain.JobRepository
	providers *chat.Registry
	opts      Options
	logger    zerolog.Logger

	now func() time.Time
}

func NewOrchestrator(jobs domain.JobRepository, providers *chat.Registry, opts Options, logger zerolog.Logger) *Orchestrator {
	if opts.Temperature == 0 {
		opts.Temperature = 0.8
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2048
	}
	return &Orchestrator{
		jobs:      jobs,
		providers: providers,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate runs one request end to end. Provider and contract failures leave
// a failed job with its transcript behind and are returned to the caller;
// no retry happens here. Persisting the returned items is the caller's
// responsibility.
func (o *Orchestrator) Generate(ctx context.Context, req domain.GenerationRequest, requester Requester, mode chat.Mode) (*Result, error) {
	req.Normalize()

	provider, err := o.providers.Resolve(o.opts.ProviderName)
	if err != nil {
		return nil, err
	}
	model := provider.Model(mode)

	job := &domain.Job{
		ID:            uuid.NewString(),
		Type:          domain.JobTypeGenerateComments,
		TargetType:    req.TargetType,
		TargetID:      req.TargetID,
		Status:        domain.JobStatusQueued,
		RequesterType: requester.Type,
		RequesterID:   requester.ID,
		CreatedAt:     o.now(),
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if err := o.jobs.MarkRunning(ctx, job.ID, provider.Name(), model, o.opts.Temperature, o.opts.MaxTokens); err != nil {
		return nil, fmt.Errorf("mark job running: %w", err)
	}

	messages := BuildPrompt(req)
	for _, msg := range messages {
		if err := o.jobs.AppendMessage(ctx, job.ID, msg.Role, msg.Content); err != nil {
			return nil, fmt.Errorf("append prompt: %w", err)
		}
	}

	reply, err := provider.Chat(ctx, messages, chat.Options{
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
		Mode:        mode,
	})
	if err != nil {
		o.fail(ctx, job.ID, err)
		return nil, err
	}
	// The raw reply is recorded before validation so a rejected batch stays
	// diagnosable from the transcript.
	if err := o.jobs.AppendMessage(ctx, job.ID, chat.RoleAssistant, reply.Text); err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}

	items, err := ValidateOutput(reply.Text, req.Count, req.AllowedHashtags, req.RequireTranslation)
	if err != nil {
		o.fail(ctx, job.ID, err)
		return nil, err
	}

	if err := o.jobs.Finish(ctx, job.ID, domain.JobStatusDone, nil); err != nil {
		return nil, fmt.Errorf("finish job: %w", err)
	}
	o.logger.Info().
		Str("job_id", job.ID).
		Str("provider", provider.Name()).
		Str("model", model).
		Int("items", len(items)).
		Msg("generation done")
	return &Result{JobID: job.ID, Items: items}, nil
}

func (o *Orchestrator) fail(ctx context.Context, jobID string, cause error) {
	msg := cause.Error()
	if err := o.jobs.Finish(ctx, jobID, domain.JobStatusFailed, &msg); err != nil {
		o.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job failed")
	}
	o.logger.Warn().Str("job_id", jobID).Str("cause", msg).Msg("generation failed")
}
