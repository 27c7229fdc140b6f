package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dailyitems/internal/domain"
)

type jobMessagePayload struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type jobPayload struct {
	ID          string              `json:"id"`
	Type        string              `json:"job_type"`
	TargetType  string              `json:"target_type"`
	TargetID    string              `json:"target_id"`
	Status      string              `json:"status"`
	Requester   string              `json:"requester_type"`
	RequesterID string              `json:"requester_id"`
	Provider    *string             `json:"provider"`
	Model       *string             `json:"model"`
	Error       *string             `json:"error"`
	CreatedAt   time.Time           `json:"created_at"`
	StartedAt   *time.Time          `json:"started_at"`
	FinishedAt  *time.Time          `json:"finished_at"`
	Transcript  []jobMessagePayload `json:"transcript"`
}

// GetJob returns one job with its full transcript, for audit and debugging.
func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "missing_job", "job_id is required")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("job lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load job")
		return
	}
	transcript, err := a.Jobs.Transcript(r.Context(), jobID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("transcript lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load transcript")
		return
	}

	payload := jobPayload{
		ID:          job.ID,
		Type:        string(job.Type),
		TargetType:  string(job.TargetType),
		TargetID:    job.TargetID,
		Status:      string(job.Status),
		Requester:   string(job.RequesterType),
		RequesterID: job.RequesterID,
		Provider:    job.Provider,
		Model:       job.Model,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		FinishedAt:  job.FinishedAt,
		Transcript:  make([]jobMessagePayload, 0, len(transcript)),
	}
	for _, msg := range transcript {
		payload.Transcript = append(payload.Transcript, jobMessagePayload{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, payload)
}
