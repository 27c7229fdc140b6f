package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dailyitems/internal/domain"
	"dailyitems/internal/generation"
	"dailyitems/internal/middleware"
	"dailyitems/internal/providers/chat"
)

type adminGenerateRequest struct {
	Title              string   `json:"title"`
	Details            string   `json:"details"`
	Tone               string   `json:"tone"`
	Count              int      `json:"count"`
	Examples           []string `json:"examples"`
	Persist            bool     `json:"persist"`
	RequireTranslation bool     `json:"require_translation"`
	MaxMentions        int      `json:"max_mentions"`
}

type publicGenerateRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`
	Tone    string `json:"tone"`
}

type generateResponse struct {
	JobID      string                    `json:"job_id"`
	Items      []domain.GeneratedComment `json:"items"`
	CommentIDs []string                  `json:"comment_ids,omitempty"`
}

// AdminGenerate handles elevated-role generation: configurable count,
// optional persistence, optional style examples.
func (a *App) AdminGenerate(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "item_id")
	if targetID == "" {
		a.error(w, http.StatusBadRequest, "missing_target", "item_id is required")
		return
	}
	var req adminGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.error(w, http.StatusBadRequest, "missing_title", "title is required")
		return
	}

	genReq := domain.GenerationRequest{
		TargetType:         domain.TargetItem,
		TargetID:           targetID,
		Topic:              strings.TrimSpace(req.Title),
		Details:            strings.TrimSpace(req.Details),
		Tone:               domain.NormalizeTone(req.Tone),
		Count:              req.Count,
		Examples:           req.Examples,
		RequireTranslation: req.RequireTranslation,
		MaxMentions:        req.MaxMentions,
	}
	if !a.loadWhitelist(w, r, &genReq) {
		return
	}

	res, err := a.Orchestrator.Generate(r.Context(), genReq, generation.Requester{
		Type: domain.RequesterAdmin,
		ID:   "admin",
	}, chat.ModeAdmin)
	if err != nil {
		a.generationError(w, err)
		return
	}

	resp := generateResponse{JobID: res.JobID, Items: res.Items}
	if req.Persist {
		ids, err := a.persistComments(r, res, domain.AuthorAdmin)
		if err != nil {
			// The job already reached done; storage failure is reported as
			// its own error rather than masking a successful generation.
			a.error(w, http.StatusInternalServerError, "storage_error", "generated items could not be stored")
			return
		}
		resp.CommentIDs = ids
	}
	a.json(w, http.StatusOK, resp)
}

// PublicGenerate handles device-scoped generation: count fixed at one, the
// result always persisted as an ai-authored comment.
func (a *App) PublicGenerate(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "item_id")
	if targetID == "" {
		a.error(w, http.StatusBadRequest, "missing_target", "item_id is required")
		return
	}
	deviceID := middleware.DeviceIDFromContext(r.Context())
	var req publicGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.error(w, http.StatusBadRequest, "missing_title", "title is required")
		return
	}

	genReq := domain.GenerationRequest{
		TargetType:         domain.TargetItem,
		TargetID:           targetID,
		Topic:              strings.TrimSpace(req.Title),
		Details:            strings.TrimSpace(req.Details),
		Tone:               domain.NormalizeTone(req.Tone),
		Count:              1,
		RequireTranslation: true,
	}
	if !a.loadWhitelist(w, r, &genReq) {
		return
	}

	res, err := a.Orchestrator.Generate(r.Context(), genReq, generation.Requester{
		Type: domain.RequesterDevice,
		ID:   deviceID,
	}, chat.ModePublic)
	if err != nil {
		a.generationError(w, err)
		return
	}

	ids, err := a.persistComments(r, res, domain.AuthorAI)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "storage_error", "generated comment could not be stored")
		return
	}
	a.json(w, http.StatusOK, generateResponse{JobID: res.JobID, Items: res.Items, CommentIDs: ids})
}

// loadWhitelist snapshots the active whitelist onto the request. Reports
// false after writing an error response.
func (a *App) loadWhitelist(w http.ResponseWriter, r *http.Request, genReq *domain.GenerationRequest) bool {
	entries, err := a.Whitelist.ListActive(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("whitelist snapshot failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load hashtag whitelist")
		return false
	}
	tags := make([]string, 0, len(entries))
	for _, e := range entries {
		tags = append(tags, e.Tag)
	}
	genReq.AllowedHashtags = tags
	return true
}

func (a *App) persistComments(r *http.Request, res *generation.Result, author domain.AuthorType) ([]string, error) {
	jobID := res.JobID
	comments := make([]domain.Comment, len(res.Items))
	for i, item := range res.Items {
		comments[i] = domain.Comment{
			TargetType:  domain.TargetItem,
			TargetID:    chi.URLParam(r, "item_id"),
			Text:        item.Text,
			Translation: item.Translation,
			Author:      author,
			JobID:       &jobID,
		}
	}
	return a.Comments.SaveAll(r.Context(), comments)
}

// generationError maps pipeline failures onto the stable error codes of the
// response envelope.
func (a *App) generationError(w http.ResponseWriter, err error) {
	var contractErr *generation.ContractError
	if errors.As(err, &contractErr) {
		a.error(w, http.StatusBadGateway, contractErr.Code, "provider output violated the generation contract")
		return
	}
	if errors.Is(err, chat.ErrMissingCredential) {
		a.error(w, http.StatusServiceUnavailable, "provider_unconfigured", "text generation backend has no credential")
		return
	}
	var statusErr *chat.StatusError
	if errors.As(err, &statusErr) {
		a.error(w, http.StatusBadGateway, "provider_error", "text generation backend failed")
		return
	}
	a.Logger.Error().Err(err).Msg("generation failed")
	a.error(w, http.StatusInternalServerError, "internal", "generation failed")
}
