package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dailyitems/internal/domain"
	"dailyitems/internal/hashtag"
)

type validateHashtagsRequest struct {
	Text string `json:"text"`
}

type hashtagVerdict struct {
	Tag        string  `json:"tag"`
	Raw        string  `json:"raw"`
	Position   int     `json:"position"`
	Valid      bool    `json:"valid"`
	Suggestion *string `json:"suggestion"`
}

type validateHashtagsResponse struct {
	Tags      []hashtagVerdict `json:"tags"`
	FixedText string           `json:"fixed_text"`
}

// ValidateHashtags checks free text against the active whitelist: per-tag
// validity plus a suggestion for close misses, and the autofixed text.
func (a *App) ValidateHashtags(w http.ResponseWriter, r *http.Request) {
	var req validateHashtagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	entries, err := a.Whitelist.ListActive(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("whitelist snapshot failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load hashtag whitelist")
		return
	}
	whitelist := make([]string, 0, len(entries))
	for _, e := range entries {
		whitelist = append(whitelist, e.Tag)
	}

	issues := hashtag.Validate(req.Text, whitelist)
	verdicts := make([]hashtagVerdict, 0, len(issues))
	for _, issue := range issues {
		verdicts = append(verdicts, hashtagVerdict{
			Tag:        issue.Occurrence.Tag,
			Raw:        issue.Occurrence.Raw,
			Position:   issue.Occurrence.Position,
			Valid:      issue.Allowed,
			Suggestion: issue.Suggestion,
		})
	}
	a.json(w, http.StatusOK, validateHashtagsResponse{
		Tags:      verdicts,
		FixedText: hashtag.ApplySuggestedReplacements(req.Text, issues),
	})
}

type whitelistEntryPayload struct {
	Tag      string `json:"tag"`
	Priority int    `json:"priority"`
	Active   bool   `json:"active"`
}

// ListWhitelist returns every whitelist entry in priority order.
func (a *App) ListWhitelist(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Whitelist.List(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("whitelist list failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not load hashtag whitelist")
		return
	}
	out := make([]whitelistEntryPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, whitelistEntryPayload{Tag: e.Tag, Priority: e.Priority, Active: e.Active})
	}
	a.json(w, http.StatusOK, map[string]any{"entries": out})
}

// UpsertWhitelistEntry creates or updates one entry, keyed by normalized tag.
func (a *App) UpsertWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	tag := hashtag.Normalize(strings.TrimSpace(chi.URLParam(r, "tag")))
	if tag == "" {
		a.error(w, http.StatusBadRequest, "missing_tag", "tag is required")
		return
	}
	var req whitelistEntryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	entry := domain.WhitelistEntry{Tag: tag, Priority: req.Priority, Active: req.Active}
	if err := a.Whitelist.Upsert(r.Context(), entry); err != nil {
		a.Logger.Error().Err(err).Str("tag", tag).Msg("whitelist upsert failed")
		a.error(w, http.StatusInternalServerError, "internal", "could not store whitelist entry")
		return
	}
	a.json(w, http.StatusOK, whitelistEntryPayload{Tag: entry.Tag, Priority: entry.Priority, Active: entry.Active})
}
