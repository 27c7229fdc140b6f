package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"dailyitems/internal/domain"
	"dailyitems/internal/generation"
	"dailyitems/internal/ratelimit"
)

// App is the handler container: repositories and services injected once at
// startup.
type App struct {
	Logger       zerolog.Logger
	Jobs         domain.JobRepository
	Comments     domain.CommentRepository
	Whitelist    domain.WhitelistRepository
	Limiter      *ratelimit.Limiter
	Orchestrator *generation.Orchestrator
}

func NewApp(logger zerolog.Logger, jobs domain.JobRepository, comments domain.CommentRepository, whitelist domain.WhitelistRepository, limiter *ratelimit.Limiter, orchestrator *generation.Orchestrator) *App {
	return &App{
		Logger:       logger,
		Jobs:         jobs,
		Comments:     comments,
		Whitelist:    whitelist,
		Limiter:      limiter,
		Orchestrator: orchestrator,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the typed error envelope. Codes are stable strings so
// downstream UIs can branch on them.
func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
