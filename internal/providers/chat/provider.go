// Package chat abstracts interchangeable external text-generation backends
// behind a single Chat call.
package chat

import (
	"context"
	"errors"
	"fmt"
)

// Mode distinguishes trusted (admin) from untrusted (public) callers so that
// model cost/quality can differ between them without code changes.
type Mode string

const (
	ModeAdmin  Mode = "admin"
	ModePublic Mode = "public"
)

// Message is one transcript entry sent to a backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Options tunes a single Chat call.
type Options struct {
	Temperature float64
	MaxTokens   int
	Mode        Mode
}

// Reply carries the backend's text answer plus the raw response body for
// auditing.
type Reply struct {
	Text string
	Raw  string
}

// Provider is one text-generation backend.
type Provider interface {
	Name() string
	// Model resolves the model identifier this backend would use for a mode.
	Model(mode Mode) string
	Chat(ctx context.Context, messages []Message, opts Options) (*Reply, error)
}

// ErrMissingCredential is returned by a backend that requires a credential
// and does not have one. It fails fast, before any network call.
var ErrMissingCredential = errors.New("missing provider credential")

// StatusError reports a non-success backend response, keeping the raw body
// for diagnostics.
type StatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, e.Body)
}

// resolveModel applies the shared selection order: mode-specific model,
// shared fallback, hard default.
func resolveModel(mode Mode, adminModel, publicModel, shared, hardDefault string) string {
	var preferred string
	switch mode {
	case ModeAdmin:
		preferred = adminModel
	case ModePublic:
		preferred = publicModel
	}
	if preferred != "" {
		return preferred
	}
	if shared != "" {
		return shared
	}
	return hardDefault
}
