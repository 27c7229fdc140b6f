package domain

import "time"

// AuthorType enumerates comment authorship kinds.
type AuthorType string

const (
	AuthorAdmin AuthorType = "admin"
	AuthorAI    AuthorType = "ai"
	AuthorUser  AuthorType = "user"
)

// NormalizeAuthorType maps loose input onto the closed enum, defaulting to user.
func NormalizeAuthorType(v string) AuthorType {
	switch AuthorType(v) {
	case AuthorAdmin, AuthorAI:
		return AuthorType(v)
	default:
		return AuthorUser
	}
}

// GeneratedComment is one validated output unit of a generation run. It is
// ephemeral until the caller chooses to persist it as a Comment.
type GeneratedComment struct {
	Text         string   `json:"text"`
	Translation  string   `json:"translation"`
	HashtagsUsed []string `json:"hashtags_used"`
}

// Comment is a persisted comment attached to a target entity.
type Comment struct {
	ID          string
	TargetType  TargetType
	TargetID    string
	Text        string
	Translation string
	Author      AuthorType
	JobID       *string
	CreatedAt   time.Time
}
