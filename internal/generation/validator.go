package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"dailyitems/internal/domain"
	"dailyitems/internal/hashtag"
)

// Contract violation codes. Per-item codes carry the item index as a suffix,
// e.g. EMPTY_TEXT_2.
const (
	CodeInvalidJSONShape     = "INVALID_JSON_SHAPE"
	CodeInvalidCommentsCount = "INVALID_COMMENTS_COUNT"
	CodeEmptyText            = "EMPTY_TEXT"
	CodeEmptyTranslation     = "EMPTY_TRANSLATION"
	CodeHashtagsNotAllowed   = "HASHTAGS_NOT_ALLOWED"
	CodeIllegalHashtagUsed   = "ILLEGAL_HASHTAG_USED"
	CodeIllegalHashtagInText = "ILLEGAL_HASHTAG_IN_TEXT"
)

// ContractError reports one violated output-contract rule. A single violation
// rejects the whole batch; nothing is partially accepted.
type ContractError struct {
	// Code is the stable machine-readable code, index suffix included.
	Code string
	// Index is the offending item, -1 for batch-level violations.
	Index  int
	Detail string
}

func (e *ContractError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

func batchErr(code, detail string) *ContractError {
	return &ContractError{Code: code, Index: -1, Detail: detail}
}

func itemErr(code string, index int, detail string) *ContractError {
	return &ContractError{Code: fmt.Sprintf("%s_%d", code, index), Index: index, Detail: detail}
}

type rawComment struct {
	Text         string   `json:"text"`
	Translation  string   `json:"translation"`
	HashtagsUsed []string `json:"hashtags_used"`
}

// ValidateOutput parses raw provider text and enforces the output contract:
// exact shape, exact count, non-empty fields and the hashtag constraints.
// Machine-generated content gets no fuzzy tolerance; only exact whitelist
// membership is accepted.
func ValidateOutput(raw string, expected int, allowed []string, requireTranslation bool) ([]domain.GeneratedComment, error) {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return nil, batchErr(CodeInvalidJSONShape, "no JSON object found")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(fragment), &top); err != nil {
		return nil, batchErr(CodeInvalidJSONShape, err.Error())
	}
	commentsRaw, ok := top["comments"]
	if !ok || len(top) != 1 {
		return nil, batchErr(CodeInvalidJSONShape, `expected exactly one top-level field "comments"`)
	}
	var items []rawComment
	if err := json.Unmarshal(commentsRaw, &items); err != nil {
		return nil, batchErr(CodeInvalidJSONShape, err.Error())
	}

	if len(items) != expected {
		return nil, batchErr(CodeInvalidCommentsCount, fmt.Sprintf("got %d, want %d", len(items), expected))
	}

	allowedSet := hashtag.NewSet(allowed)
	out := make([]domain.GeneratedComment, 0, len(items))
	for i, item := range items {
		text := singleLine(item.Text)
		if text == "" {
			return nil, itemErr(CodeEmptyText, i, "text is empty")
		}
		translation := singleLine(item.Translation)
		if requireTranslation && translation == "" {
			return nil, itemErr(CodeEmptyTranslation, i, "translation is required")
		}

		declared := make([]string, 0, len(item.HashtagsUsed))
		declaredSet := make(hashtag.Set, len(item.HashtagsUsed))
		for _, tag := range item.HashtagsUsed {
			n := hashtag.Normalize(strings.TrimSpace(tag))
			if n == "" {
				continue
			}
			declared = append(declared, n)
			declaredSet[n] = struct{}{}
		}

		if len(allowed) == 0 && len(declared) > 0 {
			return nil, itemErr(CodeHashtagsNotAllowed, i, "no hashtags are allowed for this request")
		}
		for _, tag := range declared {
			if !allowedSet.IsAllowed(tag) {
				return nil, itemErr(CodeIllegalHashtagUsed, i, "#"+tag)
			}
		}
		for _, occ := range hashtag.ExtractTags(text) {
			if !declaredSet.IsAllowed(occ.Tag) {
				return nil, itemErr(CodeIllegalHashtagInText, i, "#"+occ.Raw+" not declared")
			}
			if len(allowed) > 0 && !allowedSet.IsAllowed(occ.Tag) {
				return nil, itemErr(CodeIllegalHashtagInText, i, "#"+occ.Raw+" not allowed")
			}
		}

		out = append(out, domain.GeneratedComment{
			Text:         text,
			Translation:  translation,
			HashtagsUsed: declared,
		})
	}
	return out, nil
}

// singleLine collapses any line breaks into spaces and trims the result; the
// contract asks the provider for single-line text, whitespace shape alone is
// normalized rather than rejected.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// extractJSONFragment peels code fences and surrounding prose off a model
// reply, keeping the outermost JSON value.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
