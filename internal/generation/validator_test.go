package generation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailyitems/internal/domain"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

type item map[string]any

func payload(items ...item) map[string]any {
	return map[string]any{"comments": items}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var cerr *ContractError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, code, cerr.Code)
}

func TestValidateOutputAccepts(t *testing.T) {
	allowed := []string{"iran", "women"}
	raw := mustJSON(t, payload(
		item{"text": "Share this action with a friend today #iran", "translation": "ترجمه", "hashtags_used": []string{"iran"}},
		item{"text": "A small step every single day still counts", "translation": "ترجمه", "hashtags_used": []string{}},
	))
	items, err := ValidateOutput(raw, 2, allowed, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"iran"}, items[0].HashtagsUsed)
	assert.Empty(t, items[1].HashtagsUsed)
}

func TestValidateOutputAcceptsFencedReply(t *testing.T) {
	raw := "```json\n" + mustJSON(t, payload(
		item{"text": "One honest sentence about today's action, long enough", "translation": "t", "hashtags_used": []string{}},
	)) + "\n```"
	items, err := ValidateOutput(raw, 1, nil, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestValidateOutputShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "sorry, I cannot help with that"},
		{"array at top level", `[{"text":"x"}]`},
		{"wrong field name", `{"items":[]}`},
		{"extra wrapper field", `{"comments":[],"note":"hi"}`},
		{"comments not an array", `{"comments":"x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateOutput(tc.raw, 1, nil, false)
			requireCode(t, err, CodeInvalidJSONShape)
		})
	}
}

func TestValidateOutputCount(t *testing.T) {
	raw := mustJSON(t, payload(
		item{"text": "first comment text that is long enough to pass", "translation": "t", "hashtags_used": []string{}},
		item{"text": "second comment text that is long enough to pass", "translation": "t", "hashtags_used": []string{}},
	))
	_, err := ValidateOutput(raw, 3, nil, false)
	requireCode(t, err, CodeInvalidCommentsCount)

	// "At least" is not enough either: more than requested is rejected too.
	_, err = ValidateOutput(raw, 1, nil, false)
	requireCode(t, err, CodeInvalidCommentsCount)
}

func TestValidateOutputPerItem(t *testing.T) {
	allowed := []string{"iran", "women"}
	tests := []struct {
		name     string
		items    []item
		allowed  []string
		needsTr  bool
		wantCode string
	}{
		{
			name: "empty text",
			items: []item{
				{"text": "fine text that is long enough for the bounds", "translation": "t", "hashtags_used": []string{}},
				{"text": "   ", "translation": "t", "hashtags_used": []string{}},
			},
			allowed:  allowed,
			wantCode: "EMPTY_TEXT_1",
		},
		{
			name: "empty translation when required",
			items: []item{
				{"text": "fine text that is long enough for the bounds", "translation": "", "hashtags_used": []string{}},
			},
			allowed:  allowed,
			needsTr:  true,
			wantCode: "EMPTY_TRANSLATION_0",
		},
		{
			name: "hashtags declared while none allowed",
			items: []item{
				{"text": "no tags in here at all, just honest words", "translation": "t", "hashtags_used": []string{"iran"}},
			},
			allowed:  nil,
			wantCode: "HASHTAGS_NOT_ALLOWED_0",
		},
		{
			name: "declared hashtag outside the allowed set",
			items: []item{
				{"text": "tagged text goes here with enough length #freedom", "translation": "t", "hashtags_used": []string{"freedom"}},
			},
			allowed:  allowed,
			wantCode: "ILLEGAL_HASHTAG_USED_0",
		},
		{
			name: "hashtag in text not declared",
			items: []item{
				{"text": "stand together for #IRAN and for each other", "translation": "t", "hashtags_used": []string{}},
			},
			allowed:  allowed,
			wantCode: "ILLEGAL_HASHTAG_IN_TEXT_0",
		},
		{
			name: "hashtag in text while none allowed",
			items: []item{
				{"text": "stand together for #freedom and for each other", "translation": "t", "hashtags_used": []string{}},
			},
			allowed:  nil,
			wantCode: "ILLEGAL_HASHTAG_IN_TEXT_0",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateOutput(mustJSON(t, payload(tc.items...)), len(tc.items), tc.allowed, tc.needsTr)
			requireCode(t, err, tc.wantCode)
		})
	}
}

// The whole batch is rejected even when only one item offends: 3 items,
// one contains #IRAN literally but declares nothing.
func TestValidateOutputRejectsWholeBatch(t *testing.T) {
	allowed := []string{"iran", "women"}
	raw := mustJSON(t, payload(
		item{"text": "good first comment with plenty of characters", "translation": "t", "hashtags_used": []string{}},
		item{"text": "stand with the people of #IRAN again today", "translation": "t", "hashtags_used": []string{}},
		item{"text": "good third comment with plenty of characters", "translation": "t", "hashtags_used": []string{}},
	))
	items, err := ValidateOutput(raw, 3, allowed, false)
	assert.Nil(t, items)
	requireCode(t, err, fmt.Sprintf("%s_1", CodeIllegalHashtagInText))
}

func TestValidateOutputNormalizesDeclaredTags(t *testing.T) {
	raw := mustJSON(t, payload(
		item{"text": "every voice matters, raise yours for #Women now", "translation": "t", "hashtags_used": []string{"#Women"}},
	))
	items, err := ValidateOutput(raw, 1, []string{"women"}, false)
	require.NoError(t, err)
	assert.Equal(t, []domain.GeneratedComment{{
		Text:         "every voice matters, raise yours for #Women now",
		Translation:  "t",
		HashtagsUsed: []string{"women"},
	}}, items)
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "a b c", singleLine("a\nb\r\nc"))
	assert.Equal(t, "", singleLine(" \n "))
}
