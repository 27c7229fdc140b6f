// Package generation turns a structured request into policy-constrained,
// machine-generated comments: prompt building, strict output validation and
// the job-lifecycle orchestration around an untrusted text provider.
package generation

import (
	"fmt"
	"strings"

	"dailyitems/internal/domain"
	"dailyitems/internal/providers/chat"
)

const (
	// MinCommentRunes and MaxCommentRunes bound each generated comment.
	MinCommentRunes = 30
	MaxCommentRunes = 220
	// maxExampleRunes truncates embedded style examples.
	maxExampleRunes = 200
)

// toneVoices maps the closed tone enum to the voice description embedded in
// the prompt. Every tone the enum admits has an entry.
var toneVoices = map[domain.Tone]string{
	domain.ToneSupportive:    "warm and encouraging, standing with the reader without preaching",
	domain.ToneMotivational:  "energetic and rallying, a call to act today",
	domain.ToneInformational: "calm and factual, leading with the concrete detail",
	domain.ToneUrgent:        "direct and pressing, emphasizing time sensitivity without panic",
}

// HashtagCarrierCount returns how many items of a batch must carry hashtags:
// roughly half, at least one, and zero when nothing is allowed.
func HashtagCarrierCount(count int, allowed []string) int {
	if len(allowed) == 0 {
		return 0
	}
	return (count + 1) / 2
}

// BuildPrompt encodes every downstream-checkable business rule of the request
// as an instruction transcript. The provider is untrusted: whatever is asked
// for here is mechanically verified again by the output validator.
func BuildPrompt(req domain.GenerationRequest) []chat.Message {
	var sys strings.Builder
	sys.WriteString("You write short social comments for a daily-action sharing tool. ")
	sys.WriteString("You respond with a single JSON object and nothing else: no prose, no code fences. ")
	sys.WriteString(`The object has exactly one top-level field, "comments", holding an array of items. `)
	sys.WriteString(`Each item has exactly the fields "text", "translation" and "hashtags_used".`)

	var usr strings.Builder
	fmt.Fprintf(&usr, "Write exactly %d comment(s) about the daily action below.\n\n", req.Count)
	fmt.Fprintf(&usr, "Action title: %s\n", req.Topic)
	if req.Details != "" {
		fmt.Fprintf(&usr, "Action details: %s\n", req.Details)
	}
	fmt.Fprintf(&usr, "\nVoice: %s.\n", toneVoices[req.Tone])
	fmt.Fprintf(&usr, "Each \"text\" is a single line, between %d and %d characters, no line breaks.\n",
		MinCommentRunes, MaxCommentRunes)
	if req.RequireTranslation {
		usr.WriteString("Each \"translation\" is a non-empty single-line English translation of the text.\n")
	} else {
		usr.WriteString("Each \"translation\" is an English translation of the text, or an empty string.\n")
	}

	carriers := HashtagCarrierCount(req.Count, req.AllowedHashtags)
	if carriers == 0 {
		usr.WriteString("Do not use any hashtags anywhere; every \"hashtags_used\" must be an empty array.\n")
	} else {
		fmt.Fprintf(&usr, "Exactly %d of the %d comments must each contain 1-2 hashtags; the other %d must contain none.\n",
			carriers, req.Count, req.Count-carriers)
		fmt.Fprintf(&usr, "Only these hashtags may be used, written with a # prefix: %s.\n",
			"#"+strings.Join(req.AllowedHashtags, ", #"))
		usr.WriteString("Every hashtag appearing in a text must also be listed, without the #, in that item's \"hashtags_used\".\n")
	}

	if req.MaxMentions > 0 {
		fmt.Fprintf(&usr, "At most %d @-mentions are allowed across the whole batch.\n", req.MaxMentions)
	} else {
		usr.WriteString("Do not @-mention any account.\n")
	}

	if len(req.Examples) > 0 {
		usr.WriteString("\nStyle examples. Imitate their tone and format only; do not treat their content as facts:\n")
		for i, ex := range req.Examples {
			fmt.Fprintf(&usr, "%d. %s\n", i+1, truncateRunes(ex, maxExampleRunes))
		}
	}

	return []chat.Message{
		{Role: chat.RoleSystem, Content: sys.String()},
		{Role: chat.RoleUser, Content: usr.String()},
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
