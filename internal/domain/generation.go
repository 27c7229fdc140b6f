package domain

// Tone enumerates the supported comment voices.
type Tone string

const (
	ToneSupportive    Tone = "supportive"
	ToneMotivational  Tone = "motivational"
	ToneInformational Tone = "informational"
	ToneUrgent        Tone = "urgent"
)

// DefaultTone is applied when a request carries an unknown or empty tone.
const DefaultTone = ToneSupportive

// NormalizeTone maps loose input onto the closed enum.
func NormalizeTone(v string) Tone {
	switch Tone(v) {
	case ToneSupportive, ToneMotivational, ToneInformational, ToneUrgent:
		return Tone(v)
	default:
		return DefaultTone
	}
}

const (
	// MinCommentCount and MaxCommentCount bound a single generation batch.
	MinCommentCount = 1
	MaxCommentCount = 30
	// DefaultCommentCount applies when an admin request omits the count.
	DefaultCommentCount = 10
	// MaxStyleExamples caps the embedded style-steering examples.
	MaxStyleExamples = 10
)

// ClampCommentCount forces a requested count into the permitted range,
// substituting the default for non-positive input.
func ClampCommentCount(n int) int {
	if n <= 0 {
		return DefaultCommentCount
	}
	if n < MinCommentCount {
		return MinCommentCount
	}
	if n > MaxCommentCount {
		return MaxCommentCount
	}
	return n
}

// GenerationRequest carries everything one generation run needs. It is
// ephemeral: only the derived job and its transcript are persisted.
type GenerationRequest struct {
	TargetType TargetType
	TargetID   string
	Topic      string
	Details    string
	Tone       Tone
	Count      int
	Examples   []string
	// AllowedHashtags is a snapshot of the active whitelist at request time,
	// normalized, ordered by priority.
	AllowedHashtags []string
	// RequireTranslation demands a non-empty translation on every item.
	RequireTranslation bool
	// MaxMentions caps @-mentions across the whole batch. Zero forbids them.
	MaxMentions int
}

// Normalize applies the boundary rules: clamped count, closed-enum tone and
// truncated example list.
func (r *GenerationRequest) Normalize() {
	r.Tone = NormalizeTone(string(r.Tone))
	r.Count = ClampCommentCount(r.Count)
	if r.TargetType == "" {
		r.TargetType = TargetItem
	}
	if len(r.Examples) > MaxStyleExamples {
		r.Examples = r.Examples[:MaxStyleExamples]
	}
}
