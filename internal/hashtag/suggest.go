package hashtag

import "strings"

const (
	// maxSuggestDistance forgives up to two edits for any tag.
	maxSuggestDistance = 2
	// longTagLength tags at least this long are forgiven a third edit.
	longTagLength       = 8
	longSuggestDistance = 3
)

// Suggest returns the closest whitelist entry for a candidate tag, or
// ("", false) when nothing is close enough. An exact member returns itself
// with distance zero; callers should treat that as valid rather than as a
// correction. Ties are broken by whitelist order, so a priority-ordered
// whitelist yields priority-ranked suggestions.
func Suggest(tag string, whitelist []string) (string, bool) {
	tag = Normalize(tag)
	best := ""
	bestDist := -1
	for _, entry := range whitelist {
		entry = Normalize(entry)
		d := Distance(tag, entry)
		if bestDist < 0 || d < bestDist {
			best, bestDist = entry, d
		}
	}
	if bestDist < 0 {
		return "", false
	}
	if bestDist == 0 {
		return best, true
	}
	limit := maxSuggestDistance
	if len([]rune(tag)) >= longTagLength {
		limit = longSuggestDistance
	}
	if bestDist <= limit {
		return best, true
	}
	return "", false
}

// Distance computes the Levenshtein distance between two strings with unit
// costs for insert, delete and substitute, over runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Issue is the validation verdict for one extracted tag.
type Issue struct {
	Occurrence Occurrence
	Allowed    bool
	// Suggestion is the closest whitelist entry for a disallowed tag, nil
	// when nothing is within the edit-distance threshold.
	Suggestion *string
}

// Validate checks every tag in text against the whitelist and attaches a
// suggestion to each disallowed tag when one is close enough.
func Validate(text string, whitelist []string) []Issue {
	set := NewSet(whitelist)
	occs := ExtractTags(text)
	issues := make([]Issue, 0, len(occs))
	for _, occ := range occs {
		issue := Issue{Occurrence: occ, Allowed: set.IsAllowed(occ.Tag)}
		if !issue.Allowed {
			if s, ok := Suggest(occ.Tag, whitelist); ok {
				issue.Suggestion = &s
			}
		}
		issues = append(issues, issue)
	}
	return issues
}

// ApplySuggestedReplacements rewrites text by replacing every disallowed tag
// that has a suggestion with that suggestion, globally. Idempotent: replaced
// tags are whitelist members, so a second pass finds nothing to fix.
func ApplySuggestedReplacements(text string, issues []Issue) string {
	for _, issue := range issues {
		if issue.Allowed || issue.Suggestion == nil {
			continue
		}
		from := string(Marker) + issue.Occurrence.Raw
		to := string(Marker) + *issue.Suggestion
		text = strings.ReplaceAll(text, from, to)
	}
	return text
}
