// Package hashtag implements the whitelist constraint engine: tag extraction,
// membership checks, edit-distance suggestions and suggestion-based autofix.
package hashtag

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Marker is the character that introduces a hashtag.
const Marker = '#'

var folder = cases.Fold()

// Occurrence is one hashtag found in free text.
type Occurrence struct {
	// Raw is the tag exactly as written, without the marker.
	Raw string
	// Tag is the normalized form used for matching.
	Tag string
	// Position is the byte offset of the marker in the scanned text.
	Position int
}

// Normalize maps a raw tag onto its canonical matching form: NFC-composed,
// case-folded, marker stripped.
func Normalize(raw string) string {
	raw = strings.TrimPrefix(raw, string(Marker))
	return folder.String(norm.NFC.String(raw))
}

func isTagRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ExtractTags scans text for marker-introduced tags in order of appearance.
// A marker not followed by at least one letter, digit or underscore is not a
// tag.
func ExtractTags(text string) []Occurrence {
	var out []Occurrence
	runes := []rune(text)
	offset := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		size := len(string(r))
		if r != Marker {
			offset += size
			continue
		}
		j := i + 1
		for j < len(runes) && isTagRune(runes[j]) {
			j++
		}
		if j == i+1 {
			offset += size
			continue
		}
		raw := string(runes[i+1 : j])
		out = append(out, Occurrence{Raw: raw, Tag: Normalize(raw), Position: offset})
		for k := i; k < j; k++ {
			offset += len(string(runes[k]))
		}
		i = j - 1
	}
	return out
}

// Set is a normalized-tag membership set.
type Set map[string]struct{}

// NewSet builds a Set from raw tags, normalizing each.
func NewSet(tags []string) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		s[Normalize(t)] = struct{}{}
	}
	return s
}

// IsAllowed reports whether the normalized tag is a member of the set.
func (s Set) IsAllowed(tag string) bool {
	_, ok := s[tag]
	return ok
}
