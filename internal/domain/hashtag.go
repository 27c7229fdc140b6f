package domain

// WhitelistEntry is one administrator-curated permitted hashtag. Tags are
// stored normalized: lowercase, no leading marker. Priority affects suggestion
// ranking and listing order, not matching.
type WhitelistEntry struct {
	Tag      string
	Priority int
	Active   bool
}
