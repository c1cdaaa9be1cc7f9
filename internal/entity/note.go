package entity

// Match is a single nearest-neighbour hit returned by the vector backend.
// ID is opaque to the generation step.
type Match struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// Source is the caller-facing projection of a Match.
type Source struct {
	Rank       int
	ID         string
	Similarity float64
	Title      string
	Preview    string
	Content    string // raw note text, kept for prompting
}

// ContextBlock is the prompt-ready concatenation of sources. SourceIDs are
// carried next to the text so generated output can be screened for leaked
// identifiers; they are never part of Text under the strict citation policy.
type ContextBlock struct {
	Text      string
	SourceIDs []string
}

// DuplicateDecision is the outcome of a near-duplicate check.
type DuplicateDecision struct {
	Matched bool
	Best    *Match
}
