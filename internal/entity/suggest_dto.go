package entity

// SuggestSimilarRequest is the body of POST /suggest-similar.
type SuggestSimilarRequest struct {
	Text          *string  `json:"text"`
	TopK          *Integer `json:"top_k,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
}

// SuggestSimilarResponse always serializes Match, as null when nothing matched.
type SuggestSimilarResponse struct {
	Match *SimilarNoteDTO `json:"match"`
}

type SimilarNoteDTO struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// SuggestRequest is the input of the duplicate suggestion use case. Zero
// TopK and nil MinSimilarity select the configured defaults.
type SuggestRequest struct {
	Text          string
	TopK          int
	MinSimilarity *float64
	Scope         AuthScope
}
