package entity

// AnswerQuestionRequest is the body of POST /answer-question.
// Pointer fields distinguish absent values from zero values.
type AnswerQuestionRequest struct {
	Question *string  `json:"question"`
	TopK     *Integer `json:"top_k,omitempty"`
}

// AnswerQuestionResponse is the successful response of POST /answer-question.
type AnswerQuestionResponse struct {
	Answer  string      `json:"answer"`
	Sources []SourceDTO `json:"sources"`
}

// SourceDTO is the external view of a Source. Rank is implied by position,
// Content is only filled when the deployment exposes note bodies.
type SourceDTO struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
	Title      string  `json:"title"`
	Preview    string  `json:"preview"`
	Content    *string `json:"content,omitempty"`
}

// AnswerRequest is the input of the answering use case. Zero TopK selects
// the configured default.
type AnswerRequest struct {
	Question string
	TopK     int
	Scope    AuthScope
}

// AnswerResult is the output of the answering use case.
type AnswerResult struct {
	Answer  string
	Sources []Source
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
