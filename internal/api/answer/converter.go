package answer

import "github.com/futig/notes-answer/internal/entity"

func toAnswerRequest(req *entity.AnswerQuestionRequest, scope entity.AuthScope) entity.AnswerRequest {
	ucReq := entity.AnswerRequest{Question: *req.Question, Scope: scope}
	if req.TopK != nil {
		ucReq.TopK = int(*req.TopK)
	}
	return ucReq
}

// toAnswerResponse drops rank and, unless exposeContent is set, the raw
// note content.
func toAnswerResponse(res *entity.AnswerResult, exposeContent bool) entity.AnswerQuestionResponse {
	sources := make([]entity.SourceDTO, 0, len(res.Sources))
	for _, s := range res.Sources {
		dto := entity.SourceDTO{
			ID:         s.ID,
			Similarity: s.Similarity,
			Title:      s.Title,
			Preview:    s.Preview,
		}
		if exposeContent {
			content := s.Content
			dto.Content = &content
		}
		sources = append(sources, dto)
	}
	return entity.AnswerQuestionResponse{Answer: res.Answer, Sources: sources}
}
