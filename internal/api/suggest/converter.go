package suggest

import "github.com/futig/notes-answer/internal/entity"

func toSuggestRequest(req *entity.SuggestSimilarRequest, scope entity.AuthScope) entity.SuggestRequest {
	ucReq := entity.SuggestRequest{
		Text:          *req.Text,
		MinSimilarity: req.MinSimilarity,
		Scope:         scope,
	}
	if req.TopK != nil {
		ucReq.TopK = int(*req.TopK)
	}
	return ucReq
}

func toSuggestResponse(d entity.DuplicateDecision) entity.SuggestSimilarResponse {
	if !d.Matched || d.Best == nil {
		return entity.SuggestSimilarResponse{}
	}
	return entity.SuggestSimilarResponse{Match: &entity.SimilarNoteDTO{
		ID:         d.Best.ID,
		Similarity: d.Best.Similarity,
		Content:    d.Best.Content,
	}}
}
