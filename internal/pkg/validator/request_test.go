package validator

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/notes-answer/internal/entity"
)

func decode(t *testing.T, body string, dst any) error {
	t.Helper()
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))
	return DecodeJSON(httptest.NewRecorder(), r, dst)
}

func TestValidateAnswerQuestion(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"question":"onde?"}`},
		{name: "valid with top_k", body: `{"question":"onde?","top_k":3}`},
		{name: "empty body", body: ``, wantErr: true},
		{name: "not json", body: `question=onde`, wantErr: true},
		{name: "missing question", body: `{"top_k":3}`, wantErr: true},
		{name: "blank question", body: `{"question":"  \n "}`, wantErr: true},
		{name: "question not a string", body: `{"question":42}`, wantErr: true},
		{name: "zero top_k", body: `{"question":"q","top_k":0}`, wantErr: true},
		{name: "fractional top_k", body: `{"question":"q","top_k":2.5}`, wantErr: true},
		{name: "integral float top_k", body: `{"question":"q","top_k":5.0}`},
		{name: "exponent top_k", body: `{"question":"q","top_k":3e0}`},
		{name: "quoted top_k", body: `{"question":"q","top_k":"5"}`, wantErr: true},
		{name: "null top_k", body: `{"question":"q","top_k":null}`},
		{name: "trailing data", body: `{"question":"q"}{"question":"r"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req entity.AnswerQuestionRequest
			err := decode(t, tt.body, &req)
			if err == nil {
				err = ValidateAnswerQuestion(&req)
			}
			if tt.wantErr {
				if !errors.Is(err, entity.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSuggestSimilar(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"text":"uma nota qualquer"}`},
		{name: "short text is valid", body: `{"text":"oi"}`},
		{name: "all fields", body: `{"text":"uma nota","top_k":3,"min_similarity":0.5}`},
		{name: "missing text", body: `{}`, wantErr: true},
		{name: "text not a string", body: `{"text":["a"]}`, wantErr: true},
		{name: "threshold too high", body: `{"text":"a","min_similarity":1.2}`, wantErr: true},
		{name: "negative top_k", body: `{"text":"a","top_k":-1}`, wantErr: true},
		{name: "integral float top_k", body: `{"text":"a","top_k":2.0}`},
		{name: "fractional top_k", body: `{"text":"a","top_k":5.5}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req entity.SuggestSimilarRequest
			err := decode(t, tt.body, &req)
			if err == nil {
				err = ValidateSuggestSimilar(&req)
			}
			if tt.wantErr {
				if !errors.Is(err, entity.ErrValidation) {
					t.Errorf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
