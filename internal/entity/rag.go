package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MatchDocumentsRequest is the payload of the match_documents RPC family.
type MatchDocumentsRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchCount     int       `json:"match_count"`
}

// MatchDocumentsRow is one row returned by the RPC. Content may be null.
type MatchDocumentsRow struct {
	ID         NoteID  `json:"id"`
	Content    *string `json:"content"`
	Similarity float64 `json:"similarity"`
}

// NoteID accepts both uuid strings and integer keys from the backend.
type NoteID string

func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	*id = NoteID(n.String())
	return nil
}

// PostgRESTError is the error body returned by the PostgREST gateway.
type PostgRESTError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}
