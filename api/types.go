// Package api defines the JSON request and response shapes exchanged over
// the HTTP encode/decode surface.
package api

import (
	"fmt"
	"net/http"
)

// Error is the JSON body returned for a failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	return e.Message
}

// EncodeRequest is the body of POST /api/encode.
type EncodeRequest struct {
	Text     string  `json:"text"`
	Alpha    float32 `json:"alpha,omitempty"`
	Tokenize *bool   `json:"tokenize,omitempty"`
}

// EncodeResponse is the body returned by POST /api/encode.
type EncodeResponse struct {
	Pieces []string `json:"pieces"`
	IDs    []int32  `json:"ids,omitempty"`
}

// EncodeBatchRequest is the body of POST /api/encode/batch.
type EncodeBatchRequest struct {
	Texts []string `json:"texts"`
	Alpha float32  `json:"alpha,omitempty"`
}

// EncodeBatchResponse is the body returned by POST /api/encode/batch.
type EncodeBatchResponse struct {
	IDs [][]int32 `json:"ids"`
}

// DecodeRequest is the body of POST /api/decode.
type DecodeRequest struct {
	IDs []int32 `json:"ids"`
}

// DecodeResponse is the body returned by POST /api/decode.
type DecodeResponse struct {
	Text string `json:"text"`
}

// VocabStatsResponse is the body returned by GET /api/vocab/stats.
type VocabStatsResponse struct {
	VocabSize       int `json:"vocab_size"`
	MergeCount      int `json:"merge_count"`
	AddedVocabCount int `json:"added_vocab_count"`
}
