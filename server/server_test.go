package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lexigo/spmbpe/api"
	"github.com/lexigo/spmbpe/tokenizer"
)

func testServer(t *testing.T) *Server {
	gin.SetMode(gin.TestMode)

	sentinel := "▁"
	tok := tokenizer.New(tokenizer.Config{
		Vocab: map[string]int32{
			"a": 1, "b": 2, "ab": 3, sentinel: 4, sentinel + "a": 5,
		},
		BPERanks: map[[2]string]int{
			{"a", "b"}: 0,
		},
	})
	return New(tok, nil)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealthz(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandleEncodeTokenizes(t *testing.T) {
	s := testServer(t)

	rec := postJSON(t, s, "/api/encode", api.EncodeRequest{Text: "ab"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp api.EncodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Pieces) == 0 {
		t.Error("expected non-empty pieces")
	}
	if len(resp.IDs) != len(resp.Pieces) {
		t.Errorf("ids len = %d, pieces len = %d, want equal", len(resp.IDs), len(resp.Pieces))
	}
}

func TestHandleEncodePiecesOnly(t *testing.T) {
	s := testServer(t)

	tokenize := false
	rec := postJSON(t, s, "/api/encode", api.EncodeRequest{Text: "ab", Tokenize: &tokenize})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp api.EncodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.IDs != nil {
		t.Errorf("ids = %#v, want nil when tokenize=false", resp.IDs)
	}
}

func TestHandleEncodeMalformedBodyIsBadRequest(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/encode", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleEncodeBatchMatchesEncode(t *testing.T) {
	s := testServer(t)

	rec := postJSON(t, s, "/api/encode/batch", api.EncodeBatchRequest{Texts: []string{"ab", "a"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp api.EncodeBatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.IDs) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.IDs))
	}
	for i, text := range []string{"ab", "a"} {
		_, want, err := s.tok.Encode(text, 0, true)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(resp.IDs[i], want) {
			t.Errorf("text %q: batch got %#v, Encode got %#v", text, resp.IDs[i], want)
		}
	}
}

func TestHandleDecodeRoundTrip(t *testing.T) {
	s := testServer(t)

	encRec := postJSON(t, s, "/api/encode", api.EncodeRequest{Text: "a"})
	var encResp api.EncodeResponse
	if err := json.Unmarshal(encRec.Body.Bytes(), &encResp); err != nil {
		t.Fatalf("unmarshal encode response: %v", err)
	}

	decRec := postJSON(t, s, "/api/decode", api.DecodeRequest{IDs: encResp.IDs})
	if decRec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", decRec.Code, http.StatusOK)
	}

	var decResp api.DecodeResponse
	if err := json.Unmarshal(decRec.Body.Bytes(), &decResp); err != nil {
		t.Fatalf("unmarshal decode response: %v", err)
	}
	if decResp.Text != "a" {
		t.Errorf("decoded text = %q, want %q", decResp.Text, "a")
	}
}

func TestHandleVocabStats(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/vocab/stats", nil)
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp api.VocabStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.VocabSize != 5 {
		t.Errorf("vocab size = %d, want 5", resp.VocabSize)
	}
	if resp.MergeCount != 1 {
		t.Errorf("merge count = %d, want 1", resp.MergeCount)
	}
}

func TestRequestIDEchoedInResponseHeader(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id-123")
	s.engine.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "fixed-id-123" {
		t.Errorf("request id header = %q, want %q", got, "fixed-id-123")
	}
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	s := testServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	s.engine.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got == "" {
		t.Error("expected a generated request id header")
	}
}
