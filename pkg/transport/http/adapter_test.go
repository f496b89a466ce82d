package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhuss/docsim/pkg/api"
	"github.com/rhuss/docsim/pkg/transport"
)

// mockSearcher is a configurable mock Searcher for testing.
type mockSearcher struct {
	resp *api.SimilarityResponse
	err  error
	got  *api.SimilarityRequest
}

func (m *mockSearcher) Search(_ context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func postSimilarity(t *testing.T, h http.Handler, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/similarity", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("error response has no error object")
	}
	return resp.Error
}

func TestSimilaritySuccess(t *testing.T) {
	m := &mockSearcher{resp: &api.SimilarityResponse{Matches: []string{"b", "a"}}}
	a := NewAdapter(m, DefaultConfig())

	rec := postSimilarity(t, a.Handler(), `{"docs":["a","b"],"query":"b"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var got api.SimilarityResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Matches) != 2 || got.Matches[0] != "b" {
		t.Errorf("matches = %v, want [b a]", got.Matches)
	}
	if m.got == nil || len(m.got.Docs) != 2 || m.got.Query != "b" {
		t.Errorf("searcher received %+v", m.got)
	}
}

func TestSimilarityErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   api.ErrorType
		wantMsg    string
	}{
		{
			"invalid request",
			api.NewInvalidRequestError("docs", api.MsgEmptyDocs),
			http.StatusBadRequest, api.ErrorTypeInvalidRequest, api.MsgEmptyDocs,
		},
		{
			"plain collaborator error",
			errors.New("embedding backend unreachable"),
			http.StatusInternalServerError, api.ErrorTypeServerError, "embedding backend unreachable",
		},
		{
			"server error",
			api.NewServerError("boom"),
			http.StatusInternalServerError, api.ErrorTypeServerError, "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(&mockSearcher{err: tt.err}, DefaultConfig())
			rec := postSimilarity(t, a.Handler(), `{"docs":["a"],"query":"q"}`, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			apiErr := decodeError(t, rec)
			if apiErr.Type != tt.wantType {
				t.Errorf("type = %q, want %q", apiErr.Type, tt.wantType)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestSimilarityMalformedJSON(t *testing.T) {
	m := &mockSearcher{}
	a := NewAdapter(m, DefaultConfig())

	rec := postSimilarity(t, a.Handler(), `{"docs": [`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if apiErr := decodeError(t, rec); apiErr.Param != "body" {
		t.Errorf("param = %q, want body", apiErr.Param)
	}
	if m.got != nil {
		t.Error("searcher called for malformed body")
	}
}

func TestSimilarityTrailingData(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"garbage", `{"docs":["a"],"query":"q"}xyz`, http.StatusBadRequest},
		{"second object", `{"docs":["a"],"query":"q"}{"docs":["b"]}`, http.StatusBadRequest},
		{"trailing whitespace", "{\"docs\":[\"a\"],\"query\":\"q\"}\n  ", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockSearcher{resp: &api.SimilarityResponse{Matches: []string{"a"}}}
			a := NewAdapter(m, DefaultConfig())

			rec := postSimilarity(t, a.Handler(), tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusBadRequest {
				return
			}
			if apiErr := decodeError(t, rec); apiErr.Param != "body" {
				t.Errorf("param = %q, want body", apiErr.Param)
			}
			if m.got != nil {
				t.Error("searcher called for body with trailing data")
			}
		})
	}
}

func TestSimilarityContentType(t *testing.T) {
	tests := []struct {
		ct         string
		wantStatus int
	}{
		{"application/json", http.StatusOK},
		{"application/json; charset=utf-8", http.StatusOK},
		{"text/plain", http.StatusUnsupportedMediaType},
		{"not a media type;;", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.ct, func(t *testing.T) {
			a := NewAdapter(&mockSearcher{resp: &api.SimilarityResponse{Matches: []string{}}}, DefaultConfig())
			rec := postSimilarity(t, a.Handler(), `{"docs":["a"],"query":"a"}`, map[string]string{"Content-Type": tt.ct})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSimilarityBodyTooLarge(t *testing.T) {
	a := NewAdapter(&mockSearcher{}, Config{MaxBodySize: 16})

	body := `{"docs":["` + strings.Repeat("x", 64) + `"],"query":"q"}`
	rec := postSimilarity(t, a.Handler(), body, nil)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestSimilarityMethodNotAllowed(t *testing.T) {
	a := NewAdapter(&mockSearcher{}, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/similarity", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestRequestIDHeader(t *testing.T) {
	var seen string
	s := transport.SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
		seen = transport.RequestIDFromContext(ctx)
		return &api.SimilarityResponse{Matches: []string{}}, nil
	})
	a := NewAdapter(s, DefaultConfig(), transport.RequestID())

	t.Run("propagated", func(t *testing.T) {
		rec := postSimilarity(t, a.Handler(), `{"docs":["a"],"query":"a"}`, map[string]string{"X-Request-ID": "client-id-1"})
		if got := rec.Header().Get("X-Request-ID"); got != "client-id-1" {
			t.Errorf("X-Request-ID = %q, want client-id-1", got)
		}
		if seen != "client-id-1" {
			t.Errorf("context request ID = %q, want client-id-1", seen)
		}
	})

	t.Run("generated", func(t *testing.T) {
		rec := postSimilarity(t, a.Handler(), `{"docs":["a"],"query":"a"}`, nil)
		got := rec.Header().Get("X-Request-ID")
		if got == "" {
			t.Fatal("expected a generated X-Request-ID header")
		}
		if seen != got {
			t.Errorf("context request ID = %q, header = %q", seen, got)
		}
	})
}

func TestMiddlewareApplied(t *testing.T) {
	called := false
	mw := func(next transport.Searcher) transport.Searcher {
		return transport.SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
			called = true
			return next.Search(ctx, req)
		})
	}
	a := NewAdapter(&mockSearcher{resp: &api.SimilarityResponse{}}, DefaultConfig(), mw)

	postSimilarity(t, a.Handler(), `{"docs":["a"],"query":"a"}`, nil)
	if !called {
		t.Error("middleware was not applied")
	}
}

func TestNewAdapterDefaultsBodySize(t *testing.T) {
	a := NewAdapter(&mockSearcher{}, Config{})
	if a.config.MaxBodySize != DefaultConfig().MaxBodySize {
		t.Errorf("MaxBodySize = %d, want default", a.config.MaxBodySize)
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	return bytes.NewReader(data)
}
