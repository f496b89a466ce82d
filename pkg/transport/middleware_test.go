package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rhuss/docsim/pkg/api"
)

var okSearcher = SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
	return &api.SimilarityResponse{Matches: req.Docs}, nil
})

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next Searcher) Searcher {
			return SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
				order = append(order, name+":before")
				resp, err := next.Search(ctx, req)
				order = append(order, name+":after")
				return resp, err
			})
		}
	}

	handler := SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
		order = append(order, "handler")
		return &api.SimilarityResponse{}, nil
	})

	wrapped := Chain(mw("first"), mw("second"), mw("third"))(handler)
	wrapped.Search(context.Background(), &api.SimilarityRequest{})

	expected := []string{
		"first:before", "second:before", "third:before",
		"handler",
		"third:after", "second:after", "first:after",
	}

	if len(order) != len(expected) {
		t.Fatalf("execution order length = %d, want %d: %v", len(order), len(expected), order)
	}
	for i, got := range order {
		if got != expected[i] {
			t.Errorf("order[%d] = %q, want %q", i, got, expected[i])
		}
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
		panic("test panic")
	})

	resp, err := Recovery()(handler).Search(context.Background(), &api.SimilarityRequest{})

	if err == nil {
		t.Fatal("expected error after panic, got nil")
	}
	if resp != nil {
		t.Errorf("expected nil response after panic, got %+v", resp)
	}

	apiErr, ok := err.(*api.APIError)
	if !ok {
		t.Fatalf("expected *api.APIError, got %T: %v", err, err)
	}
	if apiErr.Type != api.ErrorTypeServerError {
		t.Errorf("error type = %q, want %q", apiErr.Type, api.ErrorTypeServerError)
	}
	if !strings.Contains(apiErr.Message, "test panic") {
		t.Errorf("error message = %q, should contain %q", apiErr.Message, "test panic")
	}
}

func TestRecoveryPassesThroughNormalExecution(t *testing.T) {
	resp, err := Recovery()(okSearcher).Search(context.Background(), &api.SimilarityRequest{Docs: []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Errorf("matches = %v, want [a]", resp.Matches)
	}
}

func TestRequestIDGeneratesNewID(t *testing.T) {
	var capturedID string

	handler := SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
		capturedID = RequestIDFromContext(ctx)
		return &api.SimilarityResponse{}, nil
	})

	RequestID()(handler).Search(context.Background(), &api.SimilarityRequest{})

	if capturedID == "" {
		t.Fatal("expected a generated request ID, got empty string")
	}
	if _, err := uuid.Parse(capturedID); err != nil {
		t.Errorf("request ID %q is not a UUID: %v", capturedID, err)
	}
}

func TestRequestIDPropagatesExisting(t *testing.T) {
	var capturedID string

	handler := SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
		capturedID = RequestIDFromContext(ctx)
		return &api.SimilarityResponse{}, nil
	})

	ctx := ContextWithRequestID(context.Background(), "existing-id-123")
	RequestID()(handler).Search(ctx, &api.SimilarityRequest{})

	if capturedID != "existing-id-123" {
		t.Errorf("request ID = %q, want %q", capturedID, "existing-id-123")
	}
}

func TestRequestIDUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	handler := SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
		ids[RequestIDFromContext(ctx)] = true
		return &api.SimilarityResponse{}, nil
	})

	wrapped := RequestID()(handler)
	for i := 0; i < 100; i++ {
		wrapped.Search(context.Background(), &api.SimilarityRequest{})
	}

	if len(ids) != 100 {
		t.Errorf("expected 100 unique IDs, got %d", len(ids))
	}
}

func TestLoggingEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx := ContextWithRequestID(context.Background(), "req-log-test")
	Logging(logger)(okSearcher).Search(ctx, &api.SimilarityRequest{Docs: []string{"a", "b"}, Query: "q"})

	output := buf.String()
	for _, expected := range []string{"request_id=req-log-test", "docs=2", "matches=2", "request completed"} {
		if !strings.Contains(output, expected) {
			t.Errorf("log output missing %q in:\n%s", expected, output)
		}
	}
}

func TestLoggingEmitsErrorOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{"collaborator failure", errors.New("backend down"), "level=ERROR"},
		{"invalid request", api.NewInvalidRequestError("docs", api.MsgEmptyDocs), "level=WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

			handler := SearcherFunc(func(ctx context.Context, req *api.SimilarityRequest) (*api.SimilarityResponse, error) {
				return nil, tt.err
			})
			Logging(logger)(handler).Search(context.Background(), &api.SimilarityRequest{})

			output := buf.String()
			if !strings.Contains(output, "request failed") {
				t.Errorf("log output missing 'request failed' in:\n%s", output)
			}
			if !strings.Contains(output, tt.wantLevel) {
				t.Errorf("log output missing %q in:\n%s", tt.wantLevel, output)
			}
		})
	}
}
