package embeddingtest

import (
	"encoding/json"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rhuss/docsim/pkg/embedding"
)

// embeddingsRequest accepts both the string and the array form of "input".
type embeddingsRequest struct {
	Input json.RawMessage `json:"input"`
	Model string          `json:"model"`
}

// NewServer returns an http.Handler that serves the OpenAI embeddings API
// (POST /v1/embeddings) backed by emb. The requested model name is echoed;
// vectors always come from emb.
func NewServer(emb embedding.Embedder) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeOpenAIError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		texts, err := decodeInput(req.Input)
		if err != nil {
			writeOpenAIError(w, http.StatusBadRequest, err.Error())
			return
		}

		vectors, err := emb.Embed(r.Context(), texts)
		if err != nil {
			writeOpenAIError(w, http.StatusInternalServerError, err.Error())
			return
		}

		resp := openai.EmbeddingResponse{
			Object: "list",
			Model:  openai.EmbeddingModel(req.Model),
			Data:   make([]openai.Embedding, len(vectors)),
		}
		for i, v := range vectors {
			resp.Data[i] = openai.Embedding{Object: "embedding", Embedding: v, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]string{{"id": emb.Model(), "object": "model"}},
		})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

func decodeInput(raw json.RawMessage) ([]string, error) {
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		if len(many) == 0 {
			return nil, fmt.Errorf("input must not be empty")
		}
		return many, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("input must be a string or an array of strings")
	}
	return []string{one}, nil
}

func writeOpenAIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(openai.ErrorResponse{
		Error: &openai.APIError{Message: msg, Type: "invalid_request_error"},
	})
}
