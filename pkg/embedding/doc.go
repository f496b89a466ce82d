// Package embedding turns text into dense vectors.
//
// The [Embedder] interface is the only contract the vector store depends on.
// [OpenAIClient] talks to any OpenAI-compatible /v1/embeddings endpoint, which
// covers self-hosted sentence-embedding servers (TEI, Infinity, vLLM, Ollama)
// serving models such as BAAI/bge-base-en-v1.5. [Cached] adds an in-process
// LRU in front of any Embedder, and [Instrument] records Prometheus metrics.
package embedding
