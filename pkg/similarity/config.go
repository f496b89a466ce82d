package similarity

import "github.com/rhuss/docsim/pkg/api"

// Config holds configuration for the similarity service.
type Config struct {
	// TopK is the maximum number of matches returned. Zero or negative
	// means use api.DefaultTopK.
	TopK int
}

// topK returns the effective match limit.
func (c Config) topK() int {
	if c.TopK <= 0 {
		return api.DefaultTopK
	}
	return c.TopK
}
