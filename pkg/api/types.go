package api

// DefaultTopK is the number of matches returned for a query.
const DefaultTopK = 3

// SimilarityRequest is the body of POST /similarity.
type SimilarityRequest struct {
	Docs  []string `json:"docs"`
	Query string   `json:"query"`
}

// SimilarityResponse holds up to DefaultTopK documents ranked by
// descending similarity to the query.
type SimilarityResponse struct {
	Matches []string `json:"matches"`
}
