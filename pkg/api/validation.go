package api

// Messages returned for rejected similarity requests.
const (
	MsgEmptyDocs  = "Docs list cannot be empty."
	MsgEmptyQuery = "Query string cannot be empty."
)

// ValidateSimilarityRequest checks a SimilarityRequest for validity. It returns
// an *APIError describing the first validation failure, or nil if the request
// is valid. Docs are checked before the query.
func ValidateSimilarityRequest(req *SimilarityRequest) *APIError {
	if req == nil || len(req.Docs) == 0 {
		return NewInvalidRequestError("docs", MsgEmptyDocs)
	}
	if req.Query == "" {
		return NewInvalidRequestError("query", MsgEmptyQuery)
	}
	return nil
}
