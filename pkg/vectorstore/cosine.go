package vectorstore

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Vectors of different length or zero magnitude score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// SortMatches orders matches by descending score, then ascending ordinal.
func SortMatches(matches []SearchMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Ordinal < matches[j].Ordinal
	})
}

// TopK sorts matches and truncates them to k entries. A non-positive k
// returns no matches.
func TopK(matches []SearchMatch, k int) []SearchMatch {
	if k <= 0 {
		return nil
	}
	SortMatches(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
