package vectorstore

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopKOrdersTiesByOrdinal(t *testing.T) {
	matches := []SearchMatch{
		{ID: "c", Score: 0.5, Ordinal: 3},
		{ID: "b", Score: 0.9, Ordinal: 2},
		{ID: "a", Score: 0.9, Ordinal: 1},
		{ID: "d", Score: 0.1, Ordinal: 0},
	}

	got := TopK(matches, 3)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i].ID, want[i])
		}
	}
}

func TestTopKNonPositive(t *testing.T) {
	if got := TopK([]SearchMatch{{ID: "a"}}, 0); got != nil {
		t.Errorf("TopK(k=0) = %v, want nil", got)
	}
}
