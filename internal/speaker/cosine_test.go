package speaker

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, 0.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.5},
		{"scaled copy", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityErrors(t *testing.T) {
	if _, err := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if _, err := CosineSimilarity(nil, nil); err == nil {
		t.Error("expected error for empty vectors")
	}
	if _, err := CosineSimilarity([]float64{0, 0}, []float64{1, 1}); err == nil {
		t.Error("expected error for zero-magnitude vector")
	}
}
