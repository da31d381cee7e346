package speaker

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity returns the cosine similarity between two embeddings
// mapped from [-1, 1] onto [0, 1], so thresholds live on the same scale
// as the text-match scores.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}

	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude embedding")
	}

	cos := floats.Dot(a, b) / (normA * normB)
	return (cos + 1) / 2, nil
}
