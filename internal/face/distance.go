package face

import (
	"fmt"
	"math"

	"voice-assistant/internal/domain"
)

// Metric measures dissimilarity between two embeddings of equal dimension.
type Metric func(a, b domain.Embedding) float64

func EuclideanDistance(a, b domain.Embedding) float64 {
	var sum float64
	for i := 0; i < a.Dim(); i++ {
		d := float64(a.At(i)) - float64(b.At(i))
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineDistance is 1 - cosine similarity. Zero vectors are maximally distant.
func CosineDistance(a, b domain.Embedding) float64 {
	var dot, normA, normB float64
	for i := 0; i < a.Dim(); i++ {
		x, y := float64(a.At(i)), float64(b.At(i))
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func ParseMetric(name string) (Metric, error) {
	switch name {
	case "", "euclidean":
		return EuclideanDistance, nil
	case "cosine":
		return CosineDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}
