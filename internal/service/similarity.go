package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/faceverify/faceverify/internal/domain"
)

const (
	// DefaultSamePersonThreshold is the score above which two faces are the same person.
	DefaultSamePersonThreshold = 65.0

	highConfidenceScore   = 75.0
	mediumConfidenceScore = 60.0
)

var (
	ErrEmptyEmbedding     = errors.New("empty embedding")
	ErrEmbeddingMismatch  = errors.New("embedding dimensions differ")
	ErrZeroNormEmbedding  = errors.New("embedding has zero norm")
	ErrNonFiniteEmbedding = errors.New("embedding has non-finite values")
)

// CosineSimilarity returns the cosine of the angle between a and b, clamped to [-1, 1].
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyEmbedding
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrEmbeddingMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if !isFinite(dot) || !isFinite(normA) || !isFinite(normB) {
		return 0, ErrNonFiniteEmbedding
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroNormEmbedding
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, cos)), nil
}

// ScoreFromCosine maps a cosine in [-1, 1] to a percentage rounded to 2dp.
func ScoreFromCosine(cos float64) float64 {
	return round(((cos+1)/2)*100, 2)
}

// ConfidenceFor buckets a percentage score.
func ConfidenceFor(score float64) domain.Confidence {
	switch {
	case score > highConfidenceScore:
		return domain.ConfidenceHigh
	case score > mediumConfidenceScore:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
