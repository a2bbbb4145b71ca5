package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/faceverify/faceverify/internal/provider"
)

const (
	embeddingDimension = 512
	// MinImageSize is the smallest payload treated as containing a face.
	MinImageSize = 1000
)

// Provider implements provider.EmbeddingProvider for tests and development
type Provider struct{}

// New creates a new mock provider
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return "Mock ArcFace"
}

// DetectFaces reports one face with a deterministic embedding derived from
// the image hash. Payloads below MinImageSize report no face.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(image) < MinImageSize {
		return []provider.DetectedFace{}, nil
	}

	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      0.1,
				Y:      0.1,
				Width:  0.8,
				Height: 0.8,
			},
			Confidence: 0.99,
			Embedding:  GenerateEmbedding(image),
		},
	}, nil
}

// GenerateEmbedding returns a unit-length embedding derived from the SHA-256
// of the payload.
func GenerateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, embeddingDimension)
	hashLen := len(hash)

	for i := 0; i < embeddingDimension; i++ {
		idx := i % hashLen
		//nolint:gosec // idx is always < hashLen due to modulo operation
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var _ provider.EmbeddingProvider = (*Provider)(nil)
