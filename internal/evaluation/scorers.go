package evaluation

import (
	"context"
	"fmt"
	"os"

	"github.com/faceverify/faceverify/internal/client"
	"github.com/faceverify/faceverify/internal/domain"
)

// HTTPScorer scores pairs through a running verification server
type HTTPScorer struct {
	client *client.Client
}

func NewHTTPScorer(c *client.Client) *HTTPScorer {
	return &HTTPScorer{client: c}
}

func (s *HTTPScorer) Score(ctx context.Context, image1Path, image2Path string) (float64, error) {
	resp, err := s.client.Verify(ctx, image1Path, image2Path)
	if err != nil {
		return 0, err
	}
	return resp.SimilarityScore, nil
}

// Verifier compares two in-memory images
type Verifier interface {
	Verify(ctx context.Context, image1, image2 []byte) (*domain.Verdict, error)
}

// LocalScorer scores pairs with an in-process verifier
type LocalScorer struct {
	verifier Verifier
}

func NewLocalScorer(v Verifier) *LocalScorer {
	return &LocalScorer{verifier: v}
}

func (s *LocalScorer) Score(ctx context.Context, image1Path, image2Path string) (float64, error) {
	image1, err := os.ReadFile(image1Path)
	if err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}
	image2, err := os.ReadFile(image2Path)
	if err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}

	verdict, err := s.verifier.Verify(ctx, image1, image2)
	if err != nil {
		return 0, err
	}
	return verdict.SimilarityScore, nil
}
