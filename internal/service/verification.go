package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/faceverify/faceverify/internal/domain"
	"github.com/faceverify/faceverify/internal/imageutil"
	"github.com/faceverify/faceverify/internal/provider"
)

// VerificationService compares the first face found in each of two images.
type VerificationService struct {
	provider  provider.EmbeddingProvider
	threshold float64
}

// NewVerificationService creates the service. A nil provider is allowed: every
// call then fails with domain.ErrModelUnavailable.
func NewVerificationService(embeddingProvider provider.EmbeddingProvider) *VerificationService {
	return &VerificationService{
		provider:  embeddingProvider,
		threshold: DefaultSamePersonThreshold,
	}
}

func (s *VerificationService) WithThreshold(threshold float64) *VerificationService {
	s.threshold = threshold
	return s
}

// ModelLoaded reports whether a provider is available.
func (s *VerificationService) ModelLoaded() bool {
	return s.provider != nil
}

// ModelName returns the provider name, or an empty string when none is loaded.
func (s *VerificationService) ModelName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

func (s *VerificationService) Verify(ctx context.Context, image1, image2 []byte) (*domain.Verdict, error) {
	if s.provider == nil {
		return nil, domain.ErrModelUnavailable
	}

	emb1, err := s.embed(ctx, image1, 1)
	if err != nil {
		return nil, err
	}

	emb2, err := s.embed(ctx, image2, 2)
	if err != nil {
		return nil, err
	}

	cos, err := CosineSimilarity(emb1, emb2)
	if err != nil {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("compare embeddings: %w", err))
	}

	score := ScoreFromCosine(cos)

	return &domain.Verdict{
		SimilarityScore: score,
		IsSamePerson:    score > s.threshold,
		Confidence:      ConfidenceFor(score),
		Model:           s.provider.Name(),
	}, nil
}

// embed validates one image and returns the embedding of its first face.
// index is the 1-based position used in client-facing messages.
func (s *VerificationService) embed(ctx context.Context, image []byte, index int) ([]float64, error) {
	if _, err := imageutil.Validate(image); err != nil {
		return nil, domain.ErrInvalidImage.
			WithMessage(fmt.Sprintf("Invalid image file for image %d", index)).
			WithError(err)
	}

	faces, err := s.provider.DetectFaces(ctx, image)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("image %d: %w", index, err)
		}
		return nil, domain.ErrProviderFailure.WithError(fmt.Errorf("image %d: detect faces: %w", index, err))
	}

	if len(faces) == 0 {
		return nil, domain.ErrNoFaceDetected.WithMessage(fmt.Sprintf("No face detected in image %d", index))
	}

	return faces[0].Embedding, nil
}
