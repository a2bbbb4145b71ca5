package insightface

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/faceverify/faceverify/internal/provider"
)

const modelName = "InsightFace ArcFace"

// Provider implements provider.EmbeddingProvider on top of an InsightFace
// sidecar running FaceAnalysis (detection + ArcFace recognition).
type Provider struct {
	client *Client
}

// NewProvider creates a new InsightFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

func (p *Provider) Name() string {
	return modelName
}

// Ping verifies that the sidecar is reachable and its model is prepared.
func (p *Provider) Ping(ctx context.Context) error {
	info, err := p.client.Info(ctx)
	if err != nil {
		return err
	}
	if info.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrModelNotReady, info.Status)
	}
	return nil
}

// DetectFaces detects faces and returns their embeddings
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Embedding) == 0 {
			return nil, fmt.Errorf("detect faces: %w: face without embedding", ErrInvalidResponse)
		}

		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
			Confidence: result.FaceConfidence,
			Embedding:  result.Embedding,
		})
	}

	return faces, nil
}

var _ provider.EmbeddingProvider = (*Provider)(nil)
