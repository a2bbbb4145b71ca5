package face

import (
	"context"
	"fmt"

	"github.com/faceverify/faceverify/internal/config"
	"github.com/faceverify/faceverify/internal/provider"
	"github.com/faceverify/faceverify/internal/provider/arcface"
	"github.com/faceverify/faceverify/internal/provider/insightface"
	"github.com/faceverify/faceverify/internal/provider/mock"
)

// ProviderType defines supported embedding provider types
type ProviderType string

const (
	// ProviderTypeInsightFace is the InsightFace sidecar (detection + ArcFace)
	ProviderTypeInsightFace ProviderType = "insightface"
	// ProviderTypeArcFace is the in-process ONNX recogniser for aligned crops
	ProviderTypeArcFace ProviderType = "arcface"
	// ProviderTypeMock is the deterministic provider for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// NewEmbeddingProvider creates the provider selected by configuration.
// The InsightFace sidecar is probed once so a missing model is reported at
// startup instead of on the first request.
//
// Environment variables:
//   - PROVIDER_TYPE: "insightface", "arcface" or "mock" (default: "insightface")
//   - INSIGHTFACE_URL: sidecar URL (default: "http://localhost:5005")
//   - ARCFACE_MODEL_PATH: ONNX model file for the arcface provider
//   - ONNXRUNTIME_LIB: onnxruntime shared library path
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config) (provider.EmbeddingProvider, error) {
	providerType := ProviderType(cfg.ProviderType)

	switch providerType {
	case ProviderTypeInsightFace, "":
		return createInsightFaceProvider(ctx, cfg)

	case ProviderTypeArcFace:
		return createArcFaceProvider(cfg)

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.ProviderType, ProviderTypeInsightFace, ProviderTypeArcFace, ProviderTypeMock)
	}
}

// createInsightFaceProvider creates an InsightFace sidecar provider and checks it is ready
func createInsightFaceProvider(ctx context.Context, cfg *config.Config) (provider.EmbeddingProvider, error) {
	insightConfig := insightface.DefaultConfig()
	if cfg.InsightFaceURL != "" {
		insightConfig.BaseURL = cfg.InsightFaceURL
	}
	if cfg.InsightFaceTimeout > 0 {
		insightConfig.Timeout = cfg.InsightFaceTimeout
	}
	insightConfig.RetryCount = cfg.InsightFaceRetries

	prov := insightface.NewProvider(insightConfig)
	if err := prov.Ping(ctx); err != nil {
		return nil, fmt.Errorf("insightface provider at %s: %w", insightConfig.BaseURL, err)
	}

	return prov, nil
}

// createArcFaceProvider loads the ONNX model into an onnxruntime session
func createArcFaceProvider(cfg *config.Config) (provider.EmbeddingProvider, error) {
	prov, err := arcface.NewProvider(arcface.Config{
		ModelPath:         cfg.ArcFaceModelPath,
		SharedLibraryPath: cfg.ONNXRuntimeLib,
	})
	if err != nil {
		return nil, fmt.Errorf("arcface provider: %w", err)
	}

	return prov, nil
}
