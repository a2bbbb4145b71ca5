package face

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faceverify/faceverify/internal/config"
	"github.com/faceverify/faceverify/internal/provider/arcface"
	"github.com/faceverify/faceverify/internal/provider/insightface"
	"github.com/faceverify/faceverify/internal/provider/mock"
)

func newSidecar(t *testing.T, status string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(insightface.InfoResponse{Status: status, Model: "buffalo_l"})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewEmbeddingProvider_InsightFace(t *testing.T) {
	ctx := context.Background()
	sidecar := newSidecar(t, "ok")

	tests := []struct {
		name         string
		providerType string
	}{
		{name: "explicit insightface provider", providerType: "insightface"},
		{name: "empty provider defaults to insightface", providerType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				ProviderType:       tt.providerType,
				InsightFaceURL:     sidecar.URL,
				InsightFaceTimeout: time.Second,
			}

			prov, err := NewEmbeddingProvider(ctx, cfg)
			require.NoError(t, err)

			_, ok := prov.(*insightface.Provider)
			assert.True(t, ok, "got %T", prov)
			assert.Equal(t, "InsightFace ArcFace", prov.Name())
		})
	}
}

func TestNewEmbeddingProvider_InsightFaceNotReady(t *testing.T) {
	sidecar := newSidecar(t, "loading")

	cfg := &config.Config{
		ProviderType:       "insightface",
		InsightFaceURL:     sidecar.URL,
		InsightFaceTimeout: time.Second,
	}

	prov, err := NewEmbeddingProvider(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, prov)
	assert.ErrorIs(t, err, insightface.ErrModelNotReady)
}

func TestNewEmbeddingProvider_Mock(t *testing.T) {
	prov, err := NewEmbeddingProvider(context.Background(), &config.Config{ProviderType: "mock"})
	require.NoError(t, err)

	_, ok := prov.(*mock.Provider)
	assert.True(t, ok, "got %T", prov)
}

func TestNewEmbeddingProvider_ArcFaceMissingModel(t *testing.T) {
	cfg := &config.Config{
		ProviderType:     "arcface",
		ArcFaceModelPath: filepath.Join(t.TempDir(), "w600k_r50.onnx"),
	}

	prov, err := NewEmbeddingProvider(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, prov)
	assert.ErrorIs(t, err, arcface.ErrModelNotFound)
}

func TestNewEmbeddingProvider_Unknown(t *testing.T) {
	_, err := NewEmbeddingProvider(context.Background(), &config.Config{ProviderType: "rekognition"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider type")
}
