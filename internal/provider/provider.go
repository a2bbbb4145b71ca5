package provider

import "context"

// EmbeddingProvider wraps a face-recognition model that turns an image into
// zero or more detected faces, each with an identity embedding.
type EmbeddingProvider interface {
	// DetectFaces returns the faces found in the image in the order the model
	// reports them. An image without faces yields an empty slice, not an error.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// Name identifies the underlying model in API responses
	Name() string
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
	Embedding   []float64   `json:"-"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
