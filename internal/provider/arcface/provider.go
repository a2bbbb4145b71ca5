// Package arcface runs an ArcFace recognition model in-process through
// onnxruntime. It expects pre-aligned face crops and treats every image as a
// single face.
package arcface

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/faceverify/faceverify/internal/imageutil"
	"github.com/faceverify/faceverify/internal/provider"
)

const (
	modelName        = "ArcFace ONNX"
	defaultEmbedding = 512
)

var (
	ErrModelNotFound = errors.New("arcface model file not found")
	ErrClosed        = errors.New("arcface session closed")
)

// Config holds the configuration for the ONNX session
type Config struct {
	ModelPath         string
	SharedLibraryPath string
	// InputName and OutputName default to the model's first input and output.
	InputName      string
	OutputName     string
	IntraOpThreads int
}

// Provider implements provider.EmbeddingProvider with a bound onnxruntime session.
type Provider struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

var envOnce sync.Once
var envErr error

func initEnvironment(libPath string) error {
	envOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// NewProvider loads the model and allocates its input/output tensors.
func NewProvider(config Config) (*Provider, error) {
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, config.ModelPath)
	}

	if err := initEnvironment(config.SharedLibraryPath); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	inputName, outputName, embeddingSize, err := resolveIO(config)
	if err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, InputSize, InputSize))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, embeddingSize))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() {
		_ = options.Destroy()
	}()

	if config.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
			_ = input.Destroy()
			_ = output.Destroy()
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(
		config.ModelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.Value{input},
		[]ort.Value{output},
		options,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Provider{
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// resolveIO picks the tensor names and embedding width from the model file
// unless they are configured.
func resolveIO(config Config) (string, string, int64, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return "", "", 0, fmt.Errorf("read model io info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return "", "", 0, fmt.Errorf("model %s has no inputs or outputs", config.ModelPath)
	}

	inputName := config.InputName
	if inputName == "" {
		inputName = inputs[0].Name
	}

	outputName := config.OutputName
	embeddingSize := int64(defaultEmbedding)
	for _, info := range outputs {
		if outputName == "" || info.Name == outputName {
			outputName = info.Name
			dims := info.Dimensions
			if len(dims) > 0 && dims[len(dims)-1] > 0 {
				embeddingSize = dims[len(dims)-1]
			}
			break
		}
	}

	return inputName, outputName, embeddingSize, nil
}

func (p *Provider) Name() string {
	return modelName
}

// DetectFaces embeds the whole image as one face.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := imageutil.Decode(image)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, ErrClosed
	}

	if err := PrepareInput(img, p.input.GetData()); err != nil {
		return nil, fmt.Errorf("prepare input: %w", err)
	}

	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}

	raw := p.output.GetData()
	embedding := make([]float64, len(raw))
	for i, v := range raw {
		embedding[i] = float64(v)
	}

	b := img.Bounds()
	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      float64(b.Min.X),
				Y:      float64(b.Min.Y),
				Width:  float64(b.Dx()),
				Height: float64(b.Dy()),
			},
			Confidence: 1,
			Embedding:  embedding,
		},
	}, nil
}

// Close releases the session and its tensors.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.session != nil {
		err = p.session.Destroy()
		p.session = nil
	}
	if p.input != nil {
		_ = p.input.Destroy()
		p.input = nil
	}
	if p.output != nil {
		_ = p.output.Destroy()
		p.output = nil
	}
	return err
}

var _ provider.EmbeddingProvider = (*Provider)(nil)
