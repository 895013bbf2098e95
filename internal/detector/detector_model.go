package detector

import (
	"errors"
	"fmt"
	"os"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/models"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/onnx"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
	"github.com/yalue/onnxruntime_go"
)

// Default ONNX output names of the SSD face model.
const (
	DefaultScoresOutput = "mbox_conf"
	DefaultBoxesOutput  = "mbox_loc"
)

// Config holds configuration for the face detector.
type Config struct {
	ModelPath    string         // Path to ONNX face detection model
	ScoresOutput string         // Name of the class-logit output tensor
	BoxesOutput  string         // Name of the box-delta output tensor
	Mean         utils.BlobMean // Per-channel mean subtracted from the input blob
	NumThreads   int            // Number of CPU threads (0 = auto)
	Anchors      AnchorSpec     // Anchor geometry; validated against model output width
	Decode       DecodeParams   // Thresholds and variances for the decode pipeline
	GPU          onnx.GPUConfig // GPU acceleration configuration
}

// DefaultConfig returns a default face detector configuration.
func DefaultConfig() Config {
	return Config{
		ModelPath:    models.GetFaceDetectorModelPath(""),
		ScoresOutput: DefaultScoresOutput,
		BoxesOutput:  DefaultBoxesOutput,
		Mean:         utils.DefaultBlobMean(),
		NumThreads:   0,
		Anchors:      DefaultAnchorSpec(),
		Decode:       DefaultDecodeParams(),
		GPU:          onnx.DefaultGPUConfig(),
	}
}

// UpdateModelPath updates ModelPath based on modelsDir, and picks up an
// anchor spec override shipped alongside the model when present.
func (c *Config) UpdateModelPath(modelsDir string) {
	c.ModelPath = models.GetFaceDetectorModelPath(modelsDir)
	if specPath := models.GetAnchorSpecPath(modelsDir); specPath != "" {
		if spec, err := LoadAnchorSpec(specPath); err == nil {
			c.Anchors = spec
		}
	}
}

// validateConfig validates the detector configuration.
func validateConfig(config Config) error {
	if config.ModelPath == "" {
		return errors.New("model path cannot be empty")
	}
	if config.ScoresOutput == "" || config.BoxesOutput == "" {
		return errors.New("model output names cannot be empty")
	}
	return config.Anchors.Validate()
}

// validateModelFile checks if the model file exists.
func validateModelFile(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}

// validateModelInfo checks the model exposes the expected input and the
// two named outputs, and returns their infos.
func validateModelInfo(config Config) (onnxruntime_go.InputOutputInfo,
	[]onnxruntime_go.InputOutputInfo, error,
) {
	var empty onnxruntime_go.InputOutputInfo

	inputs, outputs, err := onnxruntime_go.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return empty, nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return empty, nil, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(inputs[0].Dimensions) != 4 {
		return empty, nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputs[0].Dimensions))
	}

	byName := make(map[string]onnxruntime_go.InputOutputInfo, len(outputs))
	for _, o := range outputs {
		byName[o.Name] = o
	}
	scoresInfo, ok := byName[config.ScoresOutput]
	if !ok {
		return empty, nil, fmt.Errorf("model has no output named %q", config.ScoresOutput)
	}
	boxesInfo, ok := byName[config.BoxesOutput]
	if !ok {
		return empty, nil, fmt.Errorf("model has no output named %q", config.BoxesOutput)
	}

	return inputs[0], []onnxruntime_go.InputOutputInfo{scoresInfo, boxesInfo}, nil
}
