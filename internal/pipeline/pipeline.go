package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/models"
)

// Config holds configuration for the face pipeline and its components.
type Config struct {
	ModelsDir string
	Detector  detector.Config

	// Parallel processing configuration for photo batches.
	Parallel ParallelConfig
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir: models.GetModelsDir(""),
		Detector:  detector.DefaultConfig(),
		Parallel:  DefaultParallelConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config

	// deferred error from WithAnchorSpecPath, surfaced in Validate
	anchorSpecErr error
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithModelsDir sets the models directory and updates component model paths.
func (b *Builder) WithModelsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ModelsDir = dir
	}
	b.cfg.Detector.UpdateModelPath(b.cfg.ModelsDir)
	return b
}

// WithDetectorModelPath overrides the detector model path directly.
func (b *Builder) WithDetectorModelPath(path string) *Builder {
	if path != "" {
		b.cfg.Detector.ModelPath = path
	}
	return b
}

// WithAnchorSpecPath loads the anchor geometry from a YAML file instead of
// the built-in default.
func (b *Builder) WithAnchorSpecPath(path string) *Builder {
	if path == "" {
		return b
	}
	spec, err := detector.LoadAnchorSpec(path)
	if err == nil {
		b.cfg.Detector.Anchors = spec
	}
	// A bad file surfaces in Validate, where the caller gets the error.
	b.anchorSpecErr = err
	return b
}

// WithConfidenceThreshold sets the minimum face confidence (exclusive).
func (b *Builder) WithConfidenceThreshold(th float64) *Builder {
	if th > 0 {
		b.cfg.Detector.Decode.Filter.ConfidenceThreshold = th
	}
	return b
}

// WithIoUThreshold sets the overlap threshold for suppression.
func (b *Builder) WithIoUThreshold(iou float64) *Builder {
	if iou > 0 {
		b.cfg.Detector.Decode.IoUThreshold = iou
	}
	return b
}

// WithMinFaceSize sets the minimum face box side length in pixels.
func (b *Builder) WithMinFaceSize(px float64) *Builder {
	if px > 0 {
		b.cfg.Detector.Decode.Filter.MinPixelSize = px
	}
	return b
}

// WithAspectRatioRange sets the plausible face width/height window.
func (b *Builder) WithAspectRatioRange(minRatio, maxRatio float64) *Builder {
	if minRatio > 0 {
		b.cfg.Detector.Decode.Filter.MinAspectRatio = minRatio
	}
	if maxRatio > 0 {
		b.cfg.Detector.Decode.Filter.MaxAspectRatio = maxRatio
	}
	return b
}

// WithThreads sets the intra-op thread count (if >0).
func (b *Builder) WithThreads(n int) *Builder {
	if n > 0 {
		b.cfg.Detector.NumThreads = n
	}
	return b
}

// WithParallelWorkers sets the number of parallel workers for batch processing.
func (b *Builder) WithParallelWorkers(workers int) *Builder {
	if workers > 0 {
		b.cfg.Parallel.MaxWorkers = workers
	}
	return b
}

// WithProgressCallback sets the progress callback for batch processing.
func (b *Builder) WithProgressCallback(callback ProgressCallback) *Builder {
	b.cfg.Parallel.ProgressCallback = callback
	return b
}

// WithGPU enables GPU acceleration.
func (b *Builder) WithGPU(enabled bool) *Builder {
	b.cfg.Detector.GPU.UseGPU = enabled
	return b
}

// WithGPUDevice sets the CUDA device ID.
func (b *Builder) WithGPUDevice(deviceID int) *Builder {
	b.cfg.Detector.GPU.DeviceID = deviceID
	return b
}

// WithGPUMemoryLimit sets the GPU memory limit in bytes.
func (b *Builder) WithGPUMemoryLimit(limitBytes uint64) *Builder {
	b.cfg.Detector.GPU.GPUMemLimit = limitBytes
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the model file exists and the configuration is sane.
func (b *Builder) Validate() error {
	b.cfg.Detector.UpdateModelPath(b.cfg.ModelsDir)

	if b.anchorSpecErr != nil {
		return fmt.Errorf("anchor spec: %w", b.anchorSpecErr)
	}
	if b.cfg.Detector.ModelPath == "" {
		return errors.New("detector model path is empty")
	}
	if _, err := os.Stat(b.cfg.Detector.ModelPath); err != nil {
		return fmt.Errorf("detector model not found: %s", b.cfg.Detector.ModelPath)
	}
	if err := b.cfg.Detector.Anchors.Validate(); err != nil {
		return err
	}
	return nil
}

// Pipeline wires the face detector into per-image processing.
type Pipeline struct {
	cfg      Config
	Detector *detector.FaceDetector
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	b.cfg.Detector.UpdateModelPath(b.cfg.ModelsDir)

	if err := b.Validate(); err != nil {
		return nil, err
	}

	det, err := detector.NewFaceDetector(b.cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("init detector: %w", err)
	}
	return &Pipeline{cfg: b.cfg, Detector: det}, nil
}

// Close releases all resources.
func (p *Pipeline) Close() error {
	if p.Detector != nil {
		err := p.Detector.Close()
		p.Detector = nil
		return err
	}
	return nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Info returns a map with key pipeline properties and model info.
func (p *Pipeline) Info() map[string]interface{} {
	info := map[string]interface{}{
		"models_dir": p.cfg.ModelsDir,
	}
	if p.Detector != nil {
		info["detector"] = p.Detector.GetModelInfo()
	}
	info["parallel"] = map[string]interface{}{
		"max_workers":           p.cfg.Parallel.MaxWorkers,
		"has_progress_callback": p.cfg.Parallel.ProgressCallback != nil,
	}
	return info
}
