package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/framing"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/models"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/pipeline"
)

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	det := detector.DefaultConfig()
	return &Config{
		ModelsDir: models.GetModelsDir(""),
		LogLevel:  "info",
		Verbose:   false,
		Detector: DetectorConfig{
			ConfidenceThreshold: det.Decode.Filter.ConfidenceThreshold,
			IoUThreshold:        det.Decode.IoUThreshold,
			MinFaceSize:         det.Decode.Filter.MinPixelSize,
			MinAspectRatio:      det.Decode.Filter.MinAspectRatio,
			MaxAspectRatio:      det.Decode.Filter.MaxAspectRatio,
			NumThreads:          det.NumThreads,
		},
		Parallel: ParallelConfig{
			MaxWorkers: runtime.NumCPU(),
		},
		Framing: FramingConfig{
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Zoom:           framing.DefaultZoom,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			MaxUploadMB:     32,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers:         runtime.NumCPU(),
			ContinueOnError: false,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}

	if c.Detector.ConfidenceThreshold < 0 || c.Detector.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %.3f out of range [0,1]", c.Detector.ConfidenceThreshold)
	}
	if c.Detector.IoUThreshold <= 0 || c.Detector.IoUThreshold > 1 {
		return fmt.Errorf("iou threshold %.3f out of range (0,1]", c.Detector.IoUThreshold)
	}
	if c.Detector.MinAspectRatio > 0 && c.Detector.MaxAspectRatio > 0 &&
		c.Detector.MinAspectRatio > c.Detector.MaxAspectRatio {
		return fmt.Errorf("aspect ratio window inverted: min %.3f > max %.3f",
			c.Detector.MinAspectRatio, c.Detector.MaxAspectRatio)
	}

	switch c.Output.Format {
	case "json", "csv":
	default:
		return fmt.Errorf("invalid output format %q (want json or csv)", c.Output.Format)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Framing.ViewportWidth <= 0 || c.Framing.ViewportHeight <= 0 {
		return fmt.Errorf("invalid framing viewport %dx%d", c.Framing.ViewportWidth, c.Framing.ViewportHeight)
	}
	if c.Framing.Zoom < 1 {
		return fmt.Errorf("framing zoom %.3f must be >= 1", c.Framing.Zoom)
	}
	return nil
}

// ToPipelineBuilder converts the config into a pipeline builder with all
// detector and parallel settings applied.
func (c *Config) ToPipelineBuilder() *pipeline.Builder {
	b := pipeline.NewBuilder().
		WithModelsDir(c.ModelsDir).
		WithDetectorModelPath(c.Detector.ModelPath).
		WithAnchorSpecPath(c.Detector.AnchorSpecPath).
		WithConfidenceThreshold(c.Detector.ConfidenceThreshold).
		WithIoUThreshold(c.Detector.IoUThreshold).
		WithMinFaceSize(c.Detector.MinFaceSize).
		WithAspectRatioRange(c.Detector.MinAspectRatio, c.Detector.MaxAspectRatio).
		WithThreads(c.Detector.NumThreads).
		WithParallelWorkers(c.Parallel.MaxWorkers).
		WithGPU(c.GPU.Enabled).
		WithGPUDevice(c.GPU.Device).
		WithGPUMemoryLimit(c.GPU.MemoryLimit)
	return b
}

// Viewport returns the configured framing viewport.
func (c *Config) Viewport() framing.Viewport {
	return framing.Viewport{Width: c.Framing.ViewportWidth, Height: c.Framing.ViewportHeight}
}
