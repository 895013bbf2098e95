package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
)

func TestBuilderDefaults(t *testing.T) {
	cfg := NewBuilder().Config()
	assert.NotEmpty(t, cfg.ModelsDir)
	assert.Equal(t, detector.DefaultConfig().ScoresOutput, cfg.Detector.ScoresOutput)
	assert.Positive(t, cfg.Parallel.MaxWorkers)
}

func TestBuilderFluentConfig(t *testing.T) {
	b := NewBuilder().
		WithModelsDir("/tmp/models").
		WithConfidenceThreshold(0.7).
		WithIoUThreshold(0.3).
		WithMinFaceSize(24).
		WithAspectRatioRange(0.6, 1.8).
		WithThreads(4).
		WithParallelWorkers(8).
		WithGPU(true).
		WithGPUDevice(1).
		WithGPUMemoryLimit(1 << 30)

	cfg := b.Config()
	assert.Equal(t, "/tmp/models", cfg.ModelsDir)
	assert.InDelta(t, 0.7, cfg.Detector.Decode.Filter.ConfidenceThreshold, 1e-9)
	assert.InDelta(t, 0.3, cfg.Detector.Decode.IoUThreshold, 1e-9)
	assert.InDelta(t, 24, cfg.Detector.Decode.Filter.MinPixelSize, 1e-9)
	assert.InDelta(t, 0.6, cfg.Detector.Decode.Filter.MinAspectRatio, 1e-9)
	assert.InDelta(t, 1.8, cfg.Detector.Decode.Filter.MaxAspectRatio, 1e-9)
	assert.Equal(t, 4, cfg.Detector.NumThreads)
	assert.Equal(t, 8, cfg.Parallel.MaxWorkers)
	assert.True(t, cfg.Detector.GPU.UseGPU)
	assert.Equal(t, 1, cfg.Detector.GPU.DeviceID)
	assert.Equal(t, uint64(1<<30), cfg.Detector.GPU.GPUMemLimit)
}

func TestBuilderIgnoresZeroValues(t *testing.T) {
	def := NewBuilder().Config()
	cfg := NewBuilder().
		WithConfidenceThreshold(0).
		WithIoUThreshold(-1).
		WithThreads(0).
		Config()
	assert.Equal(t, def.Detector.Decode.Filter.ConfidenceThreshold, cfg.Detector.Decode.Filter.ConfidenceThreshold)
	assert.Equal(t, def.Detector.Decode.IoUThreshold, cfg.Detector.Decode.IoUThreshold)
	assert.Equal(t, def.Detector.NumThreads, cfg.Detector.NumThreads)
}

func TestBuilderValidateMissingModel(t *testing.T) {
	b := NewBuilder().WithModelsDir(t.TempDir())
	err := b.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBuilderAnchorSpecFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchors.yaml")
	data := `input_size: 300
levels:
  - grid_size: 1
    min_scale: 60
    max_scale: 120
    aspect_ratios: [1]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	b := NewBuilder().WithAnchorSpecPath(path)
	cfg := b.Config()
	assert.Equal(t, 300, cfg.Detector.Anchors.InputSize)
	require.Len(t, cfg.Detector.Anchors.Levels, 1)
	assert.Equal(t, 1, cfg.Detector.Anchors.Levels[0].GridSize)
}

func TestBuilderAnchorSpecBadFileSurfacesInValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anchors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::not yaml"), 0o600))

	err := NewBuilder().WithAnchorSpecPath(path).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anchor spec")
}

func TestProcessImageNilPipeline(t *testing.T) {
	var p *Pipeline
	_, err := p.ProcessImage(nil)
	assert.Error(t, err)
}
