package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"confidence above one", func(c *Config) { c.Detector.ConfidenceThreshold = 1.5 }},
		{"negative confidence", func(c *Config) { c.Detector.ConfidenceThreshold = -0.1 }},
		{"zero iou", func(c *Config) { c.Detector.IoUThreshold = 0 }},
		{"inverted aspect window", func(c *Config) {
			c.Detector.MinAspectRatio = 2
			c.Detector.MaxAspectRatio = 1
		}},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero viewport", func(c *Config) { c.Framing.ViewportWidth = 0 }},
		{"zoom below one", func(c *Config) { c.Framing.Zoom = 0.8 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestToPipelineBuilderAppliesSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelsDir = "/tmp/models"
	cfg.Detector.ConfidenceThreshold = 0.65
	cfg.Detector.IoUThreshold = 0.35
	cfg.Detector.NumThreads = 3
	cfg.Parallel.MaxWorkers = 5
	cfg.GPU.Enabled = true

	pcfg := cfg.ToPipelineBuilder().Config()
	assert.Equal(t, "/tmp/models", pcfg.ModelsDir)
	assert.InDelta(t, 0.65, pcfg.Detector.Decode.Filter.ConfidenceThreshold, 1e-9)
	assert.InDelta(t, 0.35, pcfg.Detector.Decode.IoUThreshold, 1e-9)
	assert.Equal(t, 3, pcfg.Detector.NumThreads)
	assert.Equal(t, 5, pcfg.Parallel.MaxWorkers)
	assert.True(t, pcfg.Detector.GPU.UseGPU)
}

func TestViewport(t *testing.T) {
	cfg := DefaultConfig()
	vp := cfg.Viewport()
	assert.Equal(t, 1920, vp.Width)
	assert.Equal(t, 1080, vp.Height)
	assert.InDelta(t, 16.0/9.0, vp.AspectRatio(), 1e-9)
}
