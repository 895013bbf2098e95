package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
)

func sampleResult() *ImageResult {
	res := &ImageResult{
		Width:  800,
		Height: 600,
		Faces: []FaceBox{
			{X: 100, Y: 120, W: 80, H: 90, Confidence: 0.93},
			{X: 400, Y: 200, W: 60, H: 70, Confidence: 0.71},
		},
		FocalPoint: detector.FocalPoint{X: 0.175, Y: 0.275, Kind: detector.FocalKindFace},
	}
	res.Processing.TotalNs = 1_000_000
	return res
}

func TestToJSONImage(t *testing.T) {
	out, err := ToJSONImage(sampleResult())
	require.NoError(t, err)

	var parsed ImageResult
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, 800, parsed.Width)
	assert.Len(t, parsed.Faces, 2)
	assert.Equal(t, detector.FocalKindFace, parsed.FocalPoint.Kind)
}

func TestToJSONImageNil(t *testing.T) {
	_, err := ToJSONImage(nil)
	assert.Error(t, err)
}

func TestToJSONImages(t *testing.T) {
	out, err := ToJSONImages([]*ImageResult{sampleResult(), sampleResult()})
	require.NoError(t, err)

	var parsed []ImageResult
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Len(t, parsed, 2)
}

func TestToCSVImage(t *testing.T) {
	out, err := ToCSVImage(sampleResult())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4) // header + 2 faces + focal row
	assert.Equal(t, "kind,x,y,w,h,confidence", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "face,100,120,80,90,"))
	assert.True(t, strings.HasPrefix(lines[3], "focal_face,0.1750,0.2750"))
}

func TestToCSVImageFallbackFocal(t *testing.T) {
	res := &ImageResult{Width: 100, Height: 100, FocalPoint: detector.DefaultFocalPoint()}
	out, err := ToCSVImage(res)
	require.NoError(t, err)
	assert.Contains(t, out, "focal_default,0.5000,0.5000")
}
