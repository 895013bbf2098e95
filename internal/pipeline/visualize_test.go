package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 30, B: 30, A: 255})
		}
	}
	return img
}

func TestRenderOverlayDrawsBoxes(t *testing.T) {
	img := testImage(200, 200)
	res := sampleResult()
	res.Faces = []FaceBox{{X: 50, Y: 50, W: 40, H: 40, Confidence: 0.9}}
	res.FocalPoint.X = 0.35
	res.FocalPoint.Y = 0.35

	out := RenderOverlay(img, res, OverlayFaceColor, OverlayFocalColor)
	require.NotNil(t, out)
	assert.Equal(t, img.Bounds(), out.Bounds())

	// Box edge pixel takes the face color.
	assert.Equal(t, OverlayFaceColor, out.RGBAAt(50, 50))
	// Focal crosshair center takes the focal color.
	assert.Equal(t, OverlayFocalColor, out.RGBAAt(70, 70))
	// Untouched background stays intact.
	assert.Equal(t, color.RGBA{R: 30, G: 30, B: 30, A: 255}, out.RGBAAt(5, 150))
}

func TestRenderOverlayNilResult(t *testing.T) {
	img := testImage(50, 50)
	out := RenderOverlay(img, nil, OverlayFaceColor, OverlayFocalColor)
	require.NotNil(t, out)
	assert.Equal(t, color.RGBA{R: 30, G: 30, B: 30, A: 255}, out.RGBAAt(25, 25))
}

func TestRenderOverlayNilImage(t *testing.T) {
	assert.Nil(t, RenderOverlay(nil, sampleResult(), OverlayFaceColor, OverlayFocalColor))
}

func TestRenderPreviewScalesDown(t *testing.T) {
	img := testImage(800, 600)
	out, err := RenderPreview(img, sampleResult(), 200)
	require.NoError(t, err)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 150, out.Bounds().Dy())
}

func TestRenderPreviewNoUpscale(t *testing.T) {
	img := testImage(100, 80)
	out, err := RenderPreview(img, sampleResult(), 200)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 80, out.Bounds().Dy())
}

func TestRenderPreviewBadArgs(t *testing.T) {
	_, err := RenderPreview(nil, sampleResult(), 200)
	assert.Error(t, err)
	_, err = RenderPreview(testImage(10, 10), sampleResult(), 0)
	assert.Error(t, err)
}
