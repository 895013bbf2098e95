package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/testutil"
)

func TestCloneRGBA(t *testing.T) {
	src := testutil.NewGradientImage(20, 10)
	dst := CloneRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 20, 10), dst.Bounds())
	assert.Equal(t, src.At(5, 5), dst.At(5, 5))

	// Mutating the clone must not touch the source.
	dst.Set(5, 5, color.RGBA{R: 255, A: 255})
	assert.NotEqual(t, src.At(5, 5), dst.At(5, 5))
}

func TestCloneRGBARebasesOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 30, 20))
	src.Set(15, 12, color.RGBA{R: 200, A: 255})
	dst := CloneRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 20, 10), dst.Bounds())
	assert.Equal(t, src.At(15, 12), dst.At(5, 2))
}

func TestDrawRect(t *testing.T) {
	dst := testutil.NewUniformImage(40, 40, color.RGBA{A: 255})
	green := color.RGBA{G: 255, A: 255}
	DrawRect(dst, image.Rect(10, 10, 30, 30), green, 1)

	assert.Equal(t, green, dst.At(10, 10))
	assert.Equal(t, green, dst.At(20, 10))
	assert.Equal(t, green, dst.At(29, 29))
	assert.Equal(t, green, dst.At(10, 20))
	// Interior stays untouched.
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(20, 20))
}

func TestDrawRectClippedToBounds(t *testing.T) {
	dst := testutil.NewUniformImage(10, 10, color.RGBA{A: 255})
	DrawRect(dst, image.Rect(-5, -5, 50, 50), color.RGBA{R: 255, A: 255}, 2)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(9, 9))
}

func TestDrawCross(t *testing.T) {
	dst := testutil.NewUniformImage(40, 40, color.RGBA{A: 255})
	red := color.RGBA{R: 255, A: 255}
	DrawCross(dst, Point{X: 20, Y: 20}, 5, red, 1)

	assert.Equal(t, red, dst.RGBAAt(20, 20))
	assert.Equal(t, red, dst.RGBAAt(15, 20))
	assert.Equal(t, red, dst.RGBAAt(25, 20))
	assert.Equal(t, red, dst.RGBAAt(20, 15))
	assert.Equal(t, red, dst.RGBAAt(20, 25))
	// Diagonal neighbors are not part of the cross.
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(19, 19))
}

func TestDrawCrossNearEdge(t *testing.T) {
	dst := testutil.NewUniformImage(10, 10, color.RGBA{A: 255})
	// Out-of-bounds arm pixels are dropped, not wrapped.
	DrawCross(dst, Point{X: 0, Y: 0}, 5, color.RGBA{B: 255, A: 255}, 3)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, dst.RGBAAt(0, 0))
}
