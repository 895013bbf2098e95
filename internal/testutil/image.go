// Package testutil provides synthetic images and tensor fixtures for tests.
package testutil

import (
	"image"
	"image/color"
	"math"
)

// NewUniformImage returns a w x h image filled with a single color.
func NewUniformImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// NewGradientImage returns a w x h image with a horizontal intensity ramp,
// useful for checking that resampling preserves orientation.
func NewGradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255 * x / max(w-1, 1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// NewFaceLikeImage returns a dark background with a skin-toned ellipse
// centered at (cx, cy) with the given radii. It is not a face to a real
// model, but gives drawing and crop tests a recognizable target.
func NewFaceLikeImage(w, h, cx, cy, rx, ry int) *image.RGBA {
	img := NewUniformImage(w, h, color.RGBA{R: 24, G: 28, B: 34, A: 255})
	skin := color.RGBA{R: 224, G: 172, B: 140, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if math.Sqrt(dx*dx+dy*dy) <= 1 {
				img.Set(x, y, skin)
			}
		}
	}
	return img
}
