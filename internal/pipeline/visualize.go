package pipeline

import (
	"errors"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
)

// Default overlay colors.
var (
	OverlayFaceColor  = color.RGBA{R: 0, G: 220, B: 0, A: 255}
	OverlayFocalColor = color.RGBA{R: 255, G: 40, B: 40, A: 255}
)

// RenderOverlay draws face boxes and the focal-point marker over the image
// and returns an RGBA copy. The focal marker is drawn whether the point came
// from a face or the center fallback; the fallback case is the one worth
// eyeballing.
func RenderOverlay(img image.Image, res *ImageResult, boxColor, focalColor color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.CloneRGBA(img)
	if res == nil {
		return dst
	}

	for _, f := range res.Faces {
		utils.DrawRect(dst, image.Rect(f.X, f.Y, f.X+f.W, f.Y+f.H), boxColor, 2)
	}

	b := dst.Bounds()
	focal := utils.Point{
		X: res.FocalPoint.X * float64(b.Dx()),
		Y: res.FocalPoint.Y * float64(b.Dy()),
	}
	arm := b.Dx() / 40
	if arm < 6 {
		arm = 6
	}
	utils.DrawCross(dst, focal, arm, focalColor, 2)
	return dst
}

// RenderPreview renders the overlay and scales it down so the longest side
// is at most maxSide pixels, for thumbnails and debug endpoints.
func RenderPreview(img image.Image, res *ImageResult, maxSide int) (*image.RGBA, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	if maxSide <= 0 {
		return nil, errors.New("preview size must be positive")
	}

	overlay := RenderOverlay(img, res, OverlayFaceColor, OverlayFocalColor)
	b := overlay.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return overlay, nil
	}

	scale := float64(maxSide) / float64(w)
	if h > w {
		scale = float64(maxSide) / float64(h)
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), overlay, b, xdraw.Over, nil)
	return dst, nil
}
