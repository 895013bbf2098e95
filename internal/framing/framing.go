// Package framing computes pan/zoom crop rectangles for photo display.
// Given an image, a viewport aspect, and a focal point, it produces the
// crop windows a slideshow animates between. All functions are pure.
package framing

import (
	"fmt"
	"image"
	"math"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
)

// Viewport describes the display area the crop must fill.
type Viewport struct {
	Width  int
	Height int
}

// AspectRatio returns width over height.
func (v Viewport) AspectRatio() float64 {
	return float64(v.Width) / float64(v.Height)
}

// PanZoom is a ken-burns style animation plan: the display interpolates
// from Start to End over the slide duration. Both rectangles have the
// viewport's aspect ratio and lie inside the image.
type PanZoom struct {
	Start image.Rectangle `json:"start"`
	End   image.Rectangle `json:"end"`
}

// DefaultZoom is the end-state magnification relative to the widest crop.
const DefaultZoom = 1.25

// CropRect returns the largest viewport-aspect crop of an imgW x imgH image
// centered on the focal point. When centering would push the window past a
// border, the window slides back inside rather than shrinking, so the focal
// point stays in frame but not necessarily centered.
func CropRect(imgW, imgH int, fp detector.FocalPoint, vp Viewport) (image.Rectangle, error) {
	cropW, cropH, err := fitCropSize(imgW, imgH, vp, 1.0)
	if err != nil {
		return image.Rectangle{}, err
	}
	return placeCrop(imgW, imgH, cropW, cropH, fp), nil
}

// Plan builds a pan/zoom animation: Start is the widest viewport-aspect
// crop centered on the focal point, End is the same crop magnified by zoom.
// zoom must be >= 1; 1 degenerates to a static frame.
func Plan(imgW, imgH int, fp detector.FocalPoint, vp Viewport, zoom float64) (PanZoom, error) {
	if zoom < 1 {
		return PanZoom{}, fmt.Errorf("framing: zoom %.3f must be >= 1", zoom)
	}
	start, err := CropRect(imgW, imgH, fp, vp)
	if err != nil {
		return PanZoom{}, err
	}
	endW, endH, err := fitCropSize(imgW, imgH, vp, zoom)
	if err != nil {
		return PanZoom{}, err
	}
	end := placeCrop(imgW, imgH, endW, endH, fp)
	return PanZoom{Start: start, End: end}, nil
}

// fitCropSize computes the viewport-aspect crop size that fits the image,
// divided by zoom.
func fitCropSize(imgW, imgH int, vp Viewport, zoom float64) (int, int, error) {
	if imgW <= 0 || imgH <= 0 {
		return 0, 0, fmt.Errorf("framing: degenerate image dimensions %dx%d", imgW, imgH)
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		return 0, 0, fmt.Errorf("framing: degenerate viewport %dx%d", vp.Width, vp.Height)
	}

	aspect := vp.AspectRatio()
	cropW := float64(imgW)
	cropH := cropW / aspect
	if cropH > float64(imgH) {
		cropH = float64(imgH)
		cropW = cropH * aspect
	}
	cropW /= zoom
	cropH /= zoom

	w := int(math.Round(cropW))
	h := int(math.Round(cropH))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h, nil
}

// placeCrop centers a cropW x cropH window on the focal point and clamps it
// into the image.
func placeCrop(imgW, imgH, cropW, cropH int, fp detector.FocalPoint) image.Rectangle {
	cx := fp.X * float64(imgW)
	cy := fp.Y * float64(imgH)

	x := int(math.Round(cx)) - cropW/2
	y := int(math.Round(cy)) - cropH/2

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+cropW > imgW {
		x = imgW - cropW
	}
	if y+cropH > imgH {
		y = imgH - cropH
	}
	return image.Rect(x, y, x+cropW, y+cropH)
}
