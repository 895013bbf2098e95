package detector

import (
	"errors"
	"fmt"
	"math"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
)

// boxStride is the number of regression deltas per anchor in the raw
// location tensor: consecutive (dx, dy, dw, dh) quadruples.
const boxStride = 4

// ErrDegenerateImage indicates a target image with zero width or height.
// The decode rejects it rather than dividing by zero.
var ErrDegenerateImage = errors.New("degenerate image dimensions")

// Variances holds the fixed SSD variance constants applied to the
// regression deltas before decoding.
type Variances struct {
	Center float64 // applied to dx, dy
	Size   float64 // applied to dw, dh
}

// DefaultVariances returns the standard SSD values.
func DefaultVariances() Variances {
	return Variances{Center: 0.1, Size: 0.2}
}

// DecodeBox combines one anchor with its regression deltas and rescales
// the result from network input space into image pixel space, clamped to
// the image bounds. The decode is anchor-relative: the anchor's
// precomputed center and size are the baseline, never a synthetic grid
// position.
func DecodeBox(anchor Anchor, dx, dy, dw, dh float64, v Variances,
	inputSize int, imgW, imgH int,
) utils.Box {
	cx := dx*v.Center*anchor.Width + anchor.CenterX
	cy := dy*v.Center*anchor.Height + anchor.CenterY
	w := anchor.Width * math.Exp(dw*v.Size)
	h := anchor.Height * math.Exp(dh*v.Size)

	scaleX := float64(imgW) / float64(inputSize)
	scaleY := float64(imgH) / float64(inputSize)
	cx *= scaleX
	cy *= scaleY
	w *= scaleX
	h *= scaleY

	box := utils.NewBox(cx-w/2, cy-h/2, cx+w/2, cy+h/2)
	return box.Clamp(float64(imgW), float64(imgH))
}

// DecodeBoxes decodes the full location tensor against the anchor set.
// The tensor must hold exactly 4*len(anchors) values in anchor order.
func DecodeBoxes(loc []float32, anchors []Anchor, v Variances,
	inputSize int, imgW, imgH int,
) ([]utils.Box, error) {
	if len(loc) != boxStride*len(anchors) {
		return nil, fmt.Errorf("box decode: tensor length %d does not match %d anchors (want %d)",
			len(loc), len(anchors), boxStride*len(anchors))
	}
	if imgW <= 0 || imgH <= 0 {
		return nil, fmt.Errorf("box decode: %w (%dx%d)", ErrDegenerateImage, imgW, imgH)
	}
	if inputSize <= 0 {
		return nil, fmt.Errorf("box decode: input size must be > 0, got %d", inputSize)
	}

	boxes := make([]utils.Box, len(anchors))
	for i, a := range anchors {
		off := boxStride * i
		boxes[i] = DecodeBox(a,
			float64(loc[off]), float64(loc[off+1]), float64(loc[off+2]), float64(loc[off+3]),
			v, inputSize, imgW, imgH)
	}
	return boxes, nil
}
