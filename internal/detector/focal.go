package detector

import "fmt"

// FocalPoint kinds.
const (
	FocalKindFace    = "face"
	FocalKindDefault = "default"
)

// FocalPoint is the single point of interest used for crop/pan framing.
// Coordinates are normalized to [0,1] of the image dimensions so downstream
// consumers are resolution-independent.
type FocalPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"`
}

// DefaultFocalPoint is the deterministic fallback when no face is found.
func DefaultFocalPoint() FocalPoint {
	return FocalPoint{X: 0.5, Y: 0.5, Kind: FocalKindDefault}
}

// SelectFocalPoint reduces the suppressed detection list to one focal
// point. A non-empty list yields the center of the single
// highest-confidence detection; multi-face scenes deliberately collapse to
// the primary subject rather than an average, which would drift into the
// empty region between faces. An empty list is a valid outcome and yields
// the image-center fallback, never an error.
func SelectFocalPoint(dets []Detection, imgW, imgH int) (FocalPoint, error) {
	if imgW <= 0 || imgH <= 0 {
		return FocalPoint{}, fmt.Errorf("focal point: %w (%dx%d)", ErrDegenerateImage, imgW, imgH)
	}
	if len(dets) == 0 {
		return DefaultFocalPoint(), nil
	}

	best := dets[0]
	for _, d := range dets[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	c := best.Box.Center()
	return FocalPoint{
		X:    c.X / float64(imgW),
		Y:    c.Y / float64(imgH),
		Kind: FocalKindFace,
	}, nil
}
