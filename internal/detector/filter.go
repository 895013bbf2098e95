package detector

// FilterParams controls the geometric plausibility filter applied to
// decoded boxes. These are the operating-point knobs that used to be
// scattered per-script constants; callers pick them explicitly.
type FilterParams struct {
	ConfidenceThreshold float64 // minimum face confidence
	MinPixelSize        float64 // minimum box width and height in pixels
	MinAspectRatio      float64 // lower bound on width/height
	MaxAspectRatio      float64 // upper bound on width/height
}

// DefaultFilterParams returns a roughly-square face operating point.
func DefaultFilterParams() FilterParams {
	return FilterParams{
		ConfidenceThreshold: 0.5,
		MinPixelSize:        10,
		MinAspectRatio:      0.5,
		MaxAspectRatio:      2.0,
	}
}

// keep reports whether a single detection passes the joint predicate.
func (p FilterParams) keep(d Detection) bool {
	if d.Confidence <= p.ConfidenceThreshold {
		return false
	}
	if d.Box.Width() <= p.MinPixelSize || d.Box.Height() <= p.MinPixelSize {
		return false
	}
	ratio := d.Box.AspectRatio()
	return ratio >= p.MinAspectRatio && ratio <= p.MaxAspectRatio
}

// FilterDetections retains only detections whose confidence, size, and
// aspect ratio are plausible for a face. The predicate is pure and
// per-detection; ordering of survivors is preserved but not relied on,
// since NMS re-sorts.
func FilterDetections(dets []Detection, params FilterParams) []Detection {
	var kept []Detection
	for _, d := range dets {
		if params.keep(d) {
			kept = append(kept, d)
		}
	}
	return kept
}
