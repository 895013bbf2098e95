package detector

import (
	"sort"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
)

// Detection is a decoded face candidate in source-image pixel space.
// Detections are transient: recomputed per image, never cached.
type Detection struct {
	Box        utils.Box
	Confidence float64
}

// sortDetectionsByConfidenceDesc sorts detections in-place by confidence
// (descending).
func sortDetectionsByConfidenceDesc(dets []Detection) {
	sort.Slice(dets, func(i, j int) bool {
		return dets[i].Confidence > dets[j].Confidence
	})
}
