package detector

import (
	"github.com/JCookit/MMM-OneDrive-sub001/internal/mempool"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
)

// DefaultIoUThreshold is the overlap above which two boxes are treated as
// the same face.
const DefaultIoUThreshold = 0.45

// NonMaxSuppression performs standard greedy NMS: take the
// highest-confidence remaining detection, then discard everything whose
// IoU with it exceeds iouThreshold. The result is sorted by confidence
// descending. Running it on its own output changes nothing.
func NonMaxSuppression(dets []Detection, iouThreshold float64) []Detection {
	if len(dets) <= 1 {
		return dets
	}

	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sortDetectionsByConfidenceDesc(sorted)

	suppressed := mempool.GetBool(len(sorted))
	defer mempool.PutBool(suppressed)

	kept := make([]Detection, 0, len(sorted))
	for a := range sorted {
		if suppressed[a] {
			continue
		}
		kept = append(kept, sorted[a])

		for b := a + 1; b < len(sorted); b++ {
			if suppressed[b] {
				continue
			}
			if ComputeIoU(sorted[a].Box, sorted[b].Box) > iouThreshold {
				suppressed[b] = true
			}
		}
	}
	return kept
}

// ComputeIoU computes Intersection over Union for two axis-aligned boxes.
// Disjoint boxes and degenerate unions yield 0.
func ComputeIoU(a, b utils.Box) float64 {
	inter := utils.IntersectionArea(a, b)
	if inter <= 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
