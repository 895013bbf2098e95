package detector

import (
	"testing"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
)

func TestFilterDetectionsJointPredicate(t *testing.T) {
	params := FilterParams{
		ConfidenceThreshold: 0.5,
		MinPixelSize:        10,
		MinAspectRatio:      0.5,
		MaxAspectRatio:      2.0,
	}
	dets := []Detection{
		{Box: utils.NewBox(0, 0, 50, 50), Confidence: 0.9},    // keeps
		{Box: utils.NewBox(0, 0, 50, 50), Confidence: 0.4},    // confidence too low
		{Box: utils.NewBox(0, 0, 8, 50), Confidence: 0.9},     // too narrow
		{Box: utils.NewBox(0, 0, 50, 8), Confidence: 0.9},     // too short
		{Box: utils.NewBox(0, 0, 60, 20), Confidence: 0.9},    // ratio 3.0, not face-shaped
		{Box: utils.NewBox(0, 0, 20, 60), Confidence: 0.9},    // ratio 0.33
		{Box: utils.NewBox(0, 0, 30, 40), Confidence: 0.51},   // ratio 0.75, keeps
		{Box: utils.NewBox(10, 10, 10, 10), Confidence: 0.99}, // degenerate zero size
	}

	kept := FilterDetections(dets, params)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept detections, got %d", len(kept))
	}
	if kept[0].Confidence != 0.9 || kept[1].Confidence != 0.51 {
		t.Fatalf("unexpected survivors: %+v", kept)
	}
}

func TestFilterDetectionsThresholdIsExclusive(t *testing.T) {
	params := DefaultFilterParams()
	dets := []Detection{
		{Box: utils.NewBox(0, 0, 50, 50), Confidence: params.ConfidenceThreshold},
	}
	if kept := FilterDetections(dets, params); len(kept) != 0 {
		t.Fatalf("confidence equal to threshold must not pass, got %d survivors", len(kept))
	}
}

func TestFilterDetectionsEmptyInput(t *testing.T) {
	if kept := FilterDetections(nil, DefaultFilterParams()); len(kept) != 0 {
		t.Fatalf("expected no detections, got %d", len(kept))
	}
}
