package detector

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DetectionResultJSON is a serializable representation of a detection set.
type DetectionResultJSON struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Faces      []DetectionJSON `json:"faces"`
	FocalPoint FocalPoint      `json:"focal_point"`
}

type DetectionJSON struct {
	Confidence float64 `json:"confidence"`
	Box        BoxJSON `json:"box"`
}

type BoxJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DetectionsToJSON converts detections plus the focal point to pretty JSON
// with the given image dimensions.
func DetectionsToJSON(dets []Detection, fp FocalPoint, width, height int) ([]byte, error) {
	out := DetectionResultJSON{Width: width, Height: height, FocalPoint: fp}
	out.Faces = make([]DetectionJSON, 0, len(dets))
	for _, d := range dets {
		out.Faces = append(out.Faces, DetectionJSON{
			Confidence: d.Confidence,
			Box: BoxJSON{
				X: int(d.Box.MinX),
				Y: int(d.Box.MinY),
				W: int(d.Box.Width()),
				H: int(d.Box.Height()),
			},
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

// DetectionsFromJSON parses a detection result back into a struct.
func DetectionsFromJSON(data []byte) (DetectionResultJSON, error) {
	var res DetectionResultJSON
	err := json.Unmarshal(data, &res)
	return res, err
}

// ValidateDetections performs basic sanity checks against image dimensions.
func ValidateDetections(dets []Detection, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("invalid image dimensions for validation")
	}
	for i, d := range dets {
		if d.Confidence < 0 || d.Confidence > 1 {
			return fmt.Errorf("detection %d confidence %f outside [0,1]", i, d.Confidence)
		}
		if d.Box.MinX < 0 || d.Box.MinY < 0 || d.Box.MaxX > float64(width) || d.Box.MaxY > float64(height) {
			return fmt.Errorf("detection %d box out of bounds", i)
		}
		if d.Box.MinX > d.Box.MaxX || d.Box.MinY > d.Box.MaxY {
			return fmt.Errorf("detection %d box corners out of order", i)
		}
	}
	return nil
}
