package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ToJSONImage serializes a single ImageResult to pretty JSON.
func ToJSONImage(res *ImageResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToJSONImages serializes multiple ImageResult entries to pretty JSON.
func ToJSONImages(results []*ImageResult) (string, error) {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToCSVImage exports per-face structured data as CSV with header. The focal
// point is appended as its own row so a single file carries the full result.
func ToCSVImage(res *ImageResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"kind", "x", "y", "w", "h", "confidence"})
	for _, f := range res.Faces {
		_ = w.Write([]string{
			"face",
			strconv.Itoa(f.X),
			strconv.Itoa(f.Y),
			strconv.Itoa(f.W),
			strconv.Itoa(f.H),
			fmt.Sprintf("%.3f", f.Confidence),
		})
	}
	_ = w.Write([]string{
		"focal_" + res.FocalPoint.Kind,
		fmt.Sprintf("%.4f", res.FocalPoint.X),
		fmt.Sprintf("%.4f", res.FocalPoint.Y),
		"", "", "",
	})
	w.Flush()
	return buf.String(), nil
}
