package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
)

// FaceBox is one detected face in original-image pixel space.
type FaceBox struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	W          int     `json:"w"`
	H          int     `json:"h"`
	Confidence float64 `json:"confidence"`
}

// ImageResult is the per-image aggregated detection output.
type ImageResult struct {
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Faces      []FaceBox           `json:"faces"`
	FocalPoint detector.FocalPoint `json:"focal_point"`
	Processing struct {
		InferenceNs int64 `json:"inference_ns"`
		DecodeNs    int64 `json:"decode_ns"`
		TotalNs     int64 `json:"total_ns"`
	} `json:"processing"`
}

// ProcessImage runs detection on a single image.
func (p *Pipeline) ProcessImage(img image.Image) (*ImageResult, error) {
	return p.ProcessImageContext(context.Background(), img)
}

// ProcessImageContext runs detection with context cancellation support. Each
// call is independent; the pipeline keeps no cross-image state. The context
// bounds the inference call; the decode stages after it are small numeric
// loops.
func (p *Pipeline) ProcessImageContext(ctx context.Context, img image.Image) (*ImageResult, error) {
	if p == nil || p.Detector == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	start := time.Now()
	inf, err := p.Detector.RunInference(ctx, img)
	if err != nil {
		return nil, err
	}

	decodeStart := time.Now()
	dets, fp, err := p.Detector.Decoder().DecodeFocalPoint(inf.Raw, inf.OriginalWidth, inf.OriginalHeight)
	if err != nil {
		return nil, err
	}

	res := &ImageResult{
		Width:      inf.OriginalWidth,
		Height:     inf.OriginalHeight,
		Faces:      facesFromDetections(dets, inf.OriginalWidth, inf.OriginalHeight),
		FocalPoint: fp,
	}
	res.Processing.InferenceNs = inf.ProcessingTime
	res.Processing.DecodeNs = time.Since(decodeStart).Nanoseconds()
	res.Processing.TotalNs = time.Since(start).Nanoseconds()

	slog.Debug("Processed image",
		"width", res.Width,
		"height", res.Height,
		"faces", len(res.Faces),
		"focal_kind", fp.Kind,
		"total_ns", res.Processing.TotalNs)
	return res, nil
}

// ProcessImages processes multiple images sequentially and returns results.
func (p *Pipeline) ProcessImages(images []image.Image) ([]*ImageResult, error) {
	return p.ProcessImagesContext(context.Background(), images)
}

// ProcessImagesContext processes images with context cancellation support.
func (p *Pipeline) ProcessImagesContext(ctx context.Context, images []image.Image) ([]*ImageResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	results := make([]*ImageResult, 0, len(images))
	for i, img := range images {
		res, err := p.ProcessImageContext(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func facesFromDetections(dets []detector.Detection, imgW, imgH int) []FaceBox {
	bounds := image.Rect(0, 0, imgW, imgH)
	faces := make([]FaceBox, 0, len(dets))
	for _, d := range dets {
		r := d.Box.ToRect(bounds)
		faces = append(faces, FaceBox{
			X:          r.Min.X,
			Y:          r.Min.Y,
			W:          r.Dx(),
			H:          r.Dy(),
			Confidence: d.Confidence,
		})
	}
	return faces
}
