package detector

import (
	"fmt"
)

// RawOutput carries the two flat tensors produced by the model's forward
// pass: consecutive (background, face) logit pairs and consecutive
// (dx, dy, dw, dh) regression deltas, both in anchor order.
type RawOutput struct {
	Scores []float32
	Boxes  []float32
}

// NumAnchors derives the anchor count from the tensor shapes and checks
// that the two tensors agree. A mismatch is a configuration error, not a
// recoverable one.
func (r RawOutput) NumAnchors() (int, error) {
	if len(r.Scores)%scoreStride != 0 {
		return 0, fmt.Errorf("raw output: score tensor length %d is not a multiple of %d", len(r.Scores), scoreStride)
	}
	if len(r.Boxes)%boxStride != 0 {
		return 0, fmt.Errorf("raw output: box tensor length %d is not a multiple of %d", len(r.Boxes), boxStride)
	}
	n := len(r.Scores) / scoreStride
	if nb := len(r.Boxes) / boxStride; nb != n {
		return 0, fmt.Errorf("raw output: score tensor implies %d anchors but box tensor implies %d", n, nb)
	}
	return n, nil
}

// DecodeParams bundles the per-call tuning of the decode pipeline.
type DecodeParams struct {
	Variances    Variances
	Filter       FilterParams
	IoUThreshold float64
}

// DefaultDecodeParams returns the standard operating point.
func DefaultDecodeParams() DecodeParams {
	return DecodeParams{
		Variances:    DefaultVariances(),
		Filter:       DefaultFilterParams(),
		IoUThreshold: DefaultIoUThreshold,
	}
}

// Decoder turns raw tensor output into suppressed detections and a focal
// point. It holds the immutable, precomputed anchor set; each Decode call
// is a pure function of its inputs, so one Decoder is safe for concurrent
// use across images.
type Decoder struct {
	spec    AnchorSpec
	anchors []Anchor
	params  DecodeParams
}

// NewDecoder validates the anchor spec, generates (or reuses) the anchor
// set, and returns a ready decoder.
func NewDecoder(spec AnchorSpec, params DecodeParams) (*Decoder, error) {
	anchors, err := GenerateAnchors(spec)
	if err != nil {
		return nil, err
	}
	if params.IoUThreshold <= 0 {
		params.IoUThreshold = DefaultIoUThreshold
	}
	if params.Variances.Center == 0 || params.Variances.Size == 0 {
		params.Variances = DefaultVariances()
	}
	return &Decoder{spec: spec, anchors: anchors, params: params}, nil
}

// NumAnchors returns the anchor count the decoder expects in every tensor.
func (d *Decoder) NumAnchors() int { return len(d.anchors) }

// InputSize returns the network input resolution the anchors assume.
func (d *Decoder) InputSize() int { return d.spec.InputSize }

// Params returns a copy of the decode parameters.
func (d *Decoder) Params() DecodeParams { return d.params }

// checkShapes verifies the raw tensors against the anchor set, naming the
// mismatching dimension.
func (d *Decoder) checkShapes(raw RawOutput) error {
	n, err := raw.NumAnchors()
	if err != nil {
		return err
	}
	if n != len(d.anchors) {
		return fmt.Errorf("anchor count mismatch: model output implies %d anchors, anchor spec generates %d", n, len(d.anchors))
	}
	return nil
}

// Decode runs the full per-image pipeline: softmax scores, anchor-relative
// box decode into imgW x imgH pixel space, plausibility filtering, and
// greedy NMS. The result is sorted by confidence descending; empty is a
// valid outcome.
func (d *Decoder) Decode(raw RawOutput, imgW, imgH int) ([]Detection, error) {
	if err := d.checkShapes(raw); err != nil {
		return nil, err
	}

	confidences, err := DecodeScores(raw.Scores, len(d.anchors))
	if err != nil {
		return nil, err
	}
	boxes, err := DecodeBoxes(raw.Boxes, d.anchors, d.params.Variances, d.spec.InputSize, imgW, imgH)
	if err != nil {
		return nil, err
	}

	// Apply the confidence cut before materializing Detection values for
	// every anchor; most of the 8k+ anchors are background.
	candidates := make([]Detection, 0, 32)
	for i, conf := range confidences {
		det := Detection{Box: boxes[i], Confidence: conf}
		if d.params.Filter.keep(det) {
			candidates = append(candidates, det)
		}
	}

	return NonMaxSuppression(candidates, d.params.IoUThreshold), nil
}

// DecodeFocalPoint runs Decode and reduces the result to one focal point.
// The detections are returned as well for debug rendering.
func (d *Decoder) DecodeFocalPoint(raw RawOutput, imgW, imgH int) ([]Detection, FocalPoint, error) {
	dets, err := d.Decode(raw, imgW, imgH)
	if err != nil {
		return nil, FocalPoint{}, err
	}
	fp, err := SelectFocalPoint(dets, imgW, imgH)
	if err != nil {
		return nil, FocalPoint{}, err
	}
	return dets, fp, nil
}
