package detector

import (
	"fmt"
	"math"
)

// scoreStride is the number of logits per anchor in the raw score tensor:
// consecutive (background, face) pairs.
const scoreStride = 2

// DecodeScores converts raw two-class logit pairs into per-anchor face
// confidences via numerically stable softmax. The tensor must hold exactly
// 2*numAnchors values in anchor order.
func DecodeScores(scores []float32, numAnchors int) ([]float64, error) {
	if len(scores) != scoreStride*numAnchors {
		return nil, fmt.Errorf("score decode: tensor length %d does not match %d anchors (want %d)",
			len(scores), numAnchors, scoreStride*numAnchors)
	}
	out := make([]float64, numAnchors)
	for i := 0; i < numAnchors; i++ {
		bg := float64(scores[scoreStride*i])
		face := float64(scores[scoreStride*i+1])
		out[i] = softmaxPair(bg, face)
	}
	return out, nil
}

// softmaxPair returns the face probability of a (background, face) logit
// pair. The max subtraction keeps exp() in range for large-magnitude
// logits; without it the naive form overflows.
func softmaxPair(bg, face float64) float64 {
	m := math.Max(bg, face)
	expBg := math.Exp(bg - m)
	expFace := math.Exp(face - m)
	return expFace / (expBg + expFace)
}
