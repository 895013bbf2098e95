package testutil

import "math"

// LogitPair builds the (background, face) logit pair that softmaxes to the
// given face confidence.
func LogitPair(confidence float64) (float32, float32) {
	// softmax(0, x) = confidence  =>  x = ln(c / (1-c))
	if confidence <= 0 {
		return 0, float32(math.Inf(-1))
	}
	if confidence >= 1 {
		return 0, float32(math.Inf(1))
	}
	return 0, float32(math.Log(confidence / (1 - confidence)))
}

// ScoresTensor builds a flat (bg, face) score tensor from per-anchor face
// confidences.
func ScoresTensor(confidences ...float64) []float32 {
	out := make([]float32, 0, 2*len(confidences))
	for _, c := range confidences {
		bg, face := LogitPair(c)
		out = append(out, bg, face)
	}
	return out
}

// ZeroBoxTensor builds a flat (dx, dy, dw, dh) tensor of zero deltas for n
// anchors, so decoded boxes reproduce the anchors themselves.
func ZeroBoxTensor(n int) []float32 {
	return make([]float32, 4*n)
}
