package detector

import (
	"math"
	"testing"
)

func TestDecodeScoresBasic(t *testing.T) {
	// Two anchors: one confident face, one confident background.
	scores := []float32{0, 3, 4, 0}
	conf, err := DecodeScores(scores, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conf) != 2 {
		t.Fatalf("expected 2 confidences, got %d", len(conf))
	}
	want0 := math.Exp(3) / (1 + math.Exp(3))
	if math.Abs(conf[0]-want0) > 1e-9 {
		t.Errorf("anchor 0: expected %f, got %f", want0, conf[0])
	}
	if conf[1] >= 0.5 {
		t.Errorf("anchor 1 should favor background, got %f", conf[1])
	}
}

func TestDecodeScoresLargeLogits(t *testing.T) {
	// Naive softmax overflows float64 around exp(710); the max-subtraction
	// form must stay finite for large-magnitude logits.
	cases := [][2]float32{
		{50, -50},
		{-50, 50},
		{1000, 999},
		{-1000, -999},
		{0, 0},
	}
	for _, c := range cases {
		scores := []float32{c[0], c[1]}
		conf, err := DecodeScores(scores, 1)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", c, err)
		}
		v := conf[0]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("logits %v produced non-finite confidence %f", c, v)
		}
		if v < 0 || v > 1 {
			t.Fatalf("logits %v produced confidence %f outside [0,1]", c, v)
		}
	}
}

func TestDecodeScoresEqualLogits(t *testing.T) {
	conf, err := DecodeScores([]float32{7, 7}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(conf[0]-0.5) > 1e-9 {
		t.Errorf("equal logits should yield 0.5, got %f", conf[0])
	}
}

func TestDecodeScoresShapeMismatch(t *testing.T) {
	if _, err := DecodeScores([]float32{1, 2, 3}, 2); err == nil {
		t.Fatal("expected error for mismatched tensor length")
	}
	if _, err := DecodeScores(nil, 1); err == nil {
		t.Fatal("expected error for empty tensor with nonzero anchors")
	}
}
