package detector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/testutil"
)

// twoAnchorSpec is a tiny single-level geometry for end-to-end decode
// tests: one grid cell at 300x300 produces exactly two centered square
// anchors, 60x60 and sqrt(60*120) ~ 84.85 square.
func twoAnchorSpec() AnchorSpec {
	return AnchorSpec{
		InputSize: 300,
		Levels: []LevelSpec{
			{GridSize: 1, MinScale: 60, MaxScale: 120, AspectRatios: []float64{1}},
		},
	}
}

func TestDecoderEndToEnd(t *testing.T) {
	dec, err := NewDecoder(twoAnchorSpec(), DefaultDecodeParams())
	require.NoError(t, err)
	require.Equal(t, 2, dec.NumAnchors())

	// Both anchors fire with zero regression deltas: the decoded boxes are
	// the anchors themselves, concentric and with IoU exactly 0.5, so the
	// lower-confidence one is suppressed at the default 0.45 threshold.
	raw := RawOutput{
		Scores: []float32{0, 3, 0, 2.6},
		Boxes:  []float32{0, 0, 0, 0, 0, 0, 0, 0},
	}
	dets, err := dec.Decode(raw, 300, 300)
	require.NoError(t, err)
	require.Len(t, dets, 1)

	wantConf := math.Exp(3) / (1 + math.Exp(3)) // ~0.9526
	assert.InDelta(t, wantConf, dets[0].Confidence, 1e-6)
	assert.InDelta(t, 120, dets[0].Box.MinX, 1e-9)
	assert.InDelta(t, 120, dets[0].Box.MinY, 1e-9)
	assert.InDelta(t, 180, dets[0].Box.MaxX, 1e-9)
	assert.InDelta(t, 180, dets[0].Box.MaxY, 1e-9)
}

func TestDecoderFocalPoint(t *testing.T) {
	dec, err := NewDecoder(twoAnchorSpec(), DefaultDecodeParams())
	require.NoError(t, err)

	raw := RawOutput{
		Scores: []float32{0, 3, 0, 2.6},
		Boxes:  []float32{0, 0, 0, 0, 0, 0, 0, 0},
	}
	dets, fp, err := dec.DecodeFocalPoint(raw, 600, 400)
	require.NoError(t, err)
	require.NotEmpty(t, dets)
	assert.Equal(t, FocalKindFace, fp.Kind)
	assert.InDelta(t, 0.5, fp.X, 1e-9)
	assert.InDelta(t, 0.5, fp.Y, 1e-9)
}

func TestDecoderAllBackgroundFallsBackToDefault(t *testing.T) {
	dec, err := NewDecoder(twoAnchorSpec(), DefaultDecodeParams())
	require.NoError(t, err)

	raw := RawOutput{
		Scores: []float32{5, 0, 5, 0},
		Boxes:  []float32{0, 0, 0, 0, 0, 0, 0, 0},
	}
	dets, fp, err := dec.DecodeFocalPoint(raw, 300, 300)
	require.NoError(t, err)
	assert.Empty(t, dets)
	assert.Equal(t, DefaultFocalPoint(), fp)
}

func TestDecoderShapeMismatch(t *testing.T) {
	dec, err := NewDecoder(twoAnchorSpec(), DefaultDecodeParams())
	require.NoError(t, err)

	cases := []struct {
		name string
		raw  RawOutput
	}{
		{"wrong anchor count", RawOutput{Scores: []float32{0, 1}, Boxes: []float32{0, 0, 0, 0}}},
		{"ragged score tensor", RawOutput{Scores: []float32{0, 1, 0}, Boxes: []float32{0, 0, 0, 0, 0, 0, 0, 0}}},
		{"score box disagreement", RawOutput{Scores: []float32{0, 1, 0, 1}, Boxes: []float32{0, 0, 0, 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dec.Decode(tc.raw, 300, 300)
			assert.Error(t, err)
		})
	}
}

func TestDecoderRescalesToImageSpace(t *testing.T) {
	dec, err := NewDecoder(twoAnchorSpec(), DefaultDecodeParams())
	require.NoError(t, err)

	raw := RawOutput{
		Scores: []float32{0, 3, 5, 0},
		Boxes:  []float32{0, 0, 0, 0, 0, 0, 0, 0},
	}
	dets, err := dec.Decode(raw, 600, 900)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	// 60x60 at network scale becomes 120x180 in a 600x900 image.
	assert.InDelta(t, 120, dets[0].Box.Width(), 1e-9)
	assert.InDelta(t, 180, dets[0].Box.Height(), 1e-9)
}

func TestNewDecoderRejectsInvalidSpec(t *testing.T) {
	_, err := NewDecoder(AnchorSpec{InputSize: 0}, DefaultDecodeParams())
	assert.Error(t, err)
}

func TestDecoderConfidenceMatchesSyntheticLogits(t *testing.T) {
	dec, err := NewDecoder(twoAnchorSpec(), DefaultDecodeParams())
	require.NoError(t, err)

	raw := RawOutput{
		Scores: testutil.ScoresTensor(0.92, 0.05),
		Boxes:  testutil.ZeroBoxTensor(2),
	}
	dets, err := dec.Decode(raw, 300, 300)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.InDelta(t, 0.92, dets[0].Confidence, 1e-5)
}
