package detector

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Anchor is a fixed reference box in input-space pixel units, used as the
// baseline for regression-based box decoding. Anchors are generated once
// per input resolution and never mutated.
type Anchor struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// LevelSpec describes one feature-map level of the prior-box geometry.
type LevelSpec struct {
	GridSize     int       `yaml:"grid_size"`
	MinScale     float64   `yaml:"min_scale"`
	MaxScale     float64   `yaml:"max_scale"`
	AspectRatios []float64 `yaml:"aspect_ratios"`
}

// AnchorSpec declares the full anchor geometry of a detection model.
// It is validated once at startup against the model's declared anchor
// count instead of being re-derived from grid heuristics.
type AnchorSpec struct {
	InputSize int         `yaml:"input_size"`
	Levels    []LevelSpec `yaml:"levels"`
}

// DefaultAnchorSpec returns the geometry of the OpenCV res10 SSD face
// model (300x300 input, 8732 anchors).
func DefaultAnchorSpec() AnchorSpec {
	return AnchorSpec{
		InputSize: 300,
		Levels: []LevelSpec{
			{GridSize: 38, MinScale: 30, MaxScale: 60, AspectRatios: []float64{1, 2, 0.5}},
			{GridSize: 19, MinScale: 60, MaxScale: 111, AspectRatios: []float64{1, 2, 0.5, 3, 1.0 / 3.0}},
			{GridSize: 10, MinScale: 111, MaxScale: 162, AspectRatios: []float64{1, 2, 0.5, 3, 1.0 / 3.0}},
			{GridSize: 5, MinScale: 162, MaxScale: 213, AspectRatios: []float64{1, 2, 0.5, 3, 1.0 / 3.0}},
			{GridSize: 3, MinScale: 213, MaxScale: 264, AspectRatios: []float64{1, 2, 0.5}},
			{GridSize: 1, MinScale: 264, MaxScale: 315, AspectRatios: []float64{1, 2, 0.5}},
		},
	}
}

// LoadAnchorSpec reads an AnchorSpec from a YAML file.
func LoadAnchorSpec(path string) (AnchorSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AnchorSpec{}, fmt.Errorf("failed to read anchor spec: %w", err)
	}
	var spec AnchorSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return AnchorSpec{}, fmt.Errorf("failed to parse anchor spec %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return AnchorSpec{}, fmt.Errorf("invalid anchor spec %s: %w", path, err)
	}
	return spec, nil
}

// Validate checks the spec for malformed level descriptors.
func (s AnchorSpec) Validate() error {
	if s.InputSize <= 0 {
		return fmt.Errorf("anchor spec: input size must be > 0, got %d", s.InputSize)
	}
	if len(s.Levels) == 0 {
		return fmt.Errorf("anchor spec: no feature-map levels declared")
	}
	for i, lvl := range s.Levels {
		if lvl.GridSize <= 0 {
			return fmt.Errorf("anchor spec: level %d grid size must be > 0, got %d", i, lvl.GridSize)
		}
		if lvl.MinScale <= 0 {
			return fmt.Errorf("anchor spec: level %d min scale must be > 0, got %g", i, lvl.MinScale)
		}
		if lvl.MaxScale < lvl.MinScale {
			return fmt.Errorf("anchor spec: level %d max scale %g < min scale %g", i, lvl.MaxScale, lvl.MinScale)
		}
		if len(lvl.AspectRatios) == 0 {
			return fmt.Errorf("anchor spec: level %d has no aspect ratios", i)
		}
		for j, r := range lvl.AspectRatios {
			if r <= 0 {
				return fmt.Errorf("anchor spec: level %d aspect ratio %d must be > 0, got %g", i, j, r)
			}
		}
	}
	return nil
}

// anchorsPerCell returns the box count one grid cell emits: one per aspect
// ratio, plus the extra max-scale square for ratio 1.
func (l LevelSpec) anchorsPerCell() int {
	n := len(l.AspectRatios)
	for _, r := range l.AspectRatios {
		if r == 1 {
			n++
		}
	}
	return n
}

// NumAnchors returns the total anchor count the spec implies. This must
// equal the model's declared output width exactly.
func (s AnchorSpec) NumAnchors() int {
	total := 0
	for _, lvl := range s.Levels {
		total += lvl.GridSize * lvl.GridSize * lvl.anchorsPerCell()
	}
	return total
}

// fingerprint produces a stable cache key for the spec.
func (s AnchorSpec) fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "in=%d", s.InputSize)
	for _, lvl := range s.Levels {
		fmt.Fprintf(&b, "|g=%d,s=%g:%g,r=%v", lvl.GridSize, lvl.MinScale, lvl.MaxScale, lvl.AspectRatios)
	}
	return b.String()
}

// anchorCache holds the generated anchor sequence per spec for the process
// lifetime. Entries are immutable after insertion, so unsynchronized
// concurrent reads of the slices are safe.
var anchorCache sync.Map // fingerprint -> []Anchor

// GenerateAnchors produces the ordered anchor sequence for a spec.
// Enumeration order is load-bearing: level, then row, then column, then
// aspect-ratio variant, with the extra max-scale square emitted directly
// after the ratio-1 box. Tensor index i always refers to the same anchor.
func GenerateAnchors(spec AnchorSpec) ([]Anchor, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	key := spec.fingerprint()
	if cached, ok := anchorCache.Load(key); ok {
		if anchors, ok := cached.([]Anchor); ok {
			return anchors, nil
		}
	}

	anchors := make([]Anchor, 0, spec.NumAnchors())
	inputSize := float64(spec.InputSize)
	for _, lvl := range spec.Levels {
		step := inputSize / float64(lvl.GridSize)
		for y := 0; y < lvl.GridSize; y++ {
			cy := (float64(y) + 0.5) * step
			for x := 0; x < lvl.GridSize; x++ {
				cx := (float64(x) + 0.5) * step
				for _, r := range lvl.AspectRatios {
					sq := math.Sqrt(r)
					anchors = append(anchors, Anchor{
						CenterX: cx,
						CenterY: cy,
						Width:   lvl.MinScale * sq,
						Height:  lvl.MinScale / sq,
					})
					if r == 1 {
						side := math.Sqrt(lvl.MinScale * lvl.MaxScale)
						anchors = append(anchors, Anchor{
							CenterX: cx,
							CenterY: cy,
							Width:   side,
							Height:  side,
						})
					}
				}
			}
		}
	}

	anchorCache.Store(key, anchors)
	return anchors, nil
}
