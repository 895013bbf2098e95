package detector

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSoftmaxPair_TotalAndBounded verifies the stable softmax is total over
// finite logit pairs and always lands in [0,1].
func TestSoftmaxPair_TotalAndBounded(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("softmax of finite logits is finite and in [0,1]", prop.ForAll(
		func(bg, face float64) bool {
			v := softmaxPair(bg, face)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
			return v >= 0 && v <= 1
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("higher face logit means confidence above one half", prop.ForAll(
		func(bg, margin float64) bool {
			return softmaxPair(bg, bg+margin) >= 0.5
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
