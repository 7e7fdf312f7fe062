package logits

import (
	"math"
	"sort"
)

// Excluded is the sentinel written over logits that have been removed from
// consideration. exp(Excluded) is exactly zero, so excluded entries receive
// zero probability under any later softmax.
var Excluded = float32(math.Inf(-1))

// Filter truncates a logits vector in place using top-k and nucleus (top-p)
// filtering and returns the same slice.
//
// With topK > 0, only the k highest-valued entries survive; everything
// strictly below the k-th largest value is set to Excluded. Entries tied with
// the boundary value are all kept. A topK larger than the vocabulary is
// clamped, not an error.
//
// With topP > 0, entries are ranked by value and the smallest prefix whose
// cumulative softmax probability exceeds topP is kept. The removal mask is
// shifted down by one rank so the highest-probability entry always survives,
// even when its probability alone exceeds topP.
//
// Both truncations may be combined; topK narrows first and topP further
// narrows the remainder. With topK == 0 and topP == 0 the vector is returned
// untouched. The vector must have at least one entry.
func Filter(logits []float32, topK int, topP float32) []float32 {
	if topK <= 0 && topP <= 0 {
		return logits
	}

	order := make([]int, len(logits))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return logits[order[a]] > logits[order[b]]
	})

	if topK > 0 {
		k := min(topK, len(logits))
		threshold := logits[order[k-1]]
		for i, v := range logits {
			if v < threshold {
				logits[i] = Excluded
			}
		}
	}

	if topP > 0 {
		weights := make([]float64, len(order))
		maxv := logits[order[0]]
		var sum float64
		for i, idx := range order {
			w := math.Exp(float64(logits[idx] - maxv))
			weights[i] = w
			sum += w
		}
		if sum == 0 {
			return logits
		}

		// Walk ranks in descending order. An entry is removed when the
		// cumulative probability of the ranks before it already exceeds
		// topP; rank 0 is therefore always kept.
		var cum float64
		for i, idx := range order {
			if i > 0 && cum > float64(topP) {
				logits[idx] = Excluded
			}
			cum += weights[i] / sum
		}
	}

	return logits
}
