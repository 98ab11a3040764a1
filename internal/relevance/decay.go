package relevance

import "math"

// expDecay computes exp(-rate * x), clamped to [0, 1].
func expDecay(rate, x float64) float64 {
	if rate <= 0 {
		return 1
	}
	return clamp01(math.Exp(-rate * x))
}
