package polyvoice

import "math"

// UnisonOffsets writes the detune offsets, in cents, for a unison group of
// count voices into dst and returns dst[:count]. The offsets are evenly spaced
// over [-detune*50, +detune*50] and sorted ascending: with an odd count, one
// voice sits at 0 cents; with an even count, there is no centred voice and the
// offsets come in symmetric pairs. count is clamped to [1, MaxUnison] and
// detune to [0, 1].
//
// The function does not allocate, so it can be called on the audio thread.
func UnisonOffsets(count int, detune float64, dst *[MaxUnison]float64) []float64 {
	count = ClampUnison(count)
	detune = ClampDetune(detune)
	ret := dst[:count]
	if count == 1 {
		ret[0] = 0
		return ret
	}
	spread := detune * maxSpreadCents
	half := count / 2
	if count%2 == 1 {
		ret[half] = 0
		for k := 1; k <= half; k++ {
			c := float64(k) * spread / float64(half)
			ret[half-k] = -c
			ret[half+k] = c
		}
		return ret
	}
	for j := 1; j <= half; j++ {
		c := float64(2*j-1) * spread / float64(count-1)
		ret[half-j] = -c
		ret[half-1+j] = c
	}
	return ret
}

// ClampUnison clamps a unison voice count to [1, MaxUnison].
func ClampUnison(count int) int {
	return min(max(count, 1), MaxUnison)
}

// ClampDetune clamps a unison detune amount to [0, 1]; NaN maps to 0.
func ClampDetune(detune float64) float64 {
	if math.IsNaN(detune) {
		return 0
	}
	return min(max(detune, 0), 1)
}
