package polyvoice

import "math"

const (
	DefaultTuning  = 440.0 // Hz of MIDI note 69 (A4)
	MinTuning      = 400.0
	MaxTuning      = 480.0
	MaxPitchBend   = 48.0 // semitones, either direction
	referenceNote  = 69
	maxSpreadCents = 50.0
)

// NoteFrequency returns the frequency of a MIDI note in equal temperament,
// with note 69 tuned to tuningHz and the pitch shifted by bendSemitones.
func NoteFrequency(note int, tuningHz, bendSemitones float64) float64 {
	return tuningHz * math.Exp2((float64(note-referenceNote)+bendSemitones)/12)
}

// CentsRatio converts an interval in cents to a frequency ratio.
func CentsRatio(cents float64) float64 {
	return math.Exp2(cents / 1200)
}

// ClampTuning clamps a tuning reference to [MinTuning, MaxTuning]; NaN maps to
// DefaultTuning.
func ClampTuning(hz float64) float64 {
	if math.IsNaN(hz) {
		return DefaultTuning
	}
	return min(max(hz, MinTuning), MaxTuning)
}

// ClampPitchBend clamps a pitch bend to ±MaxPitchBend semitones; NaN maps to 0.
func ClampPitchBend(semitones float64) float64 {
	if math.IsNaN(semitones) {
		return 0
	}
	return min(max(semitones, -MaxPitchBend), MaxPitchBend)
}
