// Package synth is a small sound generator for the voice allocator: one sine
// oscillator with a linear ADSR envelope per voice slot. It exists so that
// the allocator can be heard and tested end to end; it implements
// polyvoice.Synth.
package synth

import (
	"math"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/polyvoice"
)

type (
	// Envelope is a linear ADSR envelope. Attack, Decay and Release are in
	// seconds, for a full 0..1 sweep; Sustain is a level in 0..1.
	Envelope struct {
		Attack  float64
		Decay   float64
		Sustain float64
		Release float64
	}

	// Synth renders polyvoice.MaxVoices voices and mixes them into a stereo
	// buffer. All methods are meant for the audio thread.
	Synth struct {
		voices     [polyvoice.MaxVoices]voice
		rates      rates
		sampleRate float64
		gain       float32
		mix        []float32
		tmp        []float32
	}

	voice struct {
		stage    stage
		level    float32
		phase    float64 // 0..1
		freq     float64
		velocity float32
	}

	rates struct {
		attack, decay, release float32
		sustain                float32
	}

	stage int
)

const (
	stageOff stage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

const defaultBlockSize = 4096

var DefaultEnvelope = Envelope{Attack: 0.005, Decay: 0.2, Sustain: 0.6, Release: 0.3}

// New returns a synth for the given sample rate. The output is scaled so that
// eight full-velocity voices do not clip.
func New(sampleRate int, env Envelope) *Synth {
	s := &Synth{
		sampleRate: float64(sampleRate),
		gain:       0.125,
		mix:        make([]float32, defaultBlockSize),
		tmp:        make([]float32, defaultBlockSize),
	}
	s.SetEnvelope(env)
	return s
}

// SetEnvelope changes the envelope of all voices. Times are clamped to at
// least one sample.
func (s *Synth) SetEnvelope(env Envelope) {
	perSample := func(seconds float64) float32 {
		return float32(1 / max(seconds*s.sampleRate, 1))
	}
	s.rates = rates{
		attack:  perSample(env.Attack),
		decay:   perSample(env.Decay),
		release: perSample(env.Release),
		sustain: float32(min(max(env.Sustain, 0), 1)),
	}
}

// SetGain sets the master gain.
func (s *Synth) SetGain(gain float32) { s.gain = gain }

func (s *Synth) Trigger(i int, frequency float64, velocity int) {
	v := &s.voices[i]
	if v.stage == stageOff {
		v.phase = 0
	}
	v.stage = stageAttack
	v.freq = frequency
	v.velocity = float32(velocity) / polyvoice.MaxVel
}

func (s *Synth) Release(i int) {
	if v := &s.voices[i]; v.stage != stageOff {
		v.stage = stageRelease
	}
}

func (s *Synth) Stop(i int) { s.voices[i] = voice{} }

func (s *Synth) Retune(i int, frequency float64) { s.voices[i].freq = frequency }

func (s *Synth) Silent(i int) bool { return s.voices[i].stage == stageOff }

func (s *Synth) Level(i int) float32 { return s.voices[i].level }

func (s *Synth) Render(buffer polyvoice.AudioBuffer) {
	n := len(buffer)
	if cap(s.mix) < n {
		s.mix = make([]float32, n)
		s.tmp = make([]float32, n)
	}
	mix := s.mix[:n]
	clear(mix)
	for i := range s.voices {
		if s.voices[i].stage == stageOff {
			continue
		}
		tmp := s.tmp[:n]
		s.voices[i].render(tmp, &s.rates, s.sampleRate)
		vek32.Add_Inplace(mix, tmp)
	}
	vek32.MulNumber_Inplace(mix, s.gain)
	for i, x := range mix {
		buffer[i] = [2]float32{x, x}
	}
}

func (v *voice) render(out []float32, r *rates, sampleRate float64) {
	step := v.freq / sampleRate
	for j := range out {
		v.advance(r)
		out[j] = float32(math.Sin(2*math.Pi*v.phase)) * v.level * v.velocity
		v.phase += step
		v.phase -= math.Floor(v.phase)
	}
}

func (v *voice) advance(r *rates) {
	switch v.stage {
	case stageAttack:
		if v.level += r.attack; v.level >= 1 {
			v.level = 1
			v.stage = stageDecay
		}
	case stageDecay:
		if v.level -= r.decay; v.level <= r.sustain {
			v.level = r.sustain
			v.stage = stageSustain
		}
	case stageRelease:
		if v.level -= r.release; v.level <= 0 {
			*v = voice{}
		}
	}
}
