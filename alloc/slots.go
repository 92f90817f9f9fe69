package alloc

import "github.com/vsariola/polyvoice"

// slot is the allocator's private record of one voice. note is -1 exactly
// when state is Idle.
type slot struct {
	state     polyvoice.VoiceState
	note      int
	velocity  int
	timestamp uint64
	frequency float64
	detune    float64 // cents
	sustained bool
}

var idleSlot = slot{state: polyvoice.Idle, note: -1}

func (a *Allocator) activate(i, note, velocity int, detune float64) {
	s := &a.slots[i]
	if s.state == polyvoice.Idle {
		a.sounding++
	}
	*s = slot{
		state:     polyvoice.Active,
		note:      note,
		velocity:  velocity,
		timestamp: a.clock,
		detune:    detune,
		frequency: a.frequency(note, detune),
	}
	a.publish(i)
}

func (a *Allocator) release(i int) {
	s := &a.slots[i]
	s.state = polyvoice.Releasing
	s.sustained = false
	a.publish(i)
}

func (a *Allocator) free(i int) {
	if a.slots[i].state != polyvoice.Idle {
		a.sounding--
	}
	a.slots[i] = idleSlot
	a.publish(i)
}

func (a *Allocator) publish(i int) {
	a.monitor.store(i, &a.slots[i], a.sounding)
}

func (a *Allocator) frequency(note int, detune float64) float64 {
	return polyvoice.NoteFrequency(note, a.tuning, a.pitchBend) * polyvoice.CentsRatio(detune)
}

func (a *Allocator) retune() {
	for i := range a.slots {
		if s := &a.slots[i]; s.state != polyvoice.Idle {
			s.frequency = a.frequency(s.note, s.detune)
		}
	}
}

// SetVoiceCount changes how many slots are eligible for allocation. n is
// clamped to [1, MaxVoices]. Every sounding slot that falls outside the new
// range is released with a NoteOff event and becomes Idle immediately,
// without going through Releasing, as it is no longer part of the pool.
func (a *Allocator) SetVoiceCount(n int) []polyvoice.VoiceEvent {
	a.events.reset()
	n = min(max(n, 1), polyvoice.MaxVoices)
	for i := n; i < polyvoice.MaxVoices; i++ {
		if a.slots[i].state == polyvoice.Idle {
			continue
		}
		a.events.add(polyvoice.NoteOff, i, &a.slots[i])
		a.free(i)
	}
	a.voiceCount = n
	if a.cursor >= n {
		a.cursor = 0
	}
	a.monitor.voices.Store(int32(n))
	return a.events.view()
}

// VoiceCount returns the number of slots eligible for allocation.
func (a *Allocator) VoiceCount() int { return a.voiceCount }

// Voice returns a copy of the state of slot i. Out of range indices return an
// idle voice.
func (a *Allocator) Voice(i int) polyvoice.Voice {
	if i < 0 || i >= polyvoice.MaxVoices {
		return polyvoice.Voice{State: polyvoice.Idle, Note: -1}
	}
	s := &a.slots[i]
	return polyvoice.Voice{
		State:     s.state,
		Note:      s.note,
		Velocity:  s.velocity,
		Timestamp: s.timestamp,
		Frequency: s.frequency,
		Detune:    s.detune,
		Sustained: s.sustained,
	}
}
