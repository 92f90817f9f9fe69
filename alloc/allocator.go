package alloc

import "github.com/vsariola/polyvoice"

// Allocator owns the voice slots, the configuration and the event log. Create
// it with New; the zero value is not usable.
type Allocator struct {
	slots   [polyvoice.MaxVoices]slot
	events  eventLog
	monitor Monitor

	voiceCount     int
	allocationMode polyvoice.AllocationMode
	stealMode      polyvoice.StealMode
	unisonCount    int
	unisonDetune   float64
	pitchBend      float64 // semitones
	pitchBendRange float64 // semitones, only kept for Config
	tuning         float64 // Hz of A4
	sustain        bool

	clock    uint64 // incremented on every note on; newer notes have larger timestamps
	cursor   int    // round robin position
	sounding int    // number of slots that are not idle
	claimed  uint32 // bitmask of slots assigned during the current note on
	offsets  [polyvoice.MaxUnison]float64
}

// New returns an allocator with all slots idle, configured with cfg.
func New(cfg polyvoice.Config) *Allocator {
	a := &Allocator{voiceCount: polyvoice.MaxVoices}
	for i := range a.slots {
		a.slots[i] = idleSlot
		a.publish(i)
	}
	a.Configure(cfg)
	a.events.reset()
	return a
}

// NoteOn starts a note. A velocity of zero or less is a note off. If the note
// is already held by some slots, those slots are retriggered instead of
// allocating new ones: with Hard stealing each gets a Steal and a NoteOn
// event, with Soft stealing just a NoteOn. Otherwise UnisonCount slots are
// allocated, each taking an idle slot if there is one and stealing otherwise.
// A stolen slot gets a Steal (Hard) or NoteOff (Soft) event for the old note
// before its NoteOn. If no slot can be found, the voice is silently dropped.
func (a *Allocator) NoteOn(note, velocity int) []polyvoice.VoiceEvent {
	if velocity <= 0 {
		return a.NoteOff(note)
	}
	a.events.reset()
	note = polyvoice.ClampNote(note)
	velocity = min(velocity, polyvoice.MaxVel)
	a.clock++
	if a.retrigger(note, velocity) {
		return a.events.view()
	}
	a.claimed = 0
	for _, cents := range polyvoice.UnisonOffsets(a.unisonCount, a.unisonDetune, &a.offsets) {
		i := a.findIdle()
		if i < 0 {
			if i = a.findVictim(); i < 0 {
				break
			}
			a.evict(i)
		}
		a.activate(i, note, velocity, cents)
		a.claimed |= 1 << uint(i)
		a.cursor = (i + 1) % a.voiceCount
		a.events.add(polyvoice.NoteOn, i, &a.slots[i])
	}
	a.claimed = 0
	return a.events.view()
}

func (a *Allocator) retrigger(note, velocity int) (found bool) {
	for i := range a.voiceCount {
		s := &a.slots[i]
		if s.state == polyvoice.Idle || s.note != note {
			continue
		}
		found = true
		if a.stealMode == polyvoice.Hard {
			a.events.add(polyvoice.Steal, i, s)
		}
		s.state = polyvoice.Active
		s.velocity = velocity
		s.timestamp = a.clock
		s.sustained = false
		s.frequency = a.frequency(note, s.detune)
		a.publish(i)
		a.events.add(polyvoice.NoteOn, i, s)
	}
	return found
}

// NoteOff releases every active slot holding the note, emitting one NoteOff
// event per slot. Releasing a note that is not held is a no-op. While the
// sustain pedal is down, the slots are only marked sustained and released
// when the pedal goes up.
func (a *Allocator) NoteOff(note int) []polyvoice.VoiceEvent {
	a.events.reset()
	note = polyvoice.ClampNote(note)
	for i := range a.voiceCount {
		s := &a.slots[i]
		if s.state != polyvoice.Active || s.note != note {
			continue
		}
		if a.sustain {
			s.sustained = true
			continue
		}
		a.release(i)
		a.events.add(polyvoice.NoteOff, i, s)
	}
	return a.events.view()
}

// VoiceFinished tells the allocator that the sound generator has finished the
// release of voice i, making the slot available again. It is a no-op unless
// the slot is Releasing. It does not touch the event log.
func (a *Allocator) VoiceFinished(i int) {
	if i < 0 || i >= polyvoice.MaxVoices || a.slots[i].state != polyvoice.Releasing {
		return
	}
	a.free(i)
}

// SetSustain sets the sustain pedal. Lifting the pedal releases every slot
// whose note off arrived while the pedal was down.
func (a *Allocator) SetSustain(on bool) []polyvoice.VoiceEvent {
	a.events.reset()
	a.sustain = on
	if on {
		return a.events.view()
	}
	for i := range a.voiceCount {
		s := &a.slots[i]
		if s.state == polyvoice.Active && s.sustained {
			a.release(i)
			a.events.add(polyvoice.NoteOff, i, s)
		}
	}
	return a.events.view()
}

// AllNotesOff releases every active slot, including the ones held by the
// sustain pedal.
func (a *Allocator) AllNotesOff() []polyvoice.VoiceEvent {
	a.events.reset()
	for i := range a.voiceCount {
		if a.slots[i].state == polyvoice.Active {
			a.release(i)
			a.events.add(polyvoice.NoteOff, i, &a.slots[i])
		}
	}
	return a.events.view()
}

// Panic cuts every sounding slot with a Steal event and lifts the sustain
// pedal; all slots are idle afterwards.
func (a *Allocator) Panic() []polyvoice.VoiceEvent {
	a.events.reset()
	a.sustain = false
	for i := range a.slots {
		if a.slots[i].state != polyvoice.Idle {
			a.events.add(polyvoice.Steal, i, &a.slots[i])
			a.free(i)
		}
	}
	return a.events.view()
}

func (a *Allocator) SetAllocationMode(mode polyvoice.AllocationMode) {
	if mode < polyvoice.RoundRobin || mode > polyvoice.HighestNote {
		return
	}
	a.allocationMode = mode
}

func (a *Allocator) SetStealMode(mode polyvoice.StealMode) {
	if mode < polyvoice.Hard || mode > polyvoice.Soft {
		return
	}
	a.stealMode = mode
}

// SetUnisonCount sets how many slots each new note takes, clamped to [1,
// MaxUnison]. Held notes keep their slots.
func (a *Allocator) SetUnisonCount(n int) { a.unisonCount = polyvoice.ClampUnison(n) }

// SetUnisonDetune sets the unison spread as a fraction of ±50 cents, clamped
// to [0, 1]. It applies to notes started afterwards.
func (a *Allocator) SetUnisonDetune(d float64) { a.unisonDetune = polyvoice.ClampDetune(d) }

// SetPitchBend bends all voices, including the ones already sounding, by the
// given amount of semitones.
func (a *Allocator) SetPitchBend(semitones float64) {
	a.pitchBend = polyvoice.ClampPitchBend(semitones)
	a.retune()
}

// SetTuningReference sets the frequency of A4 and retunes all sounding voices.
func (a *Allocator) SetTuningReference(hz float64) {
	a.tuning = polyvoice.ClampTuning(hz)
	a.retune()
}

// Configure applies a whole configuration and returns the events caused by a
// possible change of the voice count.
func (a *Allocator) Configure(cfg polyvoice.Config) []polyvoice.VoiceEvent {
	cfg = cfg.Clamp()
	a.allocationMode = cfg.AllocationMode
	a.stealMode = cfg.StealMode
	a.unisonCount = cfg.UnisonCount
	a.unisonDetune = cfg.UnisonDetune
	a.pitchBendRange = cfg.PitchBendRange
	a.SetTuningReference(cfg.TuningReference)
	return a.SetVoiceCount(cfg.VoiceCount)
}

// Config returns the current configuration.
func (a *Allocator) Config() polyvoice.Config {
	return polyvoice.Config{
		VoiceCount:      a.voiceCount,
		AllocationMode:  a.allocationMode,
		StealMode:       a.stealMode,
		UnisonCount:     a.unisonCount,
		UnisonDetune:    a.unisonDetune,
		TuningReference: a.tuning,
		PitchBendRange:  a.pitchBendRange,
	}
}

// PitchBend returns the current pitch bend in semitones.
func (a *Allocator) PitchBend() float64 { return a.pitchBend }

// Monitor returns the query surface of the allocator, safe to read from any
// goroutine.
func (a *Allocator) Monitor() *Monitor { return &a.monitor }
