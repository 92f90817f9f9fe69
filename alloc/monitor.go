package alloc

import (
	"sync/atomic"

	"github.com/vsariola/polyvoice"
)

// Monitor exposes the allocator's state to other goroutines, e.g. a UI
// drawing voice meters. It only contains atomics written by the audio thread.
// Every value is individually consistent, but there is no snapshot across
// values: a reader may see the new note of a slot together with its previous
// state. That is acceptable for display; do not add a lock here, the audio
// thread must never wait.
type Monitor struct {
	notes  [polyvoice.MaxVoices]atomic.Int32
	states [polyvoice.MaxVoices]atomic.Int32
	active atomic.Int32
	voices atomic.Int32
}

func (m *Monitor) store(i int, s *slot, sounding int) {
	m.notes[i].Store(int32(s.note))
	m.states[i].Store(int32(s.state))
	m.active.Store(int32(sounding))
}

// VoiceNote returns the note held by voice i, or -1 if the voice is idle or i
// is out of range.
func (m *Monitor) VoiceNote(i int) int {
	if i < 0 || i >= polyvoice.MaxVoices {
		return -1
	}
	return int(m.notes[i].Load())
}

// VoiceState returns the state of voice i; Idle if i is out of range.
func (m *Monitor) VoiceState(i int) polyvoice.VoiceState {
	if i < 0 || i >= polyvoice.MaxVoices {
		return polyvoice.Idle
	}
	return polyvoice.VoiceState(m.states[i].Load())
}

// ActiveVoiceCount returns the number of voices that are sounding, i.e. not
// idle. Releasing voices are counted, as their tails are still audible.
func (m *Monitor) ActiveVoiceCount() int { return int(m.active.Load()) }

// VoiceCount returns the number of voices eligible for allocation.
func (m *Monitor) VoiceCount() int { return int(m.voices.Load()) }
