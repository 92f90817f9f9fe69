package polyvoice

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	MaxVoices = 32            // size of the voice pool; never changes at runtime
	MaxUnison = 8             // maximum number of voices assigned per note
	MaxEvents = 2 * MaxVoices // every slot can be cut once and started once per call
	MaxNote   = 127
	MaxVel    = 127
)

type (
	// VoiceState is the lifecycle state of one voice slot. A slot goes Idle
	// -> Active on allocation, Active -> Releasing on note off and Releasing
	// -> Idle only when the sound generator reports that the envelope has
	// finished (or when the slot is stolen or removed from the pool).
	VoiceState int32

	// EventType tells the sound generator what to do with a voice.
	EventType int

	// VoiceEvent is one instruction for the sound generator, carrying
	// everything needed to start, cut or release the voice without consulting
	// the allocator. For Steal events, Note, Velocity and Frequency describe
	// the note being cut; the new note follows in a NoteOn event for the same
	// Voice.
	VoiceEvent struct {
		Type      EventType
		Voice     int
		Note      int
		Velocity  int
		Frequency float64
	}

	// Voice is a copy of the state of one slot, as seen by the audio thread.
	Voice struct {
		State     VoiceState
		Note      int     // -1 when idle
		Velocity  int     // 0 when idle
		Timestamp uint64  // allocation order, larger is newer
		Frequency float64 // Hz, including pitch bend and unison detune
		Detune    float64 // unison offset in cents
		Sustained bool    // note off received while the sustain pedal was down
	}

	// AllocationMode selects the comparator used to pick a voice to steal.
	AllocationMode int

	// StealMode selects how a stolen voice is handed over to the new note.
	// Hard cuts the old note immediately; Soft releases it and leaves the
	// crossfade to the sound generator.
	StealMode int
)

const (
	Idle VoiceState = iota
	Active
	Releasing
)

const (
	NoteOn EventType = iota
	NoteOff
	Steal
)

const (
	RoundRobin AllocationMode = iota
	Oldest
	LowestVelocity
	HighestNote
)

const (
	Hard StealMode = iota
	Soft
)

var (
	voiceStateNames     = [...]string{"idle", "active", "releasing"}
	eventTypeNames      = [...]string{"noteon", "noteoff", "steal"}
	allocationModeNames = [...]string{"roundrobin", "oldest", "lowestvelocity", "highestnote"}
	stealModeNames      = [...]string{"hard", "soft"}
)

func (s VoiceState) String() string {
	if s < 0 || int(s) >= len(voiceStateNames) {
		return fmt.Sprintf("VoiceState(%d)", int32(s))
	}
	return voiceStateNames[s]
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return fmt.Sprintf("EventType(%d)", int(t))
	}
	return eventTypeNames[t]
}

func (e VoiceEvent) String() string {
	return fmt.Sprintf("%v voice=%d note=%d vel=%d freq=%.2f", e.Type, e.Voice, e.Note, e.Velocity, e.Frequency)
}

func (m AllocationMode) String() string {
	if m < 0 || int(m) >= len(allocationModeNames) {
		return fmt.Sprintf("AllocationMode(%d)", int(m))
	}
	return allocationModeNames[m]
}

func (m AllocationMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(allocationModeNames) {
		return nil, fmt.Errorf("unknown allocation mode %d", int(m))
	}
	return []byte(allocationModeNames[m]), nil
}

func (m *AllocationMode) UnmarshalText(text []byte) error {
	i, err := lookupName(allocationModeNames[:], string(text))
	if err != nil {
		return fmt.Errorf("allocation mode: %w", err)
	}
	*m = AllocationMode(i)
	return nil
}

func (m AllocationMode) MarshalYAML() (any, error) {
	b, err := m.MarshalText()
	return string(b), err
}

func (m *AllocationMode) UnmarshalYAML(value *yaml.Node) error {
	return m.UnmarshalText([]byte(value.Value))
}

func (m StealMode) String() string {
	if m < 0 || int(m) >= len(stealModeNames) {
		return fmt.Sprintf("StealMode(%d)", int(m))
	}
	return stealModeNames[m]
}

func (m StealMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(stealModeNames) {
		return nil, fmt.Errorf("unknown steal mode %d", int(m))
	}
	return []byte(stealModeNames[m]), nil
}

func (m *StealMode) UnmarshalText(text []byte) error {
	i, err := lookupName(stealModeNames[:], string(text))
	if err != nil {
		return fmt.Errorf("steal mode: %w", err)
	}
	*m = StealMode(i)
	return nil
}

func (m StealMode) MarshalYAML() (any, error) {
	b, err := m.MarshalText()
	return string(b), err
}

func (m *StealMode) UnmarshalYAML(value *yaml.Node) error {
	return m.UnmarshalText([]byte(value.Value))
}

// lookupName is case and whitespace insensitive, and ignores dashes and
// underscores, so "Lowest-Velocity" and "lowest_velocity" both work.
func lookupName(names []string, s string) (int, error) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToLower(s))
	for i, n := range names {
		if n == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown value %q (expected one of %s)", s, strings.Join(names, ", "))
}

// ClampNote clamps a note number to the MIDI range.
func ClampNote(note int) int {
	return min(max(note, 0), MaxNote)
}
