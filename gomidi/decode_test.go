package gomidi_test

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"

	"github.com/vsariola/polyvoice/gomidi"
	"github.com/vsariola/polyvoice/player"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
		want player.MIDIEvent
	}{
		{"note on", midi.NoteOn(2, 60, 100), player.MIDIEvent{Kind: player.NoteOnEvent, Channel: 2, Note: 60, Velocity: 100}},
		{"note off", midi.NoteOff(0, 61), player.MIDIEvent{Kind: player.NoteOffEvent, Note: 61}},
		{"pitch bend", midi.Pitchbend(1, 4096), player.MIDIEvent{Kind: player.PitchBendEvent, Channel: 1, Value: 4096}},
		{"pitch bend down", midi.Pitchbend(1, -8192), player.MIDIEvent{Kind: player.PitchBendEvent, Channel: 1, Value: -8192}},
		{"sustain", midi.ControlChange(0, 64, 127), player.MIDIEvent{Kind: player.SustainEvent, Value: 127}},
		{"all notes off", midi.ControlChange(3, 123, 0), player.MIDIEvent{Kind: player.AllNotesOffEvent, Channel: 3}},
		{"all sound off", midi.ControlChange(0, 120, 0), player.MIDIEvent{Kind: player.AllNotesOffEvent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := gomidi.Decode(tt.msg)
			if !ok {
				t.Fatalf("message %v was not decoded", tt.msg)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeIgnoresOtherMessages(t *testing.T) {
	for _, msg := range []midi.Message{
		midi.ControlChange(0, 1, 64), // mod wheel
		midi.ProgramChange(0, 5),
		midi.AfterTouch(0, 10),
	} {
		if e, ok := gomidi.Decode(msg); ok {
			t.Errorf("message %v decoded as %+v", msg, e)
		}
	}
}

func TestDecodeZeroVelocityNoteOn(t *testing.T) {
	e, ok := gomidi.Decode(midi.NoteOn(0, 60, 0))
	if !ok {
		t.Fatal("note on with zero velocity was not decoded")
	}
	if e.Kind != player.NoteOffEvent && e.Velocity != 0 {
		t.Fatalf("got %+v, want a note off or a note on with zero velocity", e)
	}
}
