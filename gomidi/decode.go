// Package gomidi connects MIDI input to the player using gitlab.com/gomidi.
package gomidi

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/vsariola/polyvoice/player"
)

const (
	ccSustain     = 64
	ccAllNotesOff = 123
	ccAllSoundOff = 120
)

// Decode converts a MIDI message into a player event. Only the channel voice
// messages the allocator cares about are decoded: note on and off, pitch
// bend, the sustain pedal and all notes off; ok is false for everything
// else. Frame is left at zero.
func Decode(msg midi.Message) (event player.MIDIEvent, ok bool) {
	var channel, key, velocity, controller, value uint8
	var relative int16
	var absolute uint16
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		return player.MIDIEvent{Kind: player.NoteOnEvent, Channel: int(channel), Note: key, Velocity: velocity}, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return player.MIDIEvent{Kind: player.NoteOffEvent, Channel: int(channel), Note: key, Velocity: velocity}, true
	case msg.GetPitchBend(&channel, &relative, &absolute):
		return player.MIDIEvent{Kind: player.PitchBendEvent, Channel: int(channel), Value: int(relative)}, true
	case msg.GetControlChange(&channel, &controller, &value):
		switch controller {
		case ccSustain:
			return player.MIDIEvent{Kind: player.SustainEvent, Channel: int(channel), Value: int(value)}, true
		case ccAllNotesOff, ccAllSoundOff:
			return player.MIDIEvent{Kind: player.AllNotesOffEvent, Channel: int(channel)}, true
		}
	}
	return player.MIDIEvent{}, false
}
