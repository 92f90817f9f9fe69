// Package cmd holds the parts shared by the polyvoice commands.
package cmd

import (
	"errors"

	"github.com/vsariola/polyvoice/player"
)

type (
	// MIDIContext is a MIDI input that the player can read events from.
	MIDIContext interface {
		player.PlayerProcessContext
		TryToOpenBy(namePrefix string, takeFirst bool) error
		SetChannel(channel int)
		Close()
	}

	// NullMIDIContext is used when the binary was built without MIDI
	// support.
	NullMIDIContext struct {
		player.NullPlayerProcessContext
	}
)

var errNoMIDI = errors.New("MIDI input is not available; build with cgo enabled")

func (NullMIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if namePrefix == "" && !takeFirst {
		return nil
	}
	return errNoMIDI
}

func (NullMIDIContext) SetChannel(channel int) {}
func (NullMIDIContext) Close()                 {}
