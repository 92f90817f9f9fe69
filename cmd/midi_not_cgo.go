//go:build !cgo

package cmd

func NewMidiContext() MIDIContext {
	// with no cgo, we cannot use MIDI, so return a null context
	return NullMIDIContext{}
}
