//go:build cgo

package cmd

import (
	"github.com/vsariola/polyvoice/gomidi"
)

func NewMidiContext() MIDIContext {
	return gomidi.NewContext()
}
