package main

import (
	"testing"

	"github.com/vsariola/polyvoice"
	"github.com/vsariola/polyvoice/alloc"
)

func TestVoiceLine(t *testing.T) {
	cfg := polyvoice.DefaultConfig()
	cfg.VoiceCount = 4
	a := alloc.New(cfg)
	a.NoteOn(60, 100)
	a.NoteOn(64, 100)
	a.NoteOff(60)
	if got, want := voiceLine(a.Monitor()), "[~#..]  2 sounding: 60 64"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
