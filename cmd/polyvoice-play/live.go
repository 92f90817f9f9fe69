package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/vsariola/polyvoice"
	"github.com/vsariola/polyvoice/alloc"
	"github.com/vsariola/polyvoice/cmd"
	"github.com/vsariola/polyvoice/oto"
	"github.com/vsariola/polyvoice/player"
	"github.com/vsariola/polyvoice/synth"
)

var errEndOfBuffer = errors.New("end of buffer")

// playLive plays the opened MIDI input through the allocator until
// interrupted, printing the voice states every -monitor interval.
func playLive(override func(polyvoice.Config) polyvoice.Config) error {
	midiContext := cmd.NewMidiContext()
	defer midiContext.Close()
	midiContext.SetChannel(*midiChannel)
	if err := midiContext.TryToOpenBy(*midiInput, *midiInput == ""); err != nil {
		return fmt.Errorf("failed to open MIDI input %q: %w", *midiInput, err)
	}
	audioContext, err := oto.NewContext()
	if err != nil {
		return err
	}
	defer audioContext.Close()
	broker := player.NewBroker()
	p := player.NewPlayer(broker, synth.New(polyvoice.SampleRate, synth.DefaultEnvelope), override(polyvoice.DefaultConfig()))
	audioCloser := audioContext.Play(func(buf polyvoice.AudioBuffer) error {
		p.Process(buf, midiContext)
		return nil
	})
	defer audioCloser.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	var tick <-chan time.Time
	if *monitor > 0 {
		ticker := time.NewTicker(*monitor)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case msg := <-broker.ToModel:
			if a, ok := msg.Data.(player.Alert); ok {
				log.Printf("%v: %v (%v)", a.Priority, a.Message, a.Name)
			}
		case <-tick:
			fmt.Println(voiceLine(p.Monitor()))
		case <-interrupt:
			player.TrySend(broker.ToPlayer, any(player.PanicMsg{}))
			return nil
		}
	}
}

// voiceLine renders the pool as one character per voice: '.' idle, '#'
// active and '~' releasing, followed by the notes of the sounding voices.
func voiceLine(m *alloc.Monitor) string {
	var states, notes strings.Builder
	for i := range m.VoiceCount() {
		switch m.VoiceState(i) {
		case polyvoice.Active:
			states.WriteByte('#')
		case polyvoice.Releasing:
			states.WriteByte('~')
		default:
			states.WriteByte('.')
			continue
		}
		fmt.Fprintf(&notes, " %d", m.VoiceNote(i))
	}
	return fmt.Sprintf("[%s] %2d sounding:%s", states.String(), m.ActiveVoiceCount(), notes.String())
}
