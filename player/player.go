package player

import (
	"github.com/vsariola/polyvoice"
	"github.com/vsariola/polyvoice/alloc"
)

type (
	// Player drives the voice allocator and the synth from the audio thread.
	// It is controlled by MIDI events given by the PlayerProcessContext and
	// by messages from other goroutines via the broker; it sends voice levels
	// and alerts back through the broker.
	Player struct {
		alloc       *alloc.Allocator
		synth       polyvoice.Synth
		broker      *Broker
		bendRange   float64 // semitones at full pitch wheel deflection
		voiceLevels [polyvoice.MaxVoices]float32
	}

	// PlayerProcessContext is the context given to the player when processing
	// audio. NextEvent returns the next MIDI event, with Frame relative to
	// the start of the current buffer; the last event returned in a buffer
	// has not been handled yet and has to be returned again in the next
	// buffer. FinishBlock is called with the number of frames rendered.
	PlayerProcessContext interface {
		NextEvent(frame int) (event MIDIEvent, ok bool)
		FinishBlock(frame int)
	}

	// MIDIEvent is a decoded, channel voice MIDI event.
	MIDIEvent struct {
		Frame    int
		Kind     MIDIEventKind
		Channel  int
		Note     byte
		Velocity byte
		// Value is the pitch wheel position (-8192..8191) for PitchBend
		// events and the controller value (0..127) for Sustain events.
		Value int
	}

	MIDIEventKind int

	PanicMsg       struct{}
	AllNotesOffMsg struct{}

	// NoteOnMsg and NoteOffMsg play notes from outside the audio thread,
	// e.g. from a computer keyboard.
	NoteOnMsg struct {
		Note, Velocity int
	}
	NoteOffMsg struct {
		Note int
	}
)

const (
	NoteOnEvent MIDIEventKind = iota
	NoteOffEvent
	PitchBendEvent
	SustainEvent
	AllNotesOffEvent
)

const pitchWheelCenter = 8192

func NewPlayer(broker *Broker, synth polyvoice.Synth, cfg polyvoice.Config) *Player {
	cfg = cfg.Clamp()
	return &Player{
		alloc:     alloc.New(cfg),
		synth:     synth,
		broker:    broker,
		bendRange: cfg.PitchBendRange,
	}
}

// Monitor returns the allocator's query surface, which can be read from any
// goroutine while the player is running.
func (p *Player) Monitor() *alloc.Monitor { return p.alloc.Monitor() }

// Process renders audio to the given buffer, handling the MIDI events given
// by context at the frames they occur. Voices whose release has finished in
// the synth are returned to the allocator after every rendered chunk.
func (p *Player) Process(buffer polyvoice.AudioBuffer, context PlayerProcessContext) {
	p.processMessages()
	frame := 0
	midi, midiOk := context.NextEvent(frame)
	for len(buffer) > 0 {
		for midiOk && frame >= midi.Frame {
			p.handleMidiInput(midi)
			midi, midiOk = context.NextEvent(frame)
		}
		framesUntilMidi := len(buffer)
		if delta := midi.Frame - frame; midiOk && delta < framesUntilMidi {
			framesUntilMidi = delta
		}
		p.synth.Render(buffer[:framesUntilMidi])
		p.reclaim()
		buffer = buffer[framesUntilMidi:]
		frame += framesUntilMidi
	}
	for i := range p.voiceLevels {
		p.voiceLevels[i] = p.synth.Level(i)
	}
	p.send(nil)
	context.FinishBlock(frame)
}

func (p *Player) handleMidiInput(e MIDIEvent) {
	switch e.Kind {
	case NoteOnEvent:
		p.dispatch(p.alloc.NoteOn(int(e.Note), int(e.Velocity)))
	case NoteOffEvent:
		p.dispatch(p.alloc.NoteOff(int(e.Note)))
	case PitchBendEvent:
		p.alloc.SetPitchBend(float64(e.Value) / pitchWheelCenter * p.bendRange)
		p.retune()
	case SustainEvent:
		p.dispatch(p.alloc.SetSustain(e.Value >= 64))
	case AllNotesOffEvent:
		p.dispatch(p.alloc.AllNotesOff())
	}
}

func (p *Player) processMessages() {
loop:
	for {
		select {
		case msg := <-p.broker.ToPlayer:
			switch m := msg.(type) {
			case polyvoice.Config:
				m = m.Clamp()
				p.bendRange = m.PitchBendRange
				p.dispatch(p.alloc.Configure(m))
				p.retune()
			case PanicMsg:
				p.dispatch(p.alloc.Panic())
			case AllNotesOffMsg:
				p.dispatch(p.alloc.AllNotesOff())
			case NoteOnMsg:
				p.dispatch(p.alloc.NoteOn(m.Note, m.Velocity))
			case NoteOffMsg:
				p.dispatch(p.alloc.NoteOff(m.Note))
			default:
				p.SendAlert("UnknownMessage", "player received an unknown message", Warning)
			}
		default:
			break loop
		}
	}
}

// dispatch forwards the allocator's events to the synth. The events must be
// consumed before the next allocator call, which is why this is done right
// away.
func (p *Player) dispatch(events []polyvoice.VoiceEvent) {
	for _, e := range events {
		switch e.Type {
		case polyvoice.NoteOn:
			p.synth.Trigger(e.Voice, e.Frequency, e.Velocity)
		case polyvoice.NoteOff:
			p.synth.Release(e.Voice)
		case polyvoice.Steal:
			p.synth.Stop(e.Voice)
		}
	}
}

func (p *Player) retune() {
	for i := 0; i < polyvoice.MaxVoices; i++ {
		if v := p.alloc.Voice(i); v.State != polyvoice.Idle {
			p.synth.Retune(i, v.Frequency)
		}
	}
}

// reclaim acknowledges the voices whose envelopes have finished.
func (p *Player) reclaim() {
	for i := 0; i < polyvoice.MaxVoices; i++ {
		if p.alloc.Voice(i).State == polyvoice.Releasing && p.synth.Silent(i) {
			p.alloc.VoiceFinished(i)
		}
	}
}

func (p *Player) SendAlert(name, message string, priority AlertPriority) {
	p.send(Alert{Name: name, Message: message, Priority: priority})
}

// all sends from the player are non-blocking, so that the audio thread can
// never end up waiting for the model
func (p *Player) send(message any) {
	TrySend(p.broker.ToModel, MsgToModel{
		VoiceLevels:  p.voiceLevels,
		ActiveVoices: p.alloc.Monitor().ActiveVoiceCount(),
		Data:         message,
	})
}

// NullPlayerProcessContext is a PlayerProcessContext without any MIDI events.
type NullPlayerProcessContext struct{}

func (NullPlayerProcessContext) NextEvent(frame int) (MIDIEvent, bool) { return MIDIEvent{}, false }
func (NullPlayerProcessContext) FinishBlock(frame int)                 {}
