package player

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vsariola/polyvoice"
)

// SequenceContext is a PlayerProcessContext that plays back the notes of a
// polyvoice.Sequence.
type SequenceContext struct {
	events  []MIDIEvent // Frame is absolute
	index   int
	offset  int // absolute frame of the start of the current block
	pending bool
}

// maxRenderSeconds limits offline rendering to a sane length.
const maxRenderSeconds = 60 * 60

const renderBlockSize = 1024

func NewSequenceContext(seq polyvoice.Sequence, sampleRate int) *SequenceContext {
	toFrame := func(t float64) int { return int(math.Round(t * float64(sampleRate))) }
	events := make([]MIDIEvent, 0, 2*len(seq.Notes))
	for _, n := range seq.Notes {
		events = append(events,
			MIDIEvent{Frame: toFrame(n.Start), Kind: NoteOnEvent, Note: byte(polyvoice.ClampNote(n.Note)), Velocity: byte(min(max(n.Velocity, 0), polyvoice.MaxVel))},
			MIDIEvent{Frame: toFrame(n.Start + n.Length), Kind: NoteOffEvent, Note: byte(polyvoice.ClampNote(n.Note))})
	}
	// note offs before note ons at the same frame, so that repeated notes
	// are not retriggered and then immediately released
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Frame != events[j].Frame {
			return events[i].Frame < events[j].Frame
		}
		return events[i].Kind == NoteOffEvent && events[j].Kind != NoteOffEvent
	})
	return &SequenceContext{events: events}
}

func (c *SequenceContext) NextEvent(frame int) (MIDIEvent, bool) {
	if c.index >= len(c.events) {
		c.pending = false
		return MIDIEvent{}, false
	}
	e := c.events[c.index]
	e.Frame -= c.offset
	c.index++
	c.pending = true
	return e, true
}

func (c *SequenceContext) FinishBlock(frame int) {
	if c.pending {
		c.index-- // the last returned event was not handled yet
		c.pending = false
	}
	c.offset += frame
}

// Done reports whether every event of the sequence has been handled.
func (c *SequenceContext) Done() bool {
	return c.index >= len(c.events)
}

// Play renders the sequence offline with the given synth, until the last note
// has been released and the tail has been rendered.
func Play(synth polyvoice.Synth, seq polyvoice.Sequence, sampleRate int) (polyvoice.AudioBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %v", sampleRate)
	}
	if len(seq.Notes) == 0 {
		return nil, errors.New("sequence has no notes")
	}
	seconds := seq.Length() + seq.Tail
	if seconds > maxRenderSeconds {
		return nil, fmt.Errorf("sequence is too long (%.0f s, at most %v s allowed)", seconds, maxRenderSeconds)
	}
	buffer := make(polyvoice.AudioBuffer, int(math.Ceil(seconds*float64(sampleRate))))
	p := NewPlayer(NewBroker(), synth, seq.Config)
	context := NewSequenceContext(seq, sampleRate)
	buffer.Fill(renderBlockSize, func(b polyvoice.AudioBuffer) error {
		p.Process(b, context)
		return nil
	})
	return buffer, nil
}
