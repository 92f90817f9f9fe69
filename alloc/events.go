package alloc

import "github.com/vsariola/polyvoice"

// eventLog is a fixed capacity buffer of the events produced by one call.
type eventLog struct {
	buf [polyvoice.MaxEvents]polyvoice.VoiceEvent
	n   int
}

func (l *eventLog) reset() { l.n = 0 }

// add appends an event describing the current contents of slot s. Events
// beyond the capacity are dropped; MaxEvents is enough for every slot to be
// cut and restarted once.
func (l *eventLog) add(typ polyvoice.EventType, voice int, s *slot) {
	if l.n == len(l.buf) {
		return
	}
	l.buf[l.n] = polyvoice.VoiceEvent{
		Type:      typ,
		Voice:     voice,
		Note:      s.note,
		Velocity:  s.velocity,
		Frequency: s.frequency,
	}
	l.n++
}

// view returns the events of the current call. The capacity is limited so
// that appending to the view can never overwrite the buffer.
func (l *eventLog) view() []polyvoice.VoiceEvent {
	return l.buf[:l.n:l.n]
}
