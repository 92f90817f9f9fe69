package player

import (
	"time"

	"github.com/vsariola/polyvoice"
)

type (
	// Broker connects the Player running on the audio thread to the rest of
	// the program. Both directions are buffered channels and all sends from
	// the audio thread go through TrySend, so the audio thread never blocks:
	// if a channel is full, the message is dropped.
	//
	// ToPlayer carries configuration and control messages (polyvoice.Config,
	// PanicMsg, AllNotesOffMsg, NoteOnMsg, NoteOffMsg), which the Player
	// applies at the start of the next buffer. ToModel carries alerts and
	// voice levels back.
	Broker struct {
		ToPlayer chan any
		ToModel  chan MsgToModel
	}

	// MsgToModel is sent by the Player after each processed buffer. The most
	// often sent data (voice levels and the number of sounding voices) is
	// not boxed to avoid allocations; infrequent messages such as Alerts are
	// passed in Data.
	MsgToModel struct {
		VoiceLevels  [polyvoice.MaxVoices]float32
		ActiveVoices int
		Data         any
	}

	// Alert is a message for the user, e.g. about a MIDI event that could
	// not be handled.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

func NewBroker() *Broker {
	return &Broker{
		ToPlayer: make(chan any, 1024),
		ToModel:  make(chan MsgToModel, 1024),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}

func (a AlertPriority) String() string {
	switch a {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}
