//go:build cgo

package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/vsariola/polyvoice"
	"github.com/vsariola/polyvoice/player"
)

type (
	// RTMIDIContext receives MIDI from an RtMidi input device and hands it to
	// the player as a player.PlayerProcessContext. Messages arrive on the
	// driver's goroutine with millisecond timestamps and are queued in a
	// channel; the context maps the timestamps to frames of the audio
	// stream, slowly adjusting its clock so that the events are played with
	// a constant latency.
	RTMIDIContext struct {
		driver             *rtmididrv.Driver
		currentIn          drivers.In
		stop               func()
		inputDevices       []RTMIDIDevice
		devicesInitialized bool
		events             chan timestampedMsg
		eventsBuf          []timestampedMsg
		eventIndex         int
		startFrame         int
		startFrameSet      bool
		channel            int
	}

	RTMIDIDevice struct {
		context *RTMIDIContext
		in      drivers.In
	}

	timestampedMsg struct {
		frame int
		event player.MIDIEvent
	}
)

// Omni makes the context accept events from every MIDI channel.
const Omni = -1

// NewContext opens the driver. If the driver is not available, the context
// has no input devices and never produces events.
func NewContext() *RTMIDIContext {
	m := RTMIDIContext{events: make(chan timestampedMsg, 1024), channel: Omni}
	m.driver, _ = rtmididrv.New()
	return &m
}

func (m *RTMIDIContext) InputDevices(yield func(RTMIDIDevice) bool) {
	if !m.devicesInitialized {
		m.initInputDevices()
	}
	for _, device := range m.inputDevices {
		if !yield(device) {
			break
		}
	}
}

func (m *RTMIDIContext) initInputDevices() {
	if m.driver == nil {
		return
	}
	ins, err := m.driver.Ins()
	if err != nil {
		return
	}
	for _, in := range ins {
		m.inputDevices = append(m.inputDevices, RTMIDIDevice{context: m, in: in})
	}
	m.devicesInitialized = true
}

// SetChannel selects the MIDI channel (0-15) to listen to, or Omni.
func (m *RTMIDIContext) SetChannel(channel int) {
	if channel < 0 || channel > 15 {
		channel = Omni
	}
	m.channel = channel
}

// Open an input device while closing the currently open if necessary.
func (d RTMIDIDevice) Open() error {
	c := d.context
	if c.currentIn == d.in {
		return nil
	}
	if c.driver == nil {
		return errors.New("no driver available")
	}
	c.closeInput()
	if err := d.in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(d.in, c.HandleMessage)
	if err != nil {
		d.in.Close()
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.currentIn = d.in
	c.stop = stop
	return nil
}

func (d RTMIDIDevice) String() string {
	return d.in.String()
}

func (c *RTMIDIContext) closeInput() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	c.closeInput()
	c.driver.Close()
}

func (c *RTMIDIContext) HasDeviceOpen() bool {
	return c.currentIn != nil && c.currentIn.IsOpen()
}

// TryToOpenBy opens the first input device whose name starts with
// namePrefix, or the first device at all if takeFirst is set.
func (c *RTMIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if namePrefix == "" && !takeFirst {
		return nil
	}
	for input := range c.InputDevices {
		if takeFirst || strings.HasPrefix(input.String(), namePrefix) {
			return input.Open()
		}
	}
	if takeFirst {
		return errors.New("could not find any MIDI input")
	}
	return fmt.Errorf("could not find a MIDI input starting with %q", namePrefix)
}

// HandleMessage is called by the driver for every incoming message.
func (c *RTMIDIContext) HandleMessage(msg midi.Message, timestampms int32) {
	e, ok := Decode(msg)
	if !ok {
		return
	}
	// if the channel is full, just drop the message
	player.TrySend(c.events, timestampedMsg{frame: int(int64(timestampms) * polyvoice.SampleRate / 1000), event: e})
}

func (c *RTMIDIContext) NextEvent(frame int) (event player.MIDIEvent, ok bool) {
F:
	for {
		select {
		case msg := <-c.events:
			c.eventsBuf = append(c.eventsBuf, msg)
			if !c.startFrameSet {
				c.startFrame = msg.frame
				c.startFrameSet = true
			}
		default:
			break F
		}
	}
	if c.eventIndex > 0 { // an event was consumed, check how badly we need to adjust the timing
		// delta is never negative, because the player does not consume an
		// event before its frame. A positive delta means the event was
		// consumed late, so move the clock towards it.
		delta := frame + c.startFrame - c.eventsBuf[c.eventIndex-1].frame
		c.startFrame -= delta / 5
	}
	for c.eventIndex < len(c.eventsBuf) {
		m := c.eventsBuf[c.eventIndex]
		c.eventIndex++
		if c.channel != Omni && m.event.Channel != c.channel {
			continue
		}
		m.event.Frame = m.frame - c.startFrame
		return m.event, true
	}
	c.eventIndex = len(c.eventsBuf) + 1
	return player.MIDIEvent{}, false
}

func (c *RTMIDIContext) FinishBlock(frame int) {
	c.startFrame += frame
	if c.eventIndex > 0 {
		copy(c.eventsBuf, c.eventsBuf[c.eventIndex-1:])
		c.eventsBuf = c.eventsBuf[:len(c.eventsBuf)-c.eventIndex+1]
		if len(c.eventsBuf) > 0 {
			// the events were not consumed this round; move the clock
			// towards them. delta is always negative here.
			delta := c.startFrame - c.eventsBuf[0].frame
			c.startFrame -= delta / 5
		}
	}
	c.eventIndex = 0
}
