// Package oto plays audio through github.com/ebitengine/oto/v3.
package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/polyvoice"
)

type (
	OtoContext struct {
		context *oto.Context
	}

	OtoPlayer struct {
		player *oto.Player
	}

	// source adapts a fill callback to the io.Reader that oto pulls from.
	source struct {
		fill   func(polyvoice.AudioBuffer) error
		buffer polyvoice.AudioBuffer
		done   bool
	}
)

const otoBufferSize = 50 * time.Millisecond

// NewContext creates the oto context and waits until the audio device is
// ready. Only one context can exist per process.
func NewContext() (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   polyvoice.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts pulling audio from fill on oto's audio goroutine.
func (c *OtoContext) Play(fill func(buffer polyvoice.AudioBuffer) error) polyvoice.CloserWaiter {
	p := c.context.NewPlayer(&source{fill: fill})
	p.Play()
	return &OtoPlayer{player: p}
}

// Close suspends the audio device; oto contexts cannot be destroyed.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (p *OtoPlayer) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

func (p *OtoPlayer) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (s *source) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerFrame
	if cap(s.buffer) < frames {
		s.buffer = make(polyvoice.AudioBuffer, frames)
	}
	buffer := s.buffer[:frames]
	if err := s.fill(buffer); err != nil {
		s.done = true
		return 0, io.EOF
	}
	return FloatBufferToLE(buffer, p), nil
}
