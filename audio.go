package polyvoice

import "io"

const SampleRate = 44100

type (
	// AudioBuffer is a buffer of stereo audio frames; index 0 is the left
	// and index 1 the right channel.
	AudioBuffer [][2]float32

	// Synth is the sound-generation side of the allocator: it owns one voice
	// per slot and is driven by VoiceEvents. Voice indices are always in
	// [0, MaxVoices).
	Synth interface {
		// Trigger starts a note on the voice. If the voice is still sounding,
		// the envelope restarts from its current level.
		Trigger(voice int, frequency float64, velocity int)
		// Release moves the voice into the release phase of its envelope.
		Release(voice int)
		// Stop silences the voice immediately.
		Stop(voice int)
		// Retune changes the frequency of a sounding voice, e.g. after a
		// pitch bend.
		Retune(voice int, frequency float64)
		// Silent reports whether the voice has finished its envelope.
		Silent(voice int) bool
		// Level is the current envelope level of the voice, 0..1.
		Level(voice int) float32
		// Render adds the output of all voices into buffer, overwriting it.
		Render(buffer AudioBuffer)
	}

	// AudioContext plays audio produced by a callback; the callback is called
	// from the audio thread to fill each buffer. Returning an error from the
	// callback stops the playback.
	AudioContext interface {
		Play(fill func(buffer AudioBuffer) error) CloserWaiter
		Close() error
	}

	// CloserWaiter is a handle to a playback started with AudioContext.Play.
	// Wait blocks until the callback has returned an error and the queued
	// audio has been played.
	CloserWaiter interface {
		io.Closer
		Wait()
	}
)

// Fill fills the buffer with the callback in chunks of at most chunk frames.
func (b AudioBuffer) Fill(chunk int, fill func(AudioBuffer) error) error {
	for len(b) > 0 {
		n := min(chunk, len(b))
		if err := fill(b[:n]); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
