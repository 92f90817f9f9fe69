package synth_test

import (
	"math"
	"testing"

	"github.com/vsariola/polyvoice"
	"github.com/vsariola/polyvoice/synth"
)

func peak(buffer polyvoice.AudioBuffer) float32 {
	var ret float32
	for _, f := range buffer {
		ret = max(ret, float32(math.Abs(float64(f[0]))), float32(math.Abs(float64(f[1]))))
	}
	return ret
}

func TestTriggerAndRelease(t *testing.T) {
	s := synth.New(polyvoice.SampleRate, synth.Envelope{Attack: 0.001, Decay: 0.01, Sustain: 0.5, Release: 0.01})
	buffer := make(polyvoice.AudioBuffer, 1024)
	s.Render(buffer)
	if p := peak(buffer); p != 0 {
		t.Fatalf("silent synth rendered peak %v", p)
	}
	s.Trigger(3, 440, 127)
	if s.Silent(3) {
		t.Fatalf("triggered voice should not be silent")
	}
	s.Render(buffer)
	if p := peak(buffer); p <= 0 {
		t.Fatalf("triggered voice rendered no sound")
	}
	if l := s.Level(3); math.Abs(float64(l)-0.5) > 1e-6 {
		t.Errorf("level after attack and decay = %v, want sustain 0.5", l)
	}
	s.Release(3)
	s.Render(buffer) // 1024 samples > 10 ms release
	if !s.Silent(3) {
		t.Fatalf("released voice should be silent after the release time")
	}
	s.Render(buffer)
	if p := peak(buffer); p != 0 {
		t.Fatalf("finished voice still renders peak %v", p)
	}
}

func TestStop(t *testing.T) {
	s := synth.New(polyvoice.SampleRate, synth.DefaultEnvelope)
	buffer := make(polyvoice.AudioBuffer, 256)
	s.Trigger(0, 220, 100)
	s.Render(buffer)
	s.Stop(0)
	if !s.Silent(0) || s.Level(0) != 0 {
		t.Fatalf("stopped voice should be silent immediately")
	}
}

func TestRenderLargerThanBlock(t *testing.T) {
	s := synth.New(polyvoice.SampleRate, synth.DefaultEnvelope)
	s.Trigger(0, 220, 100)
	buffer := make(polyvoice.AudioBuffer, 10000)
	s.Render(buffer)
	if peak(buffer[9000:]) == 0 {
		t.Fatalf("the end of a large buffer should not be silent")
	}
}
