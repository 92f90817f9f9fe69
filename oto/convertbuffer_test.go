package oto

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/vsariola/polyvoice"
)

func TestFloatBufferToLE(t *testing.T) {
	buffer := polyvoice.AudioBuffer{{0.5, -0.25}, {1, 0}}
	dst := make([]byte, 20)
	if n := FloatBufferToLE(buffer, dst); n != 16 {
		t.Fatalf("wrote %d bytes, want 16", n)
	}
	want := []float32{0.5, -0.25, 1, 0}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(dst[i*4:])); got != w {
			t.Errorf("sample %d: got %v, want %v", i, got, w)
		}
	}
}

func TestSourceStopsOnError(t *testing.T) {
	calls := 0
	s := &source{fill: func(b polyvoice.AudioBuffer) error {
		calls++
		if calls > 1 {
			return errors.New("done")
		}
		for i := range b {
			b[i] = [2]float32{1, 1}
		}
		return nil
	}}
	p := make([]byte, 64)
	if n, err := s.Read(p); n != 64 || err != nil {
		t.Fatalf("first read returned %d, %v", n, err)
	}
	if _, err := s.Read(p); err != io.EOF {
		t.Fatalf("expected io.EOF after the callback failed, got %v", err)
	}
	if _, err := s.Read(p); err != io.EOF || calls != 2 {
		t.Fatalf("callback called again after it failed")
	}
}
