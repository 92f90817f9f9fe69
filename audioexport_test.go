package polyvoice_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/vsariola/polyvoice"
)

func TestWav(t *testing.T) {
	buffer := polyvoice.AudioBuffer{{0, 0}, {1, -1}, {2, -2}}
	for _, pcm16 := range []bool{false, true} {
		wav, err := buffer.Wav(pcm16)
		if err != nil {
			t.Fatalf("Wav(%v) failed: %v", pcm16, err)
		}
		if !bytes.HasPrefix(wav, []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
			t.Fatalf("Wav(%v) did not produce a RIFF/WAVE header", pcm16)
		}
		bytesPerSample := 4
		if pcm16 {
			bytesPerSample = 2
		}
		dataLen := len(buffer) * 2 * bytesPerSample
		if got := binary.LittleEndian.Uint32(wav[len(wav)-dataLen-4:]); int(got) != dataLen {
			t.Errorf("Wav(%v) data chunk size = %d, want %d", pcm16, got, dataLen)
		}
		if riff := binary.LittleEndian.Uint32(wav[4:8]); int(riff) != len(wav)-8 {
			t.Errorf("Wav(%v) RIFF chunk size = %d, want %d", pcm16, riff, len(wav)-8)
		}
	}
}

func TestRawClipsPCM(t *testing.T) {
	raw, err := polyvoice.AudioBuffer{{2, -2}}.Raw(true)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	l := int16(binary.LittleEndian.Uint16(raw[0:2]))
	r := int16(binary.LittleEndian.Uint16(raw[2:4]))
	if l != 32767 || r != -32768 {
		t.Errorf("clipped samples = %d, %d; want 32767, -32768", l, r)
	}
}
