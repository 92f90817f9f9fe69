package polyvoice_test

import (
	"strings"
	"testing"

	"github.com/vsariola/polyvoice"
	"gopkg.in/yaml.v3"
)

func TestReadConfigYAML(t *testing.T) {
	input := `
voicecount: 12
allocationmode: lowest-velocity
stealmode: Hard
unisoncount: 3
unisondetune: 0.5
`
	cfg, err := polyvoice.ReadConfig(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	want := polyvoice.DefaultConfig()
	want.VoiceCount = 12
	want.AllocationMode = polyvoice.LowestVelocity
	want.StealMode = polyvoice.Hard
	want.UnisonCount = 3
	want.UnisonDetune = 0.5
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestReadConfigJSON(t *testing.T) {
	cfg, err := polyvoice.ReadConfig(strings.NewReader(`{"VoiceCount": 100, "AllocationMode": "roundrobin", "TuningReference": 415}`))
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.VoiceCount != polyvoice.MaxVoices {
		t.Errorf("voice count should be clamped to %d, got %d", polyvoice.MaxVoices, cfg.VoiceCount)
	}
	if cfg.AllocationMode != polyvoice.RoundRobin {
		t.Errorf("allocation mode = %v, want roundrobin", cfg.AllocationMode)
	}
	if cfg.TuningReference != 415 {
		t.Errorf("tuning = %v, want 415", cfg.TuningReference)
	}
}

func TestReadConfigErrors(t *testing.T) {
	for _, input := range []string{
		"allocationmode: newest",
		"stealmode: [1, 2]",
		"voicecount: lots",
	} {
		if _, err := polyvoice.ReadConfig(strings.NewReader(input)); err == nil {
			t.Errorf("ReadConfig(%q) should fail", input)
		}
	}
}

func TestModeNamesInYAML(t *testing.T) {
	cfg := polyvoice.DefaultConfig()
	cfg.AllocationMode = polyvoice.HighestNote
	b, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	if !strings.Contains(string(b), "allocationmode: highestnote") || !strings.Contains(string(b), "stealmode: soft") {
		t.Fatalf("modes should be written by name, got:\n%s", b)
	}
}

func TestReadSequence(t *testing.T) {
	input := `
config:
  voicecount: 2
notes:
  - {start: 1, length: 0.5, note: 64, velocity: 90}
  - {start: 0, length: 1, note: 60, velocity: 0}
  - {start: 0.5, length: 0, note: 62, velocity: 100}
  - {start: -1, length: 1, note: 62, velocity: 100}
`
	seq, err := polyvoice.ReadSequence(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSequence failed: %v", err)
	}
	if seq.Config.VoiceCount != 2 || seq.Config.AllocationMode != polyvoice.Oldest {
		t.Errorf("unexpected config %+v", seq.Config)
	}
	want := []polyvoice.Note{
		{Start: 0, Length: 1, Note: 60, Velocity: 1},
		{Start: 1, Length: 0.5, Note: 64, Velocity: 90},
	}
	if len(seq.Notes) != len(want) {
		t.Fatalf("got notes %+v, want %+v", seq.Notes, want)
	}
	for i := range want {
		if seq.Notes[i] != want[i] {
			t.Fatalf("got notes %+v, want %+v", seq.Notes, want)
		}
	}
	if l := seq.Length(); l != 1.5 {
		t.Errorf("Length() = %v, want 1.5", l)
	}
	if seq.Tail != 1 {
		t.Errorf("default tail = %v, want 1", seq.Tail)
	}
}
