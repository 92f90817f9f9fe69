package polyvoice

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type (
	// Config is the complete, persistable configuration of the voice
	// allocator. Zero or missing fields in a file keep the values from
	// DefaultConfig.
	Config struct {
		VoiceCount      int            // number of voices eligible for allocation, 1..MaxVoices
		AllocationMode  AllocationMode // comparator for choosing the voice to steal
		StealMode       StealMode      // hard cut or soft release of a stolen voice
		UnisonCount     int            // voices per note, 1..MaxUnison
		UnisonDetune    float64        // 0..1, fraction of the ±50 cent maximum spread
		TuningReference float64        // Hz of A4
		PitchBendRange  float64        // semitones at full MIDI pitch wheel deflection
	}

	// Sequence is a list of notes with a configuration, used to render the
	// allocator's behaviour offline and in tests.
	Sequence struct {
		Config Config
		Notes  []Note `yaml:",flow"`
		// Tail is how long to keep rendering after the last note has been
		// released, in seconds.
		Tail float64 `yaml:",omitempty"`
	}

	// Note is one note of a Sequence. Start and Length are in seconds.
	Note struct {
		Start    float64
		Length   float64
		Note     int
		Velocity int
	}
)

const defaultTail = 1.0

func DefaultConfig() Config {
	return Config{
		VoiceCount:      8,
		AllocationMode:  Oldest,
		StealMode:       Soft,
		UnisonCount:     1,
		UnisonDetune:    0.25,
		TuningReference: DefaultTuning,
		PitchBendRange:  2,
	}
}

// Clamp returns a copy of the configuration with every field forced into its
// valid range.
func (c Config) Clamp() Config {
	c.VoiceCount = min(max(c.VoiceCount, 1), MaxVoices)
	if c.AllocationMode < RoundRobin || c.AllocationMode > HighestNote {
		c.AllocationMode = Oldest
	}
	if c.StealMode < Hard || c.StealMode > Soft {
		c.StealMode = Soft
	}
	c.UnisonCount = ClampUnison(c.UnisonCount)
	c.UnisonDetune = ClampDetune(c.UnisonDetune)
	c.TuningReference = ClampTuning(c.TuningReference)
	if math.IsNaN(c.PitchBendRange) {
		c.PitchBendRange = 2
	}
	c.PitchBendRange = min(max(c.PitchBendRange, 0), MaxPitchBend)
	return c
}

// ReadConfig parses a configuration from JSON or YAML. Fields not present in
// the input keep their default values; the result is clamped.
func ReadConfig(r io.Reader) (Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := unmarshalJSONOrYAML(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg.Clamp(), nil
}

// LoadConfig reads a configuration file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not open config %v: %w", path, err)
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadSequence parses a sequence from JSON or YAML. The notes are sorted by
// start time and invalid notes (negative start, non-positive length) are
// dropped.
func ReadSequence(r io.Reader) (Sequence, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Sequence{}, fmt.Errorf("could not read sequence: %w", err)
	}
	seq := Sequence{Config: DefaultConfig(), Tail: defaultTail}
	if err := unmarshalJSONOrYAML(b, &seq); err != nil {
		return Sequence{}, fmt.Errorf("sequence: %w", err)
	}
	seq.Config = seq.Config.Clamp()
	seq.Normalize()
	return seq, nil
}

// Normalize drops invalid notes, clamps note numbers and velocities and sorts
// the notes by start time.
func (s *Sequence) Normalize() {
	notes := s.Notes[:0]
	for _, n := range s.Notes {
		if n.Start < 0 || n.Length <= 0 || math.IsNaN(n.Start) || math.IsNaN(n.Length) {
			continue
		}
		n.Note = ClampNote(n.Note)
		n.Velocity = min(max(n.Velocity, 1), MaxVel)
		notes = append(notes, n)
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Start < notes[j].Start })
	s.Notes = notes
	if s.Tail < 0 || math.IsNaN(s.Tail) {
		s.Tail = 0
	}
}

// Length returns the time when the last note is released, in seconds.
func (s *Sequence) Length() float64 {
	var ret float64
	for _, n := range s.Notes {
		ret = max(ret, n.Start+n.Length)
	}
	return ret
}

func unmarshalJSONOrYAML(b []byte, v any) error {
	errJSON := json.Unmarshal(b, v)
	if errJSON == nil {
		return nil
	}
	if errYaml := yaml.Unmarshal(b, v); errYaml != nil {
		return fmt.Errorf("could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
	}
	return nil
}
