package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsariola/polyvoice"
	"github.com/vsariola/polyvoice/oto"
	"github.com/vsariola/polyvoice/player"
	"github.com/vsariola/polyvoice/synth"
	"github.com/vsariola/polyvoice/version"
)

var (
	stdout      = flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help        = flag.Bool("h", false, "Show help.")
	directory   = flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files are written to the working directory.")
	play        = flag.Bool("p", false, "Play the input sequences (default behaviour when no other output is defined).")
	rawOut      = flag.Bool("r", false, "Output the rendered sequence as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut      = flag.Bool("w", false, "Output the rendered sequence as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm         = flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	versionFlag = flag.Bool("v", false, "Print version.")
	configFile  = flag.String("config", "", "Read the allocator configuration from a .yml or .json `file`. Overrides the configuration of the sequences.")
	midiInput   = flag.String("midi-input", "", "Play live from the MIDI input whose name starts with `prefix`; an empty prefix takes the first input.")
	midiChannel = flag.Int("channel", -1, "Listen only to this MIDI `channel` (0-15); -1 listens to all channels.")
	monitor     = flag.Duration("monitor", time.Second, "How often to print the voice states when playing live; 0 disables.")
	voices      = flag.Int("voices", 0, "Number of voices (1-32). Overrides the configuration.")
	mode        = flag.String("mode", "", "Allocation mode: roundrobin, oldest, lowestvelocity or highestnote. Overrides the configuration.")
	steal       = flag.String("steal", "", "Steal mode: hard or soft. Overrides the configuration.")
	unison      = flag.Int("unison", 0, "Voices per note (1-8). Overrides the configuration.")
	detune      = flag.Float64("detune", -1, "Unison detune, 0-1. Overrides the configuration.")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	live := isFlagPassed("midi-input")
	if (flag.NArg() == 0 && !live) || *help {
		flag.Usage()
		os.Exit(0)
	}
	override, err := configOverride()
	if err != nil {
		log.Fatal(err)
	}
	if live {
		if err := playLive(override); err != nil {
			log.Fatal(err)
		}
		return
	}
	if !*rawOut && !*wavOut {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var audioContext polyvoice.AudioContext
	if *play {
		audioContext, err = oto.NewContext()
		if err != nil {
			log.Fatalf("could not acquire oto AudioContext: %v", err)
		}
		defer audioContext.Close()
	}
	retval := 0
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files = nil
			for _, ext := range []string{"*.yml", "*.yaml", "*.json"} {
				matches, err := filepath.Glob(filepath.Join(param, ext))
				if err != nil {
					log.Printf("could not glob the path %v for %v files: %v", param, ext, err)
					retval = 1
				}
				files = append(files, matches...)
			}
		}
		for _, file := range files {
			if err := process(file, override, audioContext); err != nil {
				log.Printf("could not process file %v: %v", file, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

// configOverride returns a function that applies the -config file and the
// individual flags on top of a configuration.
func configOverride() (func(polyvoice.Config) polyvoice.Config, error) {
	var fileConfig *polyvoice.Config
	if *configFile != "" {
		c, err := polyvoice.LoadConfig(*configFile)
		if err != nil {
			return nil, err
		}
		fileConfig = &c
	}
	var allocationMode polyvoice.AllocationMode
	if *mode != "" {
		if err := allocationMode.UnmarshalText([]byte(*mode)); err != nil {
			return nil, err
		}
	}
	var stealMode polyvoice.StealMode
	if *steal != "" {
		if err := stealMode.UnmarshalText([]byte(*steal)); err != nil {
			return nil, err
		}
	}
	return func(c polyvoice.Config) polyvoice.Config {
		if fileConfig != nil {
			c = *fileConfig
		}
		if *voices > 0 {
			c.VoiceCount = *voices
		}
		if *mode != "" {
			c.AllocationMode = allocationMode
		}
		if *steal != "" {
			c.StealMode = stealMode
		}
		if *unison > 0 {
			c.UnisonCount = *unison
		}
		if *detune >= 0 {
			c.UnisonDetune = *detune
		}
		return c.Clamp()
	}, nil
}

func process(filename string, override func(polyvoice.Config) polyvoice.Config, audioContext polyvoice.AudioContext) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open file %v: %w", filename, err)
	}
	seq, err := polyvoice.ReadSequence(f)
	f.Close()
	if err != nil {
		return err
	}
	seq.Config = override(seq.Config)
	buffer, err := player.Play(synth.New(polyvoice.SampleRate, synth.DefaultEnvelope), seq, polyvoice.SampleRate)
	if err != nil {
		return fmt.Errorf("player.Play failed: %w", err)
	}
	var playWaiter polyvoice.CloserWaiter
	if *play {
		rest := buffer
		playWaiter = audioContext.Play(func(b polyvoice.AudioBuffer) error {
			if len(rest) == 0 {
				return errEndOfBuffer
			}
			n := copy(b, rest)
			clear(b[n:])
			rest = rest[n:]
			return nil
		})
	}
	if *rawOut {
		raw, err := buffer.Raw(*pcm)
		if err != nil {
			return fmt.Errorf("could not generate .raw file: %w", err)
		}
		if err := output(filename, ".raw", raw); err != nil {
			return fmt.Errorf("error outputting .raw file: %w", err)
		}
	}
	if *wavOut {
		wav, err := buffer.Wav(*pcm)
		if err != nil {
			return fmt.Errorf("could not generate .wav file: %w", err)
		}
		if err := output(filename, ".wav", wav); err != nil {
			return fmt.Errorf("error outputting .wav file: %w", err)
		}
	}
	if playWaiter != nil {
		playWaiter.Wait()
		playWaiter.Close()
	}
	return nil
}

func output(filename, extension string, contents []byte) error {
	if *stdout {
		_, err := os.Stdout.Write(contents)
		return err
	}
	dir := *directory
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return fmt.Errorf("could not get working directory, specify the output directory explicitly: %w", err)
		}
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %w", dir, err)
	}
	_, name := filepath.Split(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %w", f, err)
	}
	return nil
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "polyvoice command line utility for rendering .yml/.json note sequences and playing live MIDI through the voice allocator.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
