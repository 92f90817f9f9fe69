package alloc_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vsariola/polyvoice"
)

func TestMonitorOutOfRange(t *testing.T) {
	m := newAllocator(4, polyvoice.Oldest, polyvoice.Hard).Monitor()
	for _, i := range []int{-1, polyvoice.MaxVoices, 1000} {
		if n := m.VoiceNote(i); n != -1 {
			t.Errorf("VoiceNote(%d) = %d, want -1", i, n)
		}
		if s := m.VoiceState(i); s != polyvoice.Idle {
			t.Errorf("VoiceState(%d) = %v, want idle", i, s)
		}
	}
	if m.VoiceCount() != 4 {
		t.Errorf("VoiceCount() = %d, want 4", m.VoiceCount())
	}
}

func TestMonitorFollowsAllocator(t *testing.T) {
	a := newAllocator(4, polyvoice.Oldest, polyvoice.Soft)
	m := a.Monitor()
	a.NoteOn(60, 100)
	a.NoteOn(64, 100)
	a.NoteOff(60)
	if m.VoiceNote(0) != 60 || m.VoiceState(0) != polyvoice.Releasing {
		t.Fatalf("voice 0: %d/%v, want 60/releasing", m.VoiceNote(0), m.VoiceState(0))
	}
	if m.VoiceNote(1) != 64 || m.VoiceState(1) != polyvoice.Active {
		t.Fatalf("voice 1: %d/%v, want 64/active", m.VoiceNote(1), m.VoiceState(1))
	}
	if m.ActiveVoiceCount() != 2 {
		t.Fatalf("active voices = %d, want 2", m.ActiveVoiceCount())
	}
	a.VoiceFinished(0)
	if m.VoiceNote(0) != -1 || m.VoiceState(0) != polyvoice.Idle || m.ActiveVoiceCount() != 1 {
		t.Fatalf("after finishing voice 0: %d/%v count %d", m.VoiceNote(0), m.VoiceState(0), m.ActiveVoiceCount())
	}
}

// TestMonitorConcurrentReads hammers the monitor from several goroutines while
// the allocator is driven from another one. Run with -race.
func TestMonitorConcurrentReads(t *testing.T) {
	a := newAllocator(16, polyvoice.RoundRobin, polyvoice.Hard)
	a.SetUnisonCount(3)
	m := a.Monitor()
	var stop atomic.Bool
	var wg sync.WaitGroup
	errs := make(chan string, 4)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				for i := 0; i < polyvoice.MaxVoices; i++ {
					if n := m.VoiceNote(i); n < -1 || n > polyvoice.MaxNote {
						errs <- "note out of range"
						return
					}
					if s := m.VoiceState(i); s < polyvoice.Idle || s > polyvoice.Releasing {
						errs <- "state out of range"
						return
					}
				}
				if c := m.ActiveVoiceCount(); c < 0 || c > polyvoice.MaxVoices {
					errs <- "active count out of range"
					return
				}
			}
		}()
	}
	for i := 0; i < 20000; i++ {
		note := 30 + (i*7)%60
		if i%3 == 0 {
			a.NoteOff(note)
		} else {
			a.NoteOn(note, 1+i%127)
		}
		a.VoiceFinished(i % 16)
	}
	stop.Store(true)
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
	checkInvariants(t, a)
}
