package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	engine := "edge-tts-cli"

	// Test Initial State
	if stats := tr.Snapshot(); len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}

	tr.TrackSuccess(engine)
	tr.TrackFailure(engine)
	tr.TrackSkip(engine)
	tr.TrackSkip(engine)

	stats := tr.Snapshot()
	s, ok := stats[engine]
	if !ok {
		t.Fatalf("Expected stats for engine %s", engine)
	}
	if s.Generated != 1 {
		t.Errorf("Expected 1 Generated, got %d", s.Generated)
	}
	if s.Failed != 1 {
		t.Errorf("Expected 1 Failed, got %d", s.Failed)
	}
	if s.Skipped != 2 {
		t.Errorf("Expected 2 Skipped, got %d", s.Skipped)
	}
	if s.Total() != 4 {
		t.Errorf("Expected Total 4, got %d", s.Total())
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackSuccess("azure-speech")
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["azure-speech"].Generated; got != 50 {
		t.Errorf("Expected 50 Generated, got %d", got)
	}
}

func TestTracker_Engines(t *testing.T) {
	tr := New()
	tr.TrackSkip("elevenlabs")
	tr.TrackSkip("azure-speech")

	got := tr.Engines()
	if len(got) != 2 || got[0] != "azure-speech" || got[1] != "elevenlabs" {
		t.Errorf("Engines() = %v", got)
	}
}
