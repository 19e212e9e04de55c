package headless

import (
	"testing"

	"github.com/ao-soundscape/engine/mixer"
	"github.com/ao-soundscape/engine/sinks"
)

func TestInitAppliesRequestedRateAndBufferSize(t *testing.T) {
	s := New()
	if err := s.Init("", 44100, sinks.Options{"buffersize": "512"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.SampleRate() != 44100 {
		t.Fatalf("expected SampleRate 44100, got %d", s.SampleRate())
	}
	if s.FramesPerBuffer() != 512 {
		t.Fatalf("expected FramesPerBuffer 512, got %d", s.FramesPerBuffer())
	}
}

func TestRunStopsWhenTickSignalsStop(t *testing.T) {
	s := New()
	if err := s.Init("", 44100, sinks.Options{"buffersize": "16"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	m := mixer.New(s.FramesPerBuffer(), false)

	calls := 0
	tick := func(currentTime int64) (bool, error) {
		calls++
		return calls >= 3, nil
	}
	if err := s.Run(m, tick); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 tick calls before stop, got %d", calls)
	}
}

func TestRunCapturesMixedBuffers(t *testing.T) {
	s := New()
	if err := s.Init("", 44100, sinks.Options{"buffersize": "8"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	m := mixer.New(s.FramesPerBuffer(), false)

	var captures int
	s.Captured = func(sum []int64) {
		captures++
		if len(sum) != 2*s.FramesPerBuffer() {
			t.Fatalf("expected captured buffer len %d, got %d", 2*s.FramesPerBuffer(), len(sum))
		}
	}
	calls := 0
	if err := s.Run(m, func(int64) (bool, error) { calls++; return calls >= 2, nil }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if captures != 2 {
		t.Fatalf("expected 2 captured buffers, got %d", captures)
	}
}

func TestCloseStopsTheRunLoop(t *testing.T) {
	s := New()
	if err := s.Init("", 44100, sinks.Options{"buffersize": "8"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	m := mixer.New(s.FramesPerBuffer(), false)
	s.Close()
	if err := s.Run(m, nil); err != nil {
		t.Fatalf("Run after Close: %v", err)
	}
}
