package mixer

import (
	"testing"

	"github.com/ao-soundscape/engine/channel"
	"github.com/ao-soundscape/engine/sample"
)

func benchmarkSample(b *testing.B) *sample.Sample {
	b.Helper()
	data := make([]int16, 4096)
	for i := range data {
		data[i] = int16((i * 37) % 30000)
	}
	s, err := sample.New(data, 2, 1.0, 256, 2048)
	if err != nil {
		b.Fatalf("sample.New: %v", err)
	}
	return s
}

// BenchmarkGenerate_SingleNote benchmarks one buffer's mix pass with a
// single active looping stereo note and no channel-tree envelopes.
func BenchmarkGenerate_SingleNote(b *testing.B) {
	m := New(1024, false)
	s := benchmarkSample(b)
	m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 100, nil, nil)
	sum := make([]int64, 2*m.FramesPerBuffer)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Generate(sum, nil); err != nil {
			b.Fatalf("Generate: %v", err)
		}
	}
}

// BenchmarkGenerate_ManyNotesWithEnvelopes benchmarks the channel-tree walk
// cost: several concurrently active notes, each with its own volume fade
// and pan sweep in progress.
func BenchmarkGenerate_ManyNotesWithEnvelopes(b *testing.B) {
	m := New(1024, false)
	s := benchmarkSample(b)
	for i := 0; i < 16; i++ {
		ch := channel.NewNode("bench")
		ch.SetVolume(channel.VolumeWindow{T0: 0, T1: 1 << 20, V0: 0.2, V1: 1.0})
		ch.SetStereo(channel.StereoWindow{
			T0: 0, T1: 1 << 20,
			Pan0: channel.Pan{ScaleX: 1, ShiftX: -1, ScaleY: 1},
			Pan1: channel.Pan{ScaleX: 1, ShiftX: 1, ScaleY: 1},
		})
		m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 1000, ch, nil)
	}
	sum := make([]int64, 2*m.FramesPerBuffer)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Generate(sum, nil); err != nil {
			b.Fatalf("Generate: %v", err)
		}
	}
}

// BenchmarkGenerate_FixedPoint benchmarks the fixed-point inner loop
// against the same workload as BenchmarkGenerate_SingleNote.
func BenchmarkGenerate_FixedPoint(b *testing.B) {
	m := New(1024, true)
	s := benchmarkSample(b)
	m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 100, nil, nil)
	sum := make([]int64, 2*m.FramesPerBuffer)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Generate(sum, nil); err != nil {
			b.Fatalf("Generate: %v", err)
		}
	}
}
