package mixer

import (
	"testing"

	"github.com/ao-soundscape/engine/channel"
	"github.com/ao-soundscape/engine/sample"
)

func monoSample(t *testing.T, data []int16) *sample.Sample {
	t.Helper()
	s, err := sample.New(data, 1, 1.0, -1, -1)
	if err != nil {
		t.Fatalf("sample.New: %v", err)
	}
	return s
}

func TestGenerateSilenceWhenQueueEmpty(t *testing.T) {
	m := New(8, false)
	sum := make([]int64, 16)
	ok, err := m.Generate(sum, nil)
	if err != nil || !ok {
		t.Fatalf("Generate: ok=%v err=%v", ok, err)
	}
	for i, v := range sum {
		if v != 0 {
			t.Fatalf("expected silence, sum[%d]=%d", i, v)
		}
	}
}

func TestGenerateMonoConstantAtCentre(t *testing.T) {
	m := New(4, false)
	s := monoSample(t, []int16{10000, 10000, 10000, 10000})
	m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 1, nil, nil)

	sum := make([]int64, 8)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for f := 0; f < 4; f++ {
		l, r := sum[2*f], sum[2*f+1]
		if l != r {
			t.Fatalf("frame %d: expected equal L/R at centre pan, got L=%d R=%d", f, l, r)
		}
		if l == 0 {
			t.Fatalf("frame %d: expected non-silent output", f)
		}
	}
}

func TestGeneratePanHardLeftSilencesRight(t *testing.T) {
	m := New(4, false)
	s := monoSample(t, []int16{10000, 10000, 10000, 10000})
	hardLeft := channel.Pan{ScaleX: 1, ShiftX: -1, ScaleY: 1, ShiftY: 0}
	m.CreateNote(s, 1.0, 1.0, hardLeft, 0, 1, nil, nil)

	sum := make([]int64, 8)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for f := 0; f < 4; f++ {
		if sum[2*f+1] != 0 {
			t.Fatalf("frame %d: expected silent right channel at hard left pan, got %d", f, sum[2*f+1])
		}
		if sum[2*f] == 0 {
			t.Fatalf("frame %d: expected non-silent left channel", f)
		}
	}
}

func TestGenerateLoopingReachesRequestedReps(t *testing.T) {
	s, err := sample.New([]int16{1000, 2000, 3000, 4000}, 1, 1.0, 0, 4)
	if err != nil {
		t.Fatalf("sample.New: %v", err)
	}
	m := New(4, false)
	n := m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 3, nil, nil)
	if n.RepsLeft != 2 {
		t.Fatalf("expected RepsLeft=2 for 3 reps, got %d", n.RepsLeft)
	}

	sum := make([]int64, 8)
	for i := 0; i < 10 && m.QueueLen() > 0; i++ {
		if _, err := m.Generate(sum, nil); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if m.QueueLen() != 0 {
		t.Fatalf("expected note reaped after exhausting reps, queue len=%d", m.QueueLen())
	}
}

func TestGenerateVolumeFadeChannelRamp(t *testing.T) {
	m := New(8, false)
	s := monoSample(t, []int16{10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000})
	ch := channel.NewNode("fade")
	ch.SetVolume(channel.VolumeWindow{T0: 0, T1: 8, V0: 0.0, V1: 1.0})
	m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 1, ch, nil)

	sum := make([]int64, 16)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sum[0] != 0 {
		t.Fatalf("expected near-silent first frame of fade-in, got %d", sum[0])
	}
	if sum[2*7] <= sum[2*1] {
		t.Fatalf("expected increasing amplitude across the fade: frame1=%d frame7=%d", sum[2*1], sum[2*7])
	}
}

func TestGeneratePanSweepAcrossBuffer(t *testing.T) {
	m := New(8, false)
	s := monoSample(t, []int16{10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000})
	ch := channel.NewNode("sweep")
	left := channel.Pan{ScaleX: 1, ShiftX: -1, ScaleY: 1, ShiftY: 0}
	right := channel.Pan{ScaleX: 1, ShiftX: 1, ScaleY: 1, ShiftY: 0}
	ch.SetStereo(channel.StereoWindow{T0: 0, T1: 8, Pan0: left, Pan1: right})
	m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 1, ch, nil)

	sum := make([]int64, 16)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	firstL, firstR := sum[0], sum[1]
	lastL, lastR := sum[2*7], sum[2*7+1]
	if firstR != 0 {
		t.Fatalf("expected sweep to start hard left (silent right), got R=%d", firstR)
	}
	if lastL >= firstL {
		t.Fatalf("expected left gain to decrease across the sweep: first=%d last=%d", firstL, lastL)
	}
	if lastR <= firstR {
		t.Fatalf("expected right gain to increase across the sweep: first=%d last=%d", firstR, lastR)
	}
}

func TestGenerateLeavesOverdriveUnclampedForSink(t *testing.T) {
	// The mixer's accumulator itself is headroom-wide int64; clamping to
	// PCM16 range is the sink's job (sinks.Clamp16). Here we just check
	// that a loud overdriven note is mixed without panicking and that its
	// accumulated value exceeds int16 range, i.e. the mixer leaves the
	// clamping to the sink downstream.
	m := New(2, false)
	s := monoSample(t, []int16{32767, 32767})
	m.CreateNote(s, 1.0, 4.0, channel.IdentityPan, 0, 1, nil, nil)

	sum := make([]int64, 4)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sum[0] <= 32767 {
		t.Fatalf("expected overdriven accumulator to exceed int16 range before clamping, got %d", sum[0])
	}
}

func TestGenerateStopsOnTickSignal(t *testing.T) {
	m := New(4, false)
	sum := make([]int64, 8)
	ok, err := m.Generate(sum, func(int64) (bool, error) { return true, nil })
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ok {
		t.Fatalf("expected Generate to report stop=false (ok=false) when tick signals stop")
	}
}

func TestGeneratePropagatesTickError(t *testing.T) {
	m := New(4, false)
	sum := make([]int64, 8)
	wantErr := errTick
	_, err := m.Generate(sum, func(int64) (bool, error) { return false, wantErr })
	if err != wantErr {
		t.Fatalf("expected tick error to propagate, got %v", err)
	}
}

func TestGenerateAdvancesCurrentTimeByFramesPerBuffer(t *testing.T) {
	m := New(16, false)
	sum := make([]int64, 32)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if m.CurrentTime != 16 {
		t.Fatalf("expected CurrentTime=16 after one buffer, got %d", m.CurrentTime)
	}
}

func TestGenerateCompletionCallbackFiresOnce(t *testing.T) {
	m := New(4, false)
	s := monoSample(t, []int16{1, 2, 3, 4})
	count := 0
	m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 1, nil, func() { count++ })

	sum := make([]int64, 8)
	for i := 0; i < 5; i++ {
		if _, err := m.Generate(sum, nil); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if count != 1 {
		t.Fatalf("expected completion callback exactly once, fired %d times", count)
	}
}

var errTick = fmtErrorTick{}

type fmtErrorTick struct{}

func (fmtErrorTick) Error() string { return "tick error" }

func TestGeneratePanHardRightSilencesLeft(t *testing.T) {
	m := New(4, false)
	s := monoSample(t, []int16{10000, 10000, 10000, 10000})
	hardRight := channel.Pan{ScaleX: 1, ShiftX: 1, ScaleY: 1, ShiftY: 0}
	m.CreateNote(s, 1.0, 1.0, hardRight, 0, 1, nil, nil)

	sum := make([]int64, 8)
	if _, err := m.Generate(sum, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for f := 0; f < 4; f++ {
		if sum[2*f] != 0 {
			t.Fatalf("frame %d: expected silent left channel at hard right pan, got %d", f, sum[2*f])
		}
		if sum[2*f+1] == 0 {
			t.Fatalf("frame %d: expected non-silent right channel", f)
		}
	}
}

func TestGenerateConstantChannelVolumeScalesBaseVolume(t *testing.T) {
	data := []int16{12000, -8000, 4000, -2000}
	v := 0.5

	plain := New(4, false)
	sPlain := monoSample(t, data)
	plain.CreateNote(sPlain, 1.0, v, channel.IdentityPan, 0, 1, nil, nil)
	sumPlain := make([]int64, 8)
	if _, err := plain.Generate(sumPlain, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	withChannel := New(4, false)
	sCh := monoSample(t, data)
	ch := channel.NewNode("constant")
	// A window with T1 <= current_time is held constant at V1, per
	// RampRange/APPLY_RANGE semantics (spec's "constant 4-tuple" case).
	ch.SetVolume(channel.VolumeWindow{T0: -10, T1: 0, V0: v, V1: v})
	withChannel.CreateNote(sCh, 1.0, 1.0, channel.IdentityPan, 0, 1, ch, nil)
	sumCh := make([]int64, 8)
	if _, err := withChannel.Generate(sumCh, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := range sumPlain {
		diff := sumPlain[i] - sumCh[i]
		if diff < -1 || diff > 1 {
			t.Fatalf("element %d: base-volume note %d vs channel-volume note %d differ by more than 1 LSB", i, sumPlain[i], sumCh[i])
		}
	}
}

func TestGenerateLoopingPlaysExactFrameCount(t *testing.T) {
	// 8 source frames, loop_start=2 loop_end=6 (loop_len=4), reps=3:
	// total source frames played = num_frames + (reps-1)*loop_len = 8+2*4 = 16.
	data := make([]int16, 8)
	for i := range data {
		data[i] = int16(1000 * (i + 1))
	}
	s, err := sample.New(data, 1, 1.0, 2, 6)
	if err != nil {
		t.Fatalf("sample.New: %v", err)
	}
	m := New(4, false)
	n := m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 0, 3, nil, nil)
	if n.RepsLeft != 2 {
		t.Fatalf("expected RepsLeft=2, got %d", n.RepsLeft)
	}

	sum := make([]int64, 8)
	buffers := 0
	for m.QueueLen() > 0 && buffers < 20 {
		if _, err := m.Generate(sum, nil); err != nil {
			t.Fatalf("Generate: %v", err)
		}
		buffers++
	}
	// 16 source frames at 4 frames/buffer, advancing one source frame per
	// output frame at pitch=1.0/framerate=1.0, reap on the buffer the
	// 16th frame completes: 16/4 = 4 buffers.
	if buffers != 4 {
		t.Fatalf("expected note to reap after exactly 4 buffers (16 frames), took %d", buffers)
	}
}

func TestMixerAdjustTimebasePreservesNoteOffsets(t *testing.T) {
	m := New(4, false)
	s := monoSample(t, []int16{1, 2, 3, 4})
	m.CurrentTime = 100
	n := m.CreateNote(s, 1.0, 1.0, channel.IdentityPan, 150, 1, nil, nil)

	before := n.StartTime - m.CurrentTime
	m.AdjustTimebase(30)
	after := n.StartTime - m.CurrentTime

	if before != after {
		t.Fatalf("expected (start_time - current_time) invariant under AdjustTimebase: before=%d after=%d", before, after)
	}
}

func TestGenerateFixedPointApproximatesFloat(t *testing.T) {
	data := []int16{8000, -6000, 4000, -2000}

	run := func(fixed bool) []int64 {
		m := New(4, fixed)
		s := monoSample(t, data)
		m.CreateNote(s, 1.0, 0.8, channel.Pan{ScaleX: 1, ShiftX: 0.25, ScaleY: 1}, 0, 1, nil, nil)
		sum := make([]int64, 8)
		if _, err := m.Generate(sum, nil); err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return sum
	}

	floatSum := run(false)
	fixedSum := run(true)
	for i := range floatSum {
		diff := floatSum[i] - fixedSum[i]
		if diff < 0 {
			diff = -diff
		}
		// Q16.16 rounding at each fold can drift from the float path;
		// allow slack proportional to the sample's own amplitude.
		slack := floatSum[i]/50 + 8
		if slack < 0 {
			slack = -slack
		}
		if diff > slack {
			t.Fatalf("frame element %d: float=%d fixed=%d differ by %d, more than slack %d", i, floatSum[i], fixedSum[i], diff, slack)
		}
	}
}
