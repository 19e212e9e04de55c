package sinks

import "testing"

func TestClamp16(t *testing.T) {
	cases := []struct {
		in   int64
		want int16
	}{
		{0, 0},
		{32767, 32767},
		{32768, 32767},
		{-32768, -32767},
		{-32769, -32767},
		{1 << 20, 32767},
		{-(1 << 20), -32767},
	}
	for _, c := range cases {
		if got := Clamp16(c.in); got != c.want {
			t.Errorf("Clamp16(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestConvertToPCM16LittleEndian(t *testing.T) {
	sum := []int64{1, -1}
	out := ConvertToPCM16(sum, false)
	if len(out) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(out))
	}
	if out[0] != 1 || out[1] != 0 {
		t.Fatalf("expected little-endian 1 -> [1,0], got %v", out[:2])
	}
	if out[2] != 0xFF || out[3] != 0xFF {
		t.Fatalf("expected little-endian -1 -> [0xFF,0xFF], got %v", out[2:4])
	}
}

func TestConvertToPCM16BigEndian(t *testing.T) {
	sum := []int64{256}
	out := ConvertToPCM16(sum, true)
	if out[0] != 1 || out[1] != 0 {
		t.Fatalf("expected big-endian 256 -> [1,0], got %v", out)
	}
}

func TestConvertToFloat32RangeIsClamped(t *testing.T) {
	sum := []int64{32767, -32768, 1 << 20}
	out := ConvertToFloat32(sum)
	if out[0] <= 0.99 || out[0] > 1.0 {
		t.Fatalf("expected near +1.0, got %f", out[0])
	}
	if out[1] != float32(-32767)/32768.0 {
		t.Fatalf("expected exactly -32767/32768, got %f", out[1])
	}
	if out[2] <= 0.99 || out[2] > 1.0 {
		t.Fatalf("expected overdriven sample clamped to ~1.0, got %f", out[2])
	}
}

func TestSignExtend16SignedSource(t *testing.T) {
	if v := SignExtend16(0x00, 0x01, false); v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}
	if v := SignExtend16(0xFF, 0xFF, false); v != -1 {
		t.Fatalf("expected -1, got %d", v)
	}
}

func TestSignExtend16UnsignedSource(t *testing.T) {
	// Unsigned 0x80,0x00 (midpoint) should map to signed 0.
	if v := SignExtend16(0x80, 0x00, true); v != 0 {
		t.Fatalf("expected 0 for unsigned midpoint, got %d", v)
	}
}
