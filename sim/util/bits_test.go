package util

import (
	"math/rand"
	"testing"
)

func TestBitConversion(t *testing.T) {
	data := make([]byte, 1024)
	rand.Seed(345)
	_, _ = rand.Read(data)

	for _, b := range data {
		width := 5 + rand.Intn(4)
		bits := ByteToBits(b, width)
		if len(bits) != width {
			t.Fatal("incorrect length")
		}
		var back byte
		for i, bit := range bits {
			if bit {
				back |= 1 << i
			}
		}
		if back != b&Mask(width) {
			t.Errorf("mismatched data values: 0x%02x -> 0x%02x (width %d)", b, back, width)
		}
	}
}

func TestMask(t *testing.T) {
	expected := map[int]uint8{0: 0x00, 1: 0x01, 5: 0x1F, 6: 0x3F, 7: 0x7F, 8: 0xFF, 9: 0xFF}
	for width, mask := range expected {
		if Mask(width) != mask {
			t.Errorf("Mask(%d) = 0x%02x, expected 0x%02x", width, Mask(width), mask)
		}
	}
}

func TestOnesCount(t *testing.T) {
	if OnesCount(0xFF, 5) != 5 {
		t.Error("expected five ones in a 5-bit all-ones field")
	}
	if OnesCount(0xA5, 8) != 4 {
		t.Error("expected four ones in 0xA5")
	}
	if OnesCount(0xE0, 5) != 0 {
		t.Error("expected bits above the width to be ignored")
	}
}

func TestStringLevels(t *testing.T) {
	if s := StringLevels([]bool{false, true, true, false}); s != "0110" {
		t.Errorf("unexpected rendering %q", s)
	}
}
