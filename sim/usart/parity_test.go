package usart

import (
	"math/rand"
	"testing"
)

func TestParityBitCountsOnes(t *testing.T) {
	for width := 5; width <= 8; width++ {
		for value := 0; value < 256; value++ {
			data := byte(value)
			ones := 0
			for i := 0; i < width; i++ {
				if data&(1<<i) != 0 {
					ones++
				}
			}
			for _, even := range []bool{false, true} {
				total := ones
				if ParityBit(data, width, even) {
					total++
				}
				if (total%2 == 0) != even {
					t.Fatalf("width=%d data=0x%02x even=%v: total ones %d has wrong parity", width, data, even, total)
				}
			}
		}
	}
}

func TestParityBitFlipsWithSingleBit(t *testing.T) {
	rand.Seed(456)
	for i := 0; i < 10000; i++ {
		width := 5 + rand.Intn(4)
		even := rand.Intn(2) == 1
		data := byte(rand.Intn(256))
		flipped := data ^ (1 << rand.Intn(width))
		if ParityBit(data, width, even) == ParityBit(flipped, width, even) {
			t.Fatalf("width=%d: parity of 0x%02x and 0x%02x should differ", width, data, flipped)
		}
		if ParityBit(data, width, even) != ParityBit(data, width, even) {
			t.Fatal("parity should be deterministic")
		}
		// bits above the character length never matter
		above := data ^ byte(0xFF<<width)
		if width < 8 && ParityBit(data, width, even) != ParityBit(above, width, even) {
			t.Fatalf("width=%d: bits above the width changed parity of 0x%02x", width, data)
		}
	}
}
