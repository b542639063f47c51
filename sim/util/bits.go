package util

import (
	"math/bits"
	"strings"
)

const BitsPerByte = 8

// Mask returns a byte with the low width bits set.
func Mask(width int) uint8 {
	if width >= BitsPerByte {
		return 0xFF
	}
	if width <= 0 {
		return 0
	}
	return uint8(1<<width) - 1
}

// ByteToBits unpacks the low width bits of b, LSB first.
func ByteToBits(b byte, width int) []bool {
	if width < 0 || width > BitsPerByte {
		panic("invalid # of bits")
	}
	output := make([]bool, width)
	for j := 0; j < width; j++ {
		output[j] = (b & (1 << j)) != 0
	}
	return output
}

// OnesCount returns the number of set bits among the low width bits of b.
func OnesCount(b byte, width int) int {
	return bits.OnesCount8(b & Mask(width))
}

func StringLevels(levels []bool) string {
	var midbits []string
	for _, bit := range levels {
		if bit {
			midbits = append(midbits, "1")
		} else {
			midbits = append(midbits, "0")
		}
	}
	return strings.Join(midbits, "")
}
