package usart

import "github.com/celskeggs/usartsim/sim/util"

// ParityBit returns the bit to append to the low width bits of data so that
// the total number of ones is even (when even is set) or odd.
func ParityBit(data byte, width int, even bool) bool {
	odd := util.OnesCount(data, width)%2 != 0
	if even {
		return odd
	}
	return !odd
}
