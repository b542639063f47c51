package util

// BitstreamCapacity is the widest frame a shifter can hold.
const BitstreamCapacity = 16

// Bitstream is a small shift register. Bit 0 is the first bit on the wire.
type Bitstream struct {
	bits  uint16
	count uint8
}

// Push appends a bit after the last valid one. It reports false, and drops the
// bit, if the stream is already full.
func (bs *Bitstream) Push(bit bool) bool {
	if bs.Full() {
		return false
	}
	if bit {
		bs.bits |= 1 << bs.count
	}
	bs.count++
	return true
}

// PushBits appends the low n bits of value, LSB first, and returns how many
// fit.
func (bs *Bitstream) PushBits(value uint8, n int) int {
	pushed := 0
	for _, bit := range ByteToBits(value, n) {
		if !bs.Push(bit) {
			break
		}
		pushed++
	}
	return pushed
}

// Shift removes and returns the first bit. ok is false when the stream is empty.
func (bs *Bitstream) Shift() (bit bool, ok bool) {
	if bs.count == 0 {
		return false, false
	}
	bit = bs.bits&1 != 0
	bs.bits >>= 1
	bs.count--
	return bit, true
}

func (bs *Bitstream) Clear() {
	*bs = Bitstream{}
}

func (bs Bitstream) Len() int {
	return int(bs.count)
}

func (bs Bitstream) Empty() bool {
	return bs.count == 0
}

func (bs Bitstream) Full() bool {
	return bs.count >= BitstreamCapacity
}

// Bit returns the bit at offset i, or false past the end.
func (bs Bitstream) Bit(i int) bool {
	if i < 0 || i >= int(bs.count) {
		return false
	}
	return (bs.bits>>i)&1 != 0
}

// Field extracts width bits starting at offset, with the first one as the LSB.
func (bs Bitstream) Field(offset int, width int) uint8 {
	if width < 0 || width > BitsPerByte {
		panic("invalid field width")
	}
	return uint8(bs.bits>>offset) & Mask(width)
}

// Levels lists the valid bits in wire order.
func (bs Bitstream) Levels() []bool {
	levels := make([]bool, bs.count)
	for i := range levels {
		levels[i] = bs.Bit(i)
	}
	return levels
}

func (bs Bitstream) String() string {
	return StringLevels(bs.Levels())
}
