package usart

import (
	"fmt"
	"github.com/celskeggs/usartsim/sim/util"
)

// CellKind identifies the role of one bit cell within an asynchronous character.
type CellKind uint8

const (
	CellInvalid CellKind = iota
	CellStart
	CellData
	CellParity
	CellStop
)

func (k CellKind) String() string {
	switch k {
	case CellStart:
		return "Start"
	case CellData:
		return "Data"
	case CellParity:
		return "Parity"
	case CellStop:
		return "Stop"
	default:
		return fmt.Sprintf("[UNKNOWN=%d]", uint8(k))
	}
}

// FrameLayout describes the bit cells of one asynchronous character:
// a start bit, CharLen data bits, an optional parity bit and the stop cells.
type FrameLayout struct {
	CharLen   int
	Parity    bool
	StopCells int
}

func (m AsyncMode) Layout() FrameLayout {
	return FrameLayout{
		CharLen:   m.CharLength(),
		Parity:    m.ParityEnable,
		StopCells: m.StopBits.Cells(),
	}
}

func (l FrameLayout) parityCells() int {
	if l.Parity {
		return 1
	}
	return 0
}

// Total is the number of bit cells in a whole character.
func (l FrameLayout) Total() int {
	return 1 + l.CharLen + l.parityCells() + l.StopCells
}

func (l FrameLayout) ParityOffset() int {
	return 1 + l.CharLen
}

func (l FrameLayout) StopOffset() int {
	return 1 + l.CharLen + l.parityCells()
}

func (l FrameLayout) Cell(i int) CellKind {
	switch {
	case i < 0 || i >= l.Total():
		return CellInvalid
	case i == 0:
		return CellStart
	case i < l.ParityOffset():
		return CellData
	case i < l.StopOffset():
		return CellParity
	default:
		return CellStop
	}
}

// EncodeAsyncFrame builds the bits of one character: a low start bit, the
// data LSB first, the parity bit when enabled, and high stop bits.
func EncodeAsyncFrame(data byte, m AsyncMode) util.Bitstream {
	l := m.Layout()
	data &= util.Mask(l.CharLen)

	var bs util.Bitstream
	bs.Push(false)
	bs.PushBits(data, l.CharLen)
	if l.Parity {
		bs.Push(ParityBit(data, l.CharLen, m.EvenParity))
	}
	for i := 0; i < l.StopCells; i++ {
		bs.Push(true)
	}
	return bs
}

// EncodeSyncFrame builds the bits of one synchronous character: just the
// data and the optional parity bit.
func EncodeSyncFrame(data byte, m SyncMode) util.Bitstream {
	charLen := m.CharLength()
	data &= util.Mask(charLen)

	var bs util.Bitstream
	bs.PushBits(data, charLen)
	if m.ParityEnable {
		bs.Push(ParityBit(data, charLen, m.EvenParity))
	}
	return bs
}

// Frame is a sampled asynchronous character split into its fields.
type Frame struct {
	Data    byte
	Parity  bool
	StartOK bool
	StopOK  bool
}

// DecodeAsyncFrame splits a complete sampled character. The stream must hold
// at least l.Total() bits.
func DecodeAsyncFrame(bs util.Bitstream, l FrameLayout) Frame {
	if bs.Len() < l.Total() {
		panic(fmt.Sprintf("incomplete frame: %d of %d bits", bs.Len(), l.Total()))
	}
	f := Frame{
		StartOK: !bs.Bit(0),
		Data:    bs.Field(1, l.CharLen),
		StopOK:  true,
	}
	if l.Parity {
		f.Parity = bs.Bit(l.ParityOffset())
	}
	for i := 0; i < l.StopCells; i++ {
		if !bs.Bit(l.StopOffset() + i) {
			f.StopOK = false
			break
		}
	}
	return f
}
