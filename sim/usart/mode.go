package usart

import (
	"fmt"
	"strconv"
	"strings"
)

type Format uint8

const (
	FormatAsync Format = iota
	FormatSync
)

func (f Format) String() string {
	switch f {
	case FormatAsync:
		return "ASYNC"
	case FormatSync:
		return "SYNC"
	default:
		return fmt.Sprintf("[UNKNOWN=%d]", uint8(f))
	}
}

// StopBits is the stop length field of an asynchronous mode instruction.
type StopBits uint8

const (
	StopBits1 StopBits = iota
	StopBits1Half
	StopBits2
)

func (s StopBits) String() string {
	switch s {
	case StopBits1:
		return "1"
	case StopBits1Half:
		return "1.5"
	case StopBits2:
		return "2"
	default:
		return "<invalid stopbits>"
	}
}

// Cells is the number of whole bit cells sent and checked for the stop
// length. One and a half stop bits occupy two cells.
func (s StopBits) Cells() int {
	if s == StopBits1 {
		return 1
	}
	return 2
}

// Mode is a decoded mode instruction: either AsyncMode or SyncMode.
type Mode interface {
	Format() Format
	CharLength() int
	Parity() (enabled bool, even bool)
	Encode() byte
	String() string
	// Validate reports fields that have no encoding in a mode instruction.
	Validate() error

	isMode()
}

type AsyncMode struct {
	// Divisor is the number of clock ticks per bit cell: 1, 16 or 64.
	Divisor      int
	CharLen      int
	StopBits     StopBits
	ParityEnable bool
	EvenParity   bool
}

type SyncMode struct {
	CharLen      int
	ParityEnable bool
	EvenParity   bool
	ExternalSync bool
	// SingleSync means one sync character follows the mode instruction instead of two.
	SingleSync bool
}

var _ Mode = AsyncMode{}
var _ Mode = SyncMode{}

func (AsyncMode) isMode() {}
func (SyncMode) isMode()  {}

func (AsyncMode) Format() Format { return FormatAsync }
func (SyncMode) Format() Format  { return FormatSync }

func (m AsyncMode) CharLength() int { return clampCharLen(m.CharLen) }
func (m SyncMode) CharLength() int  { return clampCharLen(m.CharLen) }

func (m AsyncMode) Parity() (bool, bool) { return m.ParityEnable, m.EvenParity }
func (m SyncMode) Parity() (bool, bool)  { return m.ParityEnable, m.EvenParity }

// EffectiveDivisor is the divisor with the unset value treated as 1.
func (m AsyncMode) EffectiveDivisor() int {
	if m.Divisor < 1 {
		return 1
	}
	return m.Divisor
}

func validateCharLen(n int) error {
	if n < 5 || n > 8 {
		return fmt.Errorf("invalid character length: %d", n)
	}
	return nil
}

func (m AsyncMode) Validate() error {
	if m.Divisor != 1 && m.Divisor != 16 && m.Divisor != 64 {
		return fmt.Errorf("invalid divisor: %d", m.Divisor)
	}
	if m.StopBits > StopBits2 {
		return fmt.Errorf("invalid stop bits: %v", m.StopBits)
	}
	return validateCharLen(m.CharLen)
}

func (m SyncMode) Validate() error {
	return validateCharLen(m.CharLen)
}

func clampCharLen(n int) int {
	if n > 8 {
		return 8
	}
	if n < 5 {
		return 5
	}
	return n
}

// DecodeMode interprets a mode instruction. The two low bits select the
// format: zero means synchronous, anything else is the asynchronous divisor.
func DecodeMode(raw byte) Mode {
	if raw&0x03 == 0 {
		return decodeSyncMode(raw)
	}
	return decodeAsyncMode(raw)
}

func decodeCharLen(raw byte) int {
	return 5 + int((raw>>2)&0x03)
}

func decodeAsyncMode(raw byte) AsyncMode {
	m := AsyncMode{
		CharLen:      decodeCharLen(raw),
		ParityEnable: (raw>>4)&1 != 0,
		EvenParity:   (raw>>5)&1 != 0,
	}
	switch raw & 0x03 {
	case 0x01:
		m.Divisor = 1
	case 0x02:
		m.Divisor = 16
	case 0x03:
		m.Divisor = 64
	}
	switch (raw >> 6) & 0x03 {
	case 0x02:
		m.StopBits = StopBits1Half
	case 0x03:
		m.StopBits = StopBits2
	default:
		// 00 is invalid on the real part; it runs with one stop bit.
		m.StopBits = StopBits1
	}
	return m
}

func decodeSyncMode(raw byte) SyncMode {
	return SyncMode{
		CharLen:      decodeCharLen(raw),
		ParityEnable: (raw>>4)&1 != 0,
		EvenParity:   (raw>>5)&1 != 0,
		ExternalSync: (raw>>6)&1 != 0,
		SingleSync:   (raw>>7)&1 != 0,
	}
}

func encodeCommon(charLen int, pen, ep bool) byte {
	raw := byte(clampCharLen(charLen)-5) << 2
	if pen {
		raw |= 1 << 4
	}
	if ep {
		raw |= 1 << 5
	}
	return raw
}

func (m AsyncMode) Encode() byte {
	raw := encodeCommon(m.CharLen, m.ParityEnable, m.EvenParity)
	switch m.Divisor {
	case 1:
		raw |= 0x01
	case 16:
		raw |= 0x02
	case 64:
		raw |= 0x03
	default:
		panic(fmt.Sprintf("invalid divisor: %d", m.Divisor))
	}
	switch m.StopBits {
	case StopBits1:
		raw |= 0x01 << 6
	case StopBits1Half:
		raw |= 0x02 << 6
	case StopBits2:
		raw |= 0x03 << 6
	default:
		panic("invalid stop bits")
	}
	return raw
}

func (m SyncMode) Encode() byte {
	raw := encodeCommon(m.CharLen, m.ParityEnable, m.EvenParity)
	if m.ExternalSync {
		raw |= 1 << 6
	}
	if m.SingleSync {
		raw |= 1 << 7
	}
	return raw
}

func parityChar(enabled, even bool) string {
	switch {
	case !enabled:
		return "N"
	case even:
		return "E"
	default:
		return "O"
	}
}

// String renders the usual framing shorthand, e.g. "8E1/16x".
func (m AsyncMode) String() string {
	return fmt.Sprintf("%d%s%v/%dx", m.CharLength(), parityChar(m.ParityEnable, m.EvenParity), m.StopBits, m.EffectiveDivisor())
}

func (m SyncMode) String() string {
	syncs := 2
	if m.SingleSync {
		syncs = 1
	}
	s := fmt.Sprintf("SYNC %d%s, %d sync chars", m.CharLength(), parityChar(m.ParityEnable, m.EvenParity), syncs)
	if m.ExternalSync {
		s += ", external sync"
	}
	return s
}

// ParseFraming builds an asynchronous mode from shorthand like "8N1", "7E2"
// or "5O1.5", clocked at the given divisor.
func ParseFraming(framing string, divisor int) (AsyncMode, error) {
	if divisor != 1 && divisor != 16 && divisor != 64 {
		return AsyncMode{}, fmt.Errorf("unsupported divisor: %d", divisor)
	}
	if len(framing) < 3 {
		return AsyncMode{}, fmt.Errorf("invalid framing string: %q", framing)
	}
	m := AsyncMode{Divisor: divisor}

	charLen, err := strconv.Atoi(framing[0:1])
	if err != nil || charLen < 5 || charLen > 8 {
		return AsyncMode{}, fmt.Errorf("unsupported data bits: %c", framing[0])
	}
	m.CharLen = charLen

	switch strings.ToUpper(framing[1:2]) {
	case "N":
	case "E":
		m.ParityEnable, m.EvenParity = true, true
	case "O":
		m.ParityEnable = true
	default:
		return AsyncMode{}, fmt.Errorf("unsupported parity: %c", framing[1])
	}

	switch framing[2:] {
	case "1":
		m.StopBits = StopBits1
	case "1.5":
		m.StopBits = StopBits1Half
	case "2":
		m.StopBits = StopBits2
	default:
		return AsyncMode{}, fmt.Errorf("unsupported stop bits: %q", framing[2:])
	}
	return m, nil
}
