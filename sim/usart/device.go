package usart

import (
	"fmt"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/celskeggs/usartsim/sim/util"
	"log"
)

// Device models one 8251-style USART. It has no internal locking: every
// method must be called from a single goroutine, or externally serialized.
type Device struct {
	Label string
	// Trace enables logging of register writes and completed frames.
	Trace bool
	// Clock, when set, timestamps trace output.
	Clock model.Clock

	format  Format
	stage   Stage
	mode    Mode
	command Command
	status  Status

	rxData    byte
	txData    byte
	syncChars [2]byte

	txShift util.Bitstream
	rxShift util.Bitstream

	txLine bool
	rts    bool
	dtr    bool
	cts    bool
	dsr    bool

	txCount int
	rxCount int
	rxBusy  bool
}

// powerOnMode is in effect until the first mode instruction is written.
var powerOnMode = AsyncMode{Divisor: 1, CharLen: 8, StopBits: StopBits1}

func NewDevice(label string) *Device {
	d := &Device{Label: label}
	d.Reset()
	return d
}

// Reset performs a power-on reset.
func (d *Device) Reset() {
	label, trace, clock := d.Label, d.Trace, d.Clock
	*d = Device{
		Label: label,
		Trace: trace,
		Clock: clock,

		format: FormatAsync,
		stage:  StageMode,
		mode:   powerOnMode,
		status: Status{TxReady: true, TxEmpty: true},
		txLine: true,
		cts:    true,
		dsr:    true,
	}
	d.CheckInvariants()
}

func (d *Device) CheckInvariants() {
	if !d.stage.Valid() {
		log.Panicf("invalid stage: %v", d.stage)
	}
	if d.mode == nil || d.mode.Format() != d.format {
		log.Panicf("mode %v does not match format %v", d.mode, d.format)
	}
	if d.txShift.Len() > util.BitstreamCapacity || d.rxShift.Len() > util.BitstreamCapacity {
		log.Panicf("invalid shifter lengths: tx=%d rx=%d", d.txShift.Len(), d.rxShift.Len())
	}
}

func (d *Device) Debug(explanation string, args ...interface{}) {
	if !d.Trace {
		return
	}
	now := model.TimeNever
	if d.Clock != nil {
		now = d.Clock.Now()
	}
	log.Printf("%v [%s] USART: %s", now, d.Label, fmt.Sprintf(explanation, args...))
}

// asyncMode returns the asynchronous mode, or false in synchronous format.
func (d *Device) asyncMode() (AsyncMode, bool) {
	m, ok := d.mode.(AsyncMode)
	return m, ok && d.format == FormatAsync
}

// Write performs a bus write to the data or control register.
func (d *Device) Write(ch Channel, b byte) {
	d.CheckInvariants()
	if ch == ChannelData {
		d.writeData(b)
	} else {
		d.writeControl(b)
	}
}

func (d *Device) writeData(b byte) {
	d.txData = b
	if !d.command.TxEnable {
		d.Debug("Data byte 0x%02x written with transmitter disabled; holding.", b)
		return
	}
	switch m := d.mode.(type) {
	case AsyncMode:
		d.txShift = EncodeAsyncFrame(b, m)
	case SyncMode:
		d.txShift = EncodeSyncFrame(b, m)
	}
	d.status.TxReady = false
	d.status.TxEmpty = false
	d.Debug("Loaded 0x%02x into transmitter as %s.", b, d.txShift)
}

func (d *Device) writeControl(b byte) {
	switch d.stage {
	case StageMode:
		d.mode = DecodeMode(b)
		d.format = d.mode.Format()
		if d.format == FormatSync {
			d.stage = StageSyncChar1
		} else {
			d.stage = StageCommand
		}
		d.Debug("Mode instruction 0x%02x: %v.", b, d.mode)
	case StageSyncChar1:
		d.syncChars[0] = b
		if m, ok := d.mode.(SyncMode); ok && m.SingleSync {
			d.stage = StageCommand
		} else {
			d.stage = StageSyncChar2
		}
		d.Debug("Sync character 1: 0x%02x.", b)
	case StageSyncChar2:
		d.syncChars[1] = b
		d.stage = StageCommand
		d.Debug("Sync character 2: 0x%02x.", b)
	case StageCommand:
		d.writeCommand(DecodeCommand(b))
	default:
		log.Panicf("invalid stage: %v", d.stage)
	}
}

func (d *Device) writeCommand(cmd Command) {
	d.Debug("Command instruction: %v.", cmd)
	d.rts = cmd.RTS
	d.dtr = cmd.DTR
	if cmd.ErrorReset {
		d.status.clearErrors()
	}
	if cmd.InternalReset {
		d.internalReset()
	}
	cmd.ErrorReset = false
	cmd.InternalReset = false
	d.command = cmd
}

// internalReset returns the chip to expecting a mode instruction, keeping the
// last mode until a new one is written.
func (d *Device) internalReset() {
	d.stage = StageMode
	d.status.clearErrors()
	d.status.RxReady = false
	d.status.TxReady = true
	d.status.TxEmpty = true
	d.txShift.Clear()
	d.rxShift.Clear()
	d.txLine = true
	d.txCount = 0
	d.rxCount = 0
	d.rxBusy = false
	d.cts = true
	d.dsr = true
}

// Read performs a bus read. A data read returns the received byte and
// acknowledges it; a control read returns the status register.
func (d *Device) Read(ch Channel) byte {
	d.CheckInvariants()
	if ch == ChannelData {
		d.status.RxReady = false
		return d.rxData
	}
	d.status.DSR = d.dsr
	return d.status.Byte()
}

// TxLine is the level of the serial output.
func (d *Device) TxLine() bool {
	return d.txLine
}

func (d *Device) SetCTS(asserted bool) {
	d.cts = asserted
}

func (d *Device) SetDSR(asserted bool) {
	d.dsr = asserted
}

func (d *Device) CTS() bool { return d.cts }
func (d *Device) DSR() bool { return d.dsr }
func (d *Device) RTS() bool { return d.rts }
func (d *Device) DTR() bool { return d.dtr }

func (d *Device) Format() Format   { return d.format }
func (d *Device) Stage() Stage     { return d.stage }
func (d *Device) Mode() Mode       { return d.mode }
func (d *Device) Command() Command { return d.command }

// Status returns the current flags without the side effects of a register read.
func (d *Device) Status() Status { return d.status }

func (d *Device) SyncChars() (byte, byte) {
	return d.syncChars[0], d.syncChars[1]
}

// PendingTx is the last byte written to the data register.
func (d *Device) PendingTx() byte {
	return d.txData
}

// Divisor is the number of ticks per bit cell in the current mode.
func (d *Device) Divisor() int {
	if m, ok := d.asyncMode(); ok {
		return m.EffectiveDivisor()
	}
	return 1
}
