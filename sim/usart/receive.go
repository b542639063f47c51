package usart

import "github.com/celskeggs/usartsim/sim/util"

func (d *Device) resetReceiver() {
	d.rxBusy = false
	d.rxCount = 0
	d.rxShift.Clear()
}

// TickReceive advances the receiver by one clock tick, sampling the RxD level.
// Only asynchronous framing is received; in synchronous format the receiver
// stays idle.
func (d *Device) TickReceive(rxd bool) {
	if !d.command.RxEnable {
		d.resetReceiver()
		return
	}
	m, ok := d.asyncMode()
	if !ok {
		d.resetReceiver()
		return
	}

	div := m.EffectiveDivisor()
	if !d.rxBusy {
		if rxd {
			return
		}
		// falling edge. Samples are taken mid-cell, so the start bit is
		// sampled div/2 ticks from now (on this tick at 1x).
		d.resetReceiver()
		d.rxBusy = true
		d.rxCount = div - div/2 - 1
	}

	d.rxCount++
	if d.rxCount < div {
		return
	}
	d.rxCount = 0

	d.rxShift.Push(rxd)

	layout := m.Layout()
	if d.rxShift.Len() < layout.Total() {
		return
	}

	frame := DecodeAsyncFrame(d.rxShift, layout)
	if frame.StartOK {
		d.completeFrame(frame, m)
	} else {
		d.status.FramingError = true
		d.Debug("Invalid start bit in %s; frame discarded.", d.rxShift)
	}
	d.resetReceiver()
}

// completeFrame latches a received character with a valid start bit.
func (d *Device) completeFrame(frame Frame, m AsyncMode) {
	if !d.command.RxEnable {
		return
	}
	if d.status.RxReady {
		d.status.OverrunError = true
		d.Debug("Overrun: 0x%02x lost, 0x%02x still unread.", frame.Data, d.rxData)
		return
	}

	charLen := m.CharLength()
	d.rxData = frame.Data & util.Mask(charLen)
	d.status.RxReady = true

	if m.ParityEnable && ParityBit(d.rxData, charLen, m.EvenParity) != frame.Parity {
		d.status.ParityError = true
	}
	if !frame.StopOK {
		d.status.FramingError = true
	}
	d.Debug("Received 0x%02x, status %v.", d.rxData, d.status)
}

// TickReceiveClock advances the receiver by one whole bit cell at the given level.
func (d *Device) TickReceiveClock(rxd bool) {
	for i := d.Divisor(); i > 0; i-- {
		d.TickReceive(rxd)
	}
}
