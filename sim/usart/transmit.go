package usart

// TickTransmit advances the transmitter by one clock tick. In asynchronous
// format a bit is shifted out once every divisor ticks; in synchronous format
// on every tick.
func (d *Device) TickTransmit() {
	if !d.command.TxEnable {
		d.txLine = true
		d.txCount = 0
		return
	}

	if d.command.SendBreak {
		d.txLine = false
		d.status.TxReady = false
		d.status.TxEmpty = false
		d.txCount = 0
		return
	}

	if m, ok := d.asyncMode(); ok {
		if !d.cts {
			d.txLine = true
			d.status.TxReady = false
			d.status.TxEmpty = false
			return
		}
		d.txCount++
		if d.txCount < m.EffectiveDivisor() {
			return
		}
		d.txCount = 0
	} else {
		d.txCount = 0
	}

	bit, ok := d.txShift.Shift()
	if !ok {
		d.txLine = true
		d.status.TxReady = true
		d.status.TxEmpty = true
		return
	}
	d.txLine = bit

	// the last bit stays on the line for its full cell; the next idle tick
	// returns the line high.
	if d.txShift.Empty() {
		d.status.TxReady = true
		d.status.TxEmpty = true
		d.Debug("Transmitter drained.")
	}
}

// TickTransmitClock advances the transmitter by one whole bit cell.
func (d *Device) TickTransmitClock() {
	for i := d.Divisor(); i > 0; i-- {
		d.TickTransmit()
	}
}
