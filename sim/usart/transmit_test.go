package usart

import (
	"github.com/celskeggs/usartsim/sim/util"
	"github.com/stretchr/testify/require"
	"testing"
)

func streamLevels(bs util.Bitstream) []bool {
	levels := make([]bool, bs.Len())
	for i := range levels {
		levels[i] = bs.Bit(i)
	}
	return levels
}

func TestTransmitAsyncFrame1x(t *testing.T) {
	mode := AsyncMode{Divisor: 1, CharLen: 8, StopBits: StopBits1}
	d := configuredDevice(t, mode, Command{TxEnable: true})

	d.Write(ChannelData, 0xA5)
	require.False(t, d.Status().TxReady)
	require.False(t, d.Status().TxEmpty)

	var levels []bool
	for i := 0; i < 10; i++ {
		d.TickTransmit()
		levels = append(levels, d.TxLine())
	}
	require.Equal(t, "0101001011", util.StringLevels(levels))
	require.True(t, d.Status().TxReady)
	require.True(t, d.Status().TxEmpty)

	d.TickTransmit()
	require.True(t, d.TxLine())
}

func TestTransmitHonorsDivisor(t *testing.T) {
	d := configuredDevice(t, mode8E1x16, Command{TxEnable: true})
	d.Write(ChannelData, 0x0F)
	expected := streamLevels(EncodeAsyncFrame(0x0F, mode8E1x16))
	require.Len(t, expected, 11)

	for i := 0; i < 15; i++ {
		d.TickTransmit()
		require.True(t, d.TxLine(), "tick %d", i)
	}
	for cell, level := range expected {
		for i := 0; i < 16; i++ {
			d.TickTransmit()
			require.Equal(t, level, d.TxLine(), "cell %d tick %d", cell, i)
		}
	}
	require.True(t, d.Status().TxEmpty)
}

func TestTransmitClockEmitsOneCellPerCall(t *testing.T) {
	mode := AsyncMode{Divisor: 64, CharLen: 7, StopBits: StopBits2, ParityEnable: true}
	d := configuredDevice(t, mode, Command{TxEnable: true})
	d.Write(ChannelData, 0x41)

	var levels []bool
	for !d.Status().TxEmpty {
		d.TickTransmitClock()
		levels = append(levels, d.TxLine())
	}
	require.Equal(t, streamLevels(EncodeAsyncFrame(0x41, mode)), levels)
	require.Len(t, levels, 1+7+1+2)
}

func TestTransmitDisabledHoldsLineHigh(t *testing.T) {
	d := configuredDevice(t, AsyncMode{Divisor: 1, CharLen: 8, StopBits: StopBits1}, Command{TxEnable: true})
	d.Write(ChannelData, 0x00)
	d.TickTransmit()
	require.False(t, d.TxLine())

	d.Write(ChannelControl, Command{}.Encode())
	for i := 0; i < 20; i++ {
		d.TickTransmit()
		require.True(t, d.TxLine())
	}
}

func TestTransmitBreak(t *testing.T) {
	d := configuredDevice(t, mode8E1x16, Command{TxEnable: true, SendBreak: true})
	d.Write(ChannelData, 0x55)
	for i := 0; i < 100; i++ {
		d.TickTransmit()
		require.False(t, d.TxLine())
		require.Zero(t, d.Read(ChannelControl)&StatusTxReady)
		require.Zero(t, d.Read(ChannelControl)&StatusTxEmpty)
	}

	d.Write(ChannelControl, Command{TxEnable: true}.Encode())
	d.TickTransmitClock()
	require.False(t, d.TxLine(), "start bit of the held character")
	for !d.Status().TxEmpty {
		d.TickTransmitClock()
	}
	d.TickTransmitClock()
	require.True(t, d.TxLine())
	require.True(t, d.Status().TxReady)
}

func TestTransmitWaitsForCTS(t *testing.T) {
	d := configuredDevice(t, AsyncMode{Divisor: 1, CharLen: 5, StopBits: StopBits1}, Command{TxEnable: true})
	d.SetCTS(false)
	d.Write(ChannelData, 0x00)
	for i := 0; i < 10; i++ {
		d.TickTransmit()
		require.True(t, d.TxLine())
		require.False(t, d.Status().TxReady)
	}

	d.SetCTS(true)
	d.TickTransmit()
	require.False(t, d.TxLine())
}

func TestTransmitSyncHasNoFraming(t *testing.T) {
	mode := SyncMode{CharLen: 6, ParityEnable: true, EvenParity: false, SingleSync: true}
	d := configuredDevice(t, mode, Command{TxEnable: true}, 0x16)
	// CTS only gates the asynchronous transmitter
	d.SetCTS(false)
	d.Write(ChannelData, 0x2A)

	var levels []bool
	for i := 0; i < 7; i++ {
		d.TickTransmit()
		levels = append(levels, d.TxLine())
	}
	// 0x2A over six bits is 010101, with three ones the odd parity bit is 0
	require.Equal(t, "0101010", util.StringLevels(levels))
	require.True(t, d.Status().TxEmpty)

	d.TickTransmit()
	require.True(t, d.TxLine())
}
