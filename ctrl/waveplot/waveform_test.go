package waveplot

import (
	"bytes"
	"github.com/celskeggs/usartsim/sim/bench"
	"github.com/celskeggs/usartsim/sim/component"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/celskeggs/usartsim/sim/usart"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func recordTransfer(t *testing.T, mode usart.AsyncMode, message []byte) ([]component.Record, model.TickRate) {
	t.Helper()
	rate := model.TickRate{Baud: 9600, Divisor: mode.Divisor}
	b, err := bench.NewBench(rate)
	require.NoError(t, err)
	require.NoError(t, b.Configure(mode))

	var buf bytes.Buffer
	rec, err := component.MakeCSVRecorder(&buf)
	require.NoError(t, err)
	b.Probes = append(b.Probes, rec)

	_, err = b.Transfer(b.A, b.B, message, 16*mode.Divisor*len(message)+100)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	records, err := component.ReadRecording(&buf)
	require.NoError(t, err)
	return records, rate
}

func TestDecodeFramesFromRecording(t *testing.T) {
	mode, err := usart.ParseFraming("8E1", 16)
	require.NoError(t, err)
	message := []byte("OK!")
	records, rate := recordTransfer(t, mode, message)

	frames := DecodeFrames(records, "A.TxD", mode, rate.BitPeriod())
	require.Len(t, frames, len(message))
	for i, f := range frames {
		require.Equal(t, message[i], f.Frame.Data)
		require.False(t, f.HasErrors())
		require.Equal(t, 11, f.Bits.Len())
	}
	require.Empty(t, DecodeFrames(records, "B.TxD", mode, rate.BitPeriod()))

	// sampling with the wrong parity sense flags every frame
	odd := mode
	odd.EvenParity = false
	for _, f := range DecodeFrames(records, "A.TxD", odd, rate.BitPeriod()) {
		require.True(t, f.ParityError)
	}
}

func TestBuildAndSavePlot(t *testing.T) {
	mode, err := usart.ParseFraming("7O2", 1)
	require.NoError(t, err)
	records, rate := recordTransfer(t, mode, []byte{0x41, 0x15})

	p, err := BuildPlot("loopback", records, mode, rate.BitPeriod())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePlot(p, 8*vg.Inch, 3*vg.Inch, &buf, "svg"))
	require.Contains(t, buf.String(), "<svg")

	path := filepath.Join(t.TempDir(), "wave.png")
	require.NoError(t, SavePlot(p, Width(records, rate.BitPeriod()), Height, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	require.Error(t, SavePlot(p, 8*vg.Inch, 3*vg.Inch, filepath.Join(t.TempDir(), "wave.bogus")))
}

func TestFormatOf(t *testing.T) {
	for path, expect := range map[string]string{
		"a.png":       "png",
		"dir/b.SVG":   "svg",
		"c.jpeg":      "jpg",
		"d.tif":       "tiff",
		"e.pdf":       "pdf",
		"noextension": "",
		"f.txt":       "",
	} {
		format, err := FormatOf(path)
		if expect == "" {
			require.Error(t, err, path)
		} else {
			require.NoError(t, err, path)
			require.Equal(t, expect, format, path)
		}
	}
}

func TestWidthScalesWithRecording(t *testing.T) {
	require.Equal(t, 8*vg.Inch, Width(nil, time.Millisecond))

	short := []component.Record{{Timestamp: model.TimeZero, Channel: "A.TxD", Level: true}}
	require.Equal(t, 8*vg.Inch, Width(short, time.Millisecond))

	// 98 cells plus margin at a quarter inch each
	at := model.TimeZero.Add(98 * time.Millisecond)
	medium := append(short, component.Record{Timestamp: at, Channel: "A.TxD"})
	require.Equal(t, 25*vg.Inch, Width(medium, time.Millisecond))

	at = model.TimeZero.Add(10 * time.Second)
	long := append(short, component.Record{Timestamp: at, Channel: "A.TxD"})
	require.Equal(t, 60*vg.Inch, Width(long, time.Millisecond))
}

func TestBuildPlotRejectsEmptyRecording(t *testing.T) {
	mode, err := usart.ParseFraming("8N1", 16)
	require.NoError(t, err)
	_, err = BuildPlot("empty", nil, mode, 1000)
	require.Error(t, err)
}

func TestDecodeFramesLongRecording(t *testing.T) {
	mode, err := usart.ParseFraming("8N1", 16)
	require.NoError(t, err)
	bitPeriod := 100 * time.Microsecond

	rand.Seed(2468)
	message := make([]byte, 5000)
	_, _ = rand.Read(message)

	// one transition record per change, back-to-back characters after one idle cell
	records := []component.Record{{Timestamp: model.TimeZero, Channel: "A.TxD", Level: true}}
	now := model.TimeZero.Add(bitPeriod)
	level := true
	for _, b := range message {
		for _, bit := range usart.EncodeAsyncFrame(b, mode).Levels() {
			if bit != level {
				records = append(records, component.Record{Timestamp: now, Channel: "A.TxD", Level: bit})
				level = bit
			}
			now = now.Add(bitPeriod)
		}
	}

	frames := DecodeFrames(records, "A.TxD", mode, bitPeriod)
	require.Len(t, frames, len(message))
	for i, f := range frames {
		require.Equal(t, message[i], f.Frame.Data, "frame %d", i)
		require.False(t, f.HasErrors(), "frame %d", i)
	}
}
