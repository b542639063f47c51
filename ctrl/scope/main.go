package main

import (
	"bytes"
	"flag"
	"fmt"
	"github.com/celskeggs/usartsim/ctrl/waveplot"
	"github.com/celskeggs/usartsim/sim/bench"
	"github.com/celskeggs/usartsim/sim/component"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/celskeggs/usartsim/sim/usart"
	"log"
	"os"
)

func main() {
	framing := flag.String("framing", "8N1", "Character framing, e.g. 8N1, 7E2, 5O1.5")
	divisor := flag.Int("divisor", 16, "Clock ticks per bit cell (1, 16 or 64)")
	baud := flag.Int("baud", 9600, "Bit rate used to timestamp the recording")
	message := flag.String("message", "Hello", "Text sent from A to B")
	csvPath := flag.String("csv", "", "Write line transitions to this CSV file")
	plotPath := flag.String("plot", "", "Render the waveform to this file (.png, .svg, .pdf)")
	display := flag.Bool("display", false, "Show the waveform in a window")
	trace := flag.Bool("trace", false, "Log every register write and received character")
	flag.Parse()

	if os.Getenv("USARTSIM_TRACE") == "true" {
		*trace = true
		log.Printf("Device tracing enabled by environment variable")
	}

	mode, err := usart.ParseFraming(*framing, *divisor)
	if err != nil {
		log.Fatalf("Invalid framing: %v", err)
	}
	rate := model.TickRate{Baud: *baud, Divisor: *divisor}
	b, err := bench.NewBench(rate)
	if err != nil {
		log.Fatalf("Cannot build bench: %v", err)
	}
	b.A.Trace, b.B.Trace = *trace, *trace
	if *trace {
		b.Log = bench.MakeLogger(b, b.B.Label)
	}
	if err := b.Configure(mode); err != nil {
		log.Fatalf("Cannot configure devices: %v", err)
	}

	var recording bytes.Buffer
	recorder, err := component.MakeCSVRecorder(&recording)
	if err != nil {
		log.Fatal(err)
	}
	fileRecorder := component.MakeNullCSVRecorder()
	if *csvPath != "" {
		fileRecorder, err = component.CreateCSVRecorder(*csvPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	b.Probes = append(b.Probes, recorder, fileRecorder)

	data := []byte(*message)
	maxTicks := (mode.Layout().Total() + 2) * mode.EffectiveDivisor() * (len(data) + 1)
	results, err := b.Transfer(b.A, b.B, data, maxTicks)
	if err != nil {
		log.Fatalf("Transfer failed after %d of %d characters: %v", len(results), len(data), err)
	}
	// trailing idle cells so the last stop bit is visible
	b.Run(2 * mode.EffectiveDivisor())
	if err := recorder.Close(); err != nil {
		log.Fatal(err)
	}
	if fileRecorder.IsRecording() {
		if err := fileRecorder.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("Wrote line transitions to %s", *csvPath)
	}

	fmt.Printf("Sent %d characters at %d baud (%v) in %v:\n", len(data), *baud, mode, b.Now().Since(model.TimeZero))
	for i, r := range results {
		fmt.Printf("  %3d: 0x%02x %q %v\n", i, r.Data, rune(r.Data), r.Status)
	}

	if *plotPath == "" && !*display {
		return
	}

	records, err := component.ReadRecording(bytes.NewReader(recording.Bytes()))
	if err != nil {
		log.Fatal(err)
	}
	title := fmt.Sprintf("%q at %d baud, %v", *message, *baud, mode)
	p, err := waveplot.BuildPlot(title, records, mode, rate.BitPeriod())
	if err != nil {
		log.Fatal(err)
	}
	if *plotPath != "" {
		if err := waveplot.SavePlot(p, waveplot.Width(records, rate.BitPeriod()), waveplot.Height, *plotPath); err != nil {
			log.Fatal(err)
		}
	}
	if *display {
		DisplayPlot(p, "USART scope")
	}
}
