package main

import (
	"flag"
	"fmt"
	"github.com/celskeggs/usartsim/sim/component"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/celskeggs/usartsim/sim/usart"
	"log"
	"os"
	"time"
)

type replayClock struct {
	now model.VirtualTime
}

func (c *replayClock) Now() model.VirtualTime {
	return c.now
}

// Received is one character latched by the replay receiver.
type Received struct {
	At     model.VirtualTime
	Data   byte
	Status usart.Status
}

// Replay drives a receive-only device with the recorded level of channel,
// one tick per rate.TickPeriod(), and collects every character it latches.
func Replay(records []component.Record, channel string, mode usart.AsyncMode, rate model.TickRate, trace bool) ([]Received, error) {
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	line := component.NewCursor(records, channel)
	transitions := line.Transitions()
	if len(transitions) == 0 {
		return nil, fmt.Errorf("no transitions recorded on channel %q", channel)
	}

	clock := &replayClock{now: model.TimeZero}
	d := usart.NewDevice("RX")
	d.Trace = trace
	d.Clock = clock
	if err := d.Configure(mode, usart.Command{RxEnable: true, ErrorReset: true}); err != nil {
		return nil, err
	}

	frameTime := rate.BitPeriod() * time.Duration(1+2*mode.Layout().Total())
	end := transitions[len(transitions)-1].Timestamp.Add(frameTime)
	var out []Received
	for ; clock.now <= end; clock.now = clock.now.Add(rate.TickPeriod()) {
		d.TickReceive(line.LevelAt(clock.now))
		status := usart.DecodeStatus(d.Read(usart.ChannelControl))
		if !status.RxReady {
			continue
		}
		out = append(out, Received{At: clock.now, Data: d.Read(usart.ChannelData), Status: status})
		if status.HasErrors() {
			d.Write(usart.ChannelControl, usart.Command{RxEnable: true, ErrorReset: true}.Encode())
		}
	}
	return out, nil
}

func main() {
	framing := flag.String("framing", "8N1", "Character framing, e.g. 8N1, 7E2, 5O1.5")
	divisor := flag.Int("divisor", 16, "Clock ticks per bit cell (1, 16 or 64)")
	baud := flag.Int("baud", 9600, "Bit rate of the recorded line")
	channel := flag.String("channel", "A.TxD", "Recorded channel to decode")
	trace := flag.Bool("trace", false, "Log every received character")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] <recording.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	if os.Getenv("USARTSIM_TRACE") == "true" {
		*trace = true
	}

	mode, err := usart.ParseFraming(*framing, *divisor)
	if err != nil {
		log.Fatalf("Invalid framing: %v", err)
	}
	records, err := component.DecodeRecording(flag.Arg(0))
	if err != nil {
		log.Fatalf("Cannot read recording: %v", err)
	}
	received, err := Replay(records, *channel, mode, model.TickRate{Baud: *baud, Divisor: *divisor}, *trace)
	if err != nil {
		log.Fatal(err)
	}

	errorCount := 0
	for _, r := range received {
		fmt.Printf("%v 0x%02x %q %v\n", r.At, r.Data, rune(r.Data), r.Status)
		if r.Status.HasErrors() {
			errorCount++
		}
	}
	fmt.Printf("Decoded %d characters from %s (%v), %d with errors.\n", len(received), *channel, mode, errorCount)
}
