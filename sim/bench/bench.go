package bench

import (
	"errors"
	"fmt"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/celskeggs/usartsim/sim/usart"
	"log"
)

// Probe observes the line levels after every tick.
type Probe interface {
	Sample(now model.VirtualTime, channel string, level bool)
}

type ProbeFunc func(now model.VirtualTime, channel string, level bool)

func (f ProbeFunc) Sample(now model.VirtualTime, channel string, level bool) {
	f(now, channel, level)
}

// Bench wires two devices back to back, A's TxD into B's RxD and B's TxD into
// A's RxD, and plays the clock generator for both. Every Step is one tick of
// the shared transmit/receive clock.
type Bench struct {
	A, B *usart.Device

	Rate   model.TickRate
	Probes []Probe
	// Log, when set, is shown every character a Transfer receives.
	Log *Logger

	now   model.VirtualTime
	ticks uint64
}

var _ model.Clock = (*Bench)(nil)

func NewBench(rate model.TickRate) (*Bench, error) {
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	b := &Bench{
		A:    usart.NewDevice("A"),
		B:    usart.NewDevice("B"),
		Rate: rate,
		now:  model.TimeZero,
	}
	b.A.Clock = b
	b.B.Clock = b
	return b, nil
}

func (b *Bench) Now() model.VirtualTime {
	return b.now
}

func (b *Bench) Ticks() uint64 {
	return b.ticks
}

func (b *Bench) Debug(explanation string, args ...interface{}) {
	log.Printf("%v [HARNESS] %s", b.now, fmt.Sprintf(explanation, args...))
}

// Configure applies the same mode to both ends and enables both directions.
func (b *Bench) Configure(mode usart.Mode, syncChars ...byte) error {
	cmd := usart.Command{TxEnable: true, RxEnable: true, RTS: true, DTR: true, ErrorReset: true}
	for _, d := range []*usart.Device{b.A, b.B} {
		if err := d.Configure(mode, cmd, syncChars...); err != nil {
			return fmt.Errorf("configuring %s: %v", d.Label, err)
		}
	}
	// each end's RTS drives the other end's CTS
	b.A.SetCTS(b.B.RTS())
	b.B.SetCTS(b.A.RTS())
	return nil
}

// Step advances virtual time by one tick. Both transmitters shift first, then
// both receivers sample the resulting line levels.
func (b *Bench) Step() {
	b.A.SetCTS(b.B.RTS())
	b.B.SetCTS(b.A.RTS())

	b.A.TickTransmit()
	b.B.TickTransmit()
	lineAB, lineBA := b.A.TxLine(), b.B.TxLine()
	b.B.TickReceive(lineAB)
	b.A.TickReceive(lineBA)

	for _, p := range b.Probes {
		p.Sample(b.now, "A.TxD", lineAB)
		p.Sample(b.now, "B.TxD", lineBA)
	}

	b.ticks++
	b.now = b.now.Add(b.Rate.TickPeriod())
}

func (b *Bench) Run(ticks int) {
	for i := 0; i < ticks; i++ {
		b.Step()
	}
}

// ErrStalled reports that a transfer ended with characters still missing.
var ErrStalled = errors.New("transfer stalled")

// Result is what the receiving end saw for one character.
type Result struct {
	Data   byte
	Status usart.Status
}

// Transfer sends message from one device to the other, feeding the
// transmitter whenever it reports ready and reading every character the
// receiver completes. It stops once every character has arrived. If maxTicks
// pass first, or the line goes idle with characters missing, the error wraps
// ErrStalled.
func (b *Bench) Transfer(from, to *usart.Device, message []byte, maxTicks int) ([]Result, error) {
	if from == to {
		return nil, errors.New("cannot transfer a device to itself")
	}
	if _, ok := to.Mode().(usart.AsyncMode); !ok || to.Format() != usart.FormatAsync {
		return nil, fmt.Errorf("%s cannot receive in %v format", to.Label, to.Format())
	}
	var results []Result
	if b.Log != nil {
		defer b.Log.Flush()
	}
	next := 0
	idle := 0
	for tick := 0; tick < maxTicks; tick++ {
		if next < len(message) && usart.DecodeStatus(from.Read(usart.ChannelControl)).TxEmpty {
			from.Write(usart.ChannelData, message[next])
			next++
		}
		b.Step()
		status := usart.DecodeStatus(to.Read(usart.ChannelControl))
		if status.RxReady {
			r := Result{
				Data:   to.Read(usart.ChannelData),
				Status: status,
			}
			results = append(results, r)
			if b.Log != nil {
				b.Log.Observe(r)
			}
			if status.HasErrors() {
				to.Write(usart.ChannelControl, to.Command().Encode()|errorResetBit)
			}
		}
		if next == len(message) && from.Status().TxEmpty {
			if len(results) >= len(message) {
				return results, nil
			}
			// let the receiver finish the last stop cell
			idle++
			if idle > 2*from.Divisor() {
				b.Debug("Transfer %s -> %s: line idle with %d of %d characters received.", from.Label, to.Label, len(results), len(message))
				return results, fmt.Errorf("%w: %d of %d characters received", ErrStalled, len(results), len(message))
			}
		}
	}
	b.Debug("Transfer %s -> %s stalled after %d ticks with %d of %d characters sent.", from.Label, to.Label, maxTicks, next, len(message))
	return results, ErrStalled
}

var errorResetBit = usart.Command{ErrorReset: true}.Encode()
