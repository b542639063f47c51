package model

import (
	"fmt"
	"time"
)

type VirtualTime int64

const NanosecondsPerSecond = int64(time.Second / time.Nanosecond)

func (t VirtualTime) String() string {
	if t.TimeExists() {
		ns := int64(t)
		return fmt.Sprintf("[%ds+%09dns]", ns/NanosecondsPerSecond, ns%NanosecondsPerSecond)
	} else {
		return "[never]"
	}
}

func (t VirtualTime) TimeExists() bool {
	return t >= 0
}

func (t VirtualTime) Add(duration time.Duration) VirtualTime {
	if !t.TimeExists() {
		return t
	}
	t2 := t + VirtualTime(duration.Nanoseconds())
	if (duration > 0 && t2 < t) || (duration < 0 && t2 > t) {
		panic("times wrapped around")
	}
	return t2
}

func (t VirtualTime) Since(base VirtualTime) time.Duration {
	if !t.TimeExists() || !base.TimeExists() {
		panic("times don't exist")
	}
	if base > t {
		panic("cannot compute negative duration in since; expectation is that base is AT or BEFORE t")
	}
	return time.Nanosecond * time.Duration(t-base)
}

func (t VirtualTime) Nanoseconds() uint64 {
	if !t.TimeExists() {
		panic("time doesn't exist")
	}
	return uint64(t)
}

func FromNanoseconds(t uint64) (VirtualTime, bool) {
	vt := VirtualTime(t)
	return vt, vt.TimeExists()
}

const TimeNever VirtualTime = -1
const TimeZero VirtualTime = 0

// Clock supplies the current virtual time to components that log or record.
type Clock interface {
	Now() VirtualTime
}

// TickRate is the rate at which a clock generator drives the chip's tick
// inputs: Baud bit cells per second, each divided into Divisor ticks.
type TickRate struct {
	Baud    int
	Divisor int
}

func (r TickRate) Validate() error {
	if r.Baud <= 0 {
		return fmt.Errorf("invalid baud rate: %d", r.Baud)
	}
	if r.Divisor < 1 {
		return fmt.Errorf("invalid divisor: %d", r.Divisor)
	}
	if int64(r.Baud)*int64(r.Divisor) > NanosecondsPerSecond {
		return fmt.Errorf("tick rate %d*%d exceeds nanosecond resolution", r.Baud, r.Divisor)
	}
	return nil
}

// TickPeriod is the virtual time between two ticks, rounded to the nanosecond.
func (r TickRate) TickPeriod() time.Duration {
	return time.Duration(NanosecondsPerSecond / (int64(r.Baud) * int64(r.Divisor)))
}

// BitPeriod is the length of one bit cell.
func (r TickRate) BitPeriod() time.Duration {
	return r.TickPeriod() * time.Duration(r.Divisor)
}
