package bench

import (
	"fmt"
	"github.com/celskeggs/usartsim/sim/model"
	"log"
	"strings"
)

// Logger prints the characters a receiver completes in hex, batched into
// lines of roughly 100 columns. Characters received with an error flag are
// marked with '!'.
type Logger struct {
	clock model.Clock
	name  string
	chs   string
}

func MakeLogger(clock model.Clock, name string) *Logger {
	return &Logger{
		clock: clock,
		name:  name,
	}
}

func (l *Logger) Observe(r Result) {
	l.chs += fmt.Sprintf("%02x", r.Data)
	if r.Status.HasErrors() {
		l.chs += "!"
	}
	l.chs += " "
	if len(l.chs) >= 100 {
		l.Flush()
	}
}

func (l *Logger) Flush() {
	if l.chs == "" {
		return
	}
	log.Printf("%v [%s] COMM: %s", l.clock.Now(), l.name, strings.TrimRight(l.chs, " "))
	l.chs = ""
}
