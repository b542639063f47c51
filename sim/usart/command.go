package usart

import "strings"

// Command is a decoded command instruction.
type Command struct {
	TxEnable  bool
	DTR       bool
	RxEnable  bool
	SendBreak bool
	// ErrorReset and InternalReset act once when written and are not retained.
	ErrorReset    bool
	RTS           bool
	InternalReset bool
	Hunt          bool
}

// DecodeCommand maps each bit of a command instruction to its flag. Every
// combination is accepted.
func DecodeCommand(raw byte) Command {
	return Command{
		TxEnable:      (raw>>0)&1 != 0,
		DTR:           (raw>>1)&1 != 0,
		RxEnable:      (raw>>2)&1 != 0,
		SendBreak:     (raw>>3)&1 != 0,
		ErrorReset:    (raw>>4)&1 != 0,
		RTS:           (raw>>5)&1 != 0,
		InternalReset: (raw>>6)&1 != 0,
		Hunt:          (raw>>7)&1 != 0,
	}
}

func (c Command) flags() []bool {
	return []bool{c.TxEnable, c.DTR, c.RxEnable, c.SendBreak, c.ErrorReset, c.RTS, c.InternalReset, c.Hunt}
}

func (c Command) Encode() byte {
	var raw byte
	for i, flag := range c.flags() {
		if flag {
			raw |= 1 << i
		}
	}
	return raw
}

var commandNames = [...]string{"TxEN", "DTR", "RxE", "SBRK", "ER", "RTS", "IR", "EH"}

func (c Command) String() string {
	var set []string
	for i, flag := range c.flags() {
		if flag {
			set = append(set, commandNames[i])
		}
	}
	return "{" + strings.Join(set, " ") + "}"
}
