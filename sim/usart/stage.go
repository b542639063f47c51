package usart

import "fmt"

// Channel selects the register addressed by a bus access (the C/D pin).
type Channel uint8

const (
	ChannelData    Channel = 0
	ChannelControl Channel = 1
)

func (c Channel) String() string {
	switch c {
	case ChannelData:
		return "Data"
	case ChannelControl:
		return "Control"
	default:
		return fmt.Sprintf("[UNKNOWN=%d]", uint8(c))
	}
}

// Stage is the position in the initialization sequence: it decides how the
// next control byte is interpreted.
type Stage uint8

const (
	StageMode Stage = iota
	StageSyncChar1
	StageSyncChar2
	StageCommand
)

func (s Stage) String() string {
	switch s {
	case StageMode:
		return "MODE"
	case StageSyncChar1:
		return "SYNC1"
	case StageSyncChar2:
		return "SYNC2"
	case StageCommand:
		return "COMMAND"
	default:
		return fmt.Sprintf("[UNKNOWN=%d]", uint8(s))
	}
}

func (s Stage) Valid() bool {
	return s <= StageCommand
}
