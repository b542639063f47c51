package usart

import "strings"

// Status is the flag set returned by a control channel read.
type Status struct {
	TxReady      bool
	RxReady      bool
	TxEmpty      bool
	ParityError  bool
	OverrunError bool
	FramingError bool
	SyncDetect   bool
	DSR          bool
}

func (s Status) flags() []bool {
	return []bool{s.TxReady, s.RxReady, s.TxEmpty, s.ParityError, s.OverrunError, s.FramingError, s.SyncDetect, s.DSR}
}

// Byte packs the flags into the status register layout, TxRDY in bit 0
// through DSR in bit 7.
func (s Status) Byte() byte {
	var raw byte
	for i, flag := range s.flags() {
		if flag {
			raw |= 1 << i
		}
	}
	return raw
}

func DecodeStatus(raw byte) Status {
	return Status{
		TxReady:      raw&StatusTxReady != 0,
		RxReady:      raw&StatusRxReady != 0,
		TxEmpty:      raw&StatusTxEmpty != 0,
		ParityError:  raw&StatusParityError != 0,
		OverrunError: raw&StatusOverrunError != 0,
		FramingError: raw&StatusFramingError != 0,
		SyncDetect:   raw&StatusSyncDetect != 0,
		DSR:          raw&StatusDSR != 0,
	}
}

// Status register bits.
const (
	StatusTxReady byte = 1 << iota
	StatusRxReady
	StatusTxEmpty
	StatusParityError
	StatusOverrunError
	StatusFramingError
	StatusSyncDetect
	StatusDSR

	StatusErrors = StatusParityError | StatusOverrunError | StatusFramingError
)

func (s Status) HasErrors() bool {
	return s.ParityError || s.OverrunError || s.FramingError
}

func (s *Status) clearErrors() {
	s.ParityError = false
	s.OverrunError = false
	s.FramingError = false
}

var statusNames = [...]string{"TxRDY", "RxRDY", "TxE", "PE", "OE", "FE", "SYNDET", "DSR"}

func (s Status) String() string {
	var set []string
	for i, flag := range s.flags() {
		if flag {
			set = append(set, statusNames[i])
		}
	}
	return "{" + strings.Join(set, " ") + "}"
}
