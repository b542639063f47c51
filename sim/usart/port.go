package usart

import (
	"errors"
	"fmt"
)

// Port maps a Device onto a memory bus. The chip's C/D pin is wired to A0, so
// Base+0 is the data register and Base+1 the control register.
type Port struct {
	Base   uint32
	Device *Device
}

const PortSize = 2

func NewPort(base uint32, d *Device) *Port {
	return &Port{Base: base, Device: d}
}

func (p *Port) Contains(addr uint32) bool {
	return addr >= p.Base && addr < p.Base+PortSize
}

func (p *Port) channel(addr uint32) Channel {
	if (addr-p.Base)&1 != 0 {
		return ChannelControl
	}
	return ChannelData
}

func (p *Port) Read8(addr uint32) (uint8, bool) {
	if !p.Contains(addr) {
		return 0, false
	}
	return p.Device.Read(p.channel(addr)), true
}

func (p *Port) Write8(addr uint32, v uint8) bool {
	if !p.Contains(addr) {
		return false
	}
	p.Device.Write(p.channel(addr), v)
	return true
}

// Configure runs the initialization sequence a host performs: it brings the
// chip back to expecting a mode instruction, then writes the mode, the sync
// characters (synchronous format only) and the command.
func (d *Device) Configure(mode Mode, cmd Command, syncChars ...byte) error {
	if mode == nil {
		return errors.New("no mode given")
	}
	if err := mode.Validate(); err != nil {
		return err
	}
	needSync := 0
	if m, ok := mode.(SyncMode); ok {
		needSync = 2
		if m.SingleSync {
			needSync = 1
		}
	}
	if len(syncChars) != needSync {
		return fmt.Errorf("mode %v needs %d sync characters, got %d", mode, needSync, len(syncChars))
	}
	if cmd.InternalReset {
		return errors.New("command would reset the configuration just written")
	}

	// finish any partial sequence, then issue an internal reset
	for d.stage == StageSyncChar1 || d.stage == StageSyncChar2 {
		d.Write(ChannelControl, 0x00)
	}
	if d.stage == StageCommand {
		d.Write(ChannelControl, Command{InternalReset: true}.Encode())
	}
	if d.stage != StageMode {
		return fmt.Errorf("unexpected stage %v after internal reset", d.stage)
	}

	d.Write(ChannelControl, mode.Encode())
	for _, sc := range syncChars {
		d.Write(ChannelControl, sc)
	}
	d.Write(ChannelControl, cmd.Encode())
	return nil
}
