// Package hw holds the machine-profile hardware behind the bus
// windows: the QL on-board registers with the 8049 IPC link, and the
// NEXTP8 register set.
package hw

// IPC models the bit-serial link to the 8049 peripheral controller.
// Commands arrive one bit per write: a byte with both marker bits set
// (0x0c) clocks a bit into the shift register, 0x0c exactly meaning 0
// and any other marked value meaning 1. The register is seeded with a
// guard bit; when the guard reaches bit 4, the low nibble is executed
// as a command.
//
// While a response is armed, each further write clocks one response
// bit into a little byte pipeline that status reads then pop.
type IPC struct {
	waiting  bool
	rcvd     int
	previous int
	ret      int
	count    int
	pipeline uint32

	// OnCommand observes every executed command nibble. The machine
	// uses it to catch the sound commands the link itself ignores.
	OnCommand func(cmd int)
}

// NewIPC returns an idle link.
func NewIPC() *IPC {
	return &IPC{waiting: true, rcvd: 1, previous: 0x10}
}

// Write clocks the link from the command register.
func (p *IPC) Write(d uint8) {
	if p.waiting {
		if d&0x0C != 0x0C {
			return
		}
		p.rcvd <<= 1
		if d != 0x0C {
			p.rcvd |= 1
		}
		if p.rcvd&0x10 != 0 {
			command := p.rcvd & 0x0F
			p.rcvd = 1
			p.waiting = false
			p.exec(command)
		}
		return
	}

	// Response bit clock-out. Each bit becomes a zero byte followed
	// by bit<<7, with an 0xa5 end marker behind them.
	p.pipeline = 0
	p.count--
	if p.ret&(1<<p.count) != 0 {
		p.pipeline |= 0x80
	}
	p.pipeline <<= 8
	p.pipeline |= 0xA50000
	if p.count == 0 {
		p.waiting = true
	}
}

// exec runs a received command. Command 8 arms its response and then
// deliberately falls into the re-arm of command 0x0d: the ROM depends
// on the link accepting a new command right after asking for the
// version word.
func (p *IPC) exec(command int) {
	switch command {
	case 0x01:
		p.ret = 0
		p.count = 8
	case 0x08:
		p.ret = 0x1039
		p.count = 16
		fallthrough
	case 0x0D:
		p.waiting = true
	case 0x10:
		// dummy
	default:
		p.ret = 0
		p.count = 4
	}
	p.previous = command
	if p.OnCommand != nil {
		p.OnCommand(command)
	}
}

// ReadStatus pops one byte of the response pipeline, or reports the
// idle status value 2.
func (p *IPC) ReadStatus() uint8 {
	if p.pipeline == 0 {
		return 2
	}
	b := uint8(p.pipeline)
	p.pipeline >>= 8
	if p.pipeline == 0xA5 {
		p.pipeline = 0
	}
	return b
}

// Waiting reports whether the link is accumulating command bits.
func (p *IPC) Waiting() bool { return p.waiting }

// LastCommand returns the last executed command nibble.
func (p *IPC) LastCommand() int { return p.previous }
