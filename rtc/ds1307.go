// Package rtc models a DS1307 real-time clock behind an I2C master
// exposed as a data/control register pair. The memory map is seven
// BCD time registers, a control register, and 56 bytes of battery
// RAM. The master hardware handles device addressing, so the model
// only sees register pointers and data bytes.
package rtc

import "time"

const (
	memSize = 64

	regSeconds = 0x00
	regMinutes = 0x01
	regHours   = 0x02
	regDay     = 0x03
	regDate    = 0x04
	regMonth   = 0x05
	regYear    = 0x06

	// Clock-halt bit in the seconds register.
	chBit = 0x80
)

// Status register bits.
const (
	StatusBusy  = 0x01
	StatusError = 0x02
)

type i2cState int

const (
	stateIdle i2cState = iota
	stateWriteData
	stateReadData
	stateError
)

// DS1307 is the clock model. Transactions are staged: the CPU writes
// the data register, then the control register (enable + read/write
// bits); the transaction itself runs while the CPU polls the status
// register, which also counts down the busy window.
type DS1307 struct {
	memory [memSize]uint8
	regPtr uint8
	state  i2cState

	dataIn  uint8
	dataOut uint8
	busy    int
	err     bool

	nextCtrl    uint8
	pendingCtrl bool

	// Last transaction latch, used to detect a repeated command so
	// sequential reads auto-increment instead of restarting.
	lastDataIn uint8
	lastRW     bool

	lastUpdate time.Time
	now        func() time.Time
}

// New creates a running clock set from host time.
func New() *DS1307 {
	d := &DS1307{now: time.Now}
	d.updateRegisters()
	d.memory[regSeconds] &^= chBit
	return d
}

// SetClock replaces the time source. Tests use a fixed clock.
func (d *DS1307) SetClock(now func() time.Time) {
	d.now = now
	d.updateRegisters()
	d.memory[regSeconds] &^= chBit
}

func binToBCD(v int) uint8 {
	return uint8(v/10<<4 | v%10)
}

// updateRegisters refreshes the time registers from the host clock
// unless the clock-halt bit is set.
func (d *DS1307) updateRegisters() {
	if d.memory[regSeconds]&chBit != 0 {
		return
	}
	t := d.now()
	d.memory[regSeconds] = binToBCD(t.Second()) & 0x7F
	d.memory[regMinutes] = binToBCD(t.Minute()) & 0x7F
	d.memory[regHours] = binToBCD(t.Hour()) & 0x3F
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	d.memory[regDay] = uint8(wd)
	d.memory[regDate] = binToBCD(t.Day()) & 0x3F
	d.memory[regMonth] = binToBCD(int(t.Month())) & 0x1F
	d.memory[regYear] = binToBCD(t.Year() % 100)
	d.lastUpdate = t
}

// Update resynchronizes the registers with the host clock. Call once
// per frame.
func (d *DS1307) Update() {
	if t := d.now(); t.Unix() != d.lastUpdate.Unix() {
		d.updateRegisters()
	}
}

// WriteData buffers the byte for the next transaction.
func (d *DS1307) WriteData(v uint8) {
	d.dataIn = v
}

// ReadData returns the byte the last read transaction produced.
func (d *DS1307) ReadData() uint8 {
	return d.dataOut
}

// WriteCtrl stages a control write: bit 0 enables the bus, bit 1
// selects read. The transaction runs during status polling.
func (d *DS1307) WriteCtrl(v uint8) {
	d.nextCtrl = v
	d.pendingCtrl = true
}

// ReadStatus reports busy/error and drives the staged transaction:
// the busy window counts down across polls, a completed read stages
// the next byte, and a pending control write is processed once the
// bus is free.
func (d *DS1307) ReadStatus() uint8 {
	var status uint8
	if d.busy > 0 {
		status |= StatusBusy
	}
	if d.err {
		status |= StatusError
	}

	if d.busy > 0 {
		d.busy--
	} else if !d.pendingCtrl && d.state == stateReadData {
		// A completed read re-arms itself so sequential polls pull
		// consecutive registers.
		d.pendingCtrl = true
	} else if d.pendingCtrl {
		d.processPendingCtrl()
	}
	return status
}

func (d *DS1307) processPendingCtrl() {
	ena := d.nextCtrl&0x01 != 0
	rw := d.nextCtrl&0x02 != 0
	d.pendingCtrl = false

	if !ena {
		// STOP condition.
		d.state = stateIdle
		d.busy = 0
		return
	}

	d.busy = 2

	// A repeated identical command continues the running transaction
	// with the auto-incremented pointer; anything else starts fresh.
	if !(d.dataIn == d.lastDataIn && rw == d.lastRW) {
		d.state = stateIdle
	}

	if rw {
		d.transactRead()
	} else {
		d.transactWrite()
	}
	d.lastDataIn = d.dataIn
	d.lastRW = rw
}

func (d *DS1307) transactWrite() {
	b := d.dataIn
	switch d.state {
	case stateIdle:
		// First byte after START sets the register pointer.
		if b < memSize {
			d.regPtr = b
			d.state = stateWriteData
			d.err = false
		} else {
			d.err = true
			d.state = stateError
		}
	case stateWriteData:
		d.memory[d.regPtr] = b
		d.regPtr = (d.regPtr + 1) % memSize
		d.err = false
	case stateReadData:
		d.err = true
		d.state = stateError
	case stateError:
		// stay
	}
}

func (d *DS1307) transactRead() {
	d.state = stateReadData
	d.dataOut = d.memory[d.regPtr]
	d.regPtr = (d.regPtr + 1) % memSize
	d.err = false
}

// Reset returns the bus interface to idle without touching the time.
func (d *DS1307) Reset() {
	d.state = stateIdle
	d.busy = 0
	d.err = false
	d.pendingCtrl = false
	d.lastDataIn = 0
	d.lastRW = false
}

// Register addresses of the MMIO pair in the NEXTP8 profile.
const (
	DataReg    = 0x800021
	CtrlReg    = 0x800023
	WindowBase = 0x800020
	WindowSize = 0x10
)

// ReadByte implements the bus handler over the register pair.
func (d *DS1307) ReadByte(addr uint32) (uint8, bool) {
	switch addr {
	case DataReg:
		return d.ReadData(), true
	case CtrlReg:
		return d.ReadStatus(), true
	}
	return 0, false
}

// WriteByte implements the bus handler over the register pair.
func (d *DS1307) WriteByte(addr uint32, v uint8) bool {
	switch addr {
	case DataReg:
		d.WriteData(v)
		return true
	case CtrlReg:
		d.WriteCtrl(v)
		return true
	}
	return false
}
