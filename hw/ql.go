package hw

import (
	"time"
)

// QL on-board register addresses.
const (
	qlRTCBase     = 0x18000 // 4 bytes, seconds counter
	qlXmitCtrl    = 0x18002
	qlIPCLink     = 0x18003
	qlMdvStatus   = 0x18020
	qlIntReg      = 0x18021
	qlMdvData     = 0x18022
	qlMdvTrack2   = 0x18023
	qlDisplayCtrl = 0x18063
	qlBDISelect   = 0x18100
	qlBDICommand  = 0x18101
	qlBDIStatus   = 0x18102
	qlBDIData     = 0x18103
	qlBDIAddrHi   = 0x18104
	qlBDIAddrLo   = 0x18106
	qlBDISizeHi   = 0x18108
	qlBDISizeLo   = 0x1810A
	qlNanotime    = 0x1C060 // 4 bytes, monotonic ns/25
)

// QLWindow is the address range the QL profile claims.
const (
	QLWindowBase = 0x18000
	QLWindowSize = 0x8000
)

// Frame-interrupt bit in the interrupt register.
const IntFrame = 0x08

// qdosEpoch is the zero point of the QL seconds counter.
var qdosEpoch = time.Date(1961, 1, 1, 0, 0, 0, 0, time.UTC)

// QL implements the on-board hardware window of the QL profile: the
// seconds clock, the IPC link, the interrupt register, the BDI disk
// port, and the free-running nanotimer.
type QL struct {
	IPC *IPC
	BDI *BDI

	intReg uint8
	theInt uint8

	mdvCtrl uint8

	// SetDisplay receives display-control writes.
	SetDisplay func(v uint8)

	// nanotime is latched on the byte-0 read so multi-byte reads
	// see one coherent value.
	nanotime uint32

	now  func() time.Time
	mono func() uint64
}

// NewQL builds the window handler. A nil disk image is allowed.
func NewQL(disk []byte) *QL {
	start := time.Now()
	return &QL{
		IPC:  NewIPC(),
		BDI:  NewBDI(disk),
		now:  time.Now,
		mono: func() uint64 { return uint64(time.Since(start)) },
	}
}

// seconds returns the QL clock: seconds since the QDOS epoch.
func (q *QL) seconds() uint32 {
	return uint32(q.now().Sub(qdosEpoch) / time.Second)
}

// FrameTick latches the 50 Hz frame interrupt if it is enabled,
// reporting whether the CPU line should be raised.
func (q *QL) FrameTick() bool {
	if q.intReg&IntFrame == 0 {
		return false
	}
	q.theInt = IntFrame
	q.intReg ^= IntFrame
	return true
}

// ReadByte dispatches a byte read inside the window.
func (q *QL) ReadByte(addr uint32) (uint8, bool) {
	switch addr {
	case qlRTCBase, qlRTCBase + 1, qlRTCBase + 2, qlRTCBase + 3:
		t := q.seconds()
		return uint8(t >> (8 * (qlRTCBase + 3 - addr))), true
	case qlMdvStatus:
		return q.IPC.ReadStatus(), true
	case qlIntReg:
		t := q.theInt
		q.theInt = 0
		return t, true
	case qlMdvData, qlMdvTrack2:
		return 0, true
	case qlBDIStatus:
		return q.BDI.Status(), true
	case qlBDIData:
		return q.BDI.DataRead(), true
	case qlNanotime:
		q.nanotime = uint32(q.mono() / 25)
		return uint8(q.nanotime >> 24), true
	case qlNanotime + 1:
		return uint8(q.nanotime >> 16), true
	case qlNanotime + 2:
		return uint8(q.nanotime >> 8), true
	case qlNanotime + 3:
		return uint8(q.nanotime), true
	}
	return 0, false
}

// WriteByte dispatches a byte write inside the window.
func (q *QL) WriteByte(addr uint32, v uint8) bool {
	switch addr {
	case qlDisplayCtrl:
		if q.SetDisplay != nil {
			q.SetDisplay(v)
		}
		return true
	case qlRTCBase, qlRTCBase + 1:
		return true // clock is read-only
	case qlXmitCtrl:
		return true
	case qlIPCLink:
		q.IPC.Write(v)
		return true
	case qlMdvStatus:
		q.mdvCtrl = v
		return true
	case qlIntReg:
		q.intReg = v
		return true
	case qlMdvData:
		return true
	case qlBDISelect:
		q.BDI.Select(v)
		return true
	case qlBDICommand:
		q.BDI.Command(v)
		return true
	case qlBDIData:
		q.BDI.DataWrite(v)
		return true
	}
	return false
}

// ReadWord serves the word-granular BDI size registers.
func (q *QL) ReadWord(addr uint32) (uint16, bool) {
	switch addr {
	case qlBDISizeHi:
		return q.BDI.SizeHigh(), true
	case qlBDISizeLo:
		return q.BDI.SizeLow(), true
	}
	return 0, false
}

// WriteWord serves the word-granular BDI address registers.
func (q *QL) WriteWord(addr uint32, v uint16) bool {
	switch addr {
	case qlBDIAddrHi:
		q.BDI.SetAddressHigh(v)
		return true
	case qlBDIAddrLo:
		q.BDI.SetAddressLow(v)
		return true
	}
	return false
}

// ReadLong latches and returns the whole nanotimer in one access.
func (q *QL) ReadLong(addr uint32) (uint32, bool) {
	if addr == qlNanotime {
		q.nanotime = uint32(q.mono() / 25)
		return q.nanotime, true
	}
	return 0, false
}
