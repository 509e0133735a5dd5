// Package bus implements the byte-addressed, big-endian memory map:
// RAM backed by a flat slice, reserved hardware windows dispatched to
// device handlers, an open-bus sentinel for unclaimed window
// addresses, and the fatal guard on writes into the ROM image.
package bus

import (
	"fmt"
	"io"
	"os"
)

// AddressMask limits bus addresses to the 24-bit space.
const AddressMask = 0x00FFFFFF

const (
	// romBoundary is the top of the write-protected ROM image.
	// Writing below it means the OS image is being corrupted, which
	// is never recoverable, so it kills the process.
	romBoundary = 32768

	// The two fixed top-of-space addresses with the same guard.
	fatalTop0 = 0x7FFFFE
	fatalTop1 = 0x7FFFFF

	// Byte writes here escape to the host console.
	consoleOut = 0xFFFFFE
	consoleErr = 0xFFFFFF
)

// Handler is a device mapped into a hardware window. A false return
// means the address has no device behind it and the mux substitutes
// the open-bus value.
type Handler interface {
	ReadByte(addr uint32) (uint8, bool)
	WriteByte(addr uint32, v uint8) bool
}

// WordHandler is implemented by devices with word-granular registers.
// The mux composes unclaimed word accesses from byte accesses.
type WordHandler interface {
	ReadWord(addr uint32) (uint16, bool)
	WriteWord(addr uint32, v uint16) bool
}

// LongReader is implemented by devices whose registers latch on a
// long read, such as the free-running timer.
type LongReader interface {
	ReadLong(addr uint32) (uint32, bool)
}

// Window maps [Base, Base+Size) onto a Handler.
type Window struct {
	Base    uint32
	Size    uint32
	Handler Handler
}

func (w *Window) contains(addr uint32) bool {
	return addr >= w.Base && addr < w.Base+w.Size
}

// Memory is the system bus. It satisfies the core's Bus interface.
type Memory struct {
	ram        []byte
	ramTop     uint32
	writeFloor uint32
	windows    []Window

	trace   io.Writer
	stdout  io.Writer
	stderr  io.Writer
	onFatal func(addr uint32, v uint32)

	onDataRead  func(addr uint32)
	onDataWrite func(addr uint32)
}

// Option configures a Memory at construction time.
type Option func(*Memory)

// WithWindow maps a hardware window. Windows are searched in the
// order given.
func WithWindow(base, size uint32, h Handler) Option {
	return func(m *Memory) {
		m.windows = append(m.windows, Window{Base: base, Size: size, Handler: h})
	}
}

// WithTrace logs every data access to w.
func WithTrace(w io.Writer) Option {
	return func(m *Memory) { m.trace = w }
}

// WithWriteFloor sets the lowest RAM address ordinary writes reach.
// Writes between the ROM image and the floor are dropped.
func WithWriteFloor(addr uint32) Option {
	return func(m *Memory) { m.writeFloor = addr }
}

// WithFatalHook replaces the default fatal-write behavior of dumping
// a diagnostic and exiting the process.
func WithFatalHook(fn func(addr uint32, v uint32)) Option {
	return func(m *Memory) { m.onFatal = fn }
}

// WithConsole redirects the console escape-hatch bytes.
func WithConsole(out, err io.Writer) Option {
	return func(m *Memory) {
		m.stdout = out
		m.stderr = err
	}
}

// WithAccessHooks installs profiling callbacks for data reads and
// writes.
func WithAccessHooks(read, write func(addr uint32)) Option {
	return func(m *Memory) {
		m.onDataRead = read
		m.onDataWrite = write
	}
}

// New creates a bus with ramTop bytes of directly addressable memory.
func New(ramTop uint32, opts ...Option) *Memory {
	m := &Memory{
		ram:        make([]byte, ramTop),
		ramTop:     ramTop,
		writeFloor: romBoundary,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.onFatal == nil {
		m.onFatal = func(addr uint32, v uint32) {
			fmt.Fprintf(os.Stderr,
				"\n*** Write to non-writable address 0x%x (value=0x%x) ***\n",
				addr, v)
			os.Exit(1)
		}
	}
	return m
}

// RAM exposes the backing store for devices that scan memory
// directly, such as the video decoder.
func (m *Memory) RAM() []byte { return m.ram }

// LoadROM copies a ROM image into the bottom of the address space.
func (m *Memory) LoadROM(offset uint32, image []byte) error {
	if offset+uint32(len(image)) > m.ramTop {
		return fmt.Errorf("ROM image of %d bytes at %#x exceeds memory top %#x",
			len(image), offset, m.ramTop)
	}
	copy(m.ram[offset:], image)
	return nil
}

func (m *Memory) window(addr uint32) *Window {
	for i := range m.windows {
		if m.windows[i].contains(addr) {
			return &m.windows[i]
		}
	}
	return nil
}

// openBus reports an unclaimed hardware-window access and supplies
// the all-ones sentinel.
func (m *Memory) openBus(addr uint32) uint8 {
	if m.trace != nil {
		fmt.Fprintf(m.trace, "HW RD: unclaimed addr=0x%x\n", addr)
	}
	return 0xFF
}

func (m *Memory) logRead(addr uint32, data uint32) {
	if m.trace != nil {
		fmt.Fprintf(m.trace, "MEM RD: addr=0x%x data=0x%x\n", addr, data)
	}
}

func (m *Memory) logWrite(addr uint32, data uint32) {
	if m.trace != nil {
		fmt.Fprintf(m.trace, "MEM WR: addr=0x%x data=0x%x\n", addr, data)
	}
}

// ReadByte reads one byte.
func (m *Memory) ReadByte(addr uint32) uint8 {
	addr &= AddressMask
	if m.onDataRead != nil {
		m.onDataRead(addr)
	}

	if w := m.window(addr); w != nil {
		v, ok := w.Handler.ReadByte(addr)
		if !ok {
			v = m.openBus(addr)
		}
		m.logRead(addr, uint32(v))
		return v
	}
	if addr >= m.ramTop {
		m.logRead(addr, 0)
		return 0
	}
	v := m.ram[addr]
	m.logRead(addr, uint32(v))
	return v
}

// ReadWord reads a big-endian word.
func (m *Memory) ReadWord(addr uint32) uint16 {
	addr &= AddressMask
	if m.onDataRead != nil {
		m.onDataRead(addr)
	}

	if w := m.window(addr); w != nil {
		v := m.hwReadWord(w, addr)
		m.logRead(addr, uint32(v))
		return v
	}
	if addr+1 >= m.ramTop {
		m.logRead(addr, 0)
		return 0
	}
	v := uint16(m.ram[addr])<<8 | uint16(m.ram[addr+1])
	m.logRead(addr, uint32(v))
	return v
}

// ReadLong reads a big-endian long.
func (m *Memory) ReadLong(addr uint32) uint32 {
	addr &= AddressMask
	if m.onDataRead != nil {
		m.onDataRead(addr)
	}

	if w := m.window(addr); w != nil {
		if lr, ok := w.Handler.(LongReader); ok {
			if v, ok := lr.ReadLong(addr); ok {
				m.logRead(addr, v)
				return v
			}
		}
		v := uint32(m.hwReadWord(w, addr))<<16 | uint32(m.hwReadWord(w, addr+2))
		m.logRead(addr, v)
		return v
	}
	if addr+3 >= m.ramTop {
		m.logRead(addr, 0)
		return 0
	}
	v := uint32(m.ram[addr])<<24 | uint32(m.ram[addr+1])<<16 |
		uint32(m.ram[addr+2])<<8 | uint32(m.ram[addr+3])
	m.logRead(addr, v)
	return v
}

func (m *Memory) hwReadWord(w *Window, addr uint32) uint16 {
	if wh, ok := w.Handler.(WordHandler); ok {
		if v, ok := wh.ReadWord(addr); ok {
			return v
		}
	}
	hi, ok := w.Handler.ReadByte(addr)
	if !ok {
		hi = m.openBus(addr)
	}
	lo, ok := w.Handler.ReadByte(addr + 1)
	if !ok {
		lo = m.openBus(addr + 1)
	}
	return uint16(hi)<<8 | uint16(lo)
}

// checkFatal applies the non-writable guard. It does not return on a
// hit unless a fatal hook decides otherwise.
func (m *Memory) checkFatal(addr uint32, v uint32) bool {
	if addr < romBoundary || addr == fatalTop0 || addr == fatalTop1 {
		m.onFatal(addr, v)
		return true
	}
	return false
}

// WriteByte writes one byte.
func (m *Memory) WriteByte(addr uint32, v uint8) {
	addr &= AddressMask
	if m.onDataWrite != nil {
		m.onDataWrite(addr)
	}
	if m.checkFatal(addr, uint32(v)) {
		return
	}

	switch addr {
	case consoleOut:
		m.stdout.Write([]byte{v})
		return
	case consoleErr:
		m.stderr.Write([]byte{v})
		return
	}

	if w := m.window(addr); w != nil {
		if !w.Handler.WriteByte(addr, v) && m.trace != nil {
			fmt.Fprintf(m.trace, "HW WR: unclaimed addr=0x%x data=0x%x\n", addr, v)
		}
		m.logWrite(addr, uint32(v))
		return
	}
	if addr >= m.ramTop || addr < m.writeFloor {
		return
	}
	m.ram[addr] = v
	m.logWrite(addr, uint32(v))
}

// WriteWord writes a big-endian word.
func (m *Memory) WriteWord(addr uint32, v uint16) {
	addr &= AddressMask
	if m.onDataWrite != nil {
		m.onDataWrite(addr)
	}
	if m.checkFatal(addr, uint32(v)) {
		return
	}

	if w := m.window(addr); w != nil {
		m.hwWriteWord(w, addr, v)
		m.logWrite(addr, uint32(v))
		return
	}
	if addr+1 >= m.ramTop || addr < m.writeFloor {
		return
	}
	m.ram[addr] = uint8(v >> 8)
	m.ram[addr+1] = uint8(v)
	m.logWrite(addr, uint32(v))
}

// WriteLong writes a big-endian long.
func (m *Memory) WriteLong(addr uint32, v uint32) {
	addr &= AddressMask
	if m.onDataWrite != nil {
		m.onDataWrite(addr)
	}
	if m.checkFatal(addr, v) {
		return
	}

	if w := m.window(addr); w != nil {
		m.hwWriteWord(w, addr, uint16(v>>16))
		m.hwWriteWord(w, addr+2, uint16(v))
		m.logWrite(addr, v)
		return
	}
	if addr+3 >= m.ramTop || addr < m.writeFloor {
		return
	}
	m.ram[addr] = uint8(v >> 24)
	m.ram[addr+1] = uint8(v >> 16)
	m.ram[addr+2] = uint8(v >> 8)
	m.ram[addr+3] = uint8(v)
	m.logWrite(addr, v)
}

func (m *Memory) hwWriteWord(w *Window, addr uint32, v uint16) {
	if wh, ok := w.Handler.(WordHandler); ok {
		if wh.WriteWord(addr, v) {
			return
		}
	}
	ok1 := w.Handler.WriteByte(addr, uint8(v>>8))
	ok2 := w.Handler.WriteByte(addr+1, uint8(v))
	if (!ok1 || !ok2) && m.trace != nil {
		fmt.Fprintf(m.trace, "HW WR: unclaimed addr=0x%x data=0x%x\n", addr, v)
	}
}

// FetchWord reads an instruction word. Fetches skip access tracing
// and the profiler data hooks; hardware windows still dispatch so
// code can in principle run from a device.
func (m *Memory) FetchWord(addr uint32) uint16 {
	addr &= AddressMask
	if w := m.window(addr); w != nil {
		return m.hwReadWord(w, addr)
	}
	if addr+1 >= m.ramTop {
		return 0
	}
	return uint16(m.ram[addr])<<8 | uint16(m.ram[addr+1])
}
