package hw

import (
	"fmt"
	"io"
	"time"
)

// NEXTP8 register addresses inside the on-board window.
const (
	p8POSTCode    = 0x18000
	p8VFront      = 0x18001
	p8OverlayCtrl = 0x18002

	p8UARTCtrl = 0x18010
	p8UARTData = 0x18011
	p8UARTBaud = 0x18012

	p8Keyboard     = 0x18020 // 0x20 row bytes
	p8KeyboardSize = 0x20

	p8DAControl = 0x18040
	p8DAPeriod  = 0x18042

	p8AudioCtrl        = 0x18050
	p8AudioSfxBaseHi   = 0x18052
	p8AudioSfxBaseLo   = 0x18054
	p8AudioMusicBaseHi = 0x18056
	p8AudioMusicBaseLo = 0x18058
	p8AudioSfxLen      = 0x1805A
	p8AudioMusicFade   = 0x1805C
	p8AudioSfxCmd      = 0x1805E
	p8AudioMusicCmd    = 0x18060
	p8AudioVersion     = 0x18062

	p8Timer1MHzHi = 0x18070
	p8Timer1MHzLo = 0x18072
	p8Timer1kHzHi = 0x18074
	p8Timer1kHzLo = 0x18076
)

// P8AudioVersion is reported by the version register.
const P8AudioVersion = 0

// NEXTP8 memory-mapped buffer windows.
const (
	P8WindowBase = 0x18000
	P8WindowSize = 0x8000

	P8FrontBufferBase  = 0x200000
	P8BackBufferBase   = 0x202000
	P8OverlayFrontBase = 0x204000
	P8OverlayBackBase  = 0x206000
	P8FrameBufferSize  = 0x2000

	P8PaletteBase = 0x208000
	P8PaletteSize = 0x10

	P8DAMemoryBase = 0x210000
	P8DAMemorySize = 0x10000
)

// UARTDevice is the modem side of the UART bridge.
type UARTDevice interface {
	// HostWrite receives a byte from the CPU side.
	HostWrite(b byte)
	// HostRead hands a byte to the CPU side if one is pending.
	HostRead() (byte, bool)
}

// UART control/status bits.
const (
	UARTRxReady = 0x01
	UARTTxReady = 0x02
)

// P8 implements the NEXTP8 machine profile: free-running timers, the
// UART bridged to a modem device, the DA audio register set with its
// sample memory, double-buffered framebuffers with a palette, the
// keyboard matrix, and the POST code register.
type P8 struct {
	// Modem is the device behind the UART, usually the WiFi model.
	Modem UARTDevice

	// KeyRows holds the keyboard matrix the CPU scans.
	KeyRows [p8KeyboardSize]uint8

	// Framebuffers, overlay planes, and palette. vfront selects the
	// displayed pair.
	FrameBuffers   [2][]uint8
	OverlayBuffers [2][]uint8
	Palette        [P8PaletteSize]uint8
	vfront         int
	vfrontReq      uint8

	// OverlayControl: bits 3-0 transparent index, bit 6 enable.
	OverlayControl uint8

	// DA sample path.
	DAStart   bool
	DAMono    bool
	DAPeriod  uint16
	DAAddress uint16
	DAMemory  []int16

	// Audio command registers.
	AudioControl  uint16
	SfxBaseHi     uint16
	SfxBaseLo     uint16
	MusicBaseHi   uint16
	MusicBaseLo   uint16
	SfxLength     uint16
	MusicFadeTime uint16

	// SfxCommand and MusicCommand receive decoded audio commands.
	SfxCommand   func(cmd uint16)
	MusicCommand func(cmd uint16)

	// Log receives POST codes and other one-off diagnostics.
	Log io.Writer

	baudDiv    uint16
	uartRxHold uint8
	uartRxFull bool

	latch1MHz uint16
	latch1kHz uint16

	mono func() uint64
}

// NewP8 builds the profile handler.
func NewP8() *P8 {
	start := time.Now()
	p := &P8{
		mono: func() uint64 { return uint64(time.Since(start)) },
	}
	p.FrameBuffers[0] = make([]uint8, P8FrameBufferSize)
	p.FrameBuffers[1] = make([]uint8, P8FrameBufferSize)
	p.OverlayBuffers[0] = make([]uint8, P8FrameBufferSize)
	p.OverlayBuffers[1] = make([]uint8, P8FrameBufferSize)
	p.DAMemory = make([]int16, P8DAMemorySize/2)
	return p
}

// FrameTick flips the displayed framebuffer when a flip was requested.
func (p *P8) FrameTick() {
	if p.vfrontReq != uint8(p.vfront) {
		p.vfront = int(p.vfrontReq) & 1
	}
}

// Front returns the displayed framebuffer.
func (p *P8) Front() []uint8 { return p.FrameBuffers[p.vfront] }

// OverlayFront returns the displayed overlay plane.
func (p *P8) OverlayFront() []uint8 { return p.OverlayBuffers[p.vfront] }

func (p *P8) uartStatus() uint8 {
	s := uint8(UARTTxReady)
	if !p.uartRxFull && p.Modem != nil {
		if b, ok := p.Modem.HostRead(); ok {
			p.uartRxHold = b
			p.uartRxFull = true
		}
	}
	if p.uartRxFull {
		s |= UARTRxReady
	}
	return s
}

// ReadByte dispatches a byte read across the profile windows.
func (p *P8) ReadByte(addr uint32) (uint8, bool) {
	switch {
	case addr == p8VFront:
		return uint8(p.vfront), true
	case addr == p8OverlayCtrl:
		return p.OverlayControl, true
	case addr == p8UARTCtrl:
		return p.uartStatus(), true
	case addr == p8UARTData:
		if !p.uartRxFull {
			p.uartStatus() // pump the modem
		}
		if p.uartRxFull {
			p.uartRxFull = false
			return p.uartRxHold, true
		}
		return 0, true
	case addr >= p8Keyboard && addr < p8Keyboard+p8KeyboardSize:
		return p.KeyRows[addr-p8Keyboard], true
	case addr >= P8FrontBufferBase && addr < P8FrontBufferBase+P8FrameBufferSize:
		return p.FrameBuffers[p.vfront][addr-P8FrontBufferBase], true
	case addr >= P8BackBufferBase && addr < P8BackBufferBase+P8FrameBufferSize:
		return p.FrameBuffers[1-p.vfront][addr-P8BackBufferBase], true
	case addr >= P8OverlayFrontBase && addr < P8OverlayFrontBase+P8FrameBufferSize:
		return p.OverlayBuffers[p.vfront][addr-P8OverlayFrontBase], true
	case addr >= P8OverlayBackBase && addr < P8OverlayBackBase+P8FrameBufferSize:
		return p.OverlayBuffers[1-p.vfront][addr-P8OverlayBackBase], true
	case addr >= P8PaletteBase && addr < P8PaletteBase+P8PaletteSize:
		return p.Palette[addr-P8PaletteBase], true
	case addr >= P8DAMemoryBase && addr < P8DAMemoryBase+P8DAMemorySize:
		s := p.DAMemory[(addr-P8DAMemoryBase)>>1]
		if addr&1 == 0 {
			return uint8(uint16(s) >> 8), true
		}
		return uint8(s), true
	}
	return 0, false
}

// WriteByte dispatches a byte write across the profile windows.
func (p *P8) WriteByte(addr uint32, v uint8) bool {
	switch {
	case addr == p8POSTCode:
		if p.Log != nil {
			fmt.Fprintf(p.Log, "POST: %d\n", v)
		}
		return true
	case addr == p8VFront:
		p.vfrontReq = v & 1
		return true
	case addr == p8OverlayCtrl:
		p.OverlayControl = v
		return true
	case addr == p8UARTCtrl:
		return true
	case addr == p8UARTData:
		if p.Modem != nil {
			p.Modem.HostWrite(v)
		}
		return true
	case addr >= P8FrontBufferBase && addr < P8FrontBufferBase+P8FrameBufferSize:
		p.FrameBuffers[p.vfront][addr-P8FrontBufferBase] = v
		return true
	case addr >= P8BackBufferBase && addr < P8BackBufferBase+P8FrameBufferSize:
		p.FrameBuffers[1-p.vfront][addr-P8BackBufferBase] = v
		return true
	case addr >= P8OverlayFrontBase && addr < P8OverlayFrontBase+P8FrameBufferSize:
		p.OverlayBuffers[p.vfront][addr-P8OverlayFrontBase] = v
		return true
	case addr >= P8OverlayBackBase && addr < P8OverlayBackBase+P8FrameBufferSize:
		p.OverlayBuffers[1-p.vfront][addr-P8OverlayBackBase] = v
		return true
	case addr >= P8PaletteBase && addr < P8PaletteBase+P8PaletteSize:
		p.Palette[addr-P8PaletteBase] = v
		return true
	case addr >= P8DAMemoryBase && addr < P8DAMemoryBase+P8DAMemorySize:
		i := (addr - P8DAMemoryBase) >> 1
		if addr&1 == 0 {
			p.DAMemory[i] = int16(uint16(p.DAMemory[i])&0x00FF | uint16(v)<<8)
		} else {
			p.DAMemory[i] = int16(uint16(p.DAMemory[i])&0xFF00 | uint16(v))
		}
		return true
	}
	return false
}

// ReadWord serves the word-granular registers. Timer high-word reads
// latch the low word so a hi/lo pair is coherent.
func (p *P8) ReadWord(addr uint32) (uint16, bool) {
	switch addr {
	case p8DAControl:
		return p.DAAddress, true
	case p8Timer1MHzHi:
		us := uint32(p.mono() / 1000)
		p.latch1MHz = uint16(us)
		return uint16(us >> 16), true
	case p8Timer1MHzLo:
		return p.latch1MHz, true
	case p8Timer1kHzHi:
		ms := uint32(p.mono() / 1000000)
		p.latch1kHz = uint16(ms)
		return uint16(ms >> 16), true
	case p8Timer1kHzLo:
		return p.latch1kHz, true
	case p8AudioVersion:
		return P8AudioVersion, true
	case p8UARTBaud:
		return p.baudDiv, true
	}
	if addr >= P8DAMemoryBase && addr < P8DAMemoryBase+P8DAMemorySize {
		return uint16(p.DAMemory[(addr-P8DAMemoryBase)>>1]), true
	}
	return 0, false
}

// WriteWord serves the word-granular registers.
func (p *P8) WriteWord(addr uint32, v uint16) bool {
	switch addr {
	case p8DAControl:
		p.DAStart = v&1 != 0
		p.DAMono = v>>8&1 != 0
		return true
	case p8DAPeriod:
		p.DAPeriod = v & 0xFFF
		return true
	case p8AudioCtrl:
		p.AudioControl = v
		return true
	case p8AudioSfxBaseHi:
		p.SfxBaseHi = v
		return true
	case p8AudioSfxBaseLo:
		p.SfxBaseLo = v
		return true
	case p8AudioMusicBaseHi:
		p.MusicBaseHi = v
		return true
	case p8AudioMusicBaseLo:
		p.MusicBaseLo = v
		return true
	case p8AudioSfxLen:
		p.SfxLength = v
		return true
	case p8AudioMusicFade:
		p.MusicFadeTime = v
		return true
	case p8AudioSfxCmd:
		if p.SfxCommand != nil {
			p.SfxCommand(v)
		}
		return true
	case p8AudioMusicCmd:
		if p.MusicCommand != nil {
			p.MusicCommand(v)
		}
		return true
	case p8UARTBaud:
		p.baudDiv = v
		return true
	}
	if addr >= P8DAMemoryBase && addr < P8DAMemoryBase+P8DAMemorySize {
		p.DAMemory[(addr-P8DAMemoryBase)>>1] = int16(v)
		return true
	}
	return false
}
