package hw

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeModem buffers both directions of the UART bridge.
type fakeModem struct {
	fromHost []byte
	toHost   []byte
}

func (m *fakeModem) HostWrite(b byte) { m.fromHost = append(m.fromHost, b) }

func (m *fakeModem) HostRead() (byte, bool) {
	if len(m.toHost) == 0 {
		return 0, false
	}
	b := m.toHost[0]
	m.toHost = m.toHost[1:]
	return b, true
}

var _ = Describe("P8 window", func() {
	var p *P8

	BeforeEach(func() {
		p = NewP8()
	})

	It("logs POST codes", func() {
		var buf bytes.Buffer
		p.Log = &buf

		p.WriteByte(p8POSTCode, 7)

		Expect(buf.String()).To(Equal("POST: 7\n"))
	})

	It("flips the displayed framebuffer only on the frame tick", func() {
		p.WriteByte(P8FrontBufferBase, 0x11)
		p.WriteByte(P8BackBufferBase, 0x22)

		p.WriteByte(p8VFront, 1)
		v, _ := p.ReadByte(P8FrontBufferBase)
		Expect(v).To(Equal(uint8(0x11)))

		p.FrameTick()
		v, _ = p.ReadByte(p8VFront)
		Expect(v).To(Equal(uint8(1)))
		v, _ = p.ReadByte(P8FrontBufferBase)
		Expect(v).To(Equal(uint8(0x22)))
		v, _ = p.ReadByte(P8BackBufferBase)
		Expect(v).To(Equal(uint8(0x11)))
	})

	It("flips the overlay plane together with the framebuffer", func() {
		p.WriteByte(P8OverlayBackBase, 0x33)
		p.WriteByte(p8VFront, 1)
		p.FrameTick()

		v, _ := p.ReadByte(P8OverlayFrontBase)
		Expect(v).To(Equal(uint8(0x33)))
		Expect(p.OverlayFront()[0]).To(Equal(uint8(0x33)))
	})

	It("stores the overlay control register", func() {
		p.WriteByte(p8OverlayCtrl, 0x43)

		v, _ := p.ReadByte(p8OverlayCtrl)
		Expect(v).To(Equal(uint8(0x43)))
		Expect(p.OverlayControl).To(Equal(uint8(0x43)))
	})

	It("exposes the keyboard matrix rows", func() {
		p.KeyRows[3] = 0xA5

		v, ok := p.ReadByte(p8Keyboard + 3)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint8(0xA5)))
	})

	It("bridges the UART to the modem device", func() {
		m := &fakeModem{toHost: []byte{'O', 'K'}}
		p.Modem = m

		p.WriteByte(p8UARTData, 'A')
		p.WriteByte(p8UARTData, 'T')
		Expect(m.fromHost).To(Equal([]byte{'A', 'T'}))

		s, _ := p.ReadByte(p8UARTCtrl)
		Expect(s & UARTRxReady).NotTo(BeZero())

		v, _ := p.ReadByte(p8UARTData)
		Expect(v).To(Equal(uint8('O')))
		v, _ = p.ReadByte(p8UARTData)
		Expect(v).To(Equal(uint8('K')))

		s, _ = p.ReadByte(p8UARTCtrl)
		Expect(s & UARTRxReady).To(BeZero())
		Expect(s & UARTTxReady).NotTo(BeZero())
	})

	It("latches the low timer word on the high-word read", func() {
		p.mono = func() uint64 { return 0x12345678 * 1000 } // ns per us

		hi, ok := p.ReadWord(p8Timer1MHzHi)
		Expect(ok).To(BeTrue())
		Expect(hi).To(Equal(uint16(0x1234)))

		p.mono = func() uint64 { return 0 }
		lo, _ := p.ReadWord(p8Timer1MHzLo)
		Expect(lo).To(Equal(uint16(0x5678)))
	})

	It("runs the millisecond timer off the same clock", func() {
		p.mono = func() uint64 { return 0x00020001 * 1000000 }

		hi, _ := p.ReadWord(p8Timer1kHzHi)
		lo, _ := p.ReadWord(p8Timer1kHzLo)
		Expect(hi).To(Equal(uint16(2)))
		Expect(lo).To(Equal(uint16(1)))
	})

	It("assembles sample words from byte writes", func() {
		p.WriteByte(P8DAMemoryBase, 0x80)
		p.WriteByte(P8DAMemoryBase+1, 0x01)

		Expect(p.DAMemory[0]).To(Equal(int16(-0x7FFF)))
		v, _ := p.ReadWord(P8DAMemoryBase)
		Expect(v).To(Equal(uint16(0x8001)))
	})

	It("decodes the DA control word", func() {
		p.WriteWord(p8DAControl, 0x0101)
		p.WriteWord(p8DAPeriod, 0xF0FF)

		Expect(p.DAStart).To(BeTrue())
		Expect(p.DAMono).To(BeTrue())
		Expect(p.DAPeriod).To(Equal(uint16(0x0FF)))
	})

	It("hands audio commands to the callbacks", func() {
		var sfx, music []uint16
		p.SfxCommand = func(v uint16) { sfx = append(sfx, v) }
		p.MusicCommand = func(v uint16) { music = append(music, v) }

		p.WriteWord(p8AudioSfxLen, 12)
		p.WriteWord(p8AudioSfxCmd, 0x2001)
		p.WriteWord(p8AudioMusicFade, 3)
		p.WriteWord(p8AudioMusicCmd, 0x0080)

		Expect(sfx).To(Equal([]uint16{0x2001}))
		Expect(music).To(Equal([]uint16{0x0080}))
		Expect(p.SfxLength).To(Equal(uint16(12)))
		Expect(p.MusicFadeTime).To(Equal(uint16(3)))
	})

	It("reports the audio engine version", func() {
		v, ok := p.ReadWord(p8AudioVersion)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint16(P8AudioVersion)))
	})
})
