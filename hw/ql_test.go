package hw

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("QL window", func() {
	var q *QL

	BeforeEach(func() {
		q = NewQL(nil)
	})

	It("reports seconds since the QDOS epoch, big end first", func() {
		q.now = func() time.Time { return qdosEpoch.Add(0x01020304 * time.Second) }

		for i, want := range []uint8{1, 2, 3, 4} {
			v, ok := q.ReadByte(qlRTCBase + uint32(i))
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(want))
		}
	})

	It("ignores writes to the clock", func() {
		Expect(q.WriteByte(qlRTCBase, 0xFF)).To(BeTrue())
	})

	It("latches the frame interrupt only while enabled", func() {
		Expect(q.FrameTick()).To(BeFalse())

		q.WriteByte(qlIntReg, IntFrame)
		Expect(q.FrameTick()).To(BeTrue())

		v, _ := q.ReadByte(qlIntReg)
		Expect(v).To(Equal(uint8(IntFrame)))

		// The pending bit clears on read, and the enable was
		// consumed by the tick.
		v, _ = q.ReadByte(qlIntReg)
		Expect(v).To(Equal(uint8(0)))
		Expect(q.FrameTick()).To(BeFalse())
	})

	It("forwards display-control writes", func() {
		var got uint8
		q.SetDisplay = func(v uint8) { got = v }

		q.WriteByte(qlDisplayCtrl, 0x08)

		Expect(got).To(Equal(uint8(0x08)))
	})

	It("routes link writes to the IPC and status reads back", func() {
		for _, d := range []uint8{0x0C, 0x0C, 0x0C, 0x0E} {
			q.WriteByte(qlIPCLink, d)
		}
		Expect(q.IPC.Waiting()).To(BeFalse())
		Expect(q.IPC.LastCommand()).To(Equal(0x01))

		v, ok := q.ReadByte(qlMdvStatus)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint8(2)))
	})

	It("returns one coherent nanotimer value per long read", func() {
		q.mono = func() uint64 { return 2500 }

		v, ok := q.ReadLong(qlNanotime)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint32(100)))
	})

	It("latches the nanotimer on the first byte of a read", func() {
		q.mono = func() uint64 { return 0x01020304 * 25 }

		b0, _ := q.ReadByte(qlNanotime)
		q.mono = func() uint64 { return 0 } // later bytes see the latch
		b1, _ := q.ReadByte(qlNanotime + 1)
		b2, _ := q.ReadByte(qlNanotime + 2)
		b3, _ := q.ReadByte(qlNanotime + 3)

		Expect([4]uint8{b0, b1, b2, b3}).To(Equal([4]uint8{1, 2, 3, 4}))
	})

	It("leaves unclaimed window addresses to the open bus", func() {
		_, ok := q.ReadByte(0x18500)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("BDI port", func() {
	It("reports an error with no image or a second drive", func() {
		Expect(NewBDI(nil).Status()).To(Equal(uint8(BDIError)))

		b := NewBDI([]byte{1})
		b.Select(1)
		Expect(b.Status()).To(Equal(uint8(BDIError)))
		b.Select(0)
		Expect(b.Status()).To(Equal(uint8(BDIReady)))
	})

	It("streams bytes from the seeked offset", func() {
		img := []byte{10, 11, 12, 13, 14}
		b := NewBDI(img)

		b.SetAddressHigh(0)
		b.SetAddressLow(2)
		b.Command(0) // seek

		Expect(b.DataRead()).To(Equal(uint8(12)))
		Expect(b.DataRead()).To(Equal(uint8(13)))
	})

	It("returns zero past the end of the image", func() {
		b := NewBDI([]byte{1})
		b.DataRead()
		Expect(b.DataRead()).To(Equal(uint8(0)))
	})

	It("writes through the data register", func() {
		img := make([]byte, 4)
		b := NewBDI(img)

		b.DataWrite(0xAA)
		b.DataWrite(0xBB)

		Expect(img[:2]).To(Equal([]byte{0xAA, 0xBB}))
	})

	It("exposes the image size as two words", func() {
		b := NewBDI(make([]byte, 0x23456))

		Expect(b.SizeHigh()).To(Equal(uint16(2)))
		Expect(b.SizeLow()).To(Equal(uint16(0x3456)))
	})

	It("serves the size registers through the window", func() {
		q := NewQL(make([]byte, 0x10000))

		hi, ok := q.ReadWord(qlBDISizeHi)
		Expect(ok).To(BeTrue())
		Expect(hi).To(Equal(uint16(1)))

		lo, _ := q.ReadWord(qlBDISizeLo)
		Expect(lo).To(Equal(uint16(0)))
	})
})
