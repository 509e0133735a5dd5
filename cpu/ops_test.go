package cpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/qlsim/cpu"
)

var _ = Describe("Data movement", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("moves a word immediate into a data register", func() {
		c.Regs.D[0] = 0xAAAA5555
		b.put(testEntry, 0x303C, 0x8001) // MOVE.W #$8001,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0xAAAA8001)))
		Expect(c.Regs.N).To(BeTrue())
		Expect(c.Regs.Z).To(BeFalse())
		Expect(c.Regs.V).To(BeFalse())
		Expect(c.Regs.C).To(BeFalse())
		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 4)))
	})

	It("sign extends MOVEQ to the full register", func() {
		b.put(testEntry, 0x70FE) // MOVEQ #-2,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0xFFFFFFFE)))
		Expect(c.Regs.N).To(BeTrue())
	})

	It("keeps the stack pointer even on byte postincrement", func() {
		b.WriteByte(testStackTop, 0x42)
		b.put(testEntry, 0x101F) // MOVE.B (A7)+,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0] & 0xFF).To(Equal(uint32(0x42)))
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop + 2)))
	})

	It("keeps the stack pointer even on byte predecrement", func() {
		b.WriteByte(testStackTop-2, 0x99)
		b.put(testEntry, 0x1027) // MOVE.B -(A7),D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0] & 0xFF).To(Equal(uint32(0x99)))
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop - 2)))
	})

	It("increments a postincrement operand once across a read-modify-write", func() {
		c.Regs.A[0] = 0x3000
		b.WriteWord(0x3000, 0x00FF)
		b.put(testEntry, 0x4658) // NOT.W (A0)+

		c.ExecuteChunk(0)

		Expect(b.ReadWord(0x3000)).To(Equal(uint16(0xFF00)))
		Expect(c.Regs.A[0]).To(Equal(uint32(0x3002)))
	})

	It("clears a memory long and sets Z", func() {
		c.Regs.A[0] = 0x3000
		b.WriteLong(0x3000, 0xDEADBEEF)
		b.put(testEntry, 0x4290) // CLR.L (A0)

		c.ExecuteChunk(0)

		Expect(b.ReadLong(0x3000)).To(Equal(uint32(0)))
		Expect(c.Regs.Z).To(BeTrue())
		Expect(c.Regs.N).To(BeFalse())
	})

	It("LEA computes the effective address without touching memory", func() {
		c.Regs.A[0] = 0x3000
		b.put(testEntry, 0x43E8, 0x0008) // LEA 8(A0),A1

		c.ExecuteChunk(0)

		Expect(c.Regs.A[1]).To(Equal(uint32(0x3008)))
	})

	It("PEA pushes the effective address", func() {
		c.Regs.A[0] = 0x123456
		b.put(testEntry, 0x4850) // PEA (A0)

		c.ExecuteChunk(0)

		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop - 4)))
		Expect(b.ReadLong(testStackTop - 4)).To(Equal(uint32(0x123456)))
	})

	It("swaps register halves", func() {
		c.Regs.D[0] = 0x12345678
		b.put(testEntry, 0x4840) // SWAP D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0x56781234)))
		Expect(c.Regs.N).To(BeFalse())
	})

	It("exchanges two data registers", func() {
		c.Regs.D[0] = 0x11111111
		c.Regs.D[1] = 0x22222222
		b.put(testEntry, 0xC141) // EXG D0,D1

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0x22222222)))
		Expect(c.Regs.D[1]).To(Equal(uint32(0x11111111)))
	})

	It("sign extends with EXT", func() {
		c.Regs.D[0] = 0x80
		c.Regs.D[1] = 0x8000
		b.put(testEntry, 0x4880, 0x48C1) // EXT.W D0; EXT.L D1

		c.ExecuteChunk(1)

		Expect(c.Regs.D[0] & 0xFFFF).To(Equal(uint32(0xFF80)))
		Expect(c.Regs.D[1]).To(Equal(uint32(0xFFFF8000)))
		Expect(c.Regs.N).To(BeTrue())
	})

	It("round-trips registers through MOVEM", func() {
		c.Regs.D[0] = 0x11111111
		c.Regs.D[1] = 0x22222222
		c.Regs.A[0] = 0x33333333
		b.put(testEntry, 0x48E7, 0xC080) // MOVEM.L D0-D1/A0,-(A7)

		c.ExecuteChunk(0)

		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop - 12)))
		Expect(b.ReadLong(testStackTop - 12)).To(Equal(uint32(0x11111111)))
		Expect(b.ReadLong(testStackTop - 8)).To(Equal(uint32(0x22222222)))
		Expect(b.ReadLong(testStackTop - 4)).To(Equal(uint32(0x33333333)))

		c.Regs.D[0] = 0
		c.Regs.D[1] = 0
		c.Regs.A[0] = 0
		b.put(testEntry+4, 0x4CDF, 0x0103) // MOVEM.L (A7)+,D0-D1/A0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0x11111111)))
		Expect(c.Regs.D[1]).To(Equal(uint32(0x22222222)))
		Expect(c.Regs.A[0]).To(Equal(uint32(0x33333333)))
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
	})

	It("builds and tears down a stack frame with LINK and UNLK", func() {
		c.Regs.A[6] = 0xCAFE
		b.put(testEntry, 0x4E56, 0xFFF8, 0x4E5E) // LINK A6,#-8; UNLK A6

		c.ExecuteChunk(0)
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop - 12)))
		Expect(c.Regs.A[6]).To(Equal(uint32(testStackTop - 4)))
		Expect(b.ReadLong(testStackTop - 4)).To(Equal(uint32(0xCAFE)))

		c.ExecuteChunk(0)
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
		Expect(c.Regs.A[6]).To(Equal(uint32(0xCAFE)))
	})
})

var _ = Describe("Arithmetic flags", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("flags signed overflow on byte addition", func() {
		c.Regs.D[0] = 0x7F
		c.Regs.D[1] = 0x01
		b.put(testEntry, 0xD001) // ADD.B D1,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0] & 0xFF).To(Equal(uint32(0x80)))
		Expect(c.Regs.V).To(BeTrue())
		Expect(c.Regs.N).To(BeTrue())
		Expect(c.Regs.C).To(BeFalse())
		Expect(c.Regs.X).To(BeFalse())
	})

	It("flags borrow on compare without modifying the register", func() {
		c.Regs.D[0] = 3
		b.put(testEntry, 0x0C40, 0x0005) // CMPI.W #5,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(3)))
		Expect(c.Regs.C).To(BeTrue())
		Expect(c.Regs.N).To(BeTrue())
		Expect(c.Regs.Z).To(BeFalse())
	})

	It("multiplies unsigned words into a long", func() {
		c.Regs.D[0] = 0x1234
		c.Regs.D[1] = 0x1000
		b.put(testEntry, 0xC0C1) // MULU D1,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0x01234000)))
		Expect(c.Regs.N).To(BeFalse())
		Expect(c.Regs.Z).To(BeFalse())
	})

	It("packs quotient and remainder on unsigned division", func() {
		c.Regs.D[0] = 17
		c.Regs.D[1] = 5
		b.put(testEntry, 0x80C1) // DIVU D1,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(2<<16 | 3)))
	})

	It("flags overflow on unsigned division and leaves the register alone", func() {
		c.Regs.D[0] = 0x20000
		c.Regs.D[1] = 2
		b.put(testEntry, 0x80C1) // DIVU D1,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0]).To(Equal(uint32(0x20000)))
		Expect(c.Regs.V).To(BeTrue())
	})

	It("flags overflow when an arithmetic left shift changes the sign", func() {
		c.Regs.D[0] = 0x40
		b.put(testEntry, 0xE300) // ASL.B #1,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0] & 0xFF).To(Equal(uint32(0x80)))
		Expect(c.Regs.V).To(BeTrue())
		Expect(c.Regs.N).To(BeTrue())
		Expect(c.Regs.C).To(BeFalse())
	})

	It("carries the last bit out of a logical right shift", func() {
		c.Regs.D[0] = 0x0007
		b.put(testEntry, 0xE448) // LSR.W #2,D0

		c.ExecuteChunk(0)

		Expect(c.Regs.D[0] & 0xFFFF).To(Equal(uint32(0x0001)))
		Expect(c.Regs.C).To(BeTrue())
		Expect(c.Regs.X).To(BeTrue())
	})

	It("sets the destination byte from a condition", func() {
		b.put(testEntry, 0x4240, 0x57C0) // CLR.W D0; SEQ D0

		c.ExecuteChunk(1)

		Expect(c.Regs.D[0] & 0xFF).To(Equal(uint32(0xFF)))
	})
})

var _ = Describe("Control flow", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("counts a register down to -1 with DBF", func() {
		// MOVEQ #2,D0 then DBF D0 branching to itself.
		b.put(testEntry, 0x7002, 0x51C8, 0xFFFE)

		c.ExecuteChunk(3)

		Expect(c.Regs.D[0] & 0xFFFF).To(Equal(uint32(0xFFFF)))
		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 6)))
	})

	It("takes a conditional branch only when the condition holds", func() {
		// CLR.W D0 sets Z, BEQ skips the MOVEQ.
		b.put(testEntry, 0x4240, 0x6702, 0x7001, 0x4E71)

		c.ExecuteChunk(2)

		Expect(c.Regs.D[0]).To(Equal(uint32(0)))
		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 8)))
	})

	It("calls and returns through the stack with BSR and RTS", func() {
		b.put(testEntry, 0x6104, opNOP)    // BSR.S +4; NOP
		b.put(testEntry+6, 0x7005, 0x4E75) // MOVEQ #5,D0; RTS

		c.ExecuteChunk(3)

		Expect(c.Regs.D[0]).To(Equal(uint32(5)))
		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 4)))
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
	})
})

var _ = Describe("Status moves", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("copies SR into a data register", func() {
		b.put(testEntry, 0x40C0) // MOVE SR,D0

		c.ExecuteChunk(0)

		Expect(uint16(c.Regs.D[0])).To(Equal(c.SR()))
	})

	It("loads the condition codes without touching the system byte", func() {
		b.put(testEntry, 0x44FC, 0x001F) // MOVE #$1F,CCR

		c.ExecuteChunk(0)

		Expect(c.Regs.X).To(BeTrue())
		Expect(c.Regs.N).To(BeTrue())
		Expect(c.Regs.Z).To(BeTrue())
		Expect(c.Regs.V).To(BeTrue())
		Expect(c.Regs.C).To(BeTrue())
		Expect(c.Regs.Supervisor).To(BeTrue())
	})
})
