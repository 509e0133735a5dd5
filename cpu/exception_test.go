package cpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/qlsim/cpu"
)

const opNOP = 0x4E71

var _ = Describe("Reset", func() {
	It("loads SSP and PC from the reset vectors", func() {
		b := newTestBus()
		c := newCPU(b)

		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
		Expect(c.Regs.PC).To(Equal(uint32(testEntry)))
		Expect(c.Regs.Supervisor).To(BeTrue())
		Expect(c.Regs.IMask).To(Equal(uint8(7)))
	})
})

var _ = Describe("ExecuteChunk", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("runs one instruction more than the requested budget", func() {
		b.put(testEntry, opNOP, opNOP, opNOP, opNOP, opNOP, opNOP, opNOP)
		c.ExecuteChunk(4)
		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 5*2)))
	})

	It("refuses to run from an odd program counter", func() {
		c.Regs.PC = 0x1001
		c.ExecuteChunk(10)
		Expect(c.Regs.PC).To(Equal(uint32(0x1001)))
	})

	It("resumes inside the same call after an exception", func() {
		// TRAP #0 then three NOPs in the handler; the budget should
		// cover the trap and the handler instructions together.
		b.put(testEntry, 0x4E40)
		b.WriteLong(32*4, 0x2000)
		b.put(0x2000, opNOP, opNOP, opNOP, opNOP)

		c.ExecuteChunk(3)
		Expect(c.Regs.PC).To(Equal(uint32(0x2000 + 3*2)))
	})
})

var _ = Describe("Interrupts", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
		b.put(testEntry, opNOP, opNOP, opNOP, opNOP)
	})

	It("delivers a level above the mask through the autovector", func() {
		c.SetSR(0x2000) // mask 0
		b.WriteLong((24+3)*4, 0x3000)
		b.put(0x3000, opNOP, opNOP)

		c.RaiseInterrupt(3)
		c.ExecuteChunk(1)

		Expect(c.Regs.IMask).To(Equal(uint8(3)))
		Expect(c.Regs.Supervisor).To(BeTrue())
		// 6-byte frame: SR word then return PC.
		sp := c.Regs.A[7]
		Expect(b.ReadWord(sp)).To(Equal(uint16(0x2000)))
		Expect(b.ReadLong(sp + 2)).To(Equal(uint32(testEntry)))
	})

	It("holds back a level at or below the mask", func() {
		c.SetSR(0x2700)
		c.RaiseInterrupt(3)
		c.ExecuteChunk(1)

		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 2*2)))
		Expect(c.Regs.IMask).To(Equal(uint8(7)))
	})

	It("always delivers level 7", func() {
		c.SetSR(0x2700)
		b.WriteLong((24+7)*4, 0x3000)
		b.put(0x3000, opNOP)

		c.RaiseInterrupt(7)
		c.ExecuteChunk(1)

		Expect(c.Regs.IMask).To(Equal(uint8(7)))
		Expect(b.ReadLong(c.Regs.A[7] + 2)).To(Equal(uint32(testEntry)))
	})
})

var _ = Describe("STOP", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("idles the core until an interrupt arrives", func() {
		b.put(testEntry, 0x4E72, 0x2000) // STOP #$2000
		c.ExecuteChunk(5)
		Expect(c.Stopped()).To(BeTrue())
		pc := c.Regs.PC

		c.ExecuteChunk(5)
		Expect(c.Regs.PC).To(Equal(pc))

		b.WriteLong((24+7)*4, 0x3000)
		b.put(0x3000, opNOP)
		c.RaiseInterrupt(7)
		c.ExecuteChunk(0)

		Expect(c.Stopped()).To(BeFalse())
		Expect(c.Regs.PC).To(Equal(uint32(0x3002)))
	})
})

var _ = Describe("Address errors", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("pushes the extra frame on a jump to an odd address", func() {
		c.Regs.A[0] = 0x1001
		b.put(testEntry, 0x4ED0) // JMP (A0)
		b.WriteLong(3*4, 0x4000)

		c.ExecuteChunk(0)

		Expect(c.Regs.PC).To(Equal(uint32(0x4000)))
		sp := c.Regs.A[7]
		Expect(sp).To(Equal(uint32(testStackTop - 14)))
		// Extra frame: access code, faulting address, opcode.
		Expect(b.ReadWord(sp)).To(Equal(uint16(2 + 4 + 16 + 8)))
		Expect(b.ReadLong(sp + 2)).To(Equal(uint32(0x1001)))
		Expect(b.ReadWord(sp + 6)).To(Equal(uint16(0x4ED0)))
		// Standard frame above it.
		Expect(b.ReadLong(sp + 10)).To(Equal(uint32(testEntry + 2)))
	})

	It("leaves the program counter unchanged until delivery", func() {
		c.Regs.A[0] = 0x2001
		b.put(testEntry, 0x4ED0)
		b.WriteLong(3*4, 0x4000)
		b.put(0x4000, opNOP)

		c.ExecuteChunk(0)
		Expect(c.Regs.PC).To(Equal(uint32(0x4000)))
	})
})

var _ = Describe("Trace", func() {
	It("runs a single instruction and vectors through 9", func() {
		b := newTestBus()
		c := newCPU(b)
		b.put(testEntry, opNOP, opNOP, opNOP)
		b.WriteLong(9*4, 0x2000)
		b.put(0x2000, opNOP, opNOP)

		c.Regs.Trace = true
		c.ExecuteChunk(0)

		Expect(c.Regs.PC).To(Equal(uint32(0x2002)))
		Expect(c.Regs.Trace).To(BeFalse())
		sp := c.Regs.A[7]
		Expect(b.ReadLong(sp + 2)).To(Equal(uint32(testEntry + 2)))
		Expect(b.ReadWord(sp) & 0x8000).NotTo(BeZero())
	})
})

var _ = Describe("Synchronous exceptions", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("raises divide by zero", func() {
		c.Regs.D[0] = 100
		c.Regs.D[1] = 0
		b.put(testEntry, 0x80C1) // DIVU D1,D0
		b.WriteLong(5*4, 0x5000)
		b.put(0x5000, opNOP)

		c.ExecuteChunk(0)
		Expect(c.Regs.PC).To(Equal(uint32(0x5000)))
		Expect(c.Regs.D[0]).To(Equal(uint32(100)))
	})

	It("raises privilege violation from user mode", func() {
		c.Regs.USP = 0x6000
		c.SetSR(0) // drop to user
		b.put(testEntry, 0x46FC, 0x2700) // MOVE #$2700,SR
		b.WriteLong(8*4, 0x5000)
		b.put(0x5000, opNOP)

		c.ExecuteChunk(0)
		Expect(c.Regs.PC).To(Equal(uint32(0x5000)))
		Expect(c.Regs.Supervisor).To(BeTrue())
		// Frame went onto the supervisor stack, not the user one.
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop - 6)))
	})

	It("raises illegal instruction for unclaimed opcodes", func() {
		b.put(testEntry, 0x303A, 0x0000) // PC-relative source, unsupported
		b.WriteLong(4*4, 0x5000)
		b.put(0x5000, opNOP)

		c.ExecuteChunk(0)
		Expect(c.Regs.PC).To(Equal(uint32(0x5000)))
	})

	It("raises CHK when the register is out of bounds", func() {
		c.Regs.D[0] = 5
		c.Regs.D[1] = 3
		b.put(testEntry, 0x4181) // CHK D1,D0
		b.WriteLong(6*4, 0x5000)

		c.ExecuteChunk(0)
		Expect(c.Regs.PC).To(Equal(uint32(0x5000)))
		Expect(c.Regs.N).To(BeFalse())
	})

	It("vectors TRAP through 32 plus the trap number", func() {
		b.put(testEntry, 0x4E42) // TRAP #2
		b.WriteLong(34*4, 0x5000)

		c.ExecuteChunk(0)
		Expect(c.Regs.PC).To(Equal(uint32(0x5000)))
	})
})

var _ = Describe("RTE", func() {
	It("restores the pushed state", func() {
		b := newTestBus()
		c := newCPU(b)
		b.put(testEntry, 0x4E40) // TRAP #0
		b.WriteLong(32*4, 0x2000)
		b.put(0x2000, 0x4E73) // RTE
		b.put(testEntry+2, opNOP)

		c.ExecuteChunk(2)
		Expect(c.Regs.PC).To(Equal(uint32(testEntry + 2 + 2)))
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
	})
})
