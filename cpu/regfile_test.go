package cpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/qlsim/cpu"
)

var _ = Describe("RegFile", func() {
	It("packs and unpacks the status register", func() {
		var r cpu.RegFile
		r.Trace = true
		r.Supervisor = true
		r.IMask = 5
		r.X = true
		r.Z = true

		Expect(r.SR()).To(Equal(uint16(0xA514)))

		var s cpu.RegFile
		s.SetCCR(0x15)
		Expect(s.X).To(BeTrue())
		Expect(s.Z).To(BeTrue())
		Expect(s.C).To(BeTrue())
		Expect(s.N).To(BeFalse())
		Expect(s.V).To(BeFalse())
	})

	It("indexes the combined register bank", func() {
		var r cpu.RegFile
		r.D[3] = 0x33
		r.A[2] = 0xAA
		Expect(r.Index(3)).To(Equal(uint32(0x33)))
		Expect(r.Index(10)).To(Equal(uint32(0xAA)))

		r.SetIndex(15, 0x77)
		Expect(r.A[7]).To(Equal(uint32(0x77)))
	})
})

var _ = Describe("Stack pointer banking", func() {
	var (
		b *testBus
		c *cpu.CPU
	)

	BeforeEach(func() {
		b = newTestBus()
		c = newCPU(b)
	})

	It("swaps to USP when dropping to user mode", func() {
		c.Regs.USP = 0x6000
		c.SetSR(0)

		Expect(c.Regs.Supervisor).To(BeFalse())
		Expect(c.Regs.A[7]).To(Equal(uint32(0x6000)))
		Expect(c.Regs.SSP).To(Equal(uint32(testStackTop)))
	})

	It("swaps back to SSP when returning to supervisor mode", func() {
		c.Regs.USP = 0x6000
		c.SetSR(0)
		c.Regs.A[7] = 0x5FF0 // user code moves its stack

		c.SetSR(0x2000)
		Expect(c.Regs.Supervisor).To(BeTrue())
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
		Expect(c.Regs.USP).To(Equal(uint32(0x5FF0)))
	})

	It("does not touch the shadow pointers without a mode change", func() {
		c.Regs.USP = 0x6000
		c.SetSR(0x2700)
		Expect(c.Regs.A[7]).To(Equal(uint32(testStackTop)))
		Expect(c.Regs.USP).To(Equal(uint32(0x6000)))
	})
})
