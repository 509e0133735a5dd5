package cpu

import (
	"fmt"
	"io"
)

// DumpState writes a crash diagnostic: registers, the code words
// around PC, the top of the active stack, and a backtrace walked
// through the A6 frame chain.
func (c *CPU) DumpState(w io.Writer) {
	r := &c.Regs
	fmt.Fprintf(w, "PC=%06x SR=%04x\n", r.PC, r.SR())
	for i := 0; i < 8; i++ {
		fmt.Fprintf(w, "D%d=%08x ", i, r.D[i])
	}
	fmt.Fprintln(w)
	for i := 0; i < 8; i++ {
		fmt.Fprintf(w, "A%d=%08x ", i, r.A[i])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Code:")
	for off := int32(-8); off <= 8; off += 2 {
		addr := uint32(int32(r.PC)+off) & AddressMask
		fmt.Fprintf(w, "  %06x: %04x\n", addr, c.bus.ReadWord(addr))
	}

	fmt.Fprintln(w, "Stack:")
	for off := uint32(0); off <= 16; off += 2 {
		addr := (r.A[7] + off) & AddressMask
		fmt.Fprintf(w, "  %06x: %04x\n", addr, c.bus.ReadWord(addr))
	}

	fmt.Fprintln(w, "Backtrace:")
	fp := c.bus.ReadLong(r.A[6] & AddressMask)
	for n := 0; fp != 0 && n < 32; n++ {
		ret := c.bus.ReadLong((fp + 4) & AddressMask)
		if ret != 0 {
			fmt.Fprintf(w, "  %06x\n", ret&AddressMask)
		}
		fp = c.bus.ReadLong(fp & AddressMask)
	}
}
