package cpu

func init() {
	registerBranch()
}

// registerBranch claims BRA, BSR, and Bcc. A zero displacement byte
// means a word displacement follows.
func registerBranch() {
	for cc := uint16(0); cc < 16; cc++ {
		for disp := uint16(0); disp < 256; disp++ {
			register(0x6000|cc<<8|disp, opBcc)
		}
	}
}

func opBcc(c *CPU) {
	base := c.Regs.PC
	disp := uint32(int32(int8(c.code)))
	if disp == 0 {
		disp = uint32(int32(int16(c.fetchWord())))
	}
	cc := int(c.code>>8) & 15

	if cc == 1 { // BSR
		c.push32(c.Regs.PC)
		c.setPC(base + disp)
		return
	}
	if c.testCondition(cc) {
		c.setPC(base + disp)
	}
}
