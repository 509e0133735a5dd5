package cpu

func init() {
	registerJumps()
	registerReturns()
	registerTraps()
	registerLink()
	registerMoveUSP()
	registerStatusMoves()
	registerCHK()
	register(0x4E71, opNOP)
	register(0x4E70, opRESET)
	register(0x4E72, opSTOP)
	register(0x4AFC, opILLEGAL)
}

func registerJumps() {
	for mode := uint16(0); mode < 8; mode++ {
		for reg := uint16(0); reg < 8; reg++ {
			if controlEA(mode, reg) {
				register(0x4E80|mode<<3|reg, opJSR)
				register(0x4EC0|mode<<3|reg, opJMP)
			}
		}
	}
}

func opJMP(c *CPU) {
	addr, ok := c.eaAddr(int(c.code>>3)&7, int(c.code)&7)
	if !ok {
		return
	}
	c.setPC(addr)
}

func opJSR(c *CPU) {
	addr, ok := c.eaAddr(int(c.code>>3)&7, int(c.code)&7)
	if !ok {
		return
	}
	c.push32(c.Regs.PC)
	c.setPC(addr)
}

func registerReturns() {
	register(0x4E75, opRTS)
	register(0x4E77, opRTR)
	register(0x4E73, opRTE)
}

func opRTS(c *CPU) {
	c.setPC(c.pop32())
}

func opRTR(c *CPU) {
	ccr := c.bus.ReadWord(c.Regs.A[7] & AddressMask)
	c.Regs.A[7] += 2
	c.Regs.SetCCR(ccr)
	c.setPC(c.pop32())
}

func opRTE(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	sr := c.bus.ReadWord(c.Regs.A[7] & AddressMask)
	pc := c.bus.ReadLong((c.Regs.A[7] + 2) & AddressMask)
	c.Regs.A[7] += 6
	c.SetSR(sr)
	c.setPC(pc)
}

func registerTraps() {
	for n := uint16(0); n < 16; n++ {
		register(0x4E40|n, opTRAP)
	}
	register(0x4E76, opTRAPV)
}

func opTRAP(c *CPU) {
	c.raise(VecTrap + int(c.code&15))
}

func opTRAPV(c *CPU) {
	if c.Regs.V {
		c.raise(VecTRAPV)
	}
}

func registerLink() {
	for reg := uint16(0); reg < 8; reg++ {
		register(0x4E50|reg, opLINK)
		register(0x4E58|reg, opUNLK)
	}
}

func opLINK(c *CPU) {
	reg := int(c.code) & 7
	disp := uint32(int32(int16(c.fetchWord())))
	c.push32(c.Regs.A[reg])
	c.Regs.A[reg] = c.Regs.A[7]
	c.Regs.A[7] += disp
}

func opUNLK(c *CPU) {
	reg := int(c.code) & 7
	c.Regs.A[7] = c.Regs.A[reg]
	c.Regs.A[reg] = c.pop32()
}

func registerMoveUSP() {
	for reg := uint16(0); reg < 8; reg++ {
		register(0x4E60|reg, opMOVEtoUSP)
		register(0x4E68|reg, opMOVEfromUSP)
	}
}

func opMOVEtoUSP(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	c.Regs.USP = c.Regs.A[int(c.code)&7]
}

func opMOVEfromUSP(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	c.Regs.A[int(c.code)&7] = c.Regs.USP
}

// registerStatusMoves claims MOVE from SR, MOVE to CCR, and MOVE to
// SR. Immediate sources use the dedicated stream fetch.
func registerStatusMoves() {
	for mode := uint16(0); mode < 8; mode++ {
		for reg := uint16(0); reg < 8; reg++ {
			if dataAlterable(mode, reg) {
				register(0x40C0|mode<<3|reg, opMOVEfromSR)
			}
			src := validEA(mode, reg) && mode != 1 || mode == 7 && reg == 4
			if src {
				register(0x44C0|mode<<3|reg, opMOVEtoCCR)
				register(0x46C0|mode<<3|reg, opMOVEtoSR)
			}
		}
	}
}

func opMOVEfromSR(c *CPU) {
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, Word)
	if c.exception != 0 {
		return
	}
	ea.write(c, Word, uint32(c.SR()))
}

func (c *CPU) statusSource() (uint16, bool) {
	mode := int(c.code>>3) & 7
	reg := int(c.code) & 7
	if mode == 7 && reg == 4 {
		return c.fetchWord(), true
	}
	ea := c.ea(mode, reg, Word)
	if c.exception != 0 {
		return 0, false
	}
	return uint16(ea.read(c, Word)), true
}

func opMOVEtoCCR(c *CPU) {
	v, ok := c.statusSource()
	if ok {
		c.Regs.SetCCR(v)
	}
}

func opMOVEtoSR(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	v, ok := c.statusSource()
	if ok {
		c.SetSR(v)
	}
}

func registerCHK() {
	for dn := uint16(0); dn < 8; dn++ {
		for mode := uint16(0); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				if validEA(mode, reg) && mode != 1 {
					register(0x4180|dn<<9|mode<<3|reg, opCHK)
				}
			}
		}
	}
}

func opCHK(c *CPU) {
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, Word)
	if c.exception != 0 {
		return
	}
	bound := int16(ea.read(c, Word))
	d := int16(c.Regs.D[int(c.code>>9)&7])
	if d < 0 {
		c.Regs.N = true
		c.raise(VecCHK)
	} else if d > bound {
		c.Regs.N = false
		c.raise(VecCHK)
	}
}

func opNOP(*CPU) {}

// opRESET asserts the external reset line. Peripherals here have no
// reset wiring, so only the privilege check remains.
func opRESET(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
	}
}

// opSTOP loads SR from the immediate word and idles the core until an
// interrupt is delivered.
func opSTOP(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	c.SetSR(c.fetchWord())
	c.stopped = true
	c.truncateBudget()
}

func opILLEGAL(c *CPU) {
	c.raise(VecIllegal)
}
