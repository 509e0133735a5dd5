package cpu

func init() {
	registerMOVE()
	registerMOVEQ()
	registerCLR()
	registerLEA()
	registerPEA()
	registerEXG()
	registerSWAP()
	registerEXT()
	registerMOVEM()
}

// moveSizeMap maps the MOVE size field to Size. MOVE uses its own
// encoding: 01=byte, 11=word, 10=long.
var moveSizeMap = [4]Size{0, Byte, Long, Word}

// registerMOVE claims MOVE and MOVEA. Encoding 00SS RRRM MMmm mrrr
// with the destination field reversed relative to the source.
// Immediate sources (mode 7 reg 4) get a dedicated handler that pulls
// the value from the instruction stream.
func registerMOVE() {
	for _, szBits := range []uint16{0x1000, 0x2000, 0x3000} {
		for dstMode := uint16(0); dstMode < 8; dstMode++ {
			for dstReg := uint16(0); dstReg < 8; dstReg++ {
				if dstMode == 1 {
					if szBits == 0x1000 {
						continue // no MOVEA.B
					}
				} else if !dataAlterable(dstMode, dstReg) {
					continue
				}
				for srcMode := uint16(0); srcMode < 8; srcMode++ {
					for srcReg := uint16(0); srcReg < 8; srcReg++ {
						if !validEA(srcMode, srcReg) && !(srcMode == 7 && srcReg == 4) {
							continue
						}
						opcode := szBits | dstReg<<9 | dstMode<<6 | srcMode<<3 | srcReg
						register(opcode, opMOVE)
					}
				}
			}
		}
	}
}

func opMOVE(c *CPU) {
	size := moveSizeMap[(c.code>>12)&3]
	srcMode := int(c.code>>3) & 7
	srcReg := int(c.code) & 7
	dstMode := int(c.code>>6) & 7
	dstReg := int(c.code>>9) & 7

	var v uint32
	if srcMode == 7 && srcReg == 4 {
		v = c.fetchImmediate(size)
	} else {
		src := c.ea(srcMode, srcReg, size)
		v = src.read(c, size)
	}
	if c.exception != 0 {
		return
	}

	if dstMode == 1 { // MOVEA: sign extend, no flags
		if size == Word {
			v = uint32(int32(int16(v)))
		}
		c.Regs.A[dstReg] = v
		return
	}

	dst := c.ea(dstMode, dstReg, size)
	dst.write(c, size, v)
	c.setNZ(v, size)
}

// fetchImmediate pulls an immediate operand from the instruction
// stream. Byte immediates occupy the low half of a word.
func (c *CPU) fetchImmediate(size Size) uint32 {
	switch size {
	case Byte:
		return uint32(c.fetchWord()) & 0xFF
	case Word:
		return uint32(c.fetchWord())
	default:
		return c.fetchLong()
	}
}

func registerMOVEQ() {
	for reg := uint16(0); reg < 8; reg++ {
		for data := uint16(0); data < 256; data++ {
			register(0x7000|reg<<9|data, opMOVEQ)
		}
	}
}

func opMOVEQ(c *CPU) {
	v := uint32(int32(int8(c.code)))
	c.Regs.D[int(c.code>>9)&7] = v
	c.setNZ(v, Long)
}

func registerCLR() {
	for sz := uint16(0); sz < 3; sz++ {
		for mode := uint16(0); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				if dataAlterable(mode, reg) {
					register(0x4200|sz<<6|mode<<3|reg, opCLR)
				}
			}
		}
	}
}

// unarySizeMap maps the common 2-bit size field.
var unarySizeMap = [3]Size{Byte, Word, Long}

func opCLR(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	dst := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	dst.write(c, size, 0)
	c.setNZ(0, size)
}

func registerLEA() {
	for an := uint16(0); an < 8; an++ {
		for mode := uint16(0); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				if controlEA(mode, reg) {
					register(0x41C0|an<<9|mode<<3|reg, opLEA)
				}
			}
		}
	}
}

func opLEA(c *CPU) {
	addr, ok := c.eaAddr(int(c.code>>3)&7, int(c.code)&7)
	if !ok {
		return
	}
	c.Regs.A[int(c.code>>9)&7] = addr
}

func registerPEA() {
	for mode := uint16(0); mode < 8; mode++ {
		for reg := uint16(0); reg < 8; reg++ {
			if controlEA(mode, reg) {
				register(0x4840|mode<<3|reg, opPEA)
			}
		}
	}
}

func opPEA(c *CPU) {
	addr, ok := c.eaAddr(int(c.code>>3)&7, int(c.code)&7)
	if !ok {
		return
	}
	c.push32(addr)
}

func registerEXG() {
	for x := uint16(0); x < 8; x++ {
		for y := uint16(0); y < 8; y++ {
			register(0xC140|x<<9|y, opEXGdd)
			register(0xC148|x<<9|y, opEXGaa)
			register(0xC188|x<<9|y, opEXGda)
		}
	}
}

func opEXGdd(c *CPU) {
	x, y := int(c.code>>9)&7, int(c.code)&7
	c.Regs.D[x], c.Regs.D[y] = c.Regs.D[y], c.Regs.D[x]
}

func opEXGaa(c *CPU) {
	x, y := int(c.code>>9)&7, int(c.code)&7
	c.Regs.A[x], c.Regs.A[y] = c.Regs.A[y], c.Regs.A[x]
}

func opEXGda(c *CPU) {
	x, y := int(c.code>>9)&7, int(c.code)&7
	c.Regs.D[x], c.Regs.A[y] = c.Regs.A[y], c.Regs.D[x]
}

func registerSWAP() {
	for reg := uint16(0); reg < 8; reg++ {
		register(0x4840|reg, opSWAP)
	}
}

func opSWAP(c *CPU) {
	r := int(c.code) & 7
	v := c.Regs.D[r]>>16 | c.Regs.D[r]<<16
	c.Regs.D[r] = v
	c.setNZ(v, Long)
}

func registerEXT() {
	for reg := uint16(0); reg < 8; reg++ {
		register(0x4880|reg, opEXTw)
		register(0x48C0|reg, opEXTl)
	}
}

func opEXTw(c *CPU) {
	r := int(c.code) & 7
	v := uint32(uint16(int16(int8(c.Regs.D[r]))))
	c.Regs.D[r] = c.Regs.D[r]&0xFFFF0000 | v
	c.setNZ(v, Word)
}

func opEXTl(c *CPU) {
	r := int(c.code) & 7
	v := uint32(int32(int16(c.Regs.D[r])))
	c.Regs.D[r] = v
	c.setNZ(v, Long)
}

// registerMOVEM claims both directions of MOVEM. Register-to-memory
// adds predecrement, memory-to-register adds postincrement.
func registerMOVEM() {
	for sz := uint16(0); sz < 2; sz++ {
		for mode := uint16(0); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				if controlEA(mode, reg) || mode == 4 {
					register(0x4880|sz<<6|mode<<3|reg, opMOVEMtoMem)
				}
				if controlEA(mode, reg) || mode == 3 {
					register(0x4C80|sz<<6|mode<<3|reg, opMOVEMtoReg)
				}
			}
		}
	}
}

func movemSize(code uint16) Size {
	if code&0x0040 != 0 {
		return Long
	}
	return Word
}

func opMOVEMtoMem(c *CPU) {
	size := movemSize(c.code)
	mask := c.fetchWord()
	mode := int(c.code>>3) & 7
	reg := int(c.code) & 7

	if mode == 4 {
		// Predecrement stores registers A7..A0,D7..D0 downwards.
		addr := c.Regs.A[reg]
		for i := 0; i < 16; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			addr -= uint32(size)
			v := c.Regs.Index(15 - i)
			if size == Word {
				c.bus.WriteWord(addr&AddressMask, uint16(v))
			} else {
				c.bus.WriteLong(addr&AddressMask, v)
			}
		}
		c.Regs.A[reg] = addr
		return
	}

	addr, ok := c.eaAddr(mode, reg)
	if !ok {
		return
	}
	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		v := c.Regs.Index(i)
		if size == Word {
			c.bus.WriteWord(addr, uint16(v))
		} else {
			c.bus.WriteLong(addr, v)
		}
		addr = (addr + uint32(size)) & AddressMask
	}
}

func opMOVEMtoReg(c *CPU) {
	size := movemSize(c.code)
	mask := c.fetchWord()
	mode := int(c.code>>3) & 7
	reg := int(c.code) & 7

	var addr uint32
	if mode == 3 {
		addr = c.Regs.A[reg] & AddressMask
	} else {
		a, ok := c.eaAddr(mode, reg)
		if !ok {
			return
		}
		addr = a
	}

	for i := 0; i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		var v uint32
		if size == Word {
			v = uint32(int32(int16(c.bus.ReadWord(addr))))
		} else {
			v = c.bus.ReadLong(addr)
		}
		c.Regs.SetIndex(i, v)
		addr = (addr + uint32(size)) & AddressMask
	}
	if mode == 3 {
		c.Regs.A[reg] = addr
	}
}

// push32 pushes a long onto the active stack.
func (c *CPU) push32(v uint32) {
	c.Regs.A[7] -= 4
	c.bus.WriteLong(c.Regs.A[7]&AddressMask, v)
}

// pop32 pops a long from the active stack.
func (c *CPU) pop32() uint32 {
	v := c.bus.ReadLong(c.Regs.A[7] & AddressMask)
	c.Regs.A[7] += 4
	return v
}
