package cpu

func init() {
	registerAddSub()
	registerCmpEor()
	registerAndOrMulDiv()
	registerQuick()
	registerImmediates()
	registerUnary()
}

// registerAddSub claims ADD, SUB, ADDA, and SUBA.
// Encoding 1101/1001 RRRO OOmm mrrr; opmodes 0-2 target Dn, 4-6
// target memory, 3 and 7 are the address forms.
func registerAddSub() {
	for _, base := range []uint16{0x9000, 0xD000} {
		for dn := uint16(0); dn < 8; dn++ {
			for mode := uint16(0); mode < 8; mode++ {
				for reg := uint16(0); reg < 8; reg++ {
					for op := uint16(0); op < 3; op++ {
						if validEA(mode, reg) {
							register(base|dn<<9|op<<6|mode<<3|reg, opAddSub)
						}
					}
					for op := uint16(4); op < 7; op++ {
						if mode >= 2 && validEA(mode, reg) {
							register(base|dn<<9|op<<6|mode<<3|reg, opAddSub)
						}
					}
					if validEA(mode, reg) {
						register(base|dn<<9|3<<6|mode<<3|reg, opAddSubA)
						register(base|dn<<9|7<<6|mode<<3|reg, opAddSubA)
					}
				}
			}
		}
	}
}

func opAddSub(c *CPU) {
	isAdd := c.code&0x4000 != 0
	opmode := int(c.code>>6) & 7
	size := unarySizeMap[opmode&3]
	dn := int(c.code>>9) & 7

	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}

	if opmode < 4 { // <ea> op Dn -> Dn
		s := ea.read(c, size)
		d := c.Regs.D[dn]
		var r uint32
		if isAdd {
			r = c.addFlags(d, s, false, size)
		} else {
			r = c.subFlags(d, s, false, size)
		}
		m := size.Mask()
		c.Regs.D[dn] = d&^m | r
		return
	}

	// Dn op <ea> -> <ea>
	d := ea.read(c, size)
	s := c.Regs.D[dn]
	var r uint32
	if isAdd {
		r = c.addFlags(d, s, false, size)
	} else {
		r = c.subFlags(d, s, false, size)
	}
	ea.write(c, size, r)
}

func opAddSubA(c *CPU) {
	size := Word
	if c.code&0x0100 != 0 {
		size = Long
	}
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	s := ea.read(c, size)
	if size == Word {
		s = uint32(int32(int16(s)))
	}
	an := int(c.code>>9) & 7
	if c.code&0x4000 != 0 {
		c.Regs.A[an] += s
	} else {
		c.Regs.A[an] -= s
	}
}

// registerCmpEor claims CMP, CMPA, and EOR under the 1011 prefix.
// EOR's address-register slots belong to CMPM, which is not claimed.
func registerCmpEor() {
	for dn := uint16(0); dn < 8; dn++ {
		for mode := uint16(0); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				if !validEA(mode, reg) {
					continue
				}
				for op := uint16(0); op < 3; op++ {
					register(0xB000|dn<<9|op<<6|mode<<3|reg, opCMP)
				}
				register(0xB000|dn<<9|3<<6|mode<<3|reg, opCMPA)
				register(0xB000|dn<<9|7<<6|mode<<3|reg, opCMPA)
				if mode != 1 {
					for op := uint16(4); op < 7; op++ {
						register(0xB000|dn<<9|op<<6|mode<<3|reg, opEOR)
					}
				}
			}
		}
	}
}

func opCMP(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	s := ea.read(c, size)
	c.cmpFlags(c.Regs.D[int(c.code>>9)&7], s, size)
}

func opCMPA(c *CPU) {
	size := Word
	if c.code&0x0100 != 0 {
		size = Long
	}
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	s := ea.read(c, size)
	if size == Word {
		s = uint32(int32(int16(s)))
	}
	c.cmpFlags(c.Regs.A[int(c.code>>9)&7], s, Long)
}

func opEOR(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	r := ea.read(c, size) ^ c.Regs.D[int(c.code>>9)&7]&size.Mask()
	ea.write(c, size, r)
	c.setNZ(r, size)
}

// registerAndOrMulDiv claims AND/OR data forms plus MULU/MULS and
// DIVU/DIVS in opmodes 3 and 7. The memory-destination forms with
// register modes belong to EXG/ABCD/SBCD and stay unclaimed.
func registerAndOrMulDiv() {
	for _, base := range []uint16{0x8000, 0xC000} {
		for dn := uint16(0); dn < 8; dn++ {
			for mode := uint16(0); mode < 8; mode++ {
				for reg := uint16(0); reg < 8; reg++ {
					if !validEA(mode, reg) || mode == 1 {
						continue
					}
					for op := uint16(0); op < 3; op++ {
						register(base|dn<<9|op<<6|mode<<3|reg, opAndOr)
					}
					if mode >= 2 {
						for op := uint16(4); op < 7; op++ {
							register(base|dn<<9|op<<6|mode<<3|reg, opAndOr)
						}
					}
					register(base|dn<<9|3<<6|mode<<3|reg, opMulDiv)
					register(base|dn<<9|7<<6|mode<<3|reg, opMulDiv)
				}
			}
		}
	}
}

func opAndOr(c *CPU) {
	isAnd := c.code&0x4000 != 0
	opmode := int(c.code>>6) & 7
	size := unarySizeMap[opmode&3]
	dn := int(c.code>>9) & 7

	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}

	apply := func(a, b uint32) uint32 {
		if isAnd {
			return a & b
		}
		return a | b
	}

	if opmode < 4 {
		r := apply(c.Regs.D[dn], ea.read(c, size)) & size.Mask()
		m := size.Mask()
		c.Regs.D[dn] = c.Regs.D[dn]&^m | r
		c.setNZ(r, size)
		return
	}

	r := apply(ea.read(c, size), c.Regs.D[dn]) & size.Mask()
	ea.write(c, size, r)
	c.setNZ(r, size)
}

func opMulDiv(c *CPU) {
	isMul := c.code&0x4000 != 0
	signed := c.code&0x0100 != 0
	dn := int(c.code>>9) & 7

	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, Word)
	if c.exception != 0 {
		return
	}
	s := ea.read(c, Word)

	if isMul {
		var r uint32
		if signed {
			r = uint32(int32(int16(s)) * int32(int16(c.Regs.D[dn])))
		} else {
			r = s * (c.Regs.D[dn] & 0xFFFF)
		}
		c.Regs.D[dn] = r
		c.setNZ(r, Long)
		return
	}

	if s&0xFFFF == 0 {
		c.raise(VecDivZero)
		return
	}
	d := c.Regs.D[dn]
	if signed {
		q := int32(d) / int32(int16(s))
		rem := int32(d) % int32(int16(s))
		if q > 32767 || q < -32768 {
			c.Regs.V = true
			c.Regs.N = true
			return
		}
		c.Regs.D[dn] = uint32(rem)<<16 | uint32(q)&0xFFFF
		c.setNZ(uint32(q), Word)
		return
	}
	q := d / (s & 0xFFFF)
	rem := d % (s & 0xFFFF)
	if q > 0xFFFF {
		c.Regs.V = true
		c.Regs.N = true
		return
	}
	c.Regs.D[dn] = rem<<16 | q
	c.setNZ(q, Word)
}

// registerQuick claims ADDQ, SUBQ, Scc, and DBcc under 0101.
func registerQuick() {
	for data := uint16(0); data < 8; data++ {
		for sz := uint16(0); sz < 3; sz++ {
			for mode := uint16(0); mode < 8; mode++ {
				for reg := uint16(0); reg < 8; reg++ {
					if !validEA(mode, reg) {
						continue
					}
					if mode == 1 && sz == 0 {
						continue // no byte op on An
					}
					register(0x5000|data<<9|sz<<6|mode<<3|reg, opADDQ)
					register(0x5100|data<<9|sz<<6|mode<<3|reg, opSUBQ)
				}
			}
		}
	}
	for cc := uint16(0); cc < 16; cc++ {
		for reg := uint16(0); reg < 8; reg++ {
			register(0x50C8|cc<<8|reg, opDBcc)
		}
		for mode := uint16(0); mode < 8; mode++ {
			for reg := uint16(0); reg < 8; reg++ {
				if dataAlterable(mode, reg) {
					register(0x50C0|cc<<8|mode<<3|reg, opScc)
				}
			}
		}
	}
}

func quickData(code uint16) uint32 {
	d := uint32(code>>9) & 7
	if d == 0 {
		return 8
	}
	return d
}

func opADDQ(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	mode := int(c.code>>3) & 7
	if mode == 1 { // address target: always long, no flags
		c.Regs.A[int(c.code)&7] += quickData(c.code)
		return
	}
	ea := c.ea(mode, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	r := c.addFlags(ea.read(c, size), quickData(c.code), false, size)
	ea.write(c, size, r)
}

func opSUBQ(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	mode := int(c.code>>3) & 7
	if mode == 1 {
		c.Regs.A[int(c.code)&7] -= quickData(c.code)
		return
	}
	ea := c.ea(mode, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	r := c.subFlags(ea.read(c, size), quickData(c.code), false, size)
	ea.write(c, size, r)
}

func opScc(c *CPU) {
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, Byte)
	if c.exception != 0 {
		return
	}
	if c.testCondition(int(c.code>>8) & 15) {
		ea.write(c, Byte, 0xFF)
	} else {
		ea.write(c, Byte, 0)
	}
}

func opDBcc(c *CPU) {
	base := c.Regs.PC
	disp := uint32(int32(int16(c.fetchWord())))
	if c.testCondition(int(c.code>>8) & 15) {
		return
	}
	reg := int(c.code) & 7
	cnt := uint16(c.Regs.D[reg]) - 1
	c.Regs.D[reg] = c.Regs.D[reg]&0xFFFF0000 | uint32(cnt)
	if cnt != 0xFFFF {
		c.setPC(base + disp)
	}
}

// registerImmediates claims ORI, ANDI, SUBI, ADDI, EORI, and CMPI,
// plus the CCR and SR forms of the logical ones.
func registerImmediates() {
	for _, base := range []uint16{0x0000, 0x0200, 0x0400, 0x0600, 0x0A00, 0x0C00} {
		for sz := uint16(0); sz < 3; sz++ {
			for mode := uint16(0); mode < 8; mode++ {
				for reg := uint16(0); reg < 8; reg++ {
					if dataAlterable(mode, reg) {
						register(base|sz<<6|mode<<3|reg, opImmediate)
					}
				}
			}
		}
	}
	register(0x003C, opORItoCCR)
	register(0x007C, opORItoSR)
	register(0x023C, opANDItoCCR)
	register(0x027C, opANDItoSR)
	register(0x0A3C, opEORItoCCR)
	register(0x0A7C, opEORItoSR)
}

func opImmediate(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	imm := c.fetchImmediate(size)
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	d := ea.read(c, size)

	switch c.code & 0x0F00 {
	case 0x0000: // ORI
		r := (d | imm) & size.Mask()
		ea.write(c, size, r)
		c.setNZ(r, size)
	case 0x0200: // ANDI
		r := d & imm & size.Mask()
		ea.write(c, size, r)
		c.setNZ(r, size)
	case 0x0400: // SUBI
		ea.write(c, size, c.subFlags(d, imm, false, size))
	case 0x0600: // ADDI
		ea.write(c, size, c.addFlags(d, imm, false, size))
	case 0x0A00: // EORI
		r := (d ^ imm) & size.Mask()
		ea.write(c, size, r)
		c.setNZ(r, size)
	case 0x0C00: // CMPI
		c.cmpFlags(d, imm, size)
	}
}

func opORItoCCR(c *CPU) {
	imm := uint16(c.fetchWord()) & 0xFF
	c.Regs.SetCCR(c.Regs.CCR() | imm)
}

func opANDItoCCR(c *CPU) {
	imm := uint16(c.fetchWord()) & 0xFF
	c.Regs.SetCCR(c.Regs.CCR() & imm)
}

func opEORItoCCR(c *CPU) {
	imm := uint16(c.fetchWord()) & 0xFF
	c.Regs.SetCCR(c.Regs.CCR() ^ imm)
}

func opORItoSR(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	c.SetSR(c.SR() | c.fetchWord())
}

func opANDItoSR(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	c.SetSR(c.SR() & c.fetchWord())
}

func opEORItoSR(c *CPU) {
	if !c.Regs.Supervisor {
		c.raise(VecPrivilege)
		return
	}
	c.SetSR(c.SR() ^ c.fetchWord())
}

// registerUnary claims NOT, NEG, and TST.
func registerUnary() {
	for _, base := range []uint16{0x4400, 0x4600, 0x4A00} {
		for sz := uint16(0); sz < 3; sz++ {
			for mode := uint16(0); mode < 8; mode++ {
				for reg := uint16(0); reg < 8; reg++ {
					if dataAlterable(mode, reg) {
						register(base|sz<<6|mode<<3|reg, opUnary)
					}
				}
			}
		}
	}
}

func opUnary(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	ea := c.ea(int(c.code>>3)&7, int(c.code)&7, size)
	if c.exception != 0 {
		return
	}
	d := ea.read(c, size)

	switch c.code & 0x0F00 {
	case 0x0400: // NEG
		ea.write(c, size, c.subFlags(0, d, false, size))
	case 0x0600: // NOT
		r := ^d & size.Mask()
		ea.write(c, size, r)
		c.setNZ(r, size)
	case 0x0A00: // TST
		c.setNZ(d, size)
	}
}
