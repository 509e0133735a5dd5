package cpu

func init() {
	registerShifts()
}

// registerShifts claims the register forms of the shift and rotate
// group: 1110 cccD SSir tRRR where t selects arithmetic/logical/
// extend-rotate/plain-rotate and i chooses an immediate or register
// count. The memory single-bit forms are not claimed.
func registerShifts() {
	for cnt := uint16(0); cnt < 8; cnt++ {
		for d := uint16(0); d < 2; d++ {
			for sz := uint16(0); sz < 3; sz++ {
				for ir := uint16(0); ir < 2; ir++ {
					for typ := uint16(0); typ < 4; typ++ {
						for reg := uint16(0); reg < 8; reg++ {
							op := 0xE000 | cnt<<9 | d<<8 | sz<<6 | ir<<5 | typ<<3 | reg
							register(op, opShift)
						}
					}
				}
			}
		}
	}
}

func opShift(c *CPU) {
	size := unarySizeMap[(c.code>>6)&3]
	left := c.code&0x0100 != 0
	typ := int(c.code>>3) & 3
	reg := int(c.code) & 7

	count := uint32(c.code>>9) & 7
	if c.code&0x0020 != 0 {
		count = c.Regs.D[count] & 63
	} else if count == 0 {
		count = 8
	}

	mask := size.Mask()
	msb := size.MSB()
	v := c.Regs.D[reg] & mask

	c.Regs.V = false
	lastOut := false

	for i := uint32(0); i < count; i++ {
		switch typ {
		case 0: // arithmetic
			if left {
				lastOut = v&msb != 0
				nv := v << 1 & mask
				if (v^nv)&msb != 0 {
					c.Regs.V = true
				}
				v = nv
			} else {
				lastOut = v&1 != 0
				v = v>>1 | v&msb
			}
		case 1: // logical
			if left {
				lastOut = v&msb != 0
				v = v << 1 & mask
			} else {
				lastOut = v&1 != 0
				v >>= 1
			}
		case 2: // rotate through extend
			if left {
				lastOut = v&msb != 0
				v = v << 1 & mask
				if c.Regs.X {
					v |= 1
				}
			} else {
				lastOut = v&1 != 0
				v >>= 1
				if c.Regs.X {
					v |= msb
				}
			}
			c.Regs.X = lastOut
		case 3: // rotate
			if left {
				lastOut = v&msb != 0
				v = v << 1 & mask
				if lastOut {
					v |= 1
				}
			} else {
				lastOut = v&1 != 0
				v >>= 1
				if lastOut {
					v |= msb
				}
			}
		}
	}

	c.Regs.D[reg] = c.Regs.D[reg]&^mask | v
	c.Regs.N = v&msb != 0
	c.Regs.Z = v == 0

	if count == 0 {
		c.Regs.C = false
		if typ == 2 {
			c.Regs.C = c.Regs.X // ROXd with zero count copies X
		}
		return
	}
	c.Regs.C = lastOut
	if typ < 2 {
		c.Regs.X = lastOut
	}
}
