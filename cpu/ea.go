package cpu

// operand is a resolved effective address. Resolution consumes any
// extension words and performs postincrement/predecrement exactly
// once, so a handler doing read-modify-write resolves once and reuses
// the handle for the writeback.
type operand struct {
	kind opKind
	reg  int
	addr uint32
}

type opKind uint8

const (
	// opNone is the inert handle produced by a rejected mode.
	// Reads return zero, writes are dropped.
	opNone opKind = iota
	opDataReg
	opAddrReg
	opMem
)

// badEA raises an illegal-instruction exception and yields an inert
// handle. No memory is touched.
func (c *CPU) badEA() operand {
	c.raise(VecIllegal)
	return operand{kind: opNone}
}

// indexExtension decodes a brief extension word: bit 15 selects the
// D or A bank, bits 14-12 the register, bit 11 word (sign extended)
// or long index, low byte the signed displacement.
func (c *CPU) indexExtension(base uint32) uint32 {
	ext := c.fetchWord()
	idx := c.Regs.Index(int(ext>>12) & 15)
	if ext&0x0800 == 0 {
		idx = uint32(int32(int16(idx)))
	}
	return base + idx + uint32(int32(int8(ext)))
}

// ea resolves mode/reg for an operand of the given size, applying
// side effects. Mode 1 as a byte operand and mode 7 registers 2-7
// raise illegal instruction.
func (c *CPU) ea(mode, reg int, size Size) operand {
	switch mode {
	case 0:
		return operand{kind: opDataReg, reg: reg}
	case 1:
		if size == Byte {
			return c.badEA()
		}
		return operand{kind: opAddrReg, reg: reg}
	case 2:
		return operand{kind: opMem, addr: c.Regs.A[reg] & AddressMask}
	case 3:
		addr := c.Regs.A[reg]
		step := uint32(size)
		if size == Byte && reg == 7 {
			step = 2 // keep the stack pointer even
		}
		c.Regs.A[reg] += step
		return operand{kind: opMem, addr: addr & AddressMask}
	case 4:
		step := uint32(size)
		if size == Byte && reg == 7 {
			step = 2
		}
		c.Regs.A[reg] -= step
		return operand{kind: opMem, addr: c.Regs.A[reg] & AddressMask}
	case 5:
		d := uint32(int32(int16(c.fetchWord())))
		return operand{kind: opMem, addr: (c.Regs.A[reg] + d) & AddressMask}
	case 6:
		return operand{kind: opMem, addr: c.indexExtension(c.Regs.A[reg]) & AddressMask}
	case 7:
		switch reg {
		case 0:
			return operand{kind: opMem, addr: uint32(int32(int16(c.fetchWord()))) & AddressMask}
		case 1:
			return operand{kind: opMem, addr: c.fetchLong() & AddressMask}
		default:
			return c.badEA()
		}
	}
	return c.badEA()
}

// eaAddr resolves an address-only operand (LEA, PEA, JMP, JSR and the
// memory forms of MOVEM). Only modes 2, 5, 6, and 7 regs 0-1 carry an
// address; everything else raises illegal instruction.
func (c *CPU) eaAddr(mode, reg int) (uint32, bool) {
	switch mode {
	case 2:
		return c.Regs.A[reg] & AddressMask, true
	case 5:
		d := uint32(int32(int16(c.fetchWord())))
		return (c.Regs.A[reg] + d) & AddressMask, true
	case 6:
		return c.indexExtension(c.Regs.A[reg]) & AddressMask, true
	case 7:
		switch reg {
		case 0:
			return uint32(int32(int16(c.fetchWord()))) & AddressMask, true
		case 1:
			return c.fetchLong() & AddressMask, true
		}
	}
	c.badEA()
	return 0, false
}

// read fetches the operand value. Address-register words are returned
// unextended; the handler decides whether to sign extend.
func (op operand) read(c *CPU, size Size) uint32 {
	switch op.kind {
	case opDataReg:
		return c.Regs.D[op.reg] & size.Mask()
	case opAddrReg:
		return c.Regs.A[op.reg] & size.Mask()
	case opMem:
		switch size {
		case Byte:
			return uint32(c.bus.ReadByte(op.addr))
		case Word:
			return uint32(c.bus.ReadWord(op.addr))
		default:
			return c.bus.ReadLong(op.addr)
		}
	}
	return 0
}

// write stores v through the operand. Data-register writes merge into
// the low part of the register; address-register writes replace the
// whole register (the caller sign extends word values first).
func (op operand) write(c *CPU, size Size, v uint32) {
	switch op.kind {
	case opDataReg:
		m := size.Mask()
		c.Regs.D[op.reg] = c.Regs.D[op.reg]&^m | v&m
	case opAddrReg:
		c.Regs.A[op.reg] = v
	case opMem:
		switch size {
		case Byte:
			c.bus.WriteByte(op.addr, uint8(v))
		case Word:
			c.bus.WriteWord(op.addr, uint16(v))
		default:
			c.bus.WriteLong(op.addr, v)
		}
	}
}
